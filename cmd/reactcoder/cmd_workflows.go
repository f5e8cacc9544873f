package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexcodex/reactcoder/agents"
)

func newWorkflowsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "List the registered modification workflows",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry := agents.DefaultRegistry(agents.Dependencies{})
			if err := checkDefaultWorkflow(registry, cfg.Workflows.Default); err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(registry.Options())
			}
			fmt.Fprint(cmd.OutOrStdout(), renderWorkflows(registry.Options(), cfg.Workflows.Default))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the router's workflow table as JSON")
	return cmd
}
