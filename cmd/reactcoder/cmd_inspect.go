package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/lexcodex/reactcoder/agents/simple"
	"github.com/lexcodex/reactcoder/framework/codebase"
)

func newTreeCmd() *cobra.Command {
	var (
		depth    int
		overview bool
	)
	cmd := &cobra.Command{
		Use:   "tree <dir>",
		Short: "Print the filtered file tree a model would see",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := existingDir(args[0])
			if err != nil {
				return err
			}
			if overview {
				fmt.Fprintln(cmd.OutOrStdout(), simple.ProjectOverview(root))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), codebase.RenderSimple(codebase.Tree(root, codebase.TreeOptions{MaxDepth: depth})))
			return nil
		},
	}
	cmd.Flags().IntVar(&depth, "depth", codebase.DefaultMaxDepth, "Maximum directory depth")
	cmd.Flags().BoolVar(&overview, "overview", false, "Print the annotated project overview instead")
	return cmd
}

func newStatsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats <dir>",
		Short: "Print file, line and token statistics of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := existingDir(args[0])
			if err != nil {
				return err
			}
			stats := codebase.ProjectStats(root)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			fmt.Fprintf(out, "%s %d\n", labelStyle.Render("files:"), stats.TotalFiles)
			fmt.Fprintf(out, "%s %d\n", labelStyle.Render("lines:"), stats.TotalLines)
			fmt.Fprintf(out, "%s %d\n", labelStyle.Render("estimated tokens:"), stats.EstimatedTokens)
			for _, ext := range slices.Sorted(maps.Keys(stats.FilesByType)) {
				fmt.Fprintf(out, "  %s %d\n", ext, stats.FilesByType[ext])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func existingDir(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", path)
	}
	return path, nil
}
