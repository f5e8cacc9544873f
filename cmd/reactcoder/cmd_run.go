package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		project      string
		instructions []string
		workflow     string
		keep         bool
		showDiff     bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Copy a project into a sandbox and apply instructions to it",
		Example: `  reactcoder run --project todo-app -i "make the header red"
  reactcoder run --project ./site -i "add a footer" -i "make it sticky" --workflow explorative_modification`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if project == "" {
				return errors.New("--project is required")
			}
			if len(instructions) == 0 {
				return errors.New("at least one --instruction is required")
			}
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.Close()
			stopMetrics := serveMetrics(flagMetricsAddr, app.logger)
			defer stopMetrics()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runInstructions(ctx, cmd, app, project, workflow, instructions, keep, showDiff)
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project directory (absolute, or relative to sandbox.projects_root)")
	cmd.Flags().StringArrayVarP(&instructions, "instruction", "i", nil, "Instruction to apply (repeatable, applied in order)")
	cmd.Flags().StringVarP(&workflow, "workflow", "w", "", "Pin a workflow instead of routing")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep the sandbox after the run")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Print the diff of every changed file")
	return cmd
}

func runInstructions(ctx context.Context, cmd *cobra.Command, app *application, project, workflow string, instructions []string, keep, showDiff bool) error {
	session, err := app.editor.InitSession(ctx, project, workflow)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("session:"), session.ID)
	defer func() {
		if keep {
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("sandbox kept at:"), session.Path)
			return
		}
		if err := app.editor.CleanupSession(session.ID); err != nil {
			app.logger.Warn("sandbox cleanup failed", "session_id", session.ID, "error", err)
		}
	}()

	for _, instruction := range instructions {
		result, err := app.editor.ProcessInstruction(ctx, session.ID, instruction)
		if err != nil {
			return fmt.Errorf("instruction %q: %w", instruction, err)
		}
		fmt.Fprint(out, renderResult(instruction, result, showDiff))
	}
	return nil
}
