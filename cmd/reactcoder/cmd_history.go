package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/reactcoder/internal/config"
	"github.com/lexcodex/reactcoder/persistence"
)

func newHistoryCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "history <session-id>",
		Short: "Show the model exchanges and token usage recorded for a session",
		Long:  "Reads the SQLite exchange store, so storage.exchange_store must be sqlite or both when the session runs.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path := config.ExpandPath(cfg.Storage.SQLitePath)
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("no exchange database at %s (set storage.exchange_store to sqlite or both)", path)
			}
			store, err := persistence.NewSQLiteExchangeStore(path)
			if err != nil {
				return err
			}
			defer store.Close()

			sessionID := args[0]
			exchanges, err := store.History(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			input, output, err := store.Usage(cmd.Context(), sessionID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render("session"), sessionID)
			if len(exchanges) == 0 {
				fmt.Fprintln(out, dimStyle.Render("no exchanges recorded"))
			}
			for i, ex := range exchanges {
				fmt.Fprintf(out, "%s %s %s in=%d out=%d\n",
					labelStyle.Render(fmt.Sprintf("#%d", i+1)),
					ex.Timestamp.Local().Format("2006-01-02 15:04:05"),
					ex.Model, ex.InputTokens, ex.OutputTokens)
				if full {
					fmt.Fprintf(out, "%s\n%s\n%s\n%s\n", dimStyle.Render("REQUEST:"), ex.Prompt, dimStyle.Render("RESPONSE:"), ex.Response)
				}
			}
			fmt.Fprintf(out, "%s in=%d out=%d\n", labelStyle.Render("tokens:"), input, output)
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Print prompts and responses")
	return cmd
}
