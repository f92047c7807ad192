package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/resolvd/resolvd/internal/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive ticket console",
	Long: `Start an interactive shell for submitting tickets and inspecting
run history and escalations.

Type 'help' in the shell for available commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := newStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		engine, _, err := newEngine(ctx, store)
		if err != nil {
			return err
		}

		r, err := repl.New(&repl.Config{Engine: engine, Store: store})
		if err != nil {
			return err
		}
		return r.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
