package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/resolvd/resolvd/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Start the HTTP API: ticket processing, run history, knowledge
ingestion, and the escalation log. Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := newStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		engine, ingestor, err := newEngine(ctx, store)
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		return api.NewServer(engine, store, ingestor).Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
