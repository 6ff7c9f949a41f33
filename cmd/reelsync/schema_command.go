package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelsync/internal/config"
	"reelsync/internal/logging"
	"reelsync/internal/store"
)

// newSchemaCommand provisions the catalog schema without running the
// pipeline. Useful for bootstrapping a fresh database or applying additive
// column changes ahead of a deploy.
func newSchemaCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create or update the catalog database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(*configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Writer: os.Stderr,
			})
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gateway, err := store.Open(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer gateway.Close()

			if err := gateway.EnsureSchema(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema %s.%s is up to date\n", cfg.Database.Schema, cfg.Database.Table)
			return nil
		},
	}
}
