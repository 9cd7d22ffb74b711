package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"doctor-booking-api/internal/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes for the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx := context.Background()
			st, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			if err := st.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s backend.\n", cfg.StoreBackend)
			return nil
		},
	}
}
