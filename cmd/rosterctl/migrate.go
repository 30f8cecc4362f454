package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cleanops/internal/platform/config"
	"cleanops/internal/platform/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if strings.TrimSpace(cfg.DatabaseURL) == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			pool, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()
			return db.Migrate(cmd.Context(), pool)
		},
	}
}
