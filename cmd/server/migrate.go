package main

import (
	"fmt"

	"github.com/SAP-F-2025/exam-trainer-service/internal/config"
	"github.com/SAP-F-2025/exam-trainer-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/exam-trainer-service/internal/utils"
	"github.com/SAP-F-2025/exam-trainer-service/pkg"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the PostgreSQL schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger := utils.NewLogger(cfg.IsProduction())

		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			return err
		}
		if err := postgres.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		logger.Info("Database schema is up to date")
		return nil
	},
}
