package main

import (
	config "github.com/DRSN-tech/nudge-backend/internal/cfg"
	"github.com/DRSN-tech/nudge-backend/pkg/postgres"
	"github.com/spf13/cobra"
)

var (
	migrationsSource string
	downSteps        int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbCfg, err := config.LoadDB(log)
		if err != nil {
			return err
		}

		return postgres.MigrateUp(postgres.DSN(dbCfg), migrationsSource, log)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last N migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbCfg, err := config.LoadDB(log)
		if err != nil {
			return err
		}

		return postgres.MigrateDown(postgres.DSN(dbCfg), migrationsSource, downSteps, log)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbCfg, err := config.LoadDB(log)
		if err != nil {
			return err
		}

		version, dirty, err := postgres.MigrationVersion(postgres.DSN(dbCfg), migrationsSource)
		if err != nil {
			return err
		}

		log.Infof("schema version: %d, dirty: %t", version, dirty)
		return nil
	},
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsSource, "source", postgres.DefaultMigrations, "migrations source URL")
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}
