package main

import (
	"github.com/DRSN-tech/nudge-backend/internal/app"
	config "github.com/DRSN-tech/nudge-backend/internal/cfg"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP and gRPC servers with the outbox worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(log)
		if err != nil {
			log.Errorf(err, "failed to load config")
			return err
		}

		application, err := app.NewApp(cfg, log)
		if err != nil {
			log.Errorf(err, "failed to initialize app")
			return err
		}

		return application.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
