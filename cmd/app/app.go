package main

import (
	"os"

	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var log = logger.NewSlogLogger()

var rootCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Nudge backend: inspiration search over the asset catalog",
	// без подкоманды запускается сервер
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

func main() {
	// .env необязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("failed to load .env: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
