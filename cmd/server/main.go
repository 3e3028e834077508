// APSFD Portal - staff portal server
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "apsfd-portal",
	Short: "APSFD staff portal server",
	Long: `Serves the APSFD staff portal: authentication, the two chat surfaces,
training board, document upload, and conversation history.

Running without a subcommand starts the server.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		if err := godotenv.Load(); err != nil {
			slog.Info("No .env file found, using environment variables")
		}
	},
	RunE: runServe,
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $CONFIG_FILE)")
	rootCmd.AddCommand(serveCmd, catalogCmd, auditCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
