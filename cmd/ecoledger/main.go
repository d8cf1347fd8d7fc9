// Package main provides the ecoledger server binary.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/proplanet/ecoledger/pkg/config"
)

const (
	Version = "0.1.0"
	appName = "ecoledger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Eco-coin reward ledger",
		Long: `ecoledger serves the eco-task board, the eco-coin account ledger
and payout redemptions over HTTP.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(logLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to LOG_LEVEL")

	cmd.AddCommand(serveCmd(), migrateCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

// loadConfig reads .env (when present) and the environment.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupLogging(flagLevel string) {
	levelName := flagLevel
	if levelName == "" {
		levelName = os.Getenv("LOG_LEVEL")
	}

	level := slog.LevelInfo
	switch strings.ToLower(levelName) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
