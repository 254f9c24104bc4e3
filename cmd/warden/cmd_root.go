package main

import (
	"log/slog"
	"os"

	"github.com/shrinex/warden/config"
	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "warden",
		Short:         "Two-phase login against configured identity stores.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			*rootConfig = *cfg

			logger = newLogger(rootConfig.LogLevel)
			slog.SetDefault(logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $"+config.EnvConfig+" or ./warden.yaml).")

	cmd.AddCommand(loginCmd())
	cmd.AddCommand(checkConfigCmd())

	return cmd
}

func newLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)}))
}
