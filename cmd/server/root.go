package main

import (
	"github.com/spf13/cobra"

	"github.com/minidebet/backend/internal/config"
	"github.com/minidebet/backend/internal/logger"
)

var configFile string

// NewRootCmd creates the root command of the server binary.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "minidebet",
		Short:         "MiniDebet invoicing backend",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", ".env", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
