package main

import (
	"context"
	"fmt"
	"os"

	"task_tracker/internal/config"
	"task_tracker/internal/logger"
	"task_tracker/internal/repository"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var storageDriver string

func main() {
	rootCmd := &cobra.Command{
		Use:     "taskctl",
		Short:   "Maintenance commands for the task tracker store",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT") == "json")
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&storageDriver, "driver", "", "storage driver (postgres, sqlite, memory); defaults to STORAGE_DRIVER")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment, letting --driver win over STORAGE_DRIVER
func loadConfig() (*config.Config, error) {
	if storageDriver != "" {
		if err := os.Setenv("STORAGE_DRIVER", storageDriver); err != nil {
			return nil, err
		}
	}
	return config.FromEnv()
}

func openStore(ctx context.Context) (*config.Config, repository.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := repository.Open(ctx, cfg.StorageDriver, cfg.StorageDSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", cfg.StorageDriver, err)
	}
	return cfg, store, nil
}
