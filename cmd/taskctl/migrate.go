package main

import (
	"fmt"
	"io"

	"task_tracker/internal/migrations"
	"task_tracker/internal/repository"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var apply, showSQL bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "List the schema scripts for the configured store, or apply them",
		Long: `Without --apply, prints the scripts that would run.
Scripts are idempotent, so --apply is safe to repeat. The server applies
them at startup as well.

Examples:
  taskctl migrate --driver sqlite --sql
  taskctl migrate --apply`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if !apply {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				return listMigrations(out, cfg.StorageDriver, showSQL)
			}

			cfg, store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
			fmt.Fprintf(out, "schema applied (%s)\n", cfg.StorageDriver)
			return nil
		},
	}

	cmd.Flags().BoolVar(&apply, "apply", false, "apply the scripts to the configured store")
	cmd.Flags().BoolVar(&showSQL, "sql", false, "print script contents, not just names")
	return cmd
}

func listMigrations(w io.Writer, driver string, showSQL bool) error {
	if driver == repository.DriverMemory {
		fmt.Fprintln(w, "memory store has no schema")
		return nil
	}

	files, err := migrations.Load(driver)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(w, f.Name)
		if showSQL {
			fmt.Fprintln(w, f.SQL)
		}
	}
	return nil
}
