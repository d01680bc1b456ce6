package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"notesbuzz/internal/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(a, func(m *db.Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(a, func(m *db.Migrator) error {
					if err := m.Down(); err != nil {
						return err
					}
					return printVersion(cmd, m)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(a, func(m *db.Migrator) error {
					return printVersion(cmd, m)
				})
			},
		},
	)
	return cmd
}

func withMigrator(a *app, fn func(*db.Migrator) error) error {
	m, err := db.NewMigrator(a.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() {
		if err := m.Close(); err != nil {
			a.logger.Warn("close migrator", "err", err)
		}
	}()
	if err := fn(m); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func printVersion(cmd *cobra.Command, m *db.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d (dirty: %t)\n", v, dirty)
	return err
}
