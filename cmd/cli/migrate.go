package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/doubleentry/internal/infrastructure/postgres"
)

type migrator interface {
	Up() error
	Down(steps int) error
	Version() (uint, bool, error)
}

var newMigrator = func(opts *options) migrator {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return postgres.NewMigrator(opts.databaseURL, opts.migrationsPath, logger)
}

func requireDatabaseURL(opts *options) error {
	if opts.databaseURL == "" {
		return errors.New("database URL is required, set --database-url or DATABASE_URL")
	}
	return nil
}

func migrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return requireDatabaseURL(opts)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return newMigrator(opts).Up()
			},
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Roll back N migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(args[0])
					if err != nil || n <= 0 {
						return fmt.Errorf("invalid step count %q", args[0])
					}
					steps = n
				}
				return newMigrator(opts).Down(steps)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := newMigrator(opts).Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d", version)
				if dirty {
					fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
				}
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			},
		},
	)

	return cmd
}
