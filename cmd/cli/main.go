package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	baseURL        string
	timeout        time.Duration
	databaseURL    string
	migrationsPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "ledger-cli",
		Short:         "Double-entry ledger CLI",
		Long:          `A command line interface for the double-entry ledger API and its database migrations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("LEDGER_URL", "http://localhost:8080"), "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL used by migrate commands")
	rootCmd.PersistentFlags().StringVar(&opts.migrationsPath, "migrations", envOr("MIGRATIONS_PATH", "migrations"), "Path to migration files")

	rootCmd.AddCommand(
		accountsCmd(opts),
		entriesCmd(opts),
		balanceCmd(opts),
		ledgerCmd(opts),
		migrateCmd(opts),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
