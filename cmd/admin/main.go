package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"spendlog/internal/infrastructure/backend"
	"spendlog/internal/shared/config"
)

// storeOpener connects to the configured entry store. Tests swap it for an
// in-memory one.
type storeOpener func(ctx context.Context) (*backend.Stores, *config.Config, error)

func openConfigured(ctx context.Context) (*backend.Stores, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	stores, err := backend.OpenEntries(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return stores, cfg, nil
}

func newRootCommand(open storeOpener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "admin",
		Short: "Management commands for spendlog",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newMigrateCommand(open))
	rootCmd.AddCommand(newExportCommand(open))
	rootCmd.AddCommand(newSummaryCommand(open))

	return rootCmd
}

func main() {
	_ = godotenv.Load()

	if err := newRootCommand(openConfigured).Execute(); err != nil {
		os.Exit(1)
	}
}
