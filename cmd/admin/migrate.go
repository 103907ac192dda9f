package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables or sheet headers the store needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			stores, cfg, err := open(ctx)
			if err != nil {
				return err
			}
			defer stores.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Preparing %s store\n", cfg.Store.Backend)
			return stores.Prepare(ctx, cmd.OutOrStdout())
		},
	}
}
