package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"spendlog/internal/domain/export"
	"spendlog/internal/shared/timezone"
)

func newExportCommand(open storeOpener) *cobra.Command {
	var month, year, format, out string

	cmd := &cobra.Command{
		Use:       "export {expenses|income}",
		Short:     "Write stored entries to a CSV or PDF file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(export.KindExpenses), string(export.KindIncome)},
		Example: `  admin export expenses --month 3 --year 2024
  admin export income --format pdf --out income.pdf
  admin export expenses --out -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := export.ParseKind(args[0])
			if err != nil {
				return err
			}
			filter, err := export.ParseFilter(month, year)
			if err != nil {
				return err
			}
			if format != export.FormatCSV && format != export.FormatPDF {
				return fmt.Errorf("--format must be csv or pdf, got %q", format)
			}

			ctx := cmd.Context()

			stores, cfg, err := open(ctx)
			if err != nil {
				return err
			}
			defer stores.Close()

			generated := time.Now().In(timezone.Load(cfg.Timezone))

			var buf bytes.Buffer
			if err := export.Render(ctx, stores.Entries, &buf, kind, filter, format, generated); err != nil {
				return err
			}

			if out == "-" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if out == "" {
				out = filter.Filename(kind, format)
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month to export, 1-12 (default all)")
	cmd.Flags().StringVar(&year, "year", "", "year to export (default all)")
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "output format: csv or pdf")
	cmd.Flags().StringVar(&out, "out", "", "output file, - for stdout (default derived from the filter)")

	return cmd
}
