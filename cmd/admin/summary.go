package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"spendlog/internal/domain/export"
)

func newSummaryCommand(open storeOpener) *cobra.Command {
	var month, year string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print income and expense totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := export.ParseFilter(month, year)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			stores, _, err := open(ctx)
			if err != nil {
				return err
			}
			defer stores.Close()

			expenses, err := stores.Entries.ListExpenses(ctx)
			if err != nil {
				return err
			}
			income, err := stores.Entries.ListIncome(ctx)
			if err != nil {
				return err
			}

			s := export.Summarize(filter, expenses, income)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Period\t%s\n", period(filter))
			fmt.Fprintf(tw, "Income\t%s\t(%d)\n", s.TotalIncome.StringFixed(2), s.IncomeCount)
			fmt.Fprintf(tw, "Expenses\t%s\t(%d)\n", s.TotalExpenses.StringFixed(2), s.ExpenseCount)
			fmt.Fprintf(tw, "Net\t%s\n", s.Net.StringFixed(2))
			fmt.Fprintf(tw, "Savings rate\t%s%%\n", s.SavingsRate.StringFixed(1))
			for _, b := range s.ByCategory {
				fmt.Fprintf(tw, "  %s\t%s\n", b.Label, b.Total.StringFixed(2))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "month, 1-12 (default all)")
	cmd.Flags().StringVar(&year, "year", "", "year (default all)")

	return cmd
}

func period(f export.Filter) string {
	switch {
	case f.IsZero():
		return "all data"
	case f.Month == 0:
		return fmt.Sprintf("%d", f.Year)
	case f.Year == 0:
		return fmt.Sprintf("%s, all years", f.Month)
	}
	return fmt.Sprintf("%s %d", f.Month, f.Year)
}
