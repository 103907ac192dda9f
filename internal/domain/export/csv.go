package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"spendlog/internal/domain/entry"
)

var (
	expenseHeader = []string{"Date", "Item", "Category", "Amount", "Payment Mode", "Card Type", "Bank Name", "UPI Provider", "Remarks"}
	incomeHeader  = []string{"Date", "Source", "Amount", "Payslip URL"}
)

// WriteExpensesCSV writes a header row and one row per expense, in the order given.
func WriteExpensesCSV(w io.Writer, expenses []*entry.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(expenseHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range expenses {
		rec := []string{
			e.PurchaseDate.Format(entry.DateLayout),
			e.Item,
			e.Category,
			e.Amount.StringFixed(2),
			e.PaymentMode,
			deref(e.CardType),
			deref(e.BankName),
			deref(e.UPIProvider),
			e.Remarks,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteIncomeCSV writes a header row and one row per income, in the order given.
func WriteIncomeCSV(w io.Writer, income []*entry.Income) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(incomeHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, inc := range income {
		rec := []string{
			inc.IncomeDate.Format(entry.DateLayout),
			inc.Source,
			inc.Amount.StringFixed(2),
			deref(inc.PayslipURL),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
