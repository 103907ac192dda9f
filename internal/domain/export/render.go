package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"spendlog/internal/domain/entry"
)

// Formats accepted by Render.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// Source lists the stored entries an export reads from.
type Source interface {
	ListExpenses(ctx context.Context) ([]*entry.Expense, error)
	ListIncome(ctx context.Context) ([]*entry.Income, error)
}

// Render writes the entries of kind that pass f to w in the given format.
// generated stamps PDF output.
func Render(ctx context.Context, src Source, w io.Writer, kind Kind, f Filter, format string, generated time.Time) error {
	if format != FormatCSV && format != FormatPDF {
		return fmt.Errorf("unsupported export format %q", format)
	}

	switch kind {
	case KindExpenses:
		all, err := src.ListExpenses(ctx)
		if err != nil {
			return fmt.Errorf("failed to list expenses: %w", err)
		}
		rows := FilterExpenses(f, all)
		if format == FormatPDF {
			return WriteExpensesPDF(w, f.Title(kind), generated, rows)
		}
		return WriteExpensesCSV(w, rows)
	case KindIncome:
		all, err := src.ListIncome(ctx)
		if err != nil {
			return fmt.Errorf("failed to list income: %w", err)
		}
		rows := FilterIncome(f, all)
		if format == FormatPDF {
			return WriteIncomePDF(w, f.Title(kind), generated, rows)
		}
		return WriteIncomeCSV(w, rows)
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
