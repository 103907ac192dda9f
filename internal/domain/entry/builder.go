package entry

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func parseAmountField(raw, field string, row int) (decimal.Decimal, error) {
	d, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero, &ParseError{Row: row, Field: field, Value: raw, Err: err}
	}
	return d, nil
}

// parseDateField returns the civil date at UTC midnight. An empty value means
// today as seen from now's location.
func parseDateField(raw, field string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, &ParseError{Field: field, Value: raw, Err: ErrInvalidDate}
	}
	return t, nil
}

// BuildSingleExpense converts a validated form into a canonical expense.
// now must already be in the configured zone.
func BuildSingleExpense(f ExpenseForm, now time.Time) (*Expense, error) {
	amount, err := parseAmountField(f.Amount, LabelAmount, 0)
	if err != nil {
		return nil, err
	}
	date, err := parseDateField(f.PurchaseDate, LabelPurchaseDate, now)
	if err != nil {
		return nil, err
	}

	mode := Normalize(f.PaymentMode)
	detail := ResolvePayment(mode, f.Payment)
	return &Expense{
		Item:         Normalize(f.Item),
		Category:     Normalize(f.Category),
		Amount:       amount,
		PaymentMode:  mode,
		CardType:     detail.CardType,
		BankName:     detail.BankName,
		UPIProvider:  detail.UPIProvider,
		PurchaseDate: date,
		Remarks:      strings.TrimSpace(f.Remarks),
	}, nil
}

// BuildBulkExpenses builds one expense per non-blank row. The payment detail
// and purchase date are resolved once and shared. Every row is parsed before
// anything is returned, so a bad amount in the last row still fails the batch.
func BuildBulkExpenses(f BulkExpenseForm, now time.Time) ([]*Expense, error) {
	date, err := parseDateField(f.PurchaseDate, LabelPurchaseDate, now)
	if err != nil {
		return nil, err
	}
	mode := Normalize(f.PaymentMode)
	detail := ResolvePayment(mode, f.Payment)

	expenses := make([]*Expense, 0, len(f.Rows))
	for i, row := range f.Rows {
		if row.blank() {
			continue
		}
		amount, err := parseAmountField(row.Amount, LabelAmount, i+1)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, &Expense{
			Item:         Normalize(row.Item),
			Category:     Normalize(row.Category),
			Amount:       amount,
			PaymentMode:  mode,
			CardType:     detail.CardType,
			BankName:     detail.BankName,
			UPIProvider:  detail.UPIProvider,
			PurchaseDate: date,
			Remarks:      strings.TrimSpace(row.Remarks),
		})
	}
	return expenses, nil
}

// BuildIncome converts a validated income form. The payslip URL is attached
// by the service once the file is stored.
func BuildIncome(f IncomeForm, now time.Time) (*Income, error) {
	amount, err := parseAmountField(f.Amount, LabelAmount, 0)
	if err != nil {
		return nil, err
	}
	date, err := parseDateField(f.IncomeDate, LabelIncomeDate, now)
	if err != nil {
		return nil, err
	}
	return &Income{
		Source:     Normalize(f.Source),
		Amount:     amount,
		IncomeDate: date,
	}, nil
}

// BuildQuickExpense builds a chat expense. No payment detail is collected on
// that path, so the resolver sees empty inputs.
func BuildQuickExpense(q QuickExpense, now time.Time) (*Expense, error) {
	amount, err := parseAmountField(q.Amount, LabelAmount, 0)
	if err != nil {
		return nil, err
	}
	category := Normalize(q.Category)
	if category == "" {
		category = DefaultCategory
	}
	mode := Normalize(q.PaymentMode)
	detail := ResolvePayment(mode, PaymentInputs{})
	y, m, d := now.Date()
	return &Expense{
		Item:         Normalize(q.Item),
		Category:     category,
		Amount:       amount,
		PaymentMode:  mode,
		CardType:     detail.CardType,
		BankName:     detail.BankName,
		UPIProvider:  detail.UPIProvider,
		PurchaseDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}, nil
}

// BuildExpenseUpdate converts a validated edit into store parameters.
func BuildExpenseUpdate(u ExpenseUpdate) (UpdateExpenseParams, error) {
	amount, err := parseAmountField(u.Amount, LabelAmount, 0)
	if err != nil {
		return UpdateExpenseParams{}, err
	}
	mode := updateMode(u)
	return UpdateExpenseParams{
		Item:        Normalize(u.Item),
		Amount:      amount,
		PaymentMode: mode,
		Detail:      ResolvePayment(mode, u.paymentInputs()),
		Remarks:     strings.TrimSpace(u.Remarks),
	}, nil
}

func BuildIncomeUpdate(u IncomeUpdate) (UpdateIncomeParams, error) {
	amount, err := parseAmountField(u.Amount, LabelAmount, 0)
	if err != nil {
		return UpdateIncomeParams{}, err
	}
	return UpdateIncomeParams{Source: Normalize(u.Source), Amount: amount}, nil
}
