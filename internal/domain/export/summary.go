package export

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"spendlog/internal/domain/entry"
)

// Bucket is a labelled total.
type Bucket struct {
	Label string
	Total decimal.Decimal
}

// MonthTotals holds the sums of one calendar month, keyed YYYY-MM.
type MonthTotals struct {
	Month    string
	Expenses decimal.Decimal
	Income   decimal.Decimal
}

// Summary is what the dashboard shows for a filter.
type Summary struct {
	Filter        Filter
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Net           decimal.Decimal
	// SavingsRate is Net as a percentage of TotalIncome, rounded to one
	// decimal, and zero when there is no income.
	SavingsRate  decimal.Decimal
	ExpenseCount int
	IncomeCount  int
	ByCategory   []Bucket
	ByPayment    []Bucket
	Trend        []MonthTotals
}

// PaymentLabel groups expenses for the payment breakdown. Card payments are
// split by card type and bank.
func PaymentLabel(e *entry.Expense) string {
	switch e.PaymentMode {
	case entry.ModeCard:
		cardType := "Unknown"
		if e.CardType != nil {
			cardType = *e.CardType
		}
		if e.BankName != nil {
			return fmt.Sprintf("%s Card - %s", cardType, *e.BankName)
		}
		return cardType + " Card"
	case "":
		return "Unknown"
	}
	return e.PaymentMode
}

// Summarize totals the entries that pass f.
func Summarize(f Filter, expenses []*entry.Expense, income []*entry.Income) Summary {
	s := Summary{Filter: f}
	byCategory := map[string]decimal.Decimal{}
	byPayment := map[string]decimal.Decimal{}
	trend := map[string]*MonthTotals{}

	month := func(key string) *MonthTotals {
		m, ok := trend[key]
		if !ok {
			m = &MonthTotals{Month: key}
			trend[key] = m
		}
		return m
	}

	for _, e := range expenses {
		if !f.Match(e.PurchaseDate) {
			continue
		}
		s.ExpenseCount++
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)

		category := e.Category
		if category == "" {
			category = "Other"
		}
		byCategory[category] = byCategory[category].Add(e.Amount)
		label := PaymentLabel(e)
		byPayment[label] = byPayment[label].Add(e.Amount)

		m := month(e.PurchaseDate.Format("2006-01"))
		m.Expenses = m.Expenses.Add(e.Amount)
	}

	for _, inc := range income {
		if !f.Match(inc.IncomeDate) {
			continue
		}
		s.IncomeCount++
		s.TotalIncome = s.TotalIncome.Add(inc.Amount)

		m := month(inc.IncomeDate.Format("2006-01"))
		m.Income = m.Income.Add(inc.Amount)
	}

	s.Net = s.TotalIncome.Sub(s.TotalExpenses)
	if s.TotalIncome.IsPositive() {
		s.SavingsRate = s.Net.Div(s.TotalIncome).Mul(decimal.NewFromInt(100)).Round(1)
	}
	s.ByCategory = buckets(byCategory)
	s.ByPayment = buckets(byPayment)

	s.Trend = make([]MonthTotals, 0, len(trend))
	for _, m := range trend {
		s.Trend = append(s.Trend, *m)
	}
	sort.Slice(s.Trend, func(i, j int) bool { return s.Trend[i].Month < s.Trend[j].Month })
	return s
}

// buckets orders totals largest first, then by label.
func buckets(totals map[string]decimal.Decimal) []Bucket {
	out := make([]Bucket, 0, len(totals))
	for label, total := range totals {
		out = append(out, Bucket{Label: label, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Label < out[j].Label
	})
	return out
}
