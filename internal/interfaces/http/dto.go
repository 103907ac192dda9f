package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"spendlog/internal/domain/entry"
	"spendlog/internal/domain/export"
)

type ExpenseResponse struct {
	ID           int64       `json:"id"`
	Item         string      `json:"item"`
	Category     string      `json:"category"`
	Amount       json.Number `json:"amount"`
	PaymentMode  string      `json:"payment_mode"`
	CardType     *string     `json:"card_type"`
	BankName     *string     `json:"bank_name"`
	UPIProvider  *string     `json:"upi_provider"`
	PurchaseDate string      `json:"purchase_date"`
	Remarks      string      `json:"remarks"`
	CreatedAt    string      `json:"created_at"`
}

type IncomeResponse struct {
	ID         int64       `json:"id"`
	Source     string      `json:"source"`
	Amount     json.Number `json:"amount"`
	IncomeDate string      `json:"income_date"`
	PayslipURL *string     `json:"payslip_url"`
	CreatedAt  string      `json:"created_at"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toExpenseResponse(e *entry.Expense, loc *time.Location) ExpenseResponse {
	return ExpenseResponse{
		ID:           e.ID,
		Item:         e.Item,
		Category:     e.Category,
		Amount:       money(e.Amount),
		PaymentMode:  e.PaymentMode,
		CardType:     e.CardType,
		BankName:     e.BankName,
		UPIProvider:  e.UPIProvider,
		PurchaseDate: e.PurchaseDate.Format(entry.DateLayout),
		Remarks:      e.Remarks,
		CreatedAt:    e.CreatedAt.In(loc).Format(time.RFC3339),
	}
}

func toIncomeResponse(inc *entry.Income, loc *time.Location) IncomeResponse {
	return IncomeResponse{
		ID:         inc.ID,
		Source:     inc.Source,
		Amount:     money(inc.Amount),
		IncomeDate: inc.IncomeDate.Format(entry.DateLayout),
		PayslipURL: inc.PayslipURL,
		CreatedAt:  inc.CreatedAt.In(loc).Format(time.RFC3339),
	}
}

// flexAmount accepts an amount written either as a JSON string or a JSON
// number and keeps its raw text for the normal amount parser.
type flexAmount string

func (a *flexAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = flexAmount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("amount must be a string or a number")
	}
	*a = flexAmount(n.String())
	return nil
}

type UpdateExpenseRequest struct {
	Item        string     `json:"item"`
	Amount      flexAmount `json:"amount"`
	PaymentMode string     `json:"payment_mode"`
	CardType    string     `json:"card_type"`
	BankName    string     `json:"bank_name"`
	UPIProvider string     `json:"upi_provider"`
	Remarks     string     `json:"remarks"`
}

func (r UpdateExpenseRequest) toUpdate() entry.ExpenseUpdate {
	return entry.ExpenseUpdate{
		Item:        r.Item,
		Amount:      string(r.Amount),
		PaymentMode: r.PaymentMode,
		CardType:    r.CardType,
		BankName:    r.BankName,
		UPIProvider: r.UPIProvider,
		Remarks:     r.Remarks,
	}
}

// UpdateIncomeRequest takes the source under "source", or under "item" as
// older clients send it.
type UpdateIncomeRequest struct {
	Source string     `json:"source"`
	Item   string     `json:"item"`
	Amount flexAmount `json:"amount"`
}

func (r UpdateIncomeRequest) toUpdate() entry.IncomeUpdate {
	source := r.Source
	if source == "" {
		source = r.Item
	}
	return entry.IncomeUpdate{Source: source, Amount: string(r.Amount)}
}

type BucketResponse struct {
	Label string      `json:"label"`
	Total json.Number `json:"total"`
}

type MonthResponse struct {
	Month    string      `json:"month"`
	Expenses json.Number `json:"expenses"`
	Income   json.Number `json:"income"`
}

type SummaryResponse struct {
	Month         int              `json:"month,omitempty"`
	Year          int              `json:"year,omitempty"`
	TotalIncome   json.Number      `json:"total_income"`
	TotalExpenses json.Number      `json:"total_expenses"`
	Net           json.Number      `json:"net"`
	SavingsRate   json.Number      `json:"savings_rate"`
	ExpenseCount  int              `json:"expense_count"`
	IncomeCount   int              `json:"income_count"`
	ByCategory    []BucketResponse `json:"by_category"`
	ByPayment     []BucketResponse `json:"by_payment"`
	Trend         []MonthResponse  `json:"trend"`
}

func toBuckets(in []export.Bucket) []BucketResponse {
	out := make([]BucketResponse, 0, len(in))
	for _, b := range in {
		out = append(out, BucketResponse{Label: b.Label, Total: money(b.Total)})
	}
	return out
}

func toSummaryResponse(s export.Summary) SummaryResponse {
	trend := make([]MonthResponse, 0, len(s.Trend))
	for _, m := range s.Trend {
		trend = append(trend, MonthResponse{Month: m.Month, Expenses: money(m.Expenses), Income: money(m.Income)})
	}
	return SummaryResponse{
		Month:         int(s.Filter.Month),
		Year:          s.Filter.Year,
		TotalIncome:   money(s.TotalIncome),
		TotalExpenses: money(s.TotalExpenses),
		Net:           money(s.Net),
		SavingsRate:   json.Number(s.SavingsRate.StringFixed(1)),
		ExpenseCount:  s.ExpenseCount,
		IncomeCount:   s.IncomeCount,
		ByCategory:    toBuckets(s.ByCategory),
		ByPayment:     toBuckets(s.ByPayment),
		Trend:         trend,
	}
}
