package entry

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage format of civil dates.
const DateLayout = "2006-01-02"

// DefaultCategory is used for quick entries that carry no category.
const DefaultCategory = "General"

type Expense struct {
	ID           int64
	Item         string
	Category     string
	Amount       decimal.Decimal
	PaymentMode  string
	CardType     *string
	BankName     *string
	UPIProvider  *string
	PurchaseDate time.Time
	Remarks      string
	CreatedAt    time.Time
}

type Income struct {
	ID         int64
	Source     string
	Amount     decimal.Decimal
	IncomeDate time.Time
	PayslipURL *string
	CreatedAt  time.Time
}

// ExpenseForm is a single-expense submission with raw form values.
type ExpenseForm struct {
	Item         string
	Category     string
	Amount       string
	PaymentMode  string
	PurchaseDate string
	Remarks      string
	Payment      PaymentInputs
}

// BulkRow is one line of a bulk submission.
type BulkRow struct {
	Item     string
	Category string
	Amount   string
	Remarks  string
}

func (r BulkRow) blank() bool {
	return isBlank(r.Item) && isBlank(r.Category) && isBlankAmount(r.Amount) && isBlank(r.Remarks)
}

// BulkExpenseForm shares one payment mode, detail and date across all rows.
type BulkExpenseForm struct {
	PaymentMode  string
	PurchaseDate string
	Payment      PaymentInputs
	Rows         []BulkRow
}

// BulkRowsFromColumns zips the parallel per-column arrays of a bulk form into
// rows. Columns shorter than the longest one are padded with empty values.
func BulkRowsFromColumns(items, categories, amounts, remarks []string) []BulkRow {
	n := max(len(items), len(categories), len(amounts), len(remarks))
	rows := make([]BulkRow, n)
	for i := range rows {
		rows[i] = BulkRow{
			Item:     at(items, i),
			Category: at(categories, i),
			Amount:   at(amounts, i),
			Remarks:  at(remarks, i),
		}
	}
	return rows
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// Upload is an attached file. BaseURL is the public origin the stored file is
// served from.
type Upload struct {
	Filename string
	Content  io.Reader
	BaseURL  string
}

type IncomeForm struct {
	Source     string
	Amount     string
	IncomeDate string
	Payslip    *Upload
}

// QuickExpense is a one-line expense from a chat front-end.
type QuickExpense struct {
	Item        string
	Amount      string
	PaymentMode string
	Category    string
}

// ExpenseUpdate carries the editable fields of an expense. The purchase date
// is immutable once recorded.
type ExpenseUpdate struct {
	Item        string
	Amount      string
	PaymentMode string
	CardType    string
	BankName    string
	UPIProvider string
	Remarks     string
}

// IncomeUpdate carries the editable fields of an income. The income date is
// immutable once recorded.
type IncomeUpdate struct {
	Source string
	Amount string
}

// UpdateExpenseParams is the canonical form of an ExpenseUpdate handed to the store.
type UpdateExpenseParams struct {
	Item        string
	Amount      decimal.Decimal
	PaymentMode string
	Detail      PaymentDetail
	Remarks     string
}

type UpdateIncomeParams struct {
	Source string
	Amount decimal.Decimal
}
