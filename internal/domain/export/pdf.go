package export

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"spendlog/internal/domain/entry"
)

type column struct {
	title string
	width float64
	align string
}

var (
	expenseColumns = []column{
		{"Date", 24, "L"}, {"Item", 55, "L"}, {"Category", 35, "L"}, {"Amount", 28, "R"},
		{"Mode", 22, "L"}, {"Card Type", 25, "L"}, {"Bank", 30, "L"}, {"UPI", 25, "L"}, {"Remarks", 33, "L"},
	}
	incomeColumns = []column{
		{"Date", 30, "L"}, {"Source", 70, "L"}, {"Amount", 35, "R"}, {"Payslip", 55, "L"},
	}
)

// table lays out a titled, ruled table. Core fonts are used, so text is
// translated to cp1252 and anything outside it is dropped.
type table struct {
	pdf     *gofpdf.Fpdf
	tr      func(string) string
	columns []column
	started bool
}

func newTable(orientation, title string, generated time.Time, columns []column) *table {
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("spendlog", true)
	pdf.SetAutoPageBreak(true, 15)
	t := &table{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), columns: columns}

	pdf.SetHeaderFunc(func() {
		if t.started {
			t.header()
		}
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, t.tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+generated.Format("02 Jan 2006 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	t.header()
	t.started = true
	return t
}

// header prints the column titles. It runs below the title on the first page
// and at the top of every following page.
func (t *table) header() {
	t.pdf.SetFont("Helvetica", "B", 9)
	t.pdf.SetFillColor(230, 230, 230)
	for _, c := range t.columns {
		t.pdf.CellFormat(c.width, 7, c.title, "1", 0, c.align, true, 0, "")
	}
	t.pdf.Ln(-1)
	t.pdf.SetFont("Helvetica", "", 9)
}

func (t *table) row(values ...string) {
	for i, c := range t.columns {
		t.pdf.CellFormat(c.width, 6, t.fit(values[i], c.width-2), "1", 0, c.align, false, 0, "")
	}
	t.pdf.Ln(-1)
}

// fit truncates text to the cell width with a trailing ellipsis.
func (t *table) fit(s string, width float64) string {
	s = t.tr(s)
	if t.pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && t.pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}

func (t *table) total(label string, amount decimal.Decimal, amountCol int) {
	t.pdf.SetFont("Helvetica", "B", 9)
	var before float64
	for _, c := range t.columns[:amountCol] {
		before += c.width
	}
	t.pdf.CellFormat(before, 7, t.tr(label), "1", 0, "R", false, 0, "")
	t.pdf.CellFormat(t.columns[amountCol].width, 7, "Rs. "+amount.StringFixed(2), "1", 1, "R", false, 0, "")
}

func (t *table) output(w io.Writer) error {
	if err := t.pdf.Error(); err != nil {
		return fmt.Errorf("building pdf: %w", err)
	}
	if err := t.pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// WriteExpensesPDF renders expenses as a landscape table with a total row.
func WriteExpensesPDF(w io.Writer, title string, generated time.Time, expenses []*entry.Expense) error {
	t := newTable("L", title, generated, expenseColumns)
	sum := decimal.Zero
	for _, e := range expenses {
		t.row(
			e.PurchaseDate.Format(entry.DateLayout),
			e.Item,
			e.Category,
			e.Amount.StringFixed(2),
			e.PaymentMode,
			deref(e.CardType),
			deref(e.BankName),
			deref(e.UPIProvider),
			e.Remarks,
		)
		sum = sum.Add(e.Amount)
	}
	t.total(fmt.Sprintf("Total (%d entries)", len(expenses)), sum, 3)
	return t.output(w)
}

// WriteIncomePDF renders income as a portrait table with a total row.
func WriteIncomePDF(w io.Writer, title string, generated time.Time, income []*entry.Income) error {
	t := newTable("P", title, generated, incomeColumns)
	sum := decimal.Zero
	for _, inc := range income {
		slip := ""
		if inc.PayslipURL != nil {
			slip = "attached"
		}
		t.row(inc.IncomeDate.Format(entry.DateLayout), inc.Source, inc.Amount.StringFixed(2), slip)
		sum = sum.Add(inc.Amount)
	}
	t.total(fmt.Sprintf("Total (%d entries)", len(income)), sum, 2)
	return t.output(w)
}
