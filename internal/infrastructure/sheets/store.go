// Package sheets keeps entries in a Google spreadsheet with one tab for
// expenses and one for income. Row 1 of each tab is a header. A third tab,
// Meta, holds the last id handed out per tab so deleted ids are never reused.
package sheets

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"spendlog/internal/domain/entry"
)

const (
	expenseSheet = "Expenses"
	incomeSheet  = "Income"

	metaSheet    = "Meta"

	expenseCols = "A:K"
	incomeCols  = "A:F"
	metaCols    = "A:B"
)

var (
	ExpenseHeader = []any{"ID", "Item", "Category", "Amount", "Payment Mode", "Card Type", "Bank Name", "UPI Provider", "Purchase Date", "Remarks", "Created At"}
	IncomeHeader  = []any{"ID", "Source", "Amount", "Income Date", "Payslip URL", "Created At"}
	MetaHeader    = []any{"Sheet", "Last ID"}

	// counterRows is the Meta row holding each tab's last id.
	counterRows = map[string]int{expenseSheet: 2, incomeSheet: 3}
)

// Store implements entry.Repository on a spreadsheet. Writes are serialized
// because id allocation is a read followed by a write of the Meta counter.
type Store struct {
	client valuesClient
	mu     sync.Mutex
}

var _ entry.Repository = (*Store)(nil)

// Open connects to the spreadsheet with a service account.
func Open(ctx context.Context, credentialsFile, spreadsheetID string) (*Store, error) {
	client, err := newGoogleClient(ctx, credentialsFile, spreadsheetID)
	if err != nil {
		return nil, err
	}
	return &Store{client: client}, nil
}

func dataRange(sheet, cols string) string {
	first, last, _ := strings.Cut(cols, ":")
	return fmt.Sprintf("%s!%s2:%s", sheet, first, last)
}

func rowRange(sheet, cols string, row int) string {
	first, last, _ := strings.Cut(cols, ":")
	return fmt.Sprintf("%s!%s%d:%s%d", sheet, first, row, last, row)
}

// InsertExpenses appends the batch with a single append request.
func (s *Store) InsertExpenses(ctx context.Context, expenses []*entry.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.reserveIDs(ctx, expenseSheet, len(expenses))
	if err != nil {
		return err
	}

	rows := make([][]any, len(expenses))
	for i, e := range expenses {
		rows[i] = expenseRow(next+int64(i), e)
	}
	if err := s.client.Append(ctx, expenseSheet+"!A1", rows); err != nil {
		return persistError(fmt.Errorf("failed to append expenses: %w", err), 0)
	}

	for i, e := range expenses {
		e.ID = next + int64(i)
	}
	return nil
}

func (s *Store) InsertIncome(ctx context.Context, inc *entry.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.reserveIDs(ctx, incomeSheet, 1)
	if err != nil {
		return err
	}
	if err := s.client.Append(ctx, incomeSheet+"!A1", [][]any{incomeRow(next, inc)}); err != nil {
		return persistError(fmt.Errorf("failed to append income: %w", err), 1)
	}
	inc.ID = next
	return nil
}

// reserveIDs bumps the tab's counter by n and returns the first reserved id.
// The counter is written before the rows are appended, so a failed append
// burns its ids instead of handing them out again. Tabs filled before the
// counter existed start above their highest id.
func (s *Store) reserveIDs(ctx context.Context, sheet string, n int) (int64, error) {
	row := counterRows[sheet]
	rng := rowRange(metaSheet, metaCols, row)

	meta, err := s.client.Get(ctx, rng)
	if err != nil {
		return 0, persistError(fmt.Errorf("failed to read %s id counter: %w", sheet, err), 0)
	}
	var last int64
	if len(meta) > 0 {
		last, _ = cellID(meta[0], 1)
	}

	ids, err := s.client.Get(ctx, dataRange(sheet, "A:A"))
	if err != nil {
		return 0, persistError(fmt.Errorf("failed to read %s ids: %w", sheet, err), 0)
	}
	for _, r := range ids {
		if id, ok := cellID(r, 0); ok && id > last {
			last = id
		}
	}

	if err := s.client.Update(ctx, rng, []any{sheet, last + int64(n)}); err != nil {
		return 0, persistError(fmt.Errorf("failed to bump %s id counter: %w", sheet, err), 0)
	}
	return last + 1, nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]*entry.Expense, error) {
	rows, err := s.client.Get(ctx, dataRange(expenseSheet, expenseCols))
	if err != nil {
		return nil, persistError(fmt.Errorf("failed to read expenses: %w", err), 0)
	}

	expenses := make([]*entry.Expense, 0, len(rows))
	for _, row := range rows {
		if e, ok := parseExpense(row); ok {
			expenses = append(expenses, e)
		}
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return newerFirst(expenses[i].CreatedAt, expenses[j].CreatedAt, expenses[i].ID, expenses[j].ID)
	})
	return expenses, nil
}

func (s *Store) ListIncome(ctx context.Context) ([]*entry.Income, error) {
	rows, err := s.client.Get(ctx, dataRange(incomeSheet, incomeCols))
	if err != nil {
		return nil, persistError(fmt.Errorf("failed to read income: %w", err), 0)
	}

	income := make([]*entry.Income, 0, len(rows))
	for _, row := range rows {
		if inc, ok := parseIncome(row); ok {
			income = append(income, inc)
		}
	}
	sort.SliceStable(income, func(i, j int) bool {
		return newerFirst(income[i].CreatedAt, income[j].CreatedAt, income[i].ID, income[j].ID)
	})
	return income, nil
}

func newerFirst(a, b time.Time, idA, idB int64) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return idA > idB
}

// locate returns the 1-based sheet row holding id, or 0.
func (s *Store) locate(ctx context.Context, sheet string, id int64) (int, error) {
	rows, err := s.client.Get(ctx, dataRange(sheet, "A:A"))
	if err != nil {
		return 0, persistError(fmt.Errorf("failed to read %s ids: %w", sheet, err), 0)
	}
	for i, row := range rows {
		if got, ok := cellID(row, 0); ok && got == id {
			return i + 2, nil
		}
	}
	return 0, nil
}

func (s *Store) UpdateExpense(ctx context.Context, id int64, p entry.UpdateExpenseParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.client.Get(ctx, dataRange(expenseSheet, expenseCols))
	if err != nil {
		return false, persistError(fmt.Errorf("failed to read expenses: %w", err), 0)
	}
	for i, row := range rows {
		e, ok := parseExpense(row)
		if !ok || e.ID != id {
			continue
		}
		e.Item = p.Item
		e.Amount = p.Amount
		e.PaymentMode = p.PaymentMode
		e.CardType = p.Detail.CardType
		e.BankName = p.Detail.BankName
		e.UPIProvider = p.Detail.UPIProvider
		e.Remarks = p.Remarks
		if err := s.client.Update(ctx, rowRange(expenseSheet, expenseCols, i+2), expenseRow(id, e)); err != nil {
			return false, persistError(fmt.Errorf("failed to update expense: %w", err), 1)
		}
		return true, nil
	}
	return false, nil
}

func (s *Store) UpdateIncome(ctx context.Context, id int64, p entry.UpdateIncomeParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.client.Get(ctx, dataRange(incomeSheet, incomeCols))
	if err != nil {
		return false, persistError(fmt.Errorf("failed to read income: %w", err), 0)
	}
	for i, row := range rows {
		inc, ok := parseIncome(row)
		if !ok || inc.ID != id {
			continue
		}
		inc.Source = p.Source
		inc.Amount = p.Amount
		if err := s.client.Update(ctx, rowRange(incomeSheet, incomeCols, i+2), incomeRow(id, inc)); err != nil {
			return false, persistError(fmt.Errorf("failed to update income: %w", err), 1)
		}
		return true, nil
	}
	return false, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id int64) (bool, error) {
	return s.deleteRow(ctx, expenseSheet, id)
}

func (s *Store) DeleteIncome(ctx context.Context, id int64) (bool, error) {
	return s.deleteRow(ctx, incomeSheet, id)
}

func (s *Store) deleteRow(ctx context.Context, sheet string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.locate(ctx, sheet, id)
	if err != nil || row == 0 {
		return false, err
	}
	if err := s.client.DeleteRow(ctx, sheet, int64(row-1)); err != nil {
		return false, persistError(fmt.Errorf("failed to delete %s row: %w", sheet, err), 0)
	}
	return true, nil
}

func (s *Store) Close() error { return nil }

func expenseRow(id int64, e *entry.Expense) []any {
	return []any{
		id,
		e.Item,
		e.Category,
		e.Amount.String(),
		e.PaymentMode,
		deref(e.CardType),
		deref(e.BankName),
		deref(e.UPIProvider),
		e.PurchaseDate.Format(entry.DateLayout),
		e.Remarks,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func incomeRow(id int64, inc *entry.Income) []any {
	return []any{
		id,
		inc.Source,
		inc.Amount.String(),
		inc.IncomeDate.Format(entry.DateLayout),
		deref(inc.PayslipURL),
		inc.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// parseExpense reads a data row. Rows without a numeric id are ignored.
func parseExpense(row []any) (*entry.Expense, bool) {
	id, ok := cellID(row, 0)
	if !ok {
		return nil, false
	}
	e := &entry.Expense{
		ID:          id,
		Item:        cell(row, 1),
		Category:    cell(row, 2),
		Amount:      cellDecimal(row, 3),
		PaymentMode: cell(row, 4),
		CardType:    cellOrNil(row, 5),
		BankName:    cellOrNil(row, 6),
		UPIProvider: cellOrNil(row, 7),
		Remarks:     cell(row, 9),
	}
	e.PurchaseDate, _ = time.Parse(entry.DateLayout, cell(row, 8))
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, cell(row, 10))
	return e, true
}

func parseIncome(row []any) (*entry.Income, bool) {
	id, ok := cellID(row, 0)
	if !ok {
		return nil, false
	}
	inc := &entry.Income{
		ID:         id,
		Source:     cell(row, 1),
		Amount:     cellDecimal(row, 2),
		PayslipURL: cellOrNil(row, 4),
	}
	inc.IncomeDate, _ = time.Parse(entry.DateLayout, cell(row, 3))
	inc.CreatedAt, _ = time.Parse(time.RFC3339Nano, cell(row, 5))
	return inc, true
}

// cell renders a value as returned with UNFORMATTED_VALUE, where numbers
// arrive as float64.
func cell(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func cellOrNil(row []any, i int) *string {
	v := cell(row, i)
	if v == "" {
		return nil
	}
	return &v
}

func cellID(row []any, i int) (int64, bool) {
	id, err := strconv.ParseInt(cell(row, i), 10, 64)
	return id, err == nil && id > 0
}

func cellDecimal(row []any, i int) decimal.Decimal {
	d, err := decimal.NewFromString(cell(row, i))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// EnsureHeaders creates the Meta tab when missing and writes the header row
// of each tab that does not have one yet.
func (s *Store) EnsureHeaders(ctx context.Context) error {
	if err := s.client.EnsureSheet(ctx, metaSheet); err != nil {
		return fmt.Errorf("failed to create %s tab: %w", metaSheet, err)
	}
	tabs := []struct {
		name   string
		cols   string
		header []any
	}{
		{expenseSheet, expenseCols, ExpenseHeader},
		{incomeSheet, incomeCols, IncomeHeader},
		{metaSheet, metaCols, MetaHeader},
	}
	for _, tab := range tabs {
		rng := rowRange(tab.name, tab.cols, 1)
		rows, err := s.client.Get(ctx, rng)
		if err != nil {
			return fmt.Errorf("failed to read %s header: %w", tab.name, err)
		}
		if len(rows) > 0 && cell(rows[0], 0) != "" {
			continue
		}
		if err := s.client.Update(ctx, rng, tab.header); err != nil {
			return fmt.Errorf("failed to write %s header: %w", tab.name, err)
		}
	}
	return nil
}
