package entry

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	InsertExpensesFunc func(ctx context.Context, expenses []*Expense) error
	InsertIncomeFunc   func(ctx context.Context, income *Income) error
	ListExpensesFunc   func(ctx context.Context) ([]*Expense, error)
	ListIncomeFunc     func(ctx context.Context) ([]*Income, error)
	UpdateExpenseFunc  func(ctx context.Context, id int64, params UpdateExpenseParams) (bool, error)
	UpdateIncomeFunc   func(ctx context.Context, id int64, params UpdateIncomeParams) (bool, error)
	DeleteExpenseFunc  func(ctx context.Context, id int64) (bool, error)
	DeleteIncomeFunc   func(ctx context.Context, id int64) (bool, error)

	insertCalls int
}

func (m *MockRepository) InsertExpenses(ctx context.Context, expenses []*Expense) error {
	m.insertCalls++
	if m.InsertExpensesFunc != nil {
		return m.InsertExpensesFunc(ctx, expenses)
	}
	for i, e := range expenses {
		e.ID = int64(i + 1)
	}
	return nil
}

func (m *MockRepository) InsertIncome(ctx context.Context, income *Income) error {
	m.insertCalls++
	if m.InsertIncomeFunc != nil {
		return m.InsertIncomeFunc(ctx, income)
	}
	income.ID = 1
	return nil
}

func (m *MockRepository) ListExpenses(ctx context.Context) ([]*Expense, error) {
	if m.ListExpensesFunc != nil {
		return m.ListExpensesFunc(ctx)
	}
	return nil, nil
}

func (m *MockRepository) ListIncome(ctx context.Context) ([]*Income, error) {
	if m.ListIncomeFunc != nil {
		return m.ListIncomeFunc(ctx)
	}
	return nil, nil
}

func (m *MockRepository) UpdateExpense(ctx context.Context, id int64, params UpdateExpenseParams) (bool, error) {
	if m.UpdateExpenseFunc != nil {
		return m.UpdateExpenseFunc(ctx, id, params)
	}
	return true, nil
}

func (m *MockRepository) UpdateIncome(ctx context.Context, id int64, params UpdateIncomeParams) (bool, error) {
	if m.UpdateIncomeFunc != nil {
		return m.UpdateIncomeFunc(ctx, id, params)
	}
	return true, nil
}

func (m *MockRepository) DeleteExpense(ctx context.Context, id int64) (bool, error) {
	if m.DeleteExpenseFunc != nil {
		return m.DeleteExpenseFunc(ctx, id)
	}
	return false, nil
}

func (m *MockRepository) DeleteIncome(ctx context.Context, id int64) (bool, error) {
	if m.DeleteIncomeFunc != nil {
		return m.DeleteIncomeFunc(ctx, id)
	}
	return false, nil
}

func (m *MockRepository) Close() error { return nil }

// mockFileStore records saved and removed keys.
type mockFileStore struct {
	saved   map[string]string
	removed []string
	saveErr error
}

func (f *mockFileStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.saved == nil {
		f.saved = map[string]string{}
	}
	key := "20240302003000_abcd1234_" + filename
	f.saved[key] = string(b)
	return key, nil
}

func (f *mockFileStore) Remove(ctx context.Context, key string) error {
	f.removed = append(f.removed, key)
	delete(f.saved, key)
	return nil
}

func fixedClock() time.Time { return lateNight }

func TestSubmitSingleExpense(t *testing.T) {
	repo := &MockRepository{}
	svc := NewService(repo, nil, fixedClock)

	e, err := svc.SubmitSingleExpense(context.Background(), ExpenseForm{
		Item: "tea", Category: "food", Amount: "20", PaymentMode: "cash",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), e.ID)
	assert.Equal(t, lateNight, e.CreatedAt)
	assert.Equal(t, ModeCash, e.PaymentMode)
}

func TestSubmitSingleExpenseValidationSkipsStore(t *testing.T) {
	repo := &MockRepository{}
	svc := NewService(repo, nil, fixedClock)

	_, err := svc.SubmitSingleExpense(context.Background(), ExpenseForm{Item: "tea", PaymentMode: "Card"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{LabelCategory, LabelAmount, LabelCardType, LabelBankName}, verr.Missing)
	assert.Zero(t, repo.insertCalls)
}

func TestSubmitBulkExpensesIsOneBatch(t *testing.T) {
	var batches [][]*Expense
	repo := &MockRepository{
		InsertExpensesFunc: func(ctx context.Context, expenses []*Expense) error {
			batches = append(batches, expenses)
			return nil
		},
	}
	svc := NewService(repo, nil, fixedClock)

	got, err := svc.SubmitBulkExpenses(context.Background(), cashBulk(
		BulkRow{Item: "milk", Category: "food", Amount: "30"},
		BulkRow{},
		BulkRow{Item: "bread", Category: "food", Amount: "40"},
	))
	require.NoError(t, err)

	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 2)
	assert.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, lateNight, e.CreatedAt)
	}
}

func TestSubmitBulkExpensesParseErrorSkipsStore(t *testing.T) {
	repo := &MockRepository{}
	svc := NewService(repo, nil, fixedClock)

	_, err := svc.SubmitBulkExpenses(context.Background(), cashBulk(
		BulkRow{Item: "milk", Category: "food", Amount: "30"},
		BulkRow{Item: "bread", Category: "food", Amount: "forty"},
	))

	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Zero(t, repo.insertCalls)
}

func TestSubmitBulkExpensesPersistErrors(t *testing.T) {
	t.Run("typed error passes through", func(t *testing.T) {
		repo := &MockRepository{
			InsertExpensesFunc: func(ctx context.Context, expenses []*Expense) error {
				return &PersistError{Kind: KindConstraintViolation, Row: 2, Err: errors.New("check failed")}
			},
		}
		svc := NewService(repo, nil, fixedClock)

		_, err := svc.SubmitBulkExpenses(context.Background(), cashBulk(
			BulkRow{Item: "a", Category: "b", Amount: "1"},
			BulkRow{Item: "c", Category: "d", Amount: "2"},
		))

		var perr *PersistError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, KindConstraintViolation, perr.Kind)
		assert.Equal(t, 2, perr.Row)
		assert.NotContains(t, err.Error(), "check failed")
	})

	t.Run("untyped error becomes store_error", func(t *testing.T) {
		repo := &MockRepository{
			InsertExpensesFunc: func(ctx context.Context, expenses []*Expense) error {
				return errors.New("boom")
			},
		}
		svc := NewService(repo, nil, fixedClock)

		_, err := svc.SubmitSingleExpense(context.Background(), ExpenseForm{
			Item: "a", Category: "b", Amount: "1", PaymentMode: "Cash",
		})

		var perr *PersistError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, KindStoreError, perr.Kind)
	})
}

func TestSubmitIncomeWithPayslip(t *testing.T) {
	repo := &MockRepository{}
	files := &mockFileStore{}
	svc := NewService(repo, files, fixedClock)

	inc, err := svc.SubmitIncome(context.Background(), IncomeForm{
		Source: "salary",
		Amount: "50,000",
		Payslip: &Upload{
			Filename: "march.pdf",
			Content:  strings.NewReader("%PDF"),
			BaseURL:  "https://money.example.com/",
		},
	})
	require.NoError(t, err)

	require.NotNil(t, inc.PayslipURL)
	assert.Equal(t, "https://money.example.com/uploads/20240302003000_abcd1234_march.pdf", *inc.PayslipURL)
	assert.Len(t, files.saved, 1)
}

func TestSubmitIncomeRemovesPayslipWhenInsertFails(t *testing.T) {
	repo := &MockRepository{
		InsertIncomeFunc: func(ctx context.Context, income *Income) error {
			return &PersistError{Kind: KindStoreUnavailable, Err: errors.New("dial tcp: refused")}
		},
	}
	files := &mockFileStore{}
	svc := NewService(repo, files, fixedClock)

	_, err := svc.SubmitIncome(context.Background(), IncomeForm{
		Source:  "salary",
		Amount:  "100",
		Payslip: &Upload{Filename: "p.pdf", Content: strings.NewReader("x")},
	})

	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindStoreUnavailable, perr.Kind)
	assert.Equal(t, []string{"20240302003000_abcd1234_p.pdf"}, files.removed)
	assert.Empty(t, files.saved)
}

func TestSubmitIncomeValidationSkipsUpload(t *testing.T) {
	files := &mockFileStore{}
	svc := NewService(&MockRepository{}, files, fixedClock)

	_, err := svc.SubmitIncome(context.Background(), IncomeForm{
		Source:  "salary",
		Payslip: &Upload{Filename: "p.pdf", Content: strings.NewReader("x")},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, files.saved)
}

func TestSubmitQuickExpense(t *testing.T) {
	svc := NewService(&MockRepository{}, nil, fixedClock)

	e, err := svc.SubmitQuickExpense(context.Background(), QuickExpense{Item: "auto", Amount: "60", PaymentMode: "upi"})
	require.NoError(t, err)

	assert.Equal(t, "Auto", e.Item)
	assert.Equal(t, DefaultCategory, e.Category)
	assert.Equal(t, ModeUPI, e.PaymentMode)
	assert.Nil(t, e.UPIProvider)
}

func TestUpdateExpense(t *testing.T) {
	var gotID int64
	var gotParams UpdateExpenseParams
	repo := &MockRepository{
		UpdateExpenseFunc: func(ctx context.Context, id int64, params UpdateExpenseParams) (bool, error) {
			gotID, gotParams = id, params
			return true, nil
		},
	}
	svc := NewService(repo, nil, fixedClock)

	err := svc.UpdateExpense(context.Background(), 7, ExpenseUpdate{Item: "rent", Amount: "1,000", PaymentMode: "Cash", BankName: "hdfc"})
	require.NoError(t, err)

	assert.Equal(t, int64(7), gotID)
	assert.Equal(t, "Rent", gotParams.Item)
	assert.Nil(t, gotParams.Detail.BankName)
}

func TestUpdateNotFound(t *testing.T) {
	repo := &MockRepository{
		UpdateExpenseFunc: func(ctx context.Context, id int64, params UpdateExpenseParams) (bool, error) {
			return false, nil
		},
		UpdateIncomeFunc: func(ctx context.Context, id int64, params UpdateIncomeParams) (bool, error) {
			return false, nil
		},
	}
	svc := NewService(repo, nil, fixedClock)

	err := svc.UpdateExpense(context.Background(), 99, ExpenseUpdate{Item: "x", Amount: "1"})
	assert.ErrorIs(t, err, ErrExpenseNotFound)

	err = svc.UpdateIncome(context.Background(), 99, IncomeUpdate{Source: "x", Amount: "1"})
	assert.ErrorIs(t, err, ErrIncomeNotFound)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc := NewService(&MockRepository{}, nil, fixedClock)

	assert.NoError(t, svc.DeleteExpense(context.Background(), 42))
	assert.NoError(t, svc.DeleteIncome(context.Background(), 42))
}
