package sqlstore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlog/internal/domain/entry"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, SQLite, SQLiteDSN(filepath.Join(t.TempDir(), "spendlog.db")))
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))

	store := NewStore(db)
	t.Cleanup(func() { store.Close() })
	return store
}

func ptr(s string) *string { return &s }

var created = time.Date(2024, time.March, 2, 0, 30, 0, 0, time.FixedZone("IST", 19800))

func expense(item, amount string, createdAt time.Time) *entry.Expense {
	return &entry.Expense{
		Item:         item,
		Category:     "Food",
		Amount:       decimal.RequireFromString(amount),
		PaymentMode:  entry.ModeCash,
		PurchaseDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:    createdAt,
	}
}

func TestInsertAndListExpenses(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := []*entry.Expense{expense("Milk", "30", created), expense("Bread", "1250.50", created)}
	require.NoError(t, store.InsertExpenses(ctx, first))
	assert.NotZero(t, first[0].ID)
	assert.Greater(t, first[1].ID, first[0].ID)

	card := expense("Tv", "45000", created.Add(time.Minute))
	card.PaymentMode = entry.ModeCard
	card.CardType = ptr("Credit")
	card.BankName = ptr("Hdfc")
	card.Remarks = "emi"
	require.NoError(t, store.InsertExpenses(ctx, []*entry.Expense{card}))

	got, err := store.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// newest first, ties broken by id
	assert.Equal(t, []string{"Tv", "Bread", "Milk"}, []string{got[0].Item, got[1].Item, got[2].Item})

	tv := got[0]
	assert.Equal(t, "Credit", *tv.CardType)
	assert.Equal(t, "Hdfc", *tv.BankName)
	assert.Nil(t, tv.UPIProvider)
	assert.Equal(t, "emi", tv.Remarks)
	assert.True(t, tv.CreatedAt.Equal(card.CreatedAt))
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), tv.PurchaseDate)

	assert.True(t, decimal.RequireFromString("1250.50").Equal(got[1].Amount))
	assert.Nil(t, got[1].CardType)
	assert.Nil(t, got[1].BankName)
}

func TestInsertExpensesRollsBackWholeBatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	batch := []*entry.Expense{
		expense("Milk", "30", created),
		expense(strings.Repeat("x", 300), "40", created),
		expense("Eggs", "60", created),
	}

	err := store.InsertExpenses(ctx, batch)

	var perr *entry.PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, entry.KindConstraintViolation, perr.Kind)
	assert.Equal(t, 2, perr.Row)
	for _, e := range batch {
		assert.Zero(t, e.ID)
	}

	got, err := store.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdateExpense(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	e := expense("Milk", "30", created)
	require.NoError(t, store.InsertExpenses(ctx, []*entry.Expense{e}))

	found, err := store.UpdateExpense(ctx, e.ID, entry.UpdateExpenseParams{
		Item:        "Milk powder",
		Amount:      decimal.RequireFromString("120"),
		PaymentMode: entry.ModeUPI,
		Detail:      entry.PaymentDetail{UPIProvider: ptr("Gpay"), BankName: ptr("Sbi")},
		Remarks:     "bulk",
	})
	require.NoError(t, err)
	assert.True(t, found)

	got, err := store.ListExpenses(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Milk powder", got[0].Item)
	assert.Equal(t, entry.ModeUPI, got[0].PaymentMode)
	assert.Equal(t, "Gpay", *got[0].UPIProvider)
	assert.Nil(t, got[0].CardType)
	assert.Equal(t, e.PurchaseDate, got[0].PurchaseDate)

	found, err = store.UpdateExpense(ctx, e.ID+100, entry.UpdateExpenseParams{Item: "x", PaymentMode: entry.ModeCash})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteExpenseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	e := expense("Milk", "30", created)
	require.NoError(t, store.InsertExpenses(ctx, []*entry.Expense{e}))

	removed, err := store.DeleteExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.DeleteExpense(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestIncomeLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	withSlip := &entry.Income{
		Source:     "Salary",
		Amount:     decimal.RequireFromString("85000"),
		IncomeDate: time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		PayslipURL: ptr("http://localhost:5000/uploads/slip.pdf"),
		CreatedAt:  created,
	}
	plain := &entry.Income{
		Source:     "Interest",
		Amount:     decimal.RequireFromString("312.40"),
		IncomeDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:  created.Add(time.Hour),
	}
	require.NoError(t, store.InsertIncome(ctx, withSlip))
	require.NoError(t, store.InsertIncome(ctx, plain))

	got, err := store.ListIncome(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Interest", got[0].Source)
	assert.Nil(t, got[0].PayslipURL)
	assert.Equal(t, *withSlip.PayslipURL, *got[1].PayslipURL)
	assert.Equal(t, withSlip.IncomeDate, got[1].IncomeDate)

	found, err := store.UpdateIncome(ctx, plain.ID, entry.UpdateIncomeParams{Source: "Fd interest", Amount: decimal.NewFromInt(400)})
	require.NoError(t, err)
	assert.True(t, found)

	removed, err := store.DeleteIncome(ctx, withSlip.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	got, err = store.ListIncome(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Fd interest", got[0].Source)
	assert.True(t, decimal.NewFromInt(400).Equal(got[0].Amount))
}
