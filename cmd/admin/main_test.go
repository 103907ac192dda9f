package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlog/internal/domain/entry"
	"spendlog/internal/infrastructure/backend"
	"spendlog/internal/infrastructure/memory"
	"spendlog/internal/shared/config"
)

func seededOpener(t *testing.T) storeOpener {
	t.Helper()

	store := memory.NewStore()
	ctx := context.Background()
	created := time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.InsertExpenses(ctx, []*entry.Expense{
		{Item: "Groceries", Category: "Food", Amount: decimal.RequireFromString("1500"), PaymentMode: entry.ModeCash,
			PurchaseDate: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), CreatedAt: created},
		{Item: "Rent", Category: "Housing", Amount: decimal.RequireFromString("20000"), PaymentMode: entry.ModeCash,
			PurchaseDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), CreatedAt: created},
	}))
	require.NoError(t, store.InsertIncome(ctx, &entry.Income{
		Source: "Salary", Amount: decimal.RequireFromString("50000"),
		IncomeDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), CreatedAt: created,
	}))

	cfg := &config.Config{Store: config.StoreConfig{Backend: config.BackendMemory}, Timezone: "UTC"}
	return func(ctx context.Context) (*backend.Stores, *config.Config, error) {
		return &backend.Stores{Entries: store}, cfg, nil
	}
}

func execute(t *testing.T, open storeOpener, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExport_StdoutFiltered(t *testing.T) {
	out, err := execute(t, seededOpener(t), "export", "expenses", "--month", "3", "--year", "2024", "--out", "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Date,Item,Category,Amount"))
	assert.Contains(t, lines[1], "Groceries")
	assert.NotContains(t, out, "Rent")
}

func TestExport_DefaultFilename(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = execute(t, seededOpener(t), "export", "income", "--format", "pdf")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "Income_All_Data.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestExport_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown kind", []string{"export", "transfers"}},
		{"bad month", []string{"export", "expenses", "--month", "13"}},
		{"bad format", []string{"export", "expenses", "--format", "xlsx"}},
		{"missing kind", []string{"export"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, seededOpener(t), tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestSummary(t *testing.T) {
	out, err := execute(t, seededOpener(t), "summary", "--month", "3", "--year", "2024")
	require.NoError(t, err)

	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "50000.00")
	assert.Contains(t, out, "1500.00")
	assert.Contains(t, out, "48500.00")
	assert.Contains(t, out, "97.0%")
	assert.NotContains(t, out, "Housing")
}

func TestMigrate_Memory(t *testing.T) {
	out, err := execute(t, seededOpener(t), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Preparing memory store")
	assert.Contains(t, out, "Nothing to prepare")
}
