package entry

import (
	"context"
	"io"
)

// Repository is the persistence backend for entries. Implementations live in
// the infrastructure layer.
type Repository interface {
	// InsertExpenses stores the whole batch atomically and assigns IDs in
	// place. On failure nothing is stored and a *PersistError is returned.
	InsertExpenses(ctx context.Context, expenses []*Expense) error

	InsertIncome(ctx context.Context, income *Income) error

	// ListExpenses returns every expense, newest created_at first.
	ListExpenses(ctx context.Context) ([]*Expense, error)

	// ListIncome returns every income, newest created_at first.
	ListIncome(ctx context.Context) ([]*Income, error)

	// UpdateExpense reports false when no expense has the given id.
	UpdateExpense(ctx context.Context, id int64, params UpdateExpenseParams) (bool, error)

	UpdateIncome(ctx context.Context, id int64, params UpdateIncomeParams) (bool, error)

	// DeleteExpense reports whether a row was removed. Deleting an unknown id
	// is not an error.
	DeleteExpense(ctx context.Context, id int64) (bool, error)

	DeleteIncome(ctx context.Context, id int64) (bool, error)

	Close() error
}

// FileStore keeps uploaded payslips. Save returns the key the file is served
// under.
type FileStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, key string) error
}
