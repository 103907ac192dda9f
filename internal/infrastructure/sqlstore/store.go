package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"spendlog/internal/domain/entry"
)

// Store implements entry.Repository on a SQL database.
type Store struct {
	db *DB
}

var _ entry.Repository = (*Store)(nil)

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

const (
	insertExpenseSQL = `INSERT INTO expenses
		(item, category, amount, payment_mode, card_type, bank_name, upi_provider, purchase_date, remarks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertIncomeSQL = `INSERT INTO income
		(source, amount, income_date, payslip_url, created_at)
		VALUES (?, ?, ?, ?, ?)`

	selectExpensesSQL = `SELECT id, item, category, amount, payment_mode, card_type, bank_name, upi_provider,
		purchase_date, remarks, created_at
		FROM expenses
		ORDER BY created_at DESC, id DESC`

	selectIncomeSQL = `SELECT id, source, amount, income_date, payslip_url, created_at
		FROM income
		ORDER BY created_at DESC, id DESC`
)

// InsertExpenses writes the batch in one transaction. IDs are assigned only
// once the commit succeeded.
func (s *Store) InsertExpenses(ctx context.Context, expenses []*entry.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	tx, ctx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistError(fmt.Errorf("failed to begin transaction: %w", err), 0)
	}
	defer tx.Rollback()
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("spendlog.batch_size", len(expenses)))

	ids := make([]int64, len(expenses))
	for i, e := range expenses {
		id, err := tx.InsertID(ctx, insertExpenseSQL,
			e.Item, e.Category, e.Amount, e.PaymentMode,
			e.CardType, e.BankName, e.UPIProvider,
			e.PurchaseDate, e.Remarks, e.CreatedAt.UTC(),
		)
		if err != nil {
			return persistError(fmt.Errorf("failed to insert expense: %w", err), i+1)
		}
		ids[i] = id
	}

	if err := tx.Commit(); err != nil {
		return persistError(fmt.Errorf("failed to commit transaction: %w", err), 0)
	}

	for i, e := range expenses {
		e.ID = ids[i]
	}
	return nil
}

func (s *Store) InsertIncome(ctx context.Context, inc *entry.Income) error {
	tx, ctx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistError(fmt.Errorf("failed to begin transaction: %w", err), 0)
	}
	defer tx.Rollback()

	id, err := tx.InsertID(ctx, insertIncomeSQL,
		inc.Source, inc.Amount, inc.IncomeDate, inc.PayslipURL, inc.CreatedAt.UTC(),
	)
	if err != nil {
		return persistError(fmt.Errorf("failed to insert income: %w", err), 1)
	}

	if err := tx.Commit(); err != nil {
		return persistError(fmt.Errorf("failed to commit transaction: %w", err), 0)
	}

	inc.ID = id
	return nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]*entry.Expense, error) {
	rows, err := s.db.QueryContext(ctx, selectExpensesSQL)
	if err != nil {
		return nil, persistError(fmt.Errorf("failed to list expenses: %w", err), 0)
	}
	defer rows.Close()

	var expenses []*entry.Expense
	for rows.Next() {
		var e entry.Expense
		err := rows.Scan(
			&e.ID, &e.Item, &e.Category, &e.Amount, &e.PaymentMode,
			&e.CardType, &e.BankName, &e.UPIProvider,
			timeValue{&e.PurchaseDate}, &e.Remarks, timeValue{&e.CreatedAt},
		)
		if err != nil {
			return nil, persistError(fmt.Errorf("failed to scan expense: %w", err), 0)
		}
		e.PurchaseDate = civilDate(e.PurchaseDate)
		expenses = append(expenses, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, persistError(fmt.Errorf("error iterating expenses: %w", err), 0)
	}

	return expenses, nil
}

func (s *Store) ListIncome(ctx context.Context) ([]*entry.Income, error) {
	rows, err := s.db.QueryContext(ctx, selectIncomeSQL)
	if err != nil {
		return nil, persistError(fmt.Errorf("failed to list income: %w", err), 0)
	}
	defer rows.Close()

	var income []*entry.Income
	for rows.Next() {
		var inc entry.Income
		err := rows.Scan(
			&inc.ID, &inc.Source, &inc.Amount,
			timeValue{&inc.IncomeDate}, &inc.PayslipURL, timeValue{&inc.CreatedAt},
		)
		if err != nil {
			return nil, persistError(fmt.Errorf("failed to scan income: %w", err), 0)
		}
		inc.IncomeDate = civilDate(inc.IncomeDate)
		income = append(income, &inc)
	}

	if err := rows.Err(); err != nil {
		return nil, persistError(fmt.Errorf("error iterating income: %w", err), 0)
	}

	return income, nil
}

func (s *Store) UpdateExpense(ctx context.Context, id int64, p entry.UpdateExpenseParams) (bool, error) {
	query := `
		UPDATE expenses
		SET item = ?, amount = ?, payment_mode = ?,
		    card_type = ?, bank_name = ?, upi_provider = ?, remarks = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		p.Item, p.Amount, p.PaymentMode,
		p.Detail.CardType, p.Detail.BankName, p.Detail.UPIProvider, p.Remarks,
		id,
	)
	if err != nil {
		return false, persistError(fmt.Errorf("failed to update expense: %w", err), 1)
	}
	return affected(result)
}

func (s *Store) UpdateIncome(ctx context.Context, id int64, p entry.UpdateIncomeParams) (bool, error) {
	query := `UPDATE income SET source = ?, amount = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, p.Source, p.Amount, id)
	if err != nil {
		return false, persistError(fmt.Errorf("failed to update income: %w", err), 1)
	}
	return affected(result)
}

func (s *Store) DeleteExpense(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return false, persistError(fmt.Errorf("failed to delete expense: %w", err), 0)
	}
	return affected(result)
}

func (s *Store) DeleteIncome(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM income WHERE id = ?`, id)
	if err != nil {
		return false, persistError(fmt.Errorf("failed to delete income: %w", err), 0)
	}
	return affected(result)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func affected(result sql.Result) (bool, error) {
	rows, err := result.RowsAffected()
	if err != nil {
		return false, persistError(fmt.Errorf("failed to get affected rows: %w", err), 0)
	}
	return rows > 0, nil
}
