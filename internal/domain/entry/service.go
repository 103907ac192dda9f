package entry

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"
)

// Service runs submissions through validation, building and persistence.
type Service struct {
	repo  Repository
	files FileStore
	now   func() time.Time
}

// NewService creates an entry service. now must return the current time in
// the configured zone. files may be nil when uploads are not accepted.
func NewService(repo Repository, files FileStore, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, files: files, now: now}
}

// SubmitSingleExpense validates, builds and stores one expense.
func (s *Service) SubmitSingleExpense(ctx context.Context, f ExpenseForm) (*Expense, error) {
	if err := missingError(ValidateSingleExpense(f)); err != nil {
		return nil, err
	}
	now := s.now()
	e, err := BuildSingleExpense(f, now)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = now
	if err := s.repo.InsertExpenses(ctx, []*Expense{e}); err != nil {
		return nil, asPersistError(err)
	}
	return e, nil
}

// SubmitBulkExpenses stores every non-blank row in one batch, or none of them.
func (s *Service) SubmitBulkExpenses(ctx context.Context, f BulkExpenseForm) ([]*Expense, error) {
	if err := ValidateBulkExpenses(f); err != nil {
		return nil, err
	}
	now := s.now()
	expenses, err := BuildBulkExpenses(f, now)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.CreatedAt = now
	}
	if err := s.repo.InsertExpenses(ctx, expenses); err != nil {
		return nil, asPersistError(err)
	}
	return expenses, nil
}

// SubmitIncome stores an income and its optional payslip. The payslip is
// written only after validation passed and removed again if the insert fails.
func (s *Service) SubmitIncome(ctx context.Context, f IncomeForm) (*Income, error) {
	if err := missingError(ValidateIncome(f)); err != nil {
		return nil, err
	}
	now := s.now()
	inc, err := BuildIncome(f, now)
	if err != nil {
		return nil, err
	}
	inc.CreatedAt = now

	var key string
	if f.Payslip != nil && s.files != nil {
		key, err = s.files.Save(ctx, f.Payslip.Filename, f.Payslip.Content)
		if err != nil {
			return nil, &PersistError{Kind: KindStoreError, Err: err}
		}
		u := payslipURL(f.Payslip.BaseURL, key)
		inc.PayslipURL = &u
	}

	if err := s.repo.InsertIncome(ctx, inc); err != nil {
		if key != "" {
			if rmErr := s.files.Remove(ctx, key); rmErr != nil {
				log.Printf("failed to remove orphaned payslip %s: %v", key, rmErr)
			}
		}
		return nil, asPersistError(err)
	}
	return inc, nil
}

func payslipURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/uploads/" + url.PathEscape(key)
}

// SubmitQuickExpense records a one-line expense dated today.
func (s *Service) SubmitQuickExpense(ctx context.Context, q QuickExpense) (*Expense, error) {
	if err := missingError(ValidateQuickExpense(q)); err != nil {
		return nil, err
	}
	now := s.now()
	e, err := BuildQuickExpense(q, now)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = now
	if err := s.repo.InsertExpenses(ctx, []*Expense{e}); err != nil {
		return nil, asPersistError(err)
	}
	return e, nil
}

func (s *Service) ListExpenses(ctx context.Context) ([]*Expense, error) {
	return s.repo.ListExpenses(ctx)
}

func (s *Service) ListIncome(ctx context.Context) ([]*Income, error) {
	return s.repo.ListIncome(ctx)
}

// UpdateExpense edits an existing expense. The purchase date is left as is.
func (s *Service) UpdateExpense(ctx context.Context, id int64, u ExpenseUpdate) error {
	if err := missingError(ValidateExpenseUpdate(u)); err != nil {
		return err
	}
	params, err := BuildExpenseUpdate(u)
	if err != nil {
		return err
	}
	found, err := s.repo.UpdateExpense(ctx, id, params)
	if err != nil {
		return asPersistError(err)
	}
	if !found {
		return ErrExpenseNotFound
	}
	return nil
}

// UpdateIncome edits an existing income. The income date is left as is.
func (s *Service) UpdateIncome(ctx context.Context, id int64, u IncomeUpdate) error {
	if err := missingError(ValidateIncomeUpdate(u)); err != nil {
		return err
	}
	params, err := BuildIncomeUpdate(u)
	if err != nil {
		return err
	}
	found, err := s.repo.UpdateIncome(ctx, id, params)
	if err != nil {
		return asPersistError(err)
	}
	if !found {
		return ErrIncomeNotFound
	}
	return nil
}

// DeleteExpense removes an expense. Unknown ids succeed.
func (s *Service) DeleteExpense(ctx context.Context, id int64) error {
	if _, err := s.repo.DeleteExpense(ctx, id); err != nil {
		return asPersistError(err)
	}
	return nil
}

// DeleteIncome removes an income. Unknown ids succeed.
func (s *Service) DeleteIncome(ctx context.Context, id int64) error {
	if _, err := s.repo.DeleteIncome(ctx, id); err != nil {
		return asPersistError(err)
	}
	return nil
}
