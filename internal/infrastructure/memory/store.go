// Package memory is an entry.Repository kept in process memory. It backs the
// bot when no database is configured and the HTTP tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"spendlog/internal/domain/entry"
)

type Store struct {
	mu       sync.Mutex
	expenses []entry.Expense
	income   []entry.Income
	nextID   int64
	closed   bool
}

var _ entry.Repository = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) check() error {
	if s.closed {
		return &entry.PersistError{Kind: entry.KindStoreUnavailable}
	}
	return nil
}

// InsertExpenses appends the batch under a single lock, so readers see all of
// it or none of it.
func (s *Store) InsertExpenses(ctx context.Context, expenses []*entry.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	for _, e := range expenses {
		s.nextID++
		e.ID = s.nextID
		s.expenses = append(s.expenses, clone(*e))
	}
	return nil
}

func (s *Store) InsertIncome(ctx context.Context, inc *entry.Income) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}

	s.nextID++
	inc.ID = s.nextID
	stored := *inc
	stored.PayslipURL = copyStr(inc.PayslipURL)
	s.income = append(s.income, stored)
	return nil
}

func (s *Store) ListExpenses(ctx context.Context) ([]*entry.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	out := make([]*entry.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		c := clone(e)
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) ListIncome(ctx context.Context) ([]*entry.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}

	out := make([]*entry.Income, 0, len(s.income))
	for _, inc := range s.income {
		c := inc
		c.PayslipURL = copyStr(inc.PayslipURL)
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateExpense(ctx context.Context, id int64, p entry.UpdateExpenseParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return false, err
	}

	for i := range s.expenses {
		e := &s.expenses[i]
		if e.ID != id {
			continue
		}
		e.Item = p.Item
		e.Amount = p.Amount
		e.PaymentMode = p.PaymentMode
		e.CardType = copyStr(p.Detail.CardType)
		e.BankName = copyStr(p.Detail.BankName)
		e.UPIProvider = copyStr(p.Detail.UPIProvider)
		e.Remarks = p.Remarks
		return true, nil
	}
	return false, nil
}

func (s *Store) UpdateIncome(ctx context.Context, id int64, p entry.UpdateIncomeParams) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return false, err
	}

	for i := range s.income {
		if s.income[i].ID == id {
			s.income[i].Source = p.Source
			s.income[i].Amount = p.Amount
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return false, err
	}

	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) DeleteIncome(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return false, err
	}

	for i := range s.income {
		if s.income[i].ID == id {
			s.income = append(s.income[:i], s.income[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// Close makes every later call fail with store_unavailable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func clone(e entry.Expense) entry.Expense {
	e.CardType = copyStr(e.CardType)
	e.BankName = copyStr(e.BankName)
	e.UPIProvider = copyStr(e.UPIProvider)
	return e
}

func copyStr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
