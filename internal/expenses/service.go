// Package expenses keeps the miscellaneous-expense ledger, independent of
// the catalog and the sale ledger.
package expenses

import (
	"log/slog"
	"strings"
	"time"

	"github.com/buteco-pos/buteco-pos/internal/platform/httpx"
	"github.com/buteco-pos/buteco-pos/internal/store"
)

var (
	// ErrExpenseNotFound indicates an unknown expense index.
	ErrExpenseNotFound = httpx.Wrap(httpx.ErrNotFound, "Despesa não encontrada")
	// ErrEmptyDescription rejects a blank description.
	ErrEmptyDescription = httpx.Wrap(httpx.ErrValidation, "Descrição é obrigatória")
	// ErrInvalidDate rejects malformed dates.
	ErrInvalidDate = httpx.Wrap(httpx.ErrValidation, "Formato de data inválido! Use DD/MM/AAAA HH:MM")
)

// Input carries the fields of a new or edited expense.
type Input struct {
	Date        string
	Description string
	Amount      float64
}

// Service coordinates expense operations over the shared store.
type Service struct {
	logger *slog.Logger
	store  *store.Store
	now    func() time.Time
}

// NewService builds Service.
func NewService(logger *slog.Logger, st *store.Store) *Service {
	return &Service{logger: logger, store: st, now: time.Now}
}

// List returns all expenses.
func (s *Service) List() []store.Expense {
	var out []store.Expense
	s.store.View(func(st *store.State) {
		out = make([]store.Expense, len(st.Expenses))
		copy(out, st.Expenses)
	})
	return out
}

// Add appends one expense. An empty date defaults to now.
func (s *Service) Add(in Input) (store.Expense, error) {
	exp, err := s.build(in)
	if err != nil {
		return store.Expense{}, err
	}
	err = s.store.Update(func(st *store.State) error {
		st.Expenses = append(st.Expenses, exp)
		return nil
	})
	if err != nil {
		return store.Expense{}, err
	}
	return exp, nil
}

// Edit replaces the expense at idx.
func (s *Service) Edit(idx int, in Input) (store.Expense, error) {
	exp, err := s.build(in)
	if err != nil {
		return store.Expense{}, err
	}
	err = s.store.Update(func(st *store.State) error {
		if idx < 0 || idx >= len(st.Expenses) {
			return ErrExpenseNotFound
		}
		st.Expenses[idx] = exp
		return nil
	})
	if err != nil {
		return store.Expense{}, err
	}
	return exp, nil
}

// Delete removes the expense at idx.
func (s *Service) Delete(idx int) (store.Expense, error) {
	var removed store.Expense
	err := s.store.Update(func(st *store.State) error {
		if idx < 0 || idx >= len(st.Expenses) {
			return ErrExpenseNotFound
		}
		removed = st.Expenses[idx]
		st.Expenses = append(st.Expenses[:idx], st.Expenses[idx+1:]...)
		return nil
	})
	if err != nil {
		return store.Expense{}, err
	}
	return removed, nil
}

func (s *Service) build(in Input) (store.Expense, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return store.Expense{}, ErrEmptyDescription
	}
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = s.now().Format(store.LayoutDateTime)
	} else if !validDate(date) {
		return store.Expense{}, ErrInvalidDate
	}
	return store.Expense{Date: date, Description: desc, Amount: in.Amount}, nil
}

func validDate(date string) bool {
	for _, layout := range []string{store.LayoutDateTime, store.LayoutDate} {
		if _, err := time.ParseInLocation(layout, date, time.Local); err == nil {
			return true
		}
	}
	return false
}
