package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"lumina/internal/core"
	"lumina/internal/store"
)

// ExpenseInput carries a user submission before an ID and mode are
// assigned.
type ExpenseInput struct {
	Description string
	Amount      float64
	Date        core.Date
	Category    core.Category
	Recurring   bool
}

// ExpenseService applies user mutations to the store: entries are stamped
// with the active mode and a timestamp-derived ID, and the last-added
// marker is raised for the calendar pulse.
type ExpenseService struct {
	store *store.Store
}

func NewExpenseService(s *store.Store) *ExpenseService {
	return &ExpenseService{store: s}
}

// Create records a new expense under the active mode and returns it.
// Non-finite amounts degrade to zero rather than rejecting the submission.
func (s *ExpenseService) Create(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	amount := in.Amount
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		amount = 0
	}

	e := core.Expense{
		ID:          core.NewID(time.Now()),
		Description: in.Description,
		Amount:      amount,
		Date:        in.Date,
		Category:    in.Category,
		Mode:        s.store.Mode(),
		Recurring:   in.Recurring,
	}

	if err := s.store.Add(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	// Set before any view recomputes, cleared by the first calendar read.
	s.store.MarkAdded(e.Date)

	return e, nil
}

// Delete removes an expense permanently. Unknown ids are a no-op.
func (s *ExpenseService) Delete(ctx context.Context, id int64) {
	s.store.Remove(ctx, id)
}
