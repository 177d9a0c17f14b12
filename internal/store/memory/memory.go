// Package memory provides an in-memory Persistence backend, used as the
// default backend and as the test double for the store.
package memory

import (
	"context"
	"sync"

	"lumina/internal/core"
	"lumina/internal/store"
)

type Backend struct {
	mu       sync.Mutex
	expenses []core.Expense
	budget   float64
	saves    int
}

func New() *Backend {
	return &Backend{}
}

// Seed replaces the held snapshot, for pre-populating tests.
func (b *Backend) Seed(s store.State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expenses = append([]core.Expense(nil), s.Expenses...)
	b.budget = s.Budget
}

func (b *Backend) Load(_ context.Context) (store.State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return store.State{
		Expenses: append([]core.Expense(nil), b.expenses...),
		Budget:   b.budget,
	}, nil
}

func (b *Backend) Save(_ context.Context, s store.State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expenses = append([]core.Expense(nil), s.Expenses...)
	b.budget = s.Budget
	b.saves++
	return nil
}

// Saves reports how many snapshots were written, so tests can assert that
// mutations persist immediately and no-ops do not.
func (b *Backend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}
