// Package store holds the session state of the ledger: the ordered expense
// collection, the active mode, and the budget ceiling. Durability goes
// through an injected Persistence port so the store stays testable without
// a real backend.
package store

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"lumina/internal/core"
)

// State is the snapshot shape exchanged with a Persistence backend. The
// active mode is deliberately absent: it is session-only and resets to
// Personal on every load.
type State struct {
	Expenses []core.Expense
	Budget   float64
}

// Persistence loads and saves full state snapshots. Implementations exist
// for memory, a JSON file, and SQLite; the dataset is small enough that
// snapshot semantics beat granular writes.
type Persistence interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, s State) error
}

// Store is the single owner of ledger state. Mutations persist immediately;
// a failed save keeps the in-memory update and is logged, not retried.
type Store struct {
	mu       sync.Mutex
	backend  Persistence
	expenses []core.Expense
	mode     core.Mode
	budget   float64

	// One-shot markers consumed by the view collaborators.
	rolloverCount int
	lastAdded     string
}

func New(backend Persistence) *Store {
	return &Store{
		backend: backend,
		mode:    core.Personal,
	}
}

// Load reads the persisted snapshot. It fails soft: absent or corrupt data
// degrades to an empty collection and zero budget, never an error.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.backend.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Persisted state unreadable, starting empty", "error", err)
		s.expenses = nil
		s.budget = 0
		return
	}
	s.expenses = state.Expenses
	s.budget = state.Budget
}

// Add validates and appends a fully-formed expense, then persists.
func (s *Store) Add(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	s.persist(ctx)
	return nil
}

// AddBatch appends several expenses and persists once. Used by rollover and
// CSV import; entries are assumed pre-validated and pre-deduplicated.
func (s *Store) AddBatch(ctx context.Context, entries []core.Expense) {
	if len(entries) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, entries...)
	s.persist(ctx)
}

// Remove deletes the entry with the given id permanently. Absent ids are a
// no-op; nothing is persisted in that case.
func (s *Store) Remove(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.expenses {
		if e.ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// SetMode switches the active view. Session-only: the mode is not persisted
// and resets to Personal on reload.
func (s *Store) SetMode(m core.Mode) {
	if !m.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

func (s *Store) Mode() core.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetBudget updates the budget ceiling and persists. Negative or
// non-finite input degrades to zero (budget disabled).
func (s *Store) SetBudget(ctx context.Context, v float64) {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budget = v
	s.persist(ctx)
}

func (s *Store) Budget() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget
}

// All returns a copy of the full collection in insertion order.
func (s *Store) All() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out
}

// Filtered returns the current-mode view of the collection.
func (s *Store) Filtered() []core.Expense {
	s.mu.Lock()
	mode := s.mode
	all := make([]core.Expense, len(s.expenses))
	copy(all, s.expenses)
	s.mu.Unlock()
	return core.FilterByMode(all, mode)
}

// IDs returns the set of ids currently in the collection.
func (s *Store) IDs() map[int64]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[int64]bool, len(s.expenses))
	for _, e := range s.expenses {
		ids[e.ID] = true
	}
	return ids
}

// RaiseRolloverNotice records that reconciliation created entries, for a
// one-time UI notification.
func (s *Store) RaiseRolloverNotice(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolloverCount = count
}

// ConsumeRolloverNotice returns and clears the pending notice.
func (s *Store) ConsumeRolloverNotice() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := s.rolloverCount
	s.rolloverCount = 0
	return count, count > 0
}

// MarkAdded records the date of a manual add so the next calendar render
// can pulse that day exactly once.
func (s *Store) MarkAdded(date core.Date) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAdded = date.String()
}

// ConsumeLastAdded returns and clears the last-added marker.
func (s *Store) ConsumeLastAdded() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	date := s.lastAdded
	s.lastAdded = ""
	return date, date != ""
}

// persist writes the current snapshot. Save failures are logged and
// swallowed: the in-memory state stays authoritative for the session.
func (s *Store) persist(ctx context.Context) {
	state := State{Expenses: s.expenses, Budget: s.budget}
	if err := s.backend.Save(ctx, state); err != nil {
		slog.WarnContext(ctx, "Failed to persist ledger state", "error", err,
			"expenses", len(s.expenses))
	}
}
