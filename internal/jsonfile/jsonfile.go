// Package jsonfile persists ledger snapshots to a single JSON file.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"lumina/internal/core"
	"lumina/internal/store"
)

type Backend struct {
	path string
}

// envelope is the on-disk shape. Field names mirror the legacy export keys
// so hand-migrated data keeps working; unknown or missing fields fall back
// to zero values on load.
type envelope struct {
	Expenses []record `json:"expenses"`
	Budget   float64  `json:"budget"`
}

type record struct {
	ID          int64   `json:"id"`
	Description string  `json:"desc"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Mode        string  `json:"mode,omitempty"`
	Recurring   bool    `json:"recurring,omitempty"`
}

func New(path string) (*Backend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Backend{path: path}, nil
}

// Load reads the snapshot. A missing file yields a zero state without
// error; a corrupt file is reported so the store can degrade to empty.
func (b *Backend) Load(ctx context.Context) (store.State, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return store.State{}, nil
	}
	if err != nil {
		return store.State{}, fmt.Errorf("read data file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return store.State{}, fmt.Errorf("parse data file: %w", err)
	}

	state := store.State{Budget: env.Budget}
	for _, r := range env.Expenses {
		e, err := r.toExpense()
		if err != nil {
			// One bad record does not poison the rest.
			slog.WarnContext(ctx, "Skipping unreadable expense record",
				"id", r.ID, "error", err)
			continue
		}
		state.Expenses = append(state.Expenses, e)
	}
	return state, nil
}

// Save writes the snapshot atomically via a temp file rename.
func (b *Backend) Save(_ context.Context, s store.State) error {
	env := envelope{Budget: s.Budget, Expenses: make([]record, 0, len(s.Expenses))}
	for _, e := range s.Expenses {
		env.Expenses = append(env.Expenses, record{
			ID:          e.ID,
			Description: e.Description,
			Amount:      e.Amount,
			Date:        e.Date.String(),
			Category:    string(e.Category),
			Mode:        string(e.Mode),
			Recurring:   e.Recurring,
		})
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp data file: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

func (r record) toExpense() (core.Expense, error) {
	d, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		ID:          r.ID,
		Description: r.Description,
		Amount:      r.Amount,
		Date:        d,
		Category:    core.Category(r.Category),
		Mode:        core.Mode(r.Mode),
		Recurring:   r.Recurring,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}
