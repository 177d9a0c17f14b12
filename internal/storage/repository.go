// Package storage implements the SQLite-backed Persistence port. Snapshots
// are written transactionally as a whole; at personal-finance scale the
// full rewrite per mutation is cheaper than keeping granular statements in
// sync with the snapshot contract.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"lumina/internal/core"
	"lumina/internal/store"

	_ "modernc.org/sqlite"
)

const budgetKey = "budget"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements store.Persistence.
func (r *SQLiteRepository) Load(ctx context.Context) (store.State, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount, date, category, mode, recurring
		 FROM expenses ORDER BY position`)
	if err != nil {
		return store.State{}, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var state store.State
	for rows.Next() {
		var (
			e         core.Expense
			date      string
			category  string
			mode      string
			recurring int64
		)
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &date, &category, &mode, &recurring); err != nil {
			return store.State{}, fmt.Errorf("scan expense: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return store.State{}, fmt.Errorf("expense %d: %w", e.ID, err)
		}
		e.Date = d
		e.Category = core.Category(category)
		e.Mode = core.Mode(mode)
		e.Recurring = recurring != 0
		state.Expenses = append(state.Expenses, e)
	}
	if err := rows.Err(); err != nil {
		return store.State{}, fmt.Errorf("iterate expenses: %w", err)
	}

	budget, err := r.loadBudget(ctx)
	if err != nil {
		return store.State{}, err
	}
	state.Budget = budget

	return state, nil
}

// Save implements store.Persistence: replaces the stored snapshot in one
// transaction, preserving insertion order through the position column.
func (r *SQLiteRepository) Save(ctx context.Context, s store.State) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO expenses (id, description, amount, date, category, mode, recurring, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	for i, e := range s.Expenses {
		recurring := 0
		if e.Recurring {
			recurring = 1
		}
		if _, err := insert.ExecContext(ctx,
			e.ID, e.Description, e.Amount, e.Date.String(),
			string(e.Category), string(e.Mode), recurring, i); err != nil {
			return fmt.Errorf("insert expense %d: %w", e.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		budgetKey, strconv.FormatFloat(s.Budget, 'f', -1, 64)); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) loadBudget(ctx context.Context) (float64, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, budgetKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query budget: %w", err)
	}
	budget, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Unparseable budget degrades to disabled, not to a load failure.
		return 0, nil
	}
	return budget, nil
}
