package storage

import (
	"context"
	"path/filepath"
	"testing"

	"lumina/internal/core"
	"lumina/internal/store"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "lumina.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestEmptyDatabaseLoadsZeroState(t *testing.T) {
	repo := openTestRepo(t)
	state, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.Expenses) != 0 || state.Budget != 0 {
		t.Fatalf("fresh database should yield zero state: %+v", state)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	d1, _ := core.ParseDate("2024-03-01")
	d2, _ := core.ParseDate("2024-03-01")
	want := store.State{
		Budget: 1200.50,
		Expenses: []core.Expense{
			{ID: 10, Description: "Rent", Amount: 5000, Date: d1, Category: core.Other, Mode: core.Personal, Recurring: true},
			{ID: 11, Description: "Bulbs", Amount: 12.75, Date: d2, Category: core.Electricity, Mode: core.Business},
			{ID: 12, Description: "Legacy", Amount: 3, Date: d2, Category: core.Milk, Mode: ""},
		},
	}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Budget != want.Budget {
		t.Fatalf("budget: got %v, want %v", got.Budget, want.Budget)
	}
	if len(got.Expenses) != len(want.Expenses) {
		t.Fatalf("got %d expenses, want %d", len(got.Expenses), len(want.Expenses))
	}
	// Insertion order must survive: same-date entries rely on it for the
	// recent-list tie-break.
	for i := range want.Expenses {
		if got.Expenses[i] != want.Expenses[i] {
			t.Fatalf("expense %d mismatch:\n got  %+v\n want %+v", i, got.Expenses[i], want.Expenses[i])
		}
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	d, _ := core.ParseDate("2024-01-01")
	first := store.State{Expenses: []core.Expense{
		{ID: 1, Description: "a", Amount: 1, Date: d, Category: core.Milk},
		{ID: 2, Description: "b", Amount: 2, Date: d, Category: core.Gas},
	}}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save first: %v", err)
	}

	second := store.State{Budget: 99, Expenses: []core.Expense{
		{ID: 2, Description: "b", Amount: 2, Date: d, Category: core.Gas},
	}}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Expenses) != 1 || got.Expenses[0].ID != 2 {
		t.Fatalf("snapshot not replaced: %+v", got.Expenses)
	}
	if got.Budget != 99 {
		t.Fatalf("budget: got %v, want 99", got.Budget)
	}
}
