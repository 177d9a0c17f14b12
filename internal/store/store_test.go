package store_test

import (
	"context"
	"errors"
	"testing"

	"lumina/internal/core"
	"lumina/internal/store"
	"lumina/internal/store/memory"
)

type failingBackend struct{}

func (failingBackend) Load(context.Context) (store.State, error) {
	return store.State{}, errors.New("corrupt data")
}

func (failingBackend) Save(context.Context, store.State) error {
	return errors.New("disk full")
}

func expense(id int64, desc string, amount float64, date string, mode core.Mode) core.Expense {
	d, _ := core.ParseDate(date)
	return core.Expense{ID: id, Description: desc, Amount: amount, Date: d, Category: core.Other, Mode: mode}
}

func TestLoadFailsSoft(t *testing.T) {
	s := store.New(failingBackend{})
	s.Load(context.Background())

	if len(s.All()) != 0 {
		t.Fatalf("corrupt backend should yield empty collection")
	}
	if s.Budget() != 0 {
		t.Fatalf("corrupt backend should yield zero budget")
	}
	if s.Mode() != core.Personal {
		t.Fatalf("mode should default to Personal")
	}
}

func TestAddPersistsImmediately(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	s := store.New(backend)
	s.Load(ctx)

	if err := s.Add(ctx, expense(1, "milk", 10, "2024-01-05", core.Personal)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if backend.Saves() != 1 {
		t.Fatalf("expected 1 save, got %d", backend.Saves())
	}

	reloaded := store.New(backend)
	reloaded.Load(ctx)
	if len(reloaded.All()) != 1 {
		t.Fatalf("expense did not survive reload")
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	s := store.New(backend)

	bad := expense(1, "", 10, "2024-01-05", core.Personal)
	if err := s.Add(ctx, bad); err == nil {
		t.Fatalf("expected validation error")
	}
	if backend.Saves() != 0 {
		t.Fatalf("invalid add must not persist")
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	s := store.New(backend)
	s.Add(ctx, expense(1, "a", 1, "2024-01-01", core.Personal))
	s.Add(ctx, expense(2, "b", 2, "2024-01-02", core.Personal))
	saves := backend.Saves()

	s.Remove(ctx, 1)
	if got := s.All(); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("remove left wrong collection: %+v", got)
	}
	if backend.Saves() != saves+1 {
		t.Fatalf("remove should persist")
	}

	// Absent id is a no-op and does not touch the backend.
	s.Remove(ctx, 999)
	if backend.Saves() != saves+1 {
		t.Fatalf("no-op remove must not persist")
	}
}

func TestModeIsSessionOnly(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	s := store.New(backend)
	s.Load(ctx)

	s.SetMode(core.Business)
	if s.Mode() != core.Business {
		t.Fatalf("mode not switched")
	}

	reloaded := store.New(backend)
	reloaded.Load(ctx)
	if reloaded.Mode() != core.Personal {
		t.Fatalf("mode must reset to Personal across sessions")
	}

	// Invalid values are ignored.
	s.SetMode("Corporate")
	if s.Mode() != core.Business {
		t.Fatalf("invalid mode should be ignored")
	}
}

func TestBudgetPersists(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	s := store.New(backend)
	s.Load(ctx)
	s.SetBudget(ctx, 1500)

	reloaded := store.New(backend)
	reloaded.Load(ctx)
	if reloaded.Budget() != 1500 {
		t.Fatalf("budget should survive reload, got %v", reloaded.Budget())
	}
}

func TestFilteredUsesActiveMode(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New())
	s.Add(ctx, expense(1, "home", 10, "2024-01-01", core.Personal))
	s.Add(ctx, expense(2, "work", 20, "2024-01-02", core.Business))
	s.Add(ctx, expense(3, "old", 30, "2024-01-03", "")) // pre-mode record

	if total := core.Total(s.Filtered()); total != 40 {
		t.Fatalf("personal total: got %v, want 40", total)
	}
	s.SetMode(core.Business)
	if total := core.Total(s.Filtered()); total != 20 {
		t.Fatalf("business total: got %v, want 20", total)
	}
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	s := store.New(failingBackend{})
	if err := s.Add(ctx, expense(1, "a", 1, "2024-01-01", core.Personal)); err != nil {
		t.Fatalf("save failure must not surface: %v", err)
	}
	if len(s.All()) != 1 {
		t.Fatalf("in-memory state should still be updated")
	}
}

func TestOneShotMarkers(t *testing.T) {
	s := store.New(memory.New())

	if _, ok := s.ConsumeRolloverNotice(); ok {
		t.Fatalf("no notice expected initially")
	}
	s.RaiseRolloverNotice(3)
	if count, ok := s.ConsumeRolloverNotice(); !ok || count != 3 {
		t.Fatalf("got (%d, %v), want (3, true)", count, ok)
	}
	if _, ok := s.ConsumeRolloverNotice(); ok {
		t.Fatalf("notice must clear after first read")
	}

	d, _ := core.ParseDate("2024-05-06")
	s.MarkAdded(d)
	if date, ok := s.ConsumeLastAdded(); !ok || date != "2024-05-06" {
		t.Fatalf("got (%q, %v)", date, ok)
	}
	if _, ok := s.ConsumeLastAdded(); ok {
		t.Fatalf("marker must clear after first read")
	}
}
