package services

import (
	"context"
	"math"
	"testing"

	"lumina/internal/core"
	"lumina/internal/store"
	"lumina/internal/store/memory"
)

func TestCreateStampsModeAndID(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New())
	s.SetMode(core.Business)
	svc := NewExpenseService(s)

	d, _ := core.ParseDate("2024-05-06")
	e, err := svc.Create(ctx, ExpenseInput{
		Description: "Printer paper",
		Amount:      12.5,
		Date:        d,
		Category:    core.Other,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.Mode != core.Business {
		t.Fatalf("mode = %s, want Business", e.Mode)
	}
	if e.ID == 0 {
		t.Fatalf("id not assigned")
	}

	if date, ok := s.ConsumeLastAdded(); !ok || date != "2024-05-06" {
		t.Fatalf("last-added marker: (%q, %v)", date, ok)
	}
}

func TestCreateGuardsNonFiniteAmount(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New())
	svc := NewExpenseService(s)
	d, _ := core.ParseDate("2024-05-06")

	for _, bad := range []float64{math.NaN(), math.Inf(1), -5} {
		e, err := svc.Create(ctx, ExpenseInput{
			Description: "odd amount", Amount: bad, Date: d, Category: core.Gas,
		})
		if err != nil {
			t.Fatalf("amount %v should degrade to zero, got error %v", bad, err)
		}
		if e.Amount != 0 {
			t.Fatalf("amount %v: stored %v, want 0", bad, e.Amount)
		}
	}
}

func TestCreateRejectsInvalidCategory(t *testing.T) {
	ctx := context.Background()
	svc := NewExpenseService(store.New(memory.New()))
	d, _ := core.ParseDate("2024-05-06")

	if _, err := svc.Create(ctx, ExpenseInput{
		Description: "x", Amount: 1, Date: d, Category: "Rent",
	}); err == nil {
		t.Fatalf("expected category validation error")
	}
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New())
	svc := NewExpenseService(s)
	d, _ := core.ParseDate("2024-05-06")
	e, _ := svc.Create(ctx, ExpenseInput{Description: "keep", Amount: 1, Date: d, Category: core.Milk})

	svc.Delete(ctx, 424242)
	if len(s.All()) != 1 {
		t.Fatalf("unknown delete changed the collection")
	}
	svc.Delete(ctx, e.ID)
	if len(s.All()) != 0 {
		t.Fatalf("delete did not remove the entry")
	}
}
