package core

import (
	"math"
	"testing"
)

func entry(id int64, desc string, amount float64, date string, cat Category, mode Mode) Expense {
	d, _ := ParseDate(date)
	return Expense{ID: id, Description: desc, Amount: amount, Date: d, Category: cat, Mode: mode}
}

func TestFilterByMode(t *testing.T) {
	entries := []Expense{
		entry(1, "milk", 10, "2024-01-01", Milk, Personal),
		entry(2, "office", 20, "2024-01-02", Other, Business),
		entry(3, "legacy", 30, "2024-01-03", Gas, ""), // predates mode tracking
	}

	personal := FilterByMode(entries, Personal)
	if len(personal) != 2 {
		t.Fatalf("personal view: got %d entries, want 2", len(personal))
	}
	if Total(personal) != 40 {
		t.Fatalf("personal total: got %v, want 40", Total(personal))
	}

	business := FilterByMode(entries, Business)
	if len(business) != 1 || business[0].ID != 2 {
		t.Fatalf("business view wrong: %+v", business)
	}
}

func TestPercentages(t *testing.T) {
	entries := []Expense{
		entry(1, "a", 25, "2024-01-01", Milk, Personal),
		entry(2, "b", 75, "2024-01-02", Gas, Personal),
	}

	shares := Percentages(entries)
	if len(shares) != 5 {
		t.Fatalf("expected one share per fixed category, got %d", len(shares))
	}

	var sum float64
	byCat := map[Category]float64{}
	for _, s := range shares {
		sum += s.Percent
		byCat[s.Category] = s.Percent
	}
	if math.Abs(sum-100) > 1e-9 {
		t.Fatalf("percentages sum to %v, want 100", sum)
	}
	if byCat[Milk] != 25 || byCat[Gas] != 75 {
		t.Fatalf("unexpected shares: %+v", byCat)
	}
	if byCat[Electricity] != 0 || byCat[Investments] != 0 || byCat[Other] != 0 {
		t.Fatalf("empty categories should be zero: %+v", byCat)
	}
}

func TestPercentagesZeroTotal(t *testing.T) {
	for _, s := range Percentages(nil) {
		if s.Percent != 0 {
			t.Fatalf("category %s: got %v, want 0", s.Category, s.Percent)
		}
	}
}

func TestByDateOrdering(t *testing.T) {
	entries := []Expense{
		entry(1, "a", 5, "2024-02-10", Milk, Personal),
		entry(2, "b", 7, "2024-01-03", Gas, Personal),
		entry(3, "c", 3, "2024-02-10", Other, Personal),
	}

	series := ByDate(entries)
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	if series[0].Date != "2024-01-03" || series[0].Total != 7 {
		t.Fatalf("first point wrong: %+v", series[0])
	}
	if series[1].Date != "2024-02-10" || series[1].Total != 8 {
		t.Fatalf("second point wrong: %+v", series[1])
	}
}

func TestEvaluateBudget(t *testing.T) {
	tests := []struct {
		name   string
		total  float64
		budget float64
		want   BudgetStatus
	}{
		{"well under budget", 100, 1000, BudgetNormal},
		{"at warning threshold", 800, 1000, BudgetWarning},
		{"below warning threshold", 750, 1000, BudgetNormal},
		{"just over budget", 1001, 1000, BudgetExceeded},
		{"exactly at budget", 1000, 1000, BudgetWarning},
		{"budget disabled", 99999, 0, BudgetNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateBudget(tt.total, tt.budget); got != tt.want {
				t.Errorf("EvaluateBudget(%v, %v) = %v, want %v", tt.total, tt.budget, got, tt.want)
			}
		})
	}
}

func TestTopRecentStableTies(t *testing.T) {
	entries := []Expense{
		entry(1, "first", 1, "2024-03-05", Milk, Personal),
		entry(2, "older", 2, "2024-03-01", Gas, Personal),
		entry(3, "second", 3, "2024-03-05", Other, Personal), // same day as ID 1
		entry(4, "newest", 4, "2024-03-09", Milk, Personal),
	}

	top := TopRecent(entries, 3)
	if len(top) != 3 {
		t.Fatalf("got %d entries, want 3", len(top))
	}
	if top[0].ID != 4 {
		t.Fatalf("newest first: got ID %d", top[0].ID)
	}
	// Same-date entries keep insertion order.
	if top[1].ID != 1 || top[2].ID != 3 {
		t.Fatalf("tie order broken: %d, %d", top[1].ID, top[2].ID)
	}
}

func TestTopRecentShortCollection(t *testing.T) {
	entries := []Expense{entry(1, "only", 1, "2024-01-01", Milk, Personal)}
	if got := TopRecent(entries, 10); len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got := TopRecent(nil, 10); len(got) != 0 {
		t.Fatalf("empty input should yield empty output, got %d", len(got))
	}
}
