// Package core provides the expense domain model and the aggregation
// engine: pure query functions over an expense slice that downstream
// renderers (list, calendar, charts, gauges, budget header) consume.
//
// All functions here are stateless and recomputed fully on every call; the
// dataset is personal-finance scale, so no incremental caching is kept.
package core

import "sort"

// BudgetStatus classifies the filtered total against the budget ceiling.
type BudgetStatus string

const (
	BudgetNormal   BudgetStatus = "Normal"
	BudgetWarning  BudgetStatus = "Warning"
	BudgetExceeded BudgetStatus = "Exceeded"
)

// WarningThreshold is the fraction of the budget at which the Warning
// status begins.
const WarningThreshold = 0.8

// DailyTotal is one point of the time-series feed.
type DailyTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

// CategoryShare is one slice of the percentage breakdown.
type CategoryShare struct {
	Category Category `json:"category"`
	Total    float64  `json:"total"`
	Percent  float64  `json:"percent"`
}

// FilterByMode returns the entries belonging to the active view: an entry
// matches when its mode equals the active mode, or when it predates mode
// tracking (empty mode) and the active mode is Personal.
func FilterByMode(entries []Expense, active Mode) []Expense {
	out := make([]Expense, 0, len(entries))
	for _, e := range entries {
		if e.EffectiveMode() == active {
			out = append(out, e)
		}
	}
	return out
}

// Total sums the amounts of the given entries.
func Total(entries []Expense) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Amount
	}
	return sum
}

// CategoryTotal sums the amounts restricted to one category.
func CategoryTotal(entries []Expense, c Category) float64 {
	var sum float64
	for _, e := range entries {
		if e.Category == c {
			sum += e.Amount
		}
	}
	return sum
}

// Percentages computes each fixed category's share of the total, in the
// fixed category order. All shares are zero when the total is zero.
func Percentages(entries []Expense) []CategoryShare {
	total := Total(entries)
	shares := make([]CategoryShare, 0, len(Categories()))
	for _, c := range Categories() {
		ct := CategoryTotal(entries, c)
		var pct float64
		if total > 0 {
			pct = ct / total * 100
		}
		shares = append(shares, CategoryShare{Category: c, Total: ct, Percent: pct})
	}
	return shares
}

// ByDate groups entries into daily totals ordered by ascending date string.
// Lexical order equals chronological order for the YYYY-MM-DD keys.
func ByDate(entries []Expense) []DailyTotal {
	grouped := map[string]float64{}
	for _, e := range entries {
		grouped[e.Date.String()] += e.Amount
	}
	dates := make([]string, 0, len(grouped))
	for d := range grouped {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	out := make([]DailyTotal, 0, len(dates))
	for _, d := range dates {
		out = append(out, DailyTotal{Date: d, Total: grouped[d]})
	}
	return out
}

// EvaluateBudget classifies total spending against the budget. A zero
// budget disables the feature and always reads Normal.
func EvaluateBudget(total, budget float64) BudgetStatus {
	if budget <= 0 {
		return BudgetNormal
	}
	if total > budget {
		return BudgetExceeded
	}
	if total >= budget*WarningThreshold {
		return BudgetWarning
	}
	return BudgetNormal
}

// DefaultRecentLimit is the number of entries the recent-activity view
// shows when no explicit limit is given.
const DefaultRecentLimit = 10

// TopRecent returns the n most recent entries by date descending. Entries
// sharing a date keep their original insertion order, so the sort must be
// stable.
func TopRecent(entries []Expense, n int) []Expense {
	sorted := make([]Expense, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date.Time)
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
