// Package services provides the orchestration layer between the ledger
// store and its collaborators: the recurrence reconciler and the expense
// service.
package services

import (
	"context"
	"log/slog"
	"time"

	"lumina/internal/core"
	"lumina/internal/store"
)

// RolloverNotifier publishes the one-time "recurring bills added" event to
// external consumers. A nil notifier disables publishing.
type RolloverNotifier interface {
	PublishRolloverNotice(ctx context.Context, count int, date core.Date) error
}

// Reconciler brings recurring templates up to date with the current
// calendar month. It only ever appends: templates are never mutated or
// pruned, so they accumulate in history across months.
type Reconciler struct {
	store    *store.Store
	notifier RolloverNotifier
}

func NewReconciler(s *store.Store, notifier RolloverNotifier) *Reconciler {
	return &Reconciler{store: s, notifier: notifier}
}

// Run performs one reconciliation pass at the given instant and returns the
// number of entries created. Running twice within the same month is a no-op
// the second time.
func (r *Reconciler) Run(ctx context.Context, now time.Time) (int, error) {
	entries := r.store.All()
	year, month := now.Year(), now.Month()
	today := core.NewDate(year, int(month), now.Day())
	taken := r.store.IDs()

	slog.InfoContext(ctx, "Reconciling recurring templates",
		"entries", len(entries),
		"month", today.Format("2006-01"))

	var created []core.Expense
	for _, tmpl := range entries {
		if !tmpl.Recurring || tmpl.Date.SameMonth(year, month) {
			continue
		}

		// Idempotency guard: an entry with the same description, marked
		// recurring, already dated in the current month suppresses the
		// rollover. The match is by description alone, so templates sharing
		// a description roll over at most once per month between them.
		if hasCurrentMonthEntry(entries, created, tmpl.Description, year, month) {
			continue
		}

		rolled := tmpl
		rolled.ID = core.NewRolloverID(now, taken)
		rolled.Date = today
		taken[rolled.ID] = true
		created = append(created, rolled)

		slog.InfoContext(ctx, "Rolled recurring template into current month",
			"description", rolled.Description,
			"amount", rolled.Amount,
			"id", rolled.ID)
	}

	if len(created) == 0 {
		return 0, nil
	}

	r.store.AddBatch(ctx, created)
	r.store.RaiseRolloverNotice(len(created))

	if r.notifier != nil {
		if err := r.notifier.PublishRolloverNotice(ctx, len(created), today); err != nil {
			// The ledger is already updated; the event is best-effort.
			slog.ErrorContext(ctx, "Failed to publish rollover notice", "error", err)
		}
	}

	slog.InfoContext(ctx, "Reconciliation complete", "created", len(created))
	return len(created), nil
}

func hasCurrentMonthEntry(entries, created []core.Expense, desc string, year int, month time.Month) bool {
	for _, e := range entries {
		if e.Recurring && e.Description == desc && e.Date.SameMonth(year, month) {
			return true
		}
	}
	for _, e := range created {
		if e.Description == desc {
			return true
		}
	}
	return false
}
