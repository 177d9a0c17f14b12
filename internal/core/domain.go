package core

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"
)

const (
	Milk        Category = "Milk"
	Electricity Category = "Electricity"
	Gas         Category = "Gas"
	Investments Category = "Investments"
	Other       Category = "Other"
)

const (
	Personal Mode = "Personal"
	Business Mode = "Business"
)

type (
	Category string

	Mode string

	Date struct {
		time.Time
	}

	// Expense is one recorded financial event. Records are immutable once
	// created; the only lifecycle transition is permanent deletion.
	Expense struct {
		ID          int64
		Description string
		Amount      float64
		Date        Date
		Category    Category
		Mode        Mode
		Recurring   bool
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidMode      = errors.New("invalid mode")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
)

// Categories lists the fixed category set in display order.
func Categories() []Category {
	return []Category{Milk, Electricity, Gas, Investments, Other}
}

func (c Category) Valid() bool {
	switch c {
	case Milk, Electricity, Gas, Investments, Other:
		return true
	}
	return false
}

func (m Mode) Valid() bool {
	return m == Personal || m == Business
}

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String renders the date in the YYYY-MM-DD form used for persistence,
// CSV interchange, and the time-series keys.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// SameMonth reports whether d falls in the given calendar month and year.
func (d Date) SameMonth(year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// EffectiveMode maps the stored mode to the view partition. Records created
// before mode tracking existed carry an empty mode and belong to Personal.
func (e Expense) EffectiveMode() Mode {
	if e.Mode == "" {
		return Personal
	}
	return e.Mode
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) || e.Amount < 0 {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if e.Mode != "" && !e.Mode.Valid() {
		return ErrInvalidMode
	}
	return nil
}

// NewID derives an expense ID from the creation instant, millisecond
// resolution, matching user-submitted entries.
func NewID(now time.Time) int64 {
	return now.UnixMilli()
}

// NewRolloverID derives a collision-resistant ID for machine-generated
// rollover entries: several may be minted within the same millisecond, so a
// random offset is mixed in and the result is re-drawn until it is unique
// within taken.
func NewRolloverID(now time.Time, taken map[int64]bool) int64 {
	for {
		id := now.UnixMilli() + rand.Int63n(1_000_000)
		if !taken[id] {
			return id
		}
	}
}
