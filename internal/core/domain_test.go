package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.March || d.Day() != 1 {
		t.Fatalf("parsed wrong date: %v", d)
	}
	if d.String() != "2024-03-01" {
		t.Fatalf("round trip mismatch: %s", d.String())
	}

	for _, bad := range []string{"", "03/01/2024", "2024-13-01", "not a date"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		ID:          1,
		Description: "ok",
		Amount:      12.5,
		Date:        NewDate(2025, 1, 1),
		Category:    Milk,
		Mode:        Personal,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Legacy records carry no mode at all; they must still validate.
	legacy := good
	legacy.Mode = ""
	if err := legacy.Validate(); err != nil {
		t.Fatalf("legacy record should validate, got %v", err)
	}

	bads := []Expense{
		{Description: "a", Amount: 1, Date: Date{}, Category: Milk},
		{Description: "", Amount: 1, Date: NewDate(2025, 1, 1), Category: Milk},
		{Description: "a", Amount: -1, Date: NewDate(2025, 1, 1), Category: Milk},
		{Description: "a", Amount: 1, Date: NewDate(2025, 1, 1), Category: "Rent"},
		{Description: "a", Amount: 1, Date: NewDate(2025, 1, 1), Category: Milk, Mode: "Corporate"},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestEffectiveMode(t *testing.T) {
	cases := []struct {
		mode Mode
		want Mode
	}{
		{Personal, Personal},
		{Business, Business},
		{"", Personal},
	}
	for i, tc := range cases {
		e := Expense{Mode: tc.mode}
		if got := e.EffectiveMode(); got != tc.want {
			t.Fatalf("case %d: got %s, want %s", i, got, tc.want)
		}
	}
}

func TestNewRolloverIDAvoidsCollisions(t *testing.T) {
	now := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	taken := map[int64]bool{}
	for i := 0; i < 100; i++ {
		id := NewRolloverID(now, taken)
		if taken[id] {
			t.Fatalf("duplicate id %d generated", id)
		}
		taken[id] = true
	}
}
