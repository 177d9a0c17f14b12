package charts

import (
	"bytes"
	"testing"

	"lumina/internal/core"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestCategoryPieRendersPNG(t *testing.T) {
	g := NewGenerator()
	img, err := g.CategoryPie([]core.CategoryShare{
		{Category: core.Milk, Total: 40, Percent: 40},
		{Category: core.Gas, Total: 60, Percent: 60},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Fatalf("output is not a PNG")
	}
}

func TestCategoryPieEmptyDataDrawsNothing(t *testing.T) {
	g := NewGenerator()

	img, err := g.CategoryPie(nil)
	if err != nil || img != nil {
		t.Fatalf("empty input: (%v, %v), want (nil, nil)", img, err)
	}

	// Zero totals contribute no slices either.
	img, err = g.CategoryPie([]core.CategoryShare{{Category: core.Other, Total: 0}})
	if err != nil || img != nil {
		t.Fatalf("zero totals: (%v, %v), want (nil, nil)", img, err)
	}
}

func TestDailyTotalsRendersPNG(t *testing.T) {
	g := NewGenerator()
	img, err := g.DailyTotals([]core.DailyTotal{
		{Date: "2024-03-01", Total: 10},
		{Date: "2024-03-02", Total: 25.5},
		{Date: "2024-03-05", Total: 3},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(img, pngMagic) {
		t.Fatalf("output is not a PNG")
	}
}

func TestDailyTotalsNeedsTwoPoints(t *testing.T) {
	g := NewGenerator()
	img, err := g.DailyTotals([]core.DailyTotal{{Date: "2024-03-01", Total: 10}})
	if err != nil || img != nil {
		t.Fatalf("single point: (%v, %v), want (nil, nil)", img, err)
	}
}
