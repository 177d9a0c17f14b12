// Package charts renders PNG views of the ledger: a pie of category
// shares and a time series of daily totals.
package charts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"lumina/internal/core"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// CategoryPie renders the spending distribution across categories.
// Returns nil bytes when there is nothing to draw.
func (g *Generator) CategoryPie(shares []core.CategoryShare) ([]byte, error) {
	values := make([]chart.Value, 0, len(shares))
	for _, s := range shares {
		if s.Total <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %.2f (%.1f%%)", s.Category, s.Total, s.Percent),
			Value: s.Total,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Title:  "Spending by category",
		Width:  800,
		Height: 800,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render category pie: %w", err)
	}
	return buffer.Bytes(), nil
}

// DailyTotals renders spending per day as a time series. The input is
// expected sorted by date; dates that fail to parse are skipped.
func (g *Generator) DailyTotals(totals []core.DailyTotal) ([]byte, error) {
	xValues := make([]time.Time, 0, len(totals))
	yValues := make([]float64, 0, len(totals))
	for _, dt := range totals {
		day, err := time.Parse("2006-01-02", dt.Date)
		if err != nil {
			continue
		}
		xValues = append(xValues, day)
		yValues = append(yValues, dt.Total)
	}
	// go-chart needs at least two points to scale an axis.
	if len(xValues) < 2 {
		return nil, nil
	}

	graph := chart.Chart{
		Title:  "Daily spending",
		Width:  1200,
		Height: 600,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02"),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.2f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Total",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}

	graph.Elements = []chart.Renderable{
		chart.Legend(&graph, chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		}),
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render daily totals: %w", err)
	}
	return buffer.Bytes(), nil
}
