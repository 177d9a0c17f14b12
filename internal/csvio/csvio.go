// Package csvio implements the CSV interchange format:
//
//	ID,Description,Amount,Date,Category,Mode,Recurring
//
// Export always writes the header; import skips it, drops malformed rows
// and rows whose ID is already present, and never fails the whole file on a
// bad row.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"lumina/internal/core"
)

var header = []string{"ID", "Description", "Amount", "Date", "Category", "Mode", "Recurring"}

// Export writes the full collection. Entries predating mode tracking are
// exported as Personal, matching the legacy writer.
func Export(w io.Writer, entries []core.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		row := []string{
			strconv.FormatInt(e.ID, 10),
			e.Description,
			strconv.FormatFloat(e.Amount, 'f', -1, 64),
			e.Date.String(),
			string(e.Category),
			string(e.EffectiveMode()),
			strconv.FormatBool(e.Recurring),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Result summarizes an import pass.
type Result struct {
	Added   int
	Skipped int
}

// Import parses rows into expenses, skipping the header, rows with fewer
// than six fields, rows whose ID already exists, and rows that fail domain
// validation. The Recurring column matches the exact string "true"; any
// other value reads false. A missing seventh field also reads false.
func Import(r io.Reader, existing map[int64]bool) ([]core.Expense, Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var (
		out    []core.Expense
		res    Result
		seenID = make(map[int64]bool, len(existing))
		first  = true
	)
	for id := range existing {
		seenID[id] = true
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A structurally broken line skips that row only.
			res.Skipped++
			continue
		}
		if first {
			first = false
			continue // header
		}

		e, ok := parseRow(row, seenID)
		if !ok {
			res.Skipped++
			continue
		}
		seenID[e.ID] = true
		out = append(out, e)
		res.Added++
	}

	return out, res, nil
}

func parseRow(row []string, seen map[int64]bool) (core.Expense, bool) {
	if len(row) < 6 {
		return core.Expense{}, false
	}

	id, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil || seen[id] {
		return core.Expense{}, false
	}

	// Non-numeric amounts degrade to zero rather than rejecting the row.
	amount, err := strconv.ParseFloat(row[2], 64)
	if err != nil || amount < 0 {
		amount = 0
	}

	date, err := core.ParseDate(row[3])
	if err != nil {
		return core.Expense{}, false
	}

	e := core.Expense{
		ID:          id,
		Description: row[1],
		Amount:      amount,
		Date:        date,
		Category:    core.Category(row[4]),
		Mode:        core.Mode(row[5]),
	}
	if len(row) > 6 {
		e.Recurring = row[6] == "true"
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, false
	}
	return e, true
}
