package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"lumina/internal/core"
	"lumina/internal/csvio"
	"lumina/internal/log"
	"lumina/internal/services"
)

type expenseDTO struct {
	ID          int64   `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Mode        string  `json:"mode"`
	Recurring   bool    `json:"recurring"`
}

func toDTO(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date.String(),
		Category:    string(e.Category),
		Mode:        string(e.EffectiveMode()),
		Recurring:   e.Recurring,
	}
}

func toDTOs(entries []core.Expense) []expenseDTO {
	out := make([]expenseDTO, len(entries))
	for i, e := range entries {
		out[i] = toDTO(e)
	}
	return out
}

// handleListExpenses returns the current-mode view, newest first when a
// limit is requested.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	entries := s.store.Filtered()

	query := r.URL.Query()
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		entries = core.TopRecent(entries, limit)
	} else if query.Has("recent") {
		entries = core.TopRecent(entries, core.DefaultRecentLimit)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"expenses": toDTOs(entries),
		"mode":     string(s.store.Mode()),
	})
}

type createExpenseRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Recurring   bool    `json:"recurring"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid date, expected YYYY-MM-DD")
		return
	}

	e, err := s.expenses.Create(r.Context(), services.ExpenseInput{
		Description: sanitizeInput(req.Description),
		Amount:      req.Amount,
		Date:        date,
		Category:    core.Category(req.Category),
		Recurring:   req.Recurring,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.chartCache.Flush()
	fields := log.NewFields().
		WithExpense(e.ID, e.Amount, string(e.Category), string(e.Mode)).
		WithOperation(log.OpCreate)
	log.FromContext(r.Context()).InfoContext(r.Context(), "Expense created", fields.ToSlice()...)
	writeJSON(w, http.StatusCreated, toDTO(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	s.expenses.Delete(r.Context(), id)
	s.chartCache.Flush()
	w.WriteHeader(http.StatusNoContent)
}

type categoryRow struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Percent  float64 `json:"percent"`
}

// handleSummary reports the mode-filtered totals, category breakdown, and
// budget standing in one payload.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	entries := s.store.Filtered()
	total := core.Total(entries)
	budget := s.store.Budget()

	rows := make([]categoryRow, 0, len(core.Categories()))
	for _, share := range core.Percentages(entries) {
		rows = append(rows, categoryRow{
			Category: string(share.Category),
			Total:    share.Total,
			Percent:  share.Percent,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mode":          string(s.store.Mode()),
		"total":         total,
		"budget":        budget,
		"budget_status": string(core.EvaluateBudget(total, budget)),
		"categories":    rows,
	})
}

func (s *Server) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	totals := core.ByDate(s.store.Filtered())
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":   string(s.store.Mode()),
		"series": totals,
	})
}

type calendarDay struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// handleCalendar feeds the current-month view: per-day totals for the
// active mode plus the one-shot last-added marker.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), now.Month()

	byDay := make(map[string]*calendarDay)
	for _, e := range s.store.Filtered() {
		if !e.Date.SameMonth(year, month) {
			continue
		}
		key := e.Date.String()
		day, ok := byDay[key]
		if !ok {
			day = &calendarDay{Date: key}
			byDay[key] = day
		}
		day.Total += e.Amount
		day.Count++
	}

	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	days := make([]calendarDay, 0, len(byDay))
	for d := 1; d <= daysInMonth; d++ {
		key := core.NewDate(year, int(month), d).String()
		if day, ok := byDay[key]; ok {
			days = append(days, *day)
		}
	}

	payload := map[string]any{
		"year":  year,
		"month": int(month),
		"days":  days,
	}
	if date, ok := s.store.ConsumeLastAdded(); ok {
		payload["last_added"] = date
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	mode := core.Mode(req.Mode)
	if !mode.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "invalid mode")
		return
	}

	s.store.SetMode(mode)
	writeJSON(w, http.StatusOK, map[string]any{"mode": string(s.store.Mode())})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Budget float64 `json:"budget"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.store.SetBudget(r.Context(), req.Budget)
	writeJSON(w, http.StatusOK, map[string]any{"budget": s.store.Budget()})
}

// handleExportCSV streams the full collection, both modes included.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)

	if err := csvio.Export(w, s.store.All()); err != nil {
		s.structured.LogError(r.Context(), "CSV export failed", err,
			log.ComponentHTTP, log.OpExport, log.NewFields())
	}
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	imported, result, err := csvio.Import(r.Body, s.store.IDs())
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable CSV payload")
		return
	}

	s.store.AddBatch(r.Context(), imported)
	if result.Added > 0 {
		s.chartCache.Flush()
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "CSV import completed",
		log.FieldOperation, log.OpImport, "added", result.Added, "skipped", result.Skipped)
	writeJSON(w, http.StatusOK, map[string]any{
		"added":   result.Added,
		"skipped": result.Skipped,
	})
}

// handleRolloverNotice returns the pending notice once, then clears it.
func (s *Server) handleRolloverNotice(w http.ResponseWriter, r *http.Request) {
	count, pending := s.store.ConsumeRolloverNotice()
	writeJSON(w, http.StatusOK, map[string]any{
		"pending": pending,
		"count":   count,
	})
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if s.reconciler == nil {
		writeError(w, http.StatusServiceUnavailable, "reconciliation not configured")
		return
	}

	created, err := s.reconciler.Run(r.Context(), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}
	if created > 0 {
		s.chartCache.Flush()
	}
	writeJSON(w, http.StatusOK, map[string]any{"created": created})
}

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	key := "categories:" + string(s.store.Mode())
	s.serveChart(w, r, key, func() ([]byte, error) {
		return s.generator.CategoryPie(core.Percentages(s.store.Filtered()))
	})
}

func (s *Server) handleDailyChart(w http.ResponseWriter, r *http.Request) {
	key := "daily:" + string(s.store.Mode())
	s.serveChart(w, r, key, func() ([]byte, error) {
		return s.generator.DailyTotals(core.ByDate(s.store.Filtered()))
	})
}

func (s *Server) serveChart(w http.ResponseWriter, r *http.Request, key string, render func() ([]byte, error)) {
	img, found := s.chartCache.Get(key)
	if !found {
		var err error
		img, err = render()
		if err != nil {
			s.structured.LogError(r.Context(), "Chart render failed", err,
				log.ComponentCharts, log.OpRender, log.NewFields())
			writeError(w, http.StatusInternalServerError, "chart rendering failed")
			return
		}
		if img != nil {
			s.chartCache.Set(key, img)
		}
	}

	if img == nil {
		writeError(w, http.StatusNotFound, "not enough data to draw")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(img)
}
