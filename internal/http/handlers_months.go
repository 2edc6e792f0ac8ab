package http

import (
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

type (
	budgetRowResponse struct {
		CategoryID int64  `json:"category_id,omitempty"`
		Name       string `json:"name"`
		Color      string `json:"color,omitempty"`
		IsIncome   bool   `json:"is_income"`
		Virtual    bool   `json:"virtual"`
		Limit      string `json:"limit"`
		Spent      string `json:"spent"`
		Income     string `json:"income"`
		Remaining  string `json:"remaining"`
	}

	monthSummaryResponse struct {
		TotalIncome   string `json:"total_income"`
		TotalExpenses string `json:"total_expenses"`
		Net           string `json:"net"`
	}

	monthViewResponse struct {
		Month   string               `json:"month"`
		Rows    []budgetRowResponse  `json:"rows"`
		Summary monthSummaryResponse `json:"summary"`
	}
)

// handleMonthView serves GET /api/months/{month}. The first request for a
// month materializes its budget rows (rollover), so even a cache miss is
// a write path underneath.
func (s *Server) handleMonthView(w http.ResponseWriter, r *http.Request) {
	month, err := core.ParseMonth(r.PathValue("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := month.String()
	rows, ok := s.monthViews.Get(key)
	if !ok {
		rows, err = s.engine.MonthView(r.Context(), month)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.monthViews.Set(key, rows)
		log.FromContext(r.Context()).DebugContext(r.Context(), "Month view computed",
			log.NewFields().WithMonth(key).ToSlice()...)
	}

	writeJSON(w, http.StatusOK, buildMonthView(month, rows))
}

func buildMonthView(month core.Month, rows []core.BudgetRow) monthViewResponse {
	resp := monthViewResponse{
		Month: month.String(),
		Rows:  make([]budgetRowResponse, 0, len(rows)),
	}

	summary := core.MonthlySummary{Month: month}
	for _, row := range rows {
		resp.Rows = append(resp.Rows, budgetRowResponse{
			CategoryID: row.CategoryID,
			Name:       row.Name,
			Color:      row.Color,
			IsIncome:   row.IsIncome,
			Virtual:    row.Virtual,
			Limit:      row.Limit.Decimal(),
			Spent:      row.Spent.Decimal(),
			Income:     row.Income.Decimal(),
			Remaining:  row.Remaining.Decimal(),
		})
		// Split buckets replace their source row so their spend counts once;
		// the synthetic income rows re-present income already on physical
		// rows and are skipped.
		if !row.Virtual {
			summary.TotalIncome.Cents += row.Income.Cents
		}
		summary.TotalExpenses.Cents += row.Spent.Cents
	}
	summary.Net = core.Money{Cents: summary.TotalIncome.Cents - summary.TotalExpenses.Cents}

	resp.Summary = monthSummaryResponse{
		TotalIncome:   summary.TotalIncome.Decimal(),
		TotalExpenses: summary.TotalExpenses.Decimal(),
		Net:           summary.Net.Decimal(),
	}
	return resp
}
