package http

import (
	"net/http"

	"bilancio/internal/core"
)

type (
	budgetUpsertRequest struct {
		CategoryID int64  `json:"category_id"`
		Month      string `json:"month"`
		Limit      string `json:"limit"`
	}

	budgetResponse struct {
		ID         int64  `json:"id"`
		CategoryID int64  `json:"category_id"`
		Month      string `json:"month"`
		Limit      string `json:"limit"`
	}
)

// handleUpsertBudget serves PUT /api/budgets: an explicit limit for one
// (category, month), overwriting whatever the rollover materialized.
func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetUpsertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	month, err := core.ParseMonth(req.Month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := parseLimitCents(req.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.CategoryID <= 0 {
		writeError(w, r, core.ErrCategoryNotFound)
		return
	}

	saved, err := s.repo.UpsertBudget(r.Context(), req.CategoryID, month, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Later months that already rolled over keep their materialized rows,
	// so only this month's cached view is stale.
	s.monthViews.Delete(month.String())

	writeJSON(w, http.StatusOK, budgetResponse{
		ID:         saved.ID,
		CategoryID: saved.CategoryID,
		Month:      saved.Month.String(),
		Limit:      saved.Limit.Decimal(),
	})
}
