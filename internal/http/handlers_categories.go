package http

import (
	"net/http"
	"strconv"

	"bilancio/internal/core"
)

type (
	categoryRequest struct {
		Name     string `json:"name"`
		Color    string `json:"color"`
		IsIncome *bool  `json:"is_income"`
		IsActive *bool  `json:"is_active"`
	}

	categoryResponse struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		Color    string `json:"color"`
		IsIncome bool   `json:"is_income"`
		IsActive bool   `json:"is_active"`
	}
)

func toCategoryResponse(c *core.Category) categoryResponse {
	return categoryResponse{
		ID:       c.ID,
		Name:     c.Name,
		Color:    c.Color,
		IsIncome: c.IsIncome,
		IsActive: c.IsActive,
	}
}

// handleListCategories serves GET /api/categories. The full registry is
// returned by default; ?active=true narrows to active categories.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))

	var (
		list []core.Category
		err  error
	)
	if activeOnly {
		list, err = s.categories.ListActive(r.Context())
	} else {
		list, err = s.categories.List(r.Context())
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]categoryResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toCategoryResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	c := core.Category{Name: req.Name, Color: req.Color}
	if req.IsIncome != nil {
		c.IsIncome = *req.IsIncome
	}

	created, err := s.categories.Create(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// A new active category adds a zero-limit row to every month view.
	s.monthViews.Clear()
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.categories.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

// handleUpdateCategory overlays the provided fields on the stored row, so
// a client can deactivate a category without resending its color.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	existing, err := s.categories.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c := *existing
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Color != "" {
		c.Color = req.Color
	}
	if req.IsIncome != nil {
		c.IsIncome = *req.IsIncome
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	updated, err := s.categories.Update(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.monthViews.Clear()
	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	s.monthViews.Clear()
	w.WriteHeader(http.StatusNoContent)
}
