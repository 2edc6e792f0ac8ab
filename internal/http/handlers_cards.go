package http

import (
	"net/http"

	"bilancio/internal/core"
)

type (
	cardRequest struct {
		Name     string `json:"name"`
		IsActive *bool  `json:"is_active"`
	}

	cardResponse struct {
		ID       int64  `json:"id"`
		Name     string `json:"name"`
		IsActive bool   `json:"is_active"`
	}
)

func toCardResponse(c *core.Card) cardResponse {
	return cardResponse{ID: c.ID, Name: c.Name, IsActive: c.IsActive}
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	list, err := s.cards.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := make([]cardResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toCardResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.cards.Create(r.Context(), core.Card{Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCardResponse(created))
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.cards.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCardResponse(c))
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req cardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	existing, err := s.cards.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c := *existing
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	updated, err := s.cards.Update(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCardResponse(updated))
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.cards.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
