package http

import (
	"net/http"
	"time"

	"bilancio/internal/core"
)

const dateLayout = "2006-01-02"

type (
	// transactionRequest carries the amount as an unsigned decimal string;
	// the service derives the sign from the category.
	transactionRequest struct {
		CategoryID int64  `json:"category_id"`
		CardID     *int64 `json:"card_id"`
		Date       string `json:"date"`
		Amount     string `json:"amount"`
		Notes      string `json:"notes"`
	}

	transactionResponse struct {
		ID         int64  `json:"id"`
		CategoryID int64  `json:"category_id"`
		CardID     *int64 `json:"card_id,omitempty"`
		Date       string `json:"date"`
		Amount     string `json:"amount"`
		IsExpense  bool   `json:"is_expense"`
		Notes      string `json:"notes,omitempty"`
	}
)

func (req transactionRequest) toDomain() (core.Transaction, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return core.Transaction{}, badRequest("invalid date %q, expected YYYY-MM-DD", req.Date)
	}
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		CategoryID: req.CategoryID,
		CardID:     req.CardID,
		Date:       date,
		Amount:     core.Money{Cents: cents},
		Notes:      req.Notes,
	}, nil
}

func toTransactionResponse(t *core.Transaction) transactionResponse {
	return transactionResponse{
		ID:         t.ID,
		CategoryID: t.CategoryID,
		CardID:     t.CardID,
		Date:       t.Date.Format(dateLayout),
		Amount:     t.Amount.Decimal(),
		IsExpense:  t.IsExpense(),
		Notes:      t.Notes,
	}
}

// handleListTransactions serves GET /api/transactions?month=YYYY-MM.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	month, err := core.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	list, err := s.transactions.ListForMonth(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]transactionResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toTransactionResponse(&list[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := req.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.monthViews.Delete(core.MonthOf(created.Date).String())
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := req.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}
	t.ID = id

	// The old row is needed first: an edit may move the transaction to a
	// different month and both views go stale.
	existing, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.transactions.Update(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.monthViews.Delete(core.MonthOf(existing.Date).String())
	s.monthViews.Delete(core.MonthOf(updated.Date).String())
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	existing, err := s.transactions.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.transactions.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	s.monthViews.Delete(core.MonthOf(existing.Date).String())
	w.WriteHeader(http.StatusNoContent)
}
