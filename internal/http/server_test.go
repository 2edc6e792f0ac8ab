package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"bilancio/internal/budget"
	"bilancio/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "bilancio.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}

	rules := budget.Rules{TitheBps: 1000}
	engine := budget.NewEngine(repo, repo, repo, rules, 24)
	s := NewServer(0, repo, engine, nil)

	t.Cleanup(func() {
		s.Shutdown(context.Background())
		repo.Close()
	})
	return s
}

func doJSON(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func createCategory(t *testing.T, h http.Handler, name string, isIncome bool) categoryResponse {
	t.Helper()
	w := doJSON(t, h, "POST", "/api/categories", categoryRequest{Name: name, IsIncome: &isIncome})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category %q: status %d, body %s", name, w.Code, w.Body.String())
	}
	return decodeBody[categoryResponse](t, w)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	h := s.httpServer.Handler

	if w := doJSON(t, h, "GET", "/healthz", nil); w.Code != http.StatusOK {
		t.Errorf("healthz status = %d", w.Code)
	}
	if w := doJSON(t, h, "GET", "/readyz", nil); w.Code != http.StatusOK {
		t.Errorf("readyz status = %d", w.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.httpServer.Handler, "GET", "/healthz", nil)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := w.Header().Get("Content-Security-Policy"); got == "" {
		t.Error("Content-Security-Policy missing")
	}
}

func TestTransactionLifecycle(t *testing.T) {
	s := newTestServer(t)
	h := s.httpServer.Handler

	food := createCategory(t, h, "Food", false)

	w := doJSON(t, h, "POST", "/api/transactions", transactionRequest{
		CategoryID: food.ID,
		Date:       "2024-10-05",
		Amount:     "15.00",
		Notes:      "groceries",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	created := decodeBody[transactionResponse](t, w)
	if created.Amount != "-15.00" || !created.IsExpense {
		t.Errorf("created = %+v, want signed expense", created)
	}

	w = doJSON(t, h, "GET", "/api/transactions/"+itoa(created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	w = doJSON(t, h, "GET", "/api/transactions?month=2024-10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	if list := decodeBody[[]transactionResponse](t, w); len(list) != 1 {
		t.Errorf("list length = %d, want 1", len(list))
	}

	w = doJSON(t, h, "PUT", "/api/transactions/"+itoa(created.ID), transactionRequest{
		CategoryID: food.ID,
		Date:       "2024-10-06",
		Amount:     "20.00",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", w.Code, w.Body.String())
	}
	if updated := decodeBody[transactionResponse](t, w); updated.Amount != "-20.00" {
		t.Errorf("updated amount = %q, want -20.00", updated.Amount)
	}

	if w = doJSON(t, h, "DELETE", "/api/transactions/"+itoa(created.ID), nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w = doJSON(t, h, "GET", "/api/transactions/"+itoa(created.ID), nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestMonthViewEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.httpServer.Handler

	food := createCategory(t, h, "Food", false)
	salary := createCategory(t, h, "Salary", true)

	w := doJSON(t, h, "PUT", "/api/budgets", budgetUpsertRequest{
		CategoryID: food.ID,
		Month:      "2024-10",
		Limit:      "250.00",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("budget upsert status = %d, body %s", w.Code, w.Body.String())
	}

	for _, req := range []transactionRequest{
		{CategoryID: salary.ID, Date: "2024-10-01", Amount: "3000.00"},
		{CategoryID: food.ID, Date: "2024-10-05", Amount: "40.00"},
	} {
		if w := doJSON(t, h, "POST", "/api/transactions", req); w.Code != http.StatusCreated {
			t.Fatalf("create transaction: status %d, body %s", w.Code, w.Body.String())
		}
	}

	w = doJSON(t, h, "GET", "/api/months/2024-10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("month view status = %d, body %s", w.Code, w.Body.String())
	}
	view := decodeBody[monthViewResponse](t, w)

	if len(view.Rows) != 4 {
		t.Fatalf("rows = %d, want 4 (two virtual + two categories)", len(view.Rows))
	}
	if view.Rows[0].Name != "Total Income" || view.Rows[0].Income != "3000.00" {
		t.Errorf("row 0 = %+v, want Total Income 3000.00", view.Rows[0])
	}
	if view.Rows[1].Name != "Tithe" || view.Rows[1].Income != "300.00" {
		t.Errorf("row 1 = %+v, want Tithe 300.00", view.Rows[1])
	}
	if r := view.Rows[2]; r.Name != "Food" || r.Limit != "250.00" || r.Spent != "40.00" || r.Remaining != "210.00" {
		t.Errorf("Food row = %+v", r)
	}
	if r := view.Rows[3]; r.Name != "Salary" || r.Income != "3000.00" {
		t.Errorf("Salary row = %+v", r)
	}
	if view.Summary.TotalIncome != "3000.00" || view.Summary.TotalExpenses != "40.00" || view.Summary.Net != "2960.00" {
		t.Errorf("summary = %+v", view.Summary)
	}

	// The next month starts empty but inherits Food's limit.
	w = doJSON(t, h, "GET", "/api/months/2024-11", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("rollover month view status = %d", w.Code)
	}
	next := decodeBody[monthViewResponse](t, w)
	if r := next.Rows[2]; r.Name != "Food" || r.Limit != "250.00" || r.Spent != "0.00" {
		t.Errorf("rolled-over Food row = %+v", r)
	}
}

func TestMonthViewCacheInvalidation(t *testing.T) {
	s := newTestServer(t)
	h := s.httpServer.Handler

	food := createCategory(t, h, "Food", false)

	view := decodeBody[monthViewResponse](t, doJSON(t, h, "GET", "/api/months/2024-10", nil))
	if view.Rows[2].Spent != "0.00" {
		t.Fatalf("initial Food spent = %q", view.Rows[2].Spent)
	}

	if w := doJSON(t, h, "POST", "/api/transactions", transactionRequest{
		CategoryID: food.ID,
		Date:       "2024-10-05",
		Amount:     "12.34",
	}); w.Code != http.StatusCreated {
		t.Fatalf("create transaction status = %d", w.Code)
	}

	view = decodeBody[monthViewResponse](t, doJSON(t, h, "GET", "/api/months/2024-10", nil))
	if view.Rows[2].Spent != "12.34" {
		t.Errorf("Food spent after write = %q, want 12.34 (stale cache?)", view.Rows[2].Spent)
	}
}

func TestBudgetUpsertValidation(t *testing.T) {
	s := newTestServer(t)
	h := s.httpServer.Handler

	food := createCategory(t, h, "Food", false)

	// Zero is a legal limit: it means "budgeted, nothing allocated".
	w := doJSON(t, h, "PUT", "/api/budgets", budgetUpsertRequest{CategoryID: food.ID, Month: "2024-10", Limit: "0.00"})
	if w.Code != http.StatusOK {
		t.Errorf("zero limit status = %d, body %s", w.Code, w.Body.String())
	} else if resp := decodeBody[budgetResponse](t, w); resp.Limit != "0.00" {
		t.Errorf("zero limit echoed as %q", resp.Limit)
	}

	tests := []struct {
		name string
		req  budgetUpsertRequest
		want int
	}{
		{name: "negative limit", req: budgetUpsertRequest{CategoryID: food.ID, Month: "2024-10", Limit: "-5.00"}, want: http.StatusBadRequest},
		{name: "garbage limit", req: budgetUpsertRequest{CategoryID: food.ID, Month: "2024-10", Limit: "abc"}, want: http.StatusBadRequest},
		{name: "bad month", req: budgetUpsertRequest{CategoryID: food.ID, Month: "2024-13", Limit: "10.00"}, want: http.StatusBadRequest},
		{name: "unknown category", req: budgetUpsertRequest{CategoryID: 9999, Month: "2024-10", Limit: "10.00"}, want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(t, h, "PUT", "/api/budgets", tt.req); w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestErrorMapping(t *testing.T) {
	s := newTestServer(t)
	h := s.httpServer.Handler

	food := createCategory(t, h, "Food", false)

	tests := []struct {
		name   string
		method string
		target string
		body   any
		want   int
	}{
		{name: "bad month in path", method: "GET", target: "/api/months/202410", want: http.StatusBadRequest},
		{name: "bad month in query", method: "GET", target: "/api/transactions?month=nope", want: http.StatusBadRequest},
		{name: "missing transaction", method: "GET", target: "/api/transactions/9999", want: http.StatusNotFound},
		{name: "non-numeric id", method: "GET", target: "/api/transactions/abc", want: http.StatusBadRequest},
		{name: "duplicate category name", method: "POST", target: "/api/categories", body: categoryRequest{Name: "Food"}, want: http.StatusConflict},
		{name: "unknown category on transaction", method: "POST", target: "/api/transactions",
			body: transactionRequest{CategoryID: 9999, Date: "2024-10-05", Amount: "1.00"}, want: http.StatusNotFound},
		{name: "zero amount transaction", method: "POST", target: "/api/transactions",
			body: transactionRequest{CategoryID: food.ID, Date: "2024-10-05", Amount: "0"}, want: http.StatusBadRequest},
		{name: "bad date", method: "POST", target: "/api/transactions",
			body: transactionRequest{CategoryID: food.ID, Date: "05/10/2024", Amount: "1.00"}, want: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(t, h, tt.method, tt.target, tt.body); w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}

	// In-use categories cannot be deleted, only deactivated.
	if w := doJSON(t, h, "POST", "/api/transactions", transactionRequest{
		CategoryID: food.ID, Date: "2024-10-05", Amount: "1.00",
	}); w.Code != http.StatusCreated {
		t.Fatalf("create transaction status = %d", w.Code)
	}
	if w := doJSON(t, h, "DELETE", "/api/categories/"+itoa(food.ID), nil); w.Code != http.StatusConflict {
		t.Errorf("delete in-use category status = %d, want 409", w.Code)
	}
}

func TestCardEndpoints(t *testing.T) {
	s := newTestServer(t)
	h := s.httpServer.Handler

	w := doJSON(t, h, "POST", "/api/cards", cardRequest{Name: "Visa"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create card status = %d", w.Code)
	}
	card := decodeBody[cardResponse](t, w)

	w = doJSON(t, h, "PUT", "/api/cards/"+itoa(card.ID), cardRequest{Name: "Visa Gold"})
	if w.Code != http.StatusOK {
		t.Fatalf("update card status = %d", w.Code)
	}
	if updated := decodeBody[cardResponse](t, w); updated.Name != "Visa Gold" {
		t.Errorf("updated name = %q", updated.Name)
	}

	if w = doJSON(t, h, "GET", "/api/cards", nil); w.Code != http.StatusOK {
		t.Fatalf("list cards status = %d", w.Code)
	}
	if list := decodeBody[[]cardResponse](t, w); len(list) != 1 {
		t.Errorf("cards = %d, want 1", len(list))
	}

	if w = doJSON(t, h, "DELETE", "/api/cards/"+itoa(card.ID), nil); w.Code != http.StatusNoContent {
		t.Errorf("delete card status = %d", w.Code)
	}
}

func TestRateLimitKicksIn(t *testing.T) {
	s := newTestServer(t)
	h := s.httpServer.Handler

	// Default budget is 60 requests per minute per client IP.
	for i := 0; i < 70; i++ {
		if w := doJSON(t, h, "GET", "/healthz", nil); w.Code == http.StatusTooManyRequests {
			return
		}
	}
	t.Error("rate limit never triggered")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
