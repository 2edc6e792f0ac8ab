package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/log"
)

const maxBodySize = 64 * 1024

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Unknown errors become
// an opaque 500 so internals never leak into responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		fields := log.NewFields().WithError(err).WithOperation(r.Method + " " + r.URL.Path)
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed", fields.ToSlice()...)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrCategoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrDuplicateName),
		errors.Is(err, core.ErrCategoryInUse),
		errors.Is(err, core.ErrCardInUse):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidMonthFormat),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrNegativeLimit),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errBadRequest marks parse failures that have no domain sentinel.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

// zeroDecimal matches decimal renderings of zero ("0", "0.00", "0,0").
var zeroDecimal = regexp.MustCompile(`^0*[.,]?0*$`)

// parseLimitCents parses a budget limit. Unlike transaction amounts a
// limit of zero is legal, so zeros are accepted before the shared decimal
// parser (which rejects them) runs.
func parseLimitCents(s string) (core.Money, error) {
	t := strings.TrimSpace(s)
	if strings.Contains(t, "0") && zeroDecimal.MatchString(t) {
		return core.Money{}, nil
	}
	cents, err := core.ParseDecimalToCents(t)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}
