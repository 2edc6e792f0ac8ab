package http

import (
	"errors"
	"net/http"
	"testing"

	"bilancio/internal/core"
)

func TestParseLimitCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "250.00", want: 25000},
		{in: "0", want: 0},
		{in: "0.00", want: 0},
		{in: "0,0", want: 0},
		{in: "0.05", want: 5},
		{in: "-5.00", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLimitCents(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseLimitCents(%q) = %d, want error", tt.in, got.Cents)
				}
				return
			}
			if err != nil || got.Cents != tt.want {
				t.Errorf("parseLimitCents(%q) = %d, %v, want %d", tt.in, got.Cents, err, tt.want)
			}
		})
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: core.ErrNotFound, want: http.StatusNotFound},
		{err: core.ErrCategoryNotFound, want: http.StatusNotFound},
		{err: core.ErrDuplicateName, want: http.StatusConflict},
		{err: core.ErrCategoryInUse, want: http.StatusConflict},
		{err: core.ErrCardInUse, want: http.StatusConflict},
		{err: core.ErrInvalidMonthFormat, want: http.StatusBadRequest},
		{err: core.ErrInvalidAmount, want: http.StatusBadRequest},
		{err: badRequest("nope"), want: http.StatusBadRequest},
		{err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}

	// Wrapped domain errors keep their mapping.
	wrapped := errors.Join(errors.New("save transaction"), core.ErrCategoryNotFound)
	if got := errorStatus(wrapped); got != http.StatusNotFound {
		t.Errorf("errorStatus(wrapped) = %d, want 404", got)
	}
}
