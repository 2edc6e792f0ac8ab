package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Month
		wantErr bool
	}{
		{name: "valid month", input: "2024-10", want: Month{Year: 2024, Month: time.October}},
		{name: "valid january", input: "2024-01", want: Month{Year: 2024, Month: time.January}},
		{name: "month thirteen", input: "2024-13", wantErr: true},
		{name: "month zero", input: "2024-00", wantErr: true},
		{name: "missing padding", input: "2024-1", wantErr: true},
		{name: "full date", input: "2024-10-01", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "ottobre", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMonthFormat) {
					t.Fatalf("ParseMonth(%q) error = %v, want ErrInvalidMonthFormat", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonth(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMonth(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMonthString_RoundTrip(t *testing.T) {
	for _, key := range []string{"2024-01", "2024-12", "1999-06"} {
		m, err := ParseMonth(key)
		if err != nil {
			t.Fatalf("ParseMonth(%q): %v", key, err)
		}
		if m.String() != key {
			t.Errorf("round trip %q -> %q", key, m.String())
		}
	}
}

func TestMonthPrev_CrossesYear(t *testing.T) {
	m := Month{Year: 2024, Month: time.January}
	got := m.Prev()
	want := Month{Year: 2023, Month: time.December}
	if got != want {
		t.Errorf("Prev() = %v, want %v", got, want)
	}
}

func TestMonthAddMonths(t *testing.T) {
	tests := []struct {
		name string
		m    Month
		n    int
		want Month
	}{
		{name: "forward within year", m: Month{2024, time.March}, n: 2, want: Month{2024, time.May}},
		{name: "forward across year", m: Month{2024, time.November}, n: 3, want: Month{2025, time.February}},
		{name: "back across year", m: Month{2024, time.February}, n: -24, want: Month{2022, time.February}},
		{name: "zero", m: Month{2024, time.July}, n: 0, want: Month{2024, time.July}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.AddMonths(tt.n); got != tt.want {
				t.Errorf("AddMonths(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestMonthBefore(t *testing.T) {
	a := Month{2024, time.October}
	b := Month{2024, time.November}
	c := Month{2025, time.January}

	if !a.Before(b) || !b.Before(c) || !a.Before(c) {
		t.Error("expected strict chronological ordering")
	}
	if b.Before(a) || a.Before(a) {
		t.Error("Before must be strict")
	}
}

func TestMonthOf(t *testing.T) {
	d := time.Date(2024, time.October, 27, 15, 4, 5, 0, time.UTC)
	if got := MonthOf(d); got != (Month{2024, time.October}) {
		t.Errorf("MonthOf = %v", got)
	}
}
