package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMonthFormat is returned for month keys that are not YYYY-MM.
var ErrInvalidMonthFormat = errors.New("invalid month format, expected YYYY-MM")

// Month identifies a calendar month. Its canonical wire and storage form is
// the "YYYY-MM" string, which sorts chronologically as text.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a canonical YYYY-MM month key.
func ParseMonth(s string) (Month, error) {
	if len(s) != 7 {
		return Month{}, ErrInvalidMonthFormat
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, ErrInvalidMonthFormat
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf returns the calendar month a date falls in.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String renders the canonical YYYY-MM form.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// AddMonths returns the month n months after m (n may be negative).
func (m Month) AddMonths(n int) Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Prev returns the preceding calendar month.
func (m Month) Prev() Month {
	return m.AddMonths(-1)
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// IsZero reports whether m is the zero value.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Validate checks that the month is usable as a budget partition key.
func (m Month) Validate() error {
	if m.Year < 1 || m.Month < time.January || m.Month > time.December {
		return ErrInvalidMonthFormat
	}
	return nil
}
