package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Date is a calendar date. Time-of-day is always zero; storage and
	// comparison use the ISO form (YYYY-MM-DD).
	Date struct {
		time.Time
	}

	// Money is a signed amount in cents. The sign encodes direction:
	// non-negative is an inflow (entrada), negative an outflow (saída).
	Money struct {
		Cents int64
	}

	// Transaction references its bank and category by name. The references
	// are weak: the named bank or category may no longer exist, and the
	// aggregation functions tolerate that.
	Transaction struct {
		ID       int64
		Amount   Money
		Date     Date
		Category string
		Bank     string
	}

	// Bank is keyed by name. OpeningBalance is the balance attributed to the
	// account before any tracked transaction.
	Bank struct {
		Name           string
		OpeningBalance Money
	}

	// YearMonth identifies a calendar month. The zero value means "no month".
	YearMonth struct {
		Year  int
		Month int // 1-12
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyBank     = errors.New("empty bank name")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses the canonical ISO form (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the canonical YYYY-MM-DD representation.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ParseYearMonth parses the YYYY-MM form used by month filters.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, ErrInvalidDate
	}
	return YearMonth{Year: t.Year(), Month: int(t.Month())}, nil
}

// String renders the YYYY-MM form ParseYearMonth accepts.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// IsZero reports whether the month filter is absent.
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// Contains reports whether d falls within the calendar month. The comparison
// uses the date's year and month components, never string prefixes.
func (ym YearMonth) Contains(d Date) bool {
	return d.Year() == ym.Year && d.Month() == ym.Month
}

// IsInflow reports whether the amount counts as money received. Zero counts
// as an inflow: direction is derivable from sign alone.
func (m Money) IsInflow() bool {
	return m.Cents >= 0
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Abs returns the amount with the sign stripped.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Bank) == "" {
		return ErrEmptyBank
	}
	return nil
}

func (b Bank) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyBank
	}
	return nil
}
