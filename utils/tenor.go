package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TenorUnit is the unit of a market tenor.
type TenorUnit byte

const (
	TenorDays   TenorUnit = 'D'
	TenorWeeks  TenorUnit = 'W'
	TenorMonths TenorUnit = 'M'
	TenorYears  TenorUnit = 'Y'
)

// Tenor is a period such as 1W, 3M or 10Y.
type Tenor struct {
	N    int
	Unit TenorUnit
}

// ParseTenor converts tenor strings like "1W", "3M", "10Y" to a Tenor.
func ParseTenor(s string) (Tenor, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) < 2 {
		return Tenor{}, fmt.Errorf("ParseTenor: invalid tenor %q", s)
	}
	unit := TenorUnit(s[len(s)-1])
	switch unit {
	case TenorDays, TenorWeeks, TenorMonths, TenorYears:
	default:
		return Tenor{}, fmt.Errorf("ParseTenor: unknown unit in %q", s)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Tenor{}, fmt.Errorf("ParseTenor: %q: %w", s, err)
	}
	if n < 0 {
		return Tenor{}, fmt.Errorf("ParseTenor: negative tenor %q", s)
	}
	return Tenor{N: n, Unit: unit}, nil
}

func (t Tenor) String() string {
	return fmt.Sprintf("%d%c", t.N, t.Unit)
}

// Months returns the tenor length in months; day and week tenors return 0.
func (t Tenor) Months() int {
	switch t.Unit {
	case TenorMonths:
		return t.N
	case TenorYears:
		return 12 * t.N
	}
	return 0
}

// AddTenor advances d by the tenor without business-day adjustment.
// Month and year tenors follow AddMonth (EDATE) semantics.
func AddTenor(d time.Time, t Tenor) time.Time {
	switch t.Unit {
	case TenorDays:
		return d.AddDate(0, 0, t.N)
	case TenorWeeks:
		return d.AddDate(0, 0, 7*t.N)
	default:
		return AddMonth(d, t.Months())
	}
}
