package calendar

import (
	"sync"
	"time"

	"github.com/meenmo/curvefit/utils"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// NONE only treats weekends as non-business days.
	NONE   CalendarID = "NONE"
	TARGET CalendarID = "TARGET"
	JPN    CalendarID = "JPN"
	USD    CalendarID = "USD"
	KRW    CalendarID = "KRW"
)

var (
	mu       sync.RWMutex
	holidays = map[CalendarID]map[string]struct{}{}
)

// AddHolidays registers extra holidays (YYYY-MM-DD) for a calendar.
func AddHolidays(cal CalendarID, dates ...time.Time) {
	mu.Lock()
	defer mu.Unlock()
	set, ok := holidays[cal]
	if !ok {
		set = make(map[string]struct{}, len(dates))
		holidays[cal] = set
	}
	for _, d := range dates {
		set[utils.FormatDate(d)] = struct{}{}
	}
}

// Known reports whether id names a calendar this package can adjust with.
func Known(id CalendarID) bool {
	switch id {
	case NONE, TARGET, JPN, USD, KRW:
		return true
	}
	return false
}

func isHoliday(cal CalendarID, t time.Time) bool {
	if cal == TARGET && isTargetHoliday(t) {
		return true
	}
	mu.RLock()
	defer mu.RUnlock()
	_, ok := holidays[cal][utils.FormatDate(t)]
	return ok
}

// isTargetHoliday applies the TARGET2 closing days.
func isTargetHoliday(t time.Time) bool {
	d, m := t.Day(), t.Month()
	switch {
	case d == 1 && m == time.January,
		d == 1 && m == time.May,
		d == 25 && m == time.December,
		d == 26 && m == time.December:
		return true
	}
	easter := easterSunday(t.Year())
	return sameDay(t, easter.AddDate(0, 0, -2)) || sameDay(t, easter.AddDate(0, 0, 1))
}

// easterSunday uses the anonymous Gregorian algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// Adjust applies Modified Following.
func Adjust(cal CalendarID, t time.Time) time.Time {
	origMonth := t.Month()
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	if t.Month() != origMonth {
		t = t.AddDate(0, 0, -1)
		for !IsBusinessDay(cal, t) {
			t = t.AddDate(0, 0, -1)
		}
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// Advance moves t by a tenor and applies Modified Following.
func Advance(cal CalendarID, t time.Time, tenor utils.Tenor) time.Time {
	return Adjust(cal, utils.AddTenor(t, tenor))
}
