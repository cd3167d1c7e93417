// Package calendar resolves TransXChange operating profiles into concrete
// GTFS service calendars: a weekly pattern over a validity range plus
// explicit per-date exceptions.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Calendar is a resolved service calendar. Days is Monday-first, matching
// the GTFS calendar.txt column order.
type Calendar struct {
	Days [7]bool

	StartDate time.Time
	EndDate   time.Time

	// Dates the service additionally runs on (GTFS exception_type 1) and
	// dates removed from the weekly pattern (exception_type 2). Both are
	// sorted and fall within [StartDate, EndDate].
	Additions []time.Time
	Removals  []time.Time
}

// OperatesOn evaluates the calendar for one date: exceptions win over the
// weekly pattern.
func (c *Calendar) OperatesOn(date time.Time) bool {
	date = DateOnly(date)

	if date.Before(c.StartDate) || date.After(c.EndDate) {
		return false
	}

	for _, removal := range c.Removals {
		if removal.Equal(date) {
			return false
		}
	}
	for _, addition := range c.Additions {
		if addition.Equal(date) {
			return true
		}
	}

	return c.Days[WeekdayIndex(date)]
}

// IsNever reports whether the calendar contains no operating dates at all: an
// all-zero weekly pattern and no positive exceptions. Such calendars are
// produced, not suppressed; it is the consolidator's decision to drop trips
// that only reference them.
func (c *Calendar) IsNever() bool {
	for _, day := range c.Days {
		if day {
			return false
		}
	}

	return len(c.Additions) == 0
}

// Key returns a canonical representation used for structural equality. Two
// profiles resolving to the same calendar share one GTFS service identifier.
func (c *Calendar) Key() string {
	var builder strings.Builder

	for _, day := range c.Days {
		if day {
			builder.WriteByte('1')
		} else {
			builder.WriteByte('0')
		}
	}

	builder.WriteString(fmt.Sprintf("|%s|%s", c.StartDate.Format("20060102"), c.EndDate.Format("20060102")))

	for _, addition := range c.Additions {
		builder.WriteString("|+" + addition.Format("20060102"))
	}
	for _, removal := range c.Removals {
		builder.WriteString("|-" + removal.Format("20060102"))
	}

	return builder.String()
}

// DateOnly normalises a timestamp to a UTC midnight date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekdayIndex maps a date to a Monday-first weekday index.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func sortDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
}
