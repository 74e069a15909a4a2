// Package chilla holds the attendance rules: local-day bucketing, chilla periods,
// the streak rule and the window summary used for eligibility.
package chilla

import (
	"fmt"
	"time"
)

const (
	// DefaultOffsetMinutes is India Standard Time, UTC+5:30.
	DefaultOffsetMinutes = 330
	dayLayout            = time.DateOnly
)

// Calendar buckets instants into local calendar days using a fixed UTC offset.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(offsetMinutes int) Calendar {
	return Calendar{loc: time.FixedZone(zoneName(offsetMinutes), offsetMinutes*60)}
}

func zoneName(offsetMinutes int) string {
	if offsetMinutes == DefaultOffsetMinutes {
		return "IST"
	}
	sign := "+"
	if offsetMinutes < 0 {
		sign = "-"
		offsetMinutes = -offsetMinutes
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offsetMinutes/60, offsetMinutes%60)
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// DayKey returns the local calendar day of t as YYYY-MM-DD.
func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.Location()).Format(dayLayout)
}

// Midnight returns the local midnight starting the given date.
func (c Calendar) Midnight(d Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, c.Location())
}

// Today returns the local date of now.
func (c Calendar) Today(now time.Time) Date {
	return DateOf(now.In(c.Location()))
}

// Bounds returns the half-open instant range [start midnight, day after end midnight)
// covering the period in local time.
func (c Calendar) Bounds(p Period) (from, to time.Time) {
	return c.Midnight(p.Start), c.Midnight(p.End.AddDays(1))
}

// DayKeys lists every local day of the period in order.
func (c Calendar) DayKeys(p Period) []string {
	n := p.TotalDays()
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, p.Start.AddDays(i).String())
	}
	return keys
}

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.utc().AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool { return d.utc().Before(o.utc()) }

func (d Date) String() string { return d.utc().Format(dayLayout) }

// DaysBetweenInclusive counts the calendar days from start through end.
// It is 0 when end precedes start or either date is unset.
func DaysBetweenInclusive(start, end Date) int {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return 0
	}
	return int(end.utc().Sub(start.utc())/(24*time.Hour)) + 1
}
