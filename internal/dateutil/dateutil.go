package dateutil

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used everywhere in persisted data.
const DateLayout = "2006-01-02"

// FormatDate returns the calendar date of t in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ParseTimestamp parses a point-in-time value as stored in session records.
// Accepts RFC3339 with or without sub-second precision.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// SameDay reports whether a and b fall on the same calendar day,
// each evaluated in its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from earlier to later
// (later - earlier). Time-of-day is ignored; the result is negative when
// later precedes earlier. Both dates are compared in UTC day-space so the
// arithmetic is immune to DST transitions.
func DaysBetween(earlier, later time.Time) int {
	ey, em, ed := earlier.Date()
	ly, lm, ld := later.Date()
	a := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	b := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// StartOfWeek returns midnight of the Sunday on or before t.
func StartOfWeek(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, -int(t.Weekday()))
}

// EndOfWeek returns midnight of the Saturday on or after t.
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 6)
}

// WeekKey returns a grouping key like "2026-W9" for the Sunday-start week
// containing t. Week 1 is the week containing January 1st of the week-start's
// year, matching how the stored summaries have always been keyed.
func WeekKey(t time.Time) string {
	sunday := StartOfWeek(t)
	week := (sunday.YearDay()-1)/7 + 1
	return fmt.Sprintf("%d-W%d", sunday.Year(), week)
}

// MonthKey returns a grouping key like "2026-08".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// YearKey returns a grouping key like "2026".
func YearKey(t time.Time) string {
	return t.Format("2006")
}

// FormatHMS renders a second count as HH:MM:SS for elapsed-time display.
func FormatHMS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
