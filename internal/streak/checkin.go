package streak

import (
	"time"

	"github.com/Universesboy/french-streak-app/internal/dateutil"
)

// parseCheckInTime accepts the timestamps that have historically been
// stored in lastCheckInDate: a full RFC3339 instant or a bare
// YYYY-MM-DD calendar date.
func parseCheckInTime(s string) (time.Time, error) {
	if t, err := dateutil.ParseTimestamp(s); err == nil {
		return t, nil
	}
	return dateutil.ParseDate(s)
}

// CanCheckIn reports whether a check-in is allowed: the user has never
// checked in, or the last check-in was on a different calendar day than
// now. A lastCheckInDate that cannot be parsed blocks the check-in —
// letting a duplicate check-in through is worse than making the user
// wait a day.
func CanCheckIn(lastCheckIn *string, now time.Time) bool {
	if lastCheckIn == nil || *lastCheckIn == "" {
		return true
	}
	last, err := parseCheckInTime(*lastCheckIn)
	if err != nil {
		return false
	}
	return !dateutil.SameDay(last, now)
}

// CheckIn applies a daily check-in to the record and returns the new
// record. Calling it again on the same day returns the input unchanged,
// so racing callers cannot double-count a day.
//
// Streak rule: first check-in ever starts at 1; a check-in exactly one
// calendar day after the previous one extends the streak; any larger gap
// resets it to 1 with no partial credit. The reward is recomputed in full
// from the new streak length.
func CheckIn(d Data, now time.Time) Data {
	today := dateutil.FormatDate(now)

	if d.LastCheckInDate != nil && *d.LastCheckInDate != "" {
		if last, err := parseCheckInTime(*d.LastCheckInDate); err == nil && dateutil.SameDay(last, now) {
			return d
		}
	}
	if containsDay(d.StudyDays, today) {
		// Today is already counted but lastCheckInDate disagrees (a merged
		// or hand-edited record). Correct the marker, touch nothing else.
		ts := formatInstant(now)
		d.LastCheckInDate = &ts
		return d
	}

	newStreak := 1
	if d.LastCheckInDate != nil && *d.LastCheckInDate != "" {
		if last, err := parseCheckInTime(*d.LastCheckInDate); err == nil {
			if dateutil.DaysBetween(last, now) == 1 {
				newStreak = d.CurrentStreak + 1
			}
		}
	}

	days := make([]string, 0, len(d.StudyDays)+1)
	days = append(days, d.StudyDays...)
	days = append(days, today)

	ts := formatInstant(now)
	d.CurrentStreak = newStreak
	d.LastCheckInDate = &ts
	d.TotalReward = TotalReward(newStreak)
	d.StudyDays = days
	if newStreak > d.LongestStreak {
		d.LongestStreak = newStreak
	}
	d.TotalDaysStudied = len(days)
	return d
}
