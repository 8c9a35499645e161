package streak

import (
	"time"

	"github.com/Universesboy/french-streak-app/internal/dateutil"
)

// staleSessionAge is how long an open session may sit before repair
// considers it abandoned (a client that crashed without stopping it).
const staleSessionAge = 24 * time.Hour

// Repair fixes the data problems that have shown up in real user
// records: negative counters, duplicated study days, a longest streak
// below what the study-day history proves, and an open session left
// behind by a dead client. Normalize handles shape; Repair handles
// history.
func Repair(d Data, now time.Time) Data {
	d = Normalize(d)

	if recomputed := LongestStreakFromDays(d.StudyDays); recomputed > d.LongestStreak {
		d.LongestStreak = recomputed
	}

	if d.OngoingSession != nil {
		start, err := dateutil.ParseTimestamp(d.OngoingSession.StartTime)
		if err != nil || now.Sub(start) > staleSessionAge {
			d.OngoingSession = nil
		}
	}

	return d
}
