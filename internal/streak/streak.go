// Package streak holds the per-user study record and the pure state
// transitions over it: daily check-ins, timed study sessions, and the
// derived statistics. Nothing in this package touches storage or the
// clock; callers pass "now" in.
package streak

import "time"

// Session is a single timed study session. StartTime and EndTime are
// RFC3339 instants; Date is the calendar day the session started on,
// stored explicitly because it is the grouping key for all summaries.
type Session struct {
	StartTime string  `json:"startTime" firestore:"startTime"`
	EndTime   *string `json:"endTime" firestore:"endTime"`
	Duration  int64   `json:"duration" firestore:"duration"`
	Date      string  `json:"date" firestore:"date"`
}

// Data is the full persisted streak record for one user. Field names match
// the wire format the app has always stored, both in the device-local JSON
// copy and in the users/{uid} document.
type Data struct {
	CurrentStreak    int       `json:"currentStreak" firestore:"currentStreak"`
	LastCheckInDate  *string   `json:"lastCheckInDate" firestore:"lastCheckInDate"`
	TotalReward      int       `json:"totalReward" firestore:"totalReward"`
	StudyDays        []string  `json:"studyDays" firestore:"studyDays"`
	LongestStreak    int       `json:"longestStreak" firestore:"longestStreak"`
	TotalDaysStudied int       `json:"totalDaysStudied" firestore:"totalDaysStudied"`
	StudySessions    []Session `json:"studySessions" firestore:"studySessions"`
	OngoingSession   *Session  `json:"ongoingSession" firestore:"ongoingSession"`
}

// Zero returns a fresh record for a user with no history.
func Zero() Data {
	return Data{
		StudyDays:     []string{},
		StudySessions: []Session{},
	}
}

// Normalize defensively fills a record that may have reached us
// partially initialized: nil collections become empty, negative scalars
// are clamped to zero, studyDays is deduplicated, and the cached counters
// are restored to their invariant values. Every record crossing the
// storage boundary goes through here.
func Normalize(d Data) Data {
	if d.CurrentStreak < 0 {
		d.CurrentStreak = 0
	}
	if d.LongestStreak < 0 {
		d.LongestStreak = 0
	}
	if d.TotalReward < 0 {
		d.TotalReward = 0
	}

	if d.StudyDays == nil {
		d.StudyDays = []string{}
	} else {
		d.StudyDays = dedupeDays(d.StudyDays)
	}
	d.TotalDaysStudied = len(d.StudyDays)

	if d.StudySessions == nil {
		d.StudySessions = []Session{}
	}

	if d.LongestStreak < d.CurrentStreak {
		d.LongestStreak = d.CurrentStreak
	}

	if d.OngoingSession != nil {
		// An open session never carries an end time or a duration. Copy
		// before correcting so the caller's record is left alone.
		session := *d.OngoingSession
		session.EndTime = nil
		session.Duration = 0
		d.OngoingSession = &session
	}

	return d
}

func dedupeDays(days []string) []string {
	seen := make(map[string]struct{}, len(days))
	out := make([]string, 0, len(days))
	for _, day := range days {
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	return out
}

func containsDay(days []string, day string) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func formatInstant(t time.Time) string {
	return t.Format(time.RFC3339)
}
