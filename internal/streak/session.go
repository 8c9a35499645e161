package streak

import (
	"time"

	"github.com/Universesboy/french-streak-app/internal/dateutil"
)

// StartSession opens a study session at now. If a session is already
// running the record is returned unchanged — at most one session may be
// open at a time.
func StartSession(d Data, now time.Time) Data {
	if d.OngoingSession != nil {
		return d
	}
	d.OngoingSession = &Session{
		StartTime: formatInstant(now),
		EndTime:   nil,
		Duration:  0,
		Date:      dateutil.FormatDate(now),
	}
	return d
}

// StopSession closes the open session at now, fixing its duration and
// appending it to the session history. A no-op when nothing is running.
//
// The session's date is NOT unioned into studyDays here; only a check-in
// marks a day as studied. studySessions and studyDays are related but
// independently maintained lists.
func StopSession(d Data, now time.Time) Data {
	if d.OngoingSession == nil {
		return d
	}

	completed := *d.OngoingSession

	var duration int64
	if start, err := dateutil.ParseTimestamp(completed.StartTime); err == nil {
		duration = int64(now.Sub(start) / time.Second)
	}
	if duration < 0 {
		// Clock skew or a corrupted startTime; never record negative time.
		duration = 0
	}

	end := formatInstant(now)
	completed.EndTime = &end
	completed.Duration = duration

	sessions := make([]Session, 0, len(d.StudySessions)+1)
	sessions = append(sessions, d.StudySessions...)
	d.StudySessions = append(sessions, completed)
	d.OngoingSession = nil
	return d
}

// ElapsedSeconds returns the running time of the open session as of now,
// recomputed from the stored startTime so a suspended caller picks up
// where the wall clock is, not where a counter left off. Returns 0 when
// no session is open.
func ElapsedSeconds(d Data, now time.Time) int64 {
	if d.OngoingSession == nil {
		return 0
	}
	start, err := dateutil.ParseTimestamp(d.OngoingSession.StartTime)
	if err != nil {
		return 0
	}
	elapsed := int64(now.Sub(start) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}
