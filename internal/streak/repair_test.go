package streak_test

import (
	"testing"
	"time"

	"github.com/Universesboy/french-streak-app/internal/streak"
)

func TestNormalize(t *testing.T) {
	end := "2026-08-29T10:00:00Z"
	d := streak.Data{
		CurrentStreak: -3,
		TotalReward:   -1,
		StudyDays:     []string{"2026-08-28", "2026-08-28", "2026-08-29"},
		LongestStreak: -2,
		OngoingSession: &streak.Session{
			StartTime: "2026-08-29T09:00:00Z",
			EndTime:   &end,
			Duration:  3600,
			Date:      "2026-08-29",
		},
	}

	got := streak.Normalize(d)

	if got.CurrentStreak != 0 || got.LongestStreak != 0 || got.TotalReward != 0 {
		t.Errorf("negative counters survived: %+v", got)
	}
	if len(got.StudyDays) != 2 {
		t.Errorf("StudyDays = %v, want deduplicated", got.StudyDays)
	}
	if got.TotalDaysStudied != 2 {
		t.Errorf("TotalDaysStudied = %d, want 2", got.TotalDaysStudied)
	}
	if got.StudySessions == nil {
		t.Error("StudySessions still nil")
	}
	if got.OngoingSession.EndTime != nil || got.OngoingSession.Duration != 0 {
		t.Errorf("open session kept end state: %+v", got.OngoingSession)
	}
	// The input's session must not have been written through.
	if d.OngoingSession.EndTime == nil {
		t.Error("Normalize mutated the caller's session")
	}
}

func TestNormalizeFloorsLongestAtCurrent(t *testing.T) {
	got := streak.Normalize(streak.Data{CurrentStreak: 4, LongestStreak: 2})
	if got.LongestStreak != 4 {
		t.Errorf("LongestStreak = %d, want 4", got.LongestStreak)
	}
}

func TestRepairRecomputesLongestFromHistory(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	d := streak.Data{
		CurrentStreak: 1,
		LongestStreak: 1,
		StudyDays:     []string{"2026-08-20", "2026-08-21", "2026-08-22", "2026-08-23", "2026-08-30"},
	}

	got := streak.Repair(d, now)
	if got.LongestStreak != 4 {
		t.Errorf("LongestStreak = %d, want 4 from the day history", got.LongestStreak)
	}
}

func TestRepairDropsStaleSession(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	fresh := streak.Zero()
	fresh.OngoingSession = &streak.Session{StartTime: "2026-08-30T10:00:00Z", Date: "2026-08-30"}
	if got := streak.Repair(fresh, now); got.OngoingSession == nil {
		t.Error("repair dropped a session only two hours old")
	}

	stale := streak.Zero()
	stale.OngoingSession = &streak.Session{StartTime: "2026-08-27T10:00:00Z", Date: "2026-08-27"}
	if got := streak.Repair(stale, now); got.OngoingSession != nil {
		t.Error("repair kept a session started three days ago")
	}

	broken := streak.Zero()
	broken.OngoingSession = &streak.Session{StartTime: "???", Date: "2026-08-30"}
	if got := streak.Repair(broken, now); got.OngoingSession != nil {
		t.Error("repair kept a session with an unreadable start time")
	}
}
