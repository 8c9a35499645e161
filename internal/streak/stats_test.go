package streak_test

import (
	"testing"
	"time"

	"github.com/Universesboy/french-streak-app/internal/streak"
)

func sampleSessions() []streak.Session {
	// Two sessions on one day, then one each across week, month and year
	// boundaries.
	return []streak.Session{
		{StartTime: "2026-08-28T09:00:00Z", Date: "2026-08-28", Duration: 600},
		{StartTime: "2026-08-28T20:00:00Z", Date: "2026-08-28", Duration: 300},
		{StartTime: "2026-08-30T09:00:00Z", Date: "2026-08-30", Duration: 120},
		{StartTime: "2026-07-15T09:00:00Z", Date: "2026-07-15", Duration: 1000},
		{StartTime: "2025-12-31T09:00:00Z", Date: "2025-12-31", Duration: 50},
	}
}

func TestSummariesPartitionTotalTime(t *testing.T) {
	sessions := sampleSessions()
	var total int64
	for _, s := range sessions {
		total += s.Duration
	}

	summaries := map[string]map[string]int64{
		"daily":   streak.DailySummary(sessions),
		"weekly":  streak.WeeklySummary(sessions),
		"monthly": streak.MonthlySummary(sessions),
		"yearly":  streak.YearlySummary(sessions),
	}
	for name, summary := range summaries {
		var sum int64
		for _, v := range summary {
			sum += v
		}
		if sum != total {
			t.Errorf("%s summary sums to %d, want %d", name, sum, total)
		}
	}
}

func TestDailySummaryGroupsByDate(t *testing.T) {
	summary := streak.DailySummary(sampleSessions())
	if summary["2026-08-28"] != 900 {
		t.Errorf("2026-08-28 = %d, want 900", summary["2026-08-28"])
	}
	if summary["2026-08-30"] != 120 {
		t.Errorf("2026-08-30 = %d, want 120", summary["2026-08-30"])
	}
}

func TestYearlySummaryKeys(t *testing.T) {
	summary := streak.YearlySummary(sampleSessions())
	if summary["2026"] != 2020 {
		t.Errorf("2026 = %d, want 2020", summary["2026"])
	}
	if summary["2025"] != 50 {
		t.Errorf("2025 = %d, want 50", summary["2025"])
	}
}

func TestTimeInRangeBoundsAreInclusive(t *testing.T) {
	sessions := sampleSessions()
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		start, end time.Time
		want       int64
	}{
		{"exact single day", day(2026, 8, 28), day(2026, 8, 28), 900},
		{"spanning range", day(2026, 7, 1), day(2026, 8, 31), 2020},
		{"everything", day(2025, 1, 1), day(2026, 12, 31), 2070},
		{"empty window", day(2026, 8, 29), day(2026, 8, 29), 0},
	}
	for _, tt := range tests {
		if got := streak.TimeInRange(sessions, tt.start, tt.end); got != tt.want {
			t.Errorf("%s: TimeInRange = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestRecent(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	if streak.Recent(streak.Zero(), now) != nil {
		t.Error("expected nil summary for a record with no sessions")
	}

	d := streak.Zero()
	d.StudySessions = sampleSessions()
	got := streak.Recent(d, now)
	if got == nil {
		t.Fatal("expected a summary")
	}
	if got.Today.TotalSessions != 1 || got.Today.TotalTime != 120 {
		t.Errorf("today = %+v", got.Today)
	}
	// 2026-08-30 is a Sunday, so the current week holds only today.
	if got.ThisWeek.TotalTime != 120 {
		t.Errorf("thisWeek = %d, want 120", got.ThisWeek.TotalTime)
	}
	if got.ThisMonth.TotalTime != 1020 {
		t.Errorf("thisMonth = %d, want 1020", got.ThisMonth.TotalTime)
	}
	if got.ThisYear.TotalTime != 2020 {
		t.Errorf("thisYear = %d, want 2020", got.ThisYear.TotalTime)
	}
	if got.AllTime.TotalSessions != 5 || got.AllTime.TotalTime != 2070 {
		t.Errorf("allTime = %+v", got.AllTime)
	}
}

func TestLongestStreakFromDays(t *testing.T) {
	tests := []struct {
		name string
		days []string
		want int
	}{
		{"empty", nil, 0},
		{"single day", []string{"2026-08-30"}, 1},
		{"unsorted run of three", []string{"2026-08-30", "2026-08-28", "2026-08-29"}, 3},
		{"gap resets", []string{"2026-08-01", "2026-08-02", "2026-08-05", "2026-08-06", "2026-08-07"}, 3},
		{"duplicates ignored", []string{"2026-08-01", "2026-08-01", "2026-08-02"}, 2},
		{"garbage skipped", []string{"2026-08-01", "oops", "2026-08-02"}, 2},
		{"only garbage", []string{"oops"}, 0},
	}
	for _, tt := range tests {
		if got := streak.LongestStreakFromDays(tt.days); got != tt.want {
			t.Errorf("%s: LongestStreakFromDays = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestStatistics(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	empty := streak.Statistics(streak.Zero(), now)
	if empty.StudyFrequency != 0 {
		t.Errorf("frequency with no history = %d, want 0", empty.StudyFrequency)
	}

	// First day 2026-08-21, 5 studied days over 10 elapsed days: 50%.
	d := streak.Data{
		CurrentStreak:    2,
		LongestStreak:    3,
		StudyDays:        []string{"2026-08-21", "2026-08-23", "2026-08-25", "2026-08-29", "2026-08-30"},
		TotalDaysStudied: 5,
	}
	got := streak.Statistics(d, now)
	if got.StudyFrequency != 50 {
		t.Errorf("StudyFrequency = %d, want 50", got.StudyFrequency)
	}
	if got.CurrentStreak != 2 || got.LongestStreak != 3 || got.TotalDaysStudied != 5 {
		t.Errorf("stats = %+v", got)
	}
}
