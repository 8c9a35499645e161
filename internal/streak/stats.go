package streak

import (
	"math"
	"sort"
	"time"

	"github.com/Universesboy/french-streak-app/internal/dateutil"
)

// Stats is the headline statistics bundle shown on the profile screen.
type Stats struct {
	CurrentStreak    int `json:"currentStreak"`
	LongestStreak    int `json:"longestStreak"`
	TotalDaysStudied int `json:"totalDaysStudied"`
	// StudyFrequency is studied days over elapsed days since the first
	// study day, as a rounded percentage. 0 when there is no history.
	StudyFrequency int `json:"studyFrequency"`
}

// PeriodTotals is the study time accumulated over one reporting period.
type PeriodTotals struct {
	TotalSessions int   `json:"totalSessions,omitempty"`
	TotalTime     int64 `json:"totalTime"`
}

// RecentSummary bundles the range queries the dashboard needs, each
// computed against the instant the caller supplied. Nothing here is
// cached: "today" moves, so every call recomputes.
type RecentSummary struct {
	Today     PeriodTotals `json:"today"`
	ThisWeek  PeriodTotals `json:"thisWeek"`
	ThisMonth PeriodTotals `json:"thisMonth"`
	ThisYear  PeriodTotals `json:"thisYear"`
	AllTime   PeriodTotals `json:"allTime"`
}

// DailySummary groups completed sessions by their stored calendar date
// and sums the duration per day.
func DailySummary(sessions []Session) map[string]int64 {
	summary := make(map[string]int64)
	for _, s := range sessions {
		summary[s.Date] += s.Duration
	}
	return summary
}

// WeeklySummary groups sessions by Sunday-start week, keyed like "2026-W35".
// Sessions whose date cannot be parsed are skipped.
func WeeklySummary(sessions []Session) map[string]int64 {
	summary := make(map[string]int64)
	for _, s := range sessions {
		day, err := dateutil.ParseDate(s.Date)
		if err != nil {
			continue
		}
		summary[dateutil.WeekKey(day)] += s.Duration
	}
	return summary
}

// MonthlySummary groups sessions by calendar month, keyed like "2026-08".
func MonthlySummary(sessions []Session) map[string]int64 {
	summary := make(map[string]int64)
	for _, s := range sessions {
		day, err := dateutil.ParseDate(s.Date)
		if err != nil {
			continue
		}
		summary[dateutil.MonthKey(day)] += s.Duration
	}
	return summary
}

// YearlySummary groups sessions by year, keyed like "2026".
func YearlySummary(sessions []Session) map[string]int64 {
	summary := make(map[string]int64)
	for _, s := range sessions {
		day, err := dateutil.ParseDate(s.Date)
		if err != nil {
			continue
		}
		summary[dateutil.YearKey(day)] += s.Duration
	}
	return summary
}

// TimeInRange sums the duration of sessions whose date falls within
// [start, end] inclusive. Only the calendar date matters; time-of-day on
// the bounds is ignored. Dates are YYYY-MM-DD so the comparison is a
// plain string compare.
func TimeInRange(sessions []Session, start, end time.Time) int64 {
	from := dateutil.FormatDate(start)
	to := dateutil.FormatDate(end)

	var total int64
	for _, s := range sessions {
		if s.Date >= from && s.Date <= to {
			total += s.Duration
		}
	}
	return total
}

// Recent builds the dashboard summary relative to now. Returns nil when
// there are no completed sessions at all.
func Recent(d Data, now time.Time) *RecentSummary {
	if len(d.StudySessions) == 0 {
		return nil
	}

	today := dateutil.FormatDate(now)
	var todaySessions int
	var todayTime, allTime int64
	for _, s := range d.StudySessions {
		allTime += s.Duration
		if s.Date == today {
			todaySessions++
			todayTime += s.Duration
		}
	}

	weekStart := dateutil.StartOfWeek(now)
	weekEnd := dateutil.EndOfWeek(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	yearEnd := time.Date(now.Year(), 12, 31, 0, 0, 0, 0, now.Location())

	return &RecentSummary{
		Today:     PeriodTotals{TotalSessions: todaySessions, TotalTime: todayTime},
		ThisWeek:  PeriodTotals{TotalTime: TimeInRange(d.StudySessions, weekStart, weekEnd)},
		ThisMonth: PeriodTotals{TotalTime: TimeInRange(d.StudySessions, monthStart, monthEnd)},
		ThisYear:  PeriodTotals{TotalTime: TimeInRange(d.StudySessions, yearStart, yearEnd)},
		AllTime:   PeriodTotals{TotalSessions: len(d.StudySessions), TotalTime: allTime},
	}
}

// LongestStreakFromDays recomputes the longest run of consecutive
// calendar days from scratch. Used by the merge and repair paths, where
// the persisted counter cannot be trusted. Empty input yields 0, a single
// day yields 1.
func LongestStreakFromDays(days []string) int {
	if len(days) == 0 {
		return 0
	}

	sorted := make([]time.Time, 0, len(days))
	for _, day := range dedupeDays(days) {
		t, err := dateutil.ParseDate(day)
		if err != nil {
			continue
		}
		sorted = append(sorted, t)
	}
	if len(sorted) == 0 {
		return 0
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	longest, current := 1, 1
	for i := 1; i < len(sorted); i++ {
		switch dateutil.DaysBetween(sorted[i-1], sorted[i]) {
		case 1:
			current++
			if current > longest {
				longest = current
			}
		default:
			current = 1
		}
	}
	return longest
}

// Statistics derives the profile stats from the record as of now.
func Statistics(d Data, now time.Time) Stats {
	frequency := 0
	if len(d.StudyDays) > 0 {
		earliest := ""
		for _, day := range d.StudyDays {
			if earliest == "" || day < earliest {
				earliest = day
			}
		}
		if first, err := dateutil.ParseDate(earliest); err == nil {
			elapsed := dateutil.DaysBetween(first, now) + 1
			if elapsed > 0 {
				frequency = int(math.Round(float64(d.TotalDaysStudied) / float64(elapsed) * 100))
			}
		}
	}

	return Stats{
		CurrentStreak:    d.CurrentStreak,
		LongestStreak:    d.LongestStreak,
		TotalDaysStudied: d.TotalDaysStudied,
		StudyFrequency:   frequency,
	}
}
