package dateutil_test

import (
	"testing"
	"time"

	"github.com/Universesboy/french-streak-app/internal/dateutil"
)

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name    string
		earlier time.Time
		later   time.Time
		want    int
	}{
		{"same day", date(2026, 8, 30), date(2026, 8, 30), 0},
		{"next day", date(2026, 8, 30), date(2026, 8, 31), 1},
		{"across month", date(2026, 8, 31), date(2026, 9, 1), 1},
		{"week apart", date(2026, 8, 1), date(2026, 8, 8), 7},
		{"reversed is negative", date(2026, 8, 31), date(2026, 8, 30), -1},
		{"time of day ignored", time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC), time.Date(2026, 8, 31, 0, 1, 0, 0, time.UTC), 1},
	}
	for _, tt := range tests {
		if got := dateutil.DaysBetween(tt.earlier, tt.later); got != tt.want {
			t.Errorf("%s: DaysBetween = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 8, 30, 22, 30, 0, 0, time.UTC)
	nextDay := time.Date(2026, 8, 31, 0, 0, 1, 0, time.UTC)

	if !dateutil.SameDay(morning, evening) {
		t.Error("expected same calendar day for morning and evening")
	}
	if dateutil.SameDay(evening, nextDay) {
		t.Error("expected different calendar days across midnight")
	}
}

func TestStartOfWeek(t *testing.T) {
	// 2026-08-27 is a Thursday; the week starts on Sunday 2026-08-23.
	thursday := time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC)
	want := date(2026, 8, 23)
	if got := dateutil.StartOfWeek(thursday); !got.Equal(want) {
		t.Errorf("StartOfWeek = %v, want %v", got, want)
	}

	// A Sunday is its own week start.
	sunday := date(2026, 8, 23)
	if got := dateutil.StartOfWeek(sunday); !got.Equal(sunday) {
		t.Errorf("StartOfWeek(sunday) = %v, want %v", got, sunday)
	}
}

func TestWeekKey(t *testing.T) {
	// Days sharing a Sunday-start week share a key.
	sunday := date(2026, 8, 23)
	saturday := date(2026, 8, 29)
	if dateutil.WeekKey(sunday) != dateutil.WeekKey(saturday) {
		t.Errorf("expected one key for one week, got %q and %q",
			dateutil.WeekKey(sunday), dateutil.WeekKey(saturday))
	}
	if dateutil.WeekKey(saturday) == dateutil.WeekKey(date(2026, 8, 30)) {
		t.Error("expected a new key for the following week")
	}
}

func TestFormatDateAndParseDate(t *testing.T) {
	day := time.Date(2026, 2, 3, 18, 45, 0, 0, time.UTC)
	formatted := dateutil.FormatDate(day)
	if formatted != "2026-02-03" {
		t.Fatalf("FormatDate = %q, want 2026-02-03", formatted)
	}
	parsed, err := dateutil.ParseDate(formatted)
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if dateutil.FormatDate(parsed) != formatted {
		t.Errorf("round trip mismatch: %q", dateutil.FormatDate(parsed))
	}
}

func TestFormatHMS(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "00:00:00"},
		{61, "00:01:01"},
		{125, "00:02:05"},
		{3661, "01:01:01"},
		{-5, "00:00:00"},
	}
	for _, tt := range tests {
		if got := dateutil.FormatHMS(tt.seconds); got != tt.want {
			t.Errorf("FormatHMS(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
