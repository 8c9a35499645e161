package services_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/Universesboy/french-streak-app/internal/storage"
	"github.com/Universesboy/french-streak-app/internal/streak"
	"github.com/Universesboy/french-streak-app/services"
)

func seed(t *testing.T, store *storage.MemoryStore, key string, data streak.Data) {
	t.Helper()
	if err := store.Save(context.Background(), key, &data); err != nil {
		t.Fatalf("seed %s failed: %v", key, err)
	}
}

func ptr(s string) *string { return &s }

func TestLoadStateAnonymousUsesLocalOnly(t *testing.T) {
	local := storage.NewMemoryStore()
	remote := storage.NewMemoryStore()
	svc := services.NewDataService(local, remote)
	ctx := context.Background()

	seed(t, remote, "dev-1", streak.Data{CurrentStreak: 9})

	got, err := svc.LoadState(ctx, "dev-1", false)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if got.CurrentStreak != 0 {
		t.Errorf("anonymous load read the remote store: %+v", got)
	}
}

func TestLoadStateFreshUserGetsZeroState(t *testing.T) {
	svc := services.NewDataService(storage.NewMemoryStore(), storage.NewMemoryStore())

	got, err := svc.LoadState(context.Background(), "newcomer", true)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if got.CurrentStreak != 0 || len(got.StudyDays) != 0 || got.StudyDays == nil {
		t.Errorf("fresh state = %+v", got)
	}
}

func TestLoadStateRemoteFailureFallsBackToLocal(t *testing.T) {
	local := storage.NewMemoryStore()
	remote := storage.NewMemoryStore()
	svc := services.NewDataService(local, remote)

	seed(t, local, "u1", streak.Data{CurrentStreak: 4, StudyDays: []string{"2026-08-30"}})
	remote.FailLoads = true

	got, err := svc.LoadState(context.Background(), "u1", true)
	if err != nil {
		t.Fatalf("expected degraded load to succeed, got %v", err)
	}
	if got.CurrentStreak != 4 {
		t.Errorf("fallback state = %+v", got)
	}
}

func TestMergeMoreRecentLocalCheckInWinsWholesale(t *testing.T) {
	local := storage.NewMemoryStore()
	remote := storage.NewMemoryStore()
	svc := services.NewDataService(local, remote)
	ctx := context.Background()

	seed(t, local, "u1", streak.Data{
		CurrentStreak:   3,
		LastCheckInDate: ptr("2026-08-30T09:00:00Z"),
		StudyDays:       []string{"2026-08-28", "2026-08-29", "2026-08-30"},
	})
	seed(t, remote, "u1", streak.Data{
		CurrentStreak:   2,
		LastCheckInDate: ptr("2026-08-29T09:00:00Z"),
		StudyDays:       []string{"2026-08-28", "2026-08-29"},
	})

	got, err := svc.LoadState(ctx, "u1", true)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if got.CurrentStreak != 3 || len(got.StudyDays) != 3 {
		t.Errorf("merged = %+v, want the local record wholesale", got)
	}

	// The winner was written back to the remote store.
	synced, err := remote.Load(ctx, "u1")
	if err != nil || synced == nil {
		t.Fatalf("remote readback failed: %v", err)
	}
	if synced.CurrentStreak != 3 {
		t.Errorf("write-back missing, remote = %+v", synced)
	}
}

func TestMergeUnionsStudyDaysWithoutLosingAny(t *testing.T) {
	local := storage.NewMemoryStore()
	remote := storage.NewMemoryStore()
	svc := services.NewDataService(local, remote)

	checkIn := ptr("2026-08-29T09:00:00Z")
	seed(t, local, "u1", streak.Data{
		LastCheckInDate: checkIn,
		StudyDays:       []string{"2026-08-27", "2026-08-28", "2026-08-29"},
	})
	seed(t, remote, "u1", streak.Data{
		LastCheckInDate: checkIn,
		StudyDays:       []string{"2026-08-25", "2026-08-28"},
		LongestStreak:   2,
	})

	got, err := svc.LoadState(context.Background(), "u1", true)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}

	days := append([]string(nil), got.StudyDays...)
	sort.Strings(days)
	want := []string{"2026-08-25", "2026-08-27", "2026-08-28", "2026-08-29"}
	if len(days) != len(want) {
		t.Fatalf("StudyDays = %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("StudyDays = %v, want %v", days, want)
		}
	}
	if got.TotalDaysStudied != 4 {
		t.Errorf("TotalDaysStudied = %d, want 4", got.TotalDaysStudied)
	}
	// 27-29 is a run of three, longer than the stored longest of two.
	if got.LongestStreak != 3 {
		t.Errorf("LongestStreak = %d, want 3", got.LongestStreak)
	}
}

func TestMergeUnionsSessionsLocalWinsCollisions(t *testing.T) {
	local := storage.NewMemoryStore()
	remote := storage.NewMemoryStore()
	svc := services.NewDataService(local, remote)

	checkIn := ptr("2026-08-29T09:00:00Z")
	days := []string{"2026-08-29"}
	seed(t, local, "u1", streak.Data{
		LastCheckInDate: checkIn,
		StudyDays:       days,
		StudySessions: []streak.Session{
			{StartTime: "2026-08-29T10:00:00Z", Duration: 500, Date: "2026-08-29"},
			{StartTime: "2026-08-29T12:00:00Z", Duration: 200, Date: "2026-08-29"},
		},
	})
	seed(t, remote, "u1", streak.Data{
		LastCheckInDate: checkIn,
		StudyDays:       days,
		StudySessions: []streak.Session{
			{StartTime: "2026-08-29T10:00:00Z", Duration: 450, Date: "2026-08-29"},
		},
	})

	got, err := svc.LoadState(context.Background(), "u1", true)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if len(got.StudySessions) != 2 {
		t.Fatalf("StudySessions = %+v, want 2 after union", got.StudySessions)
	}
	if got.StudySessions[0].Duration != 500 {
		t.Errorf("collision kept the remote copy: %+v", got.StudySessions[0])
	}
	if got.StudySessions[1].StartTime != "2026-08-29T12:00:00Z" {
		t.Errorf("sessions out of order: %+v", got.StudySessions)
	}
}

func TestMergeAdoptsLocalOngoingSession(t *testing.T) {
	local := storage.NewMemoryStore()
	remote := storage.NewMemoryStore()
	svc := services.NewDataService(local, remote)

	checkIn := ptr("2026-08-29T09:00:00Z")
	seed(t, local, "u1", streak.Data{
		LastCheckInDate: checkIn,
		OngoingSession:  &streak.Session{StartTime: "2026-08-29T14:00:00Z", Date: "2026-08-29"},
	})
	seed(t, remote, "u1", streak.Data{LastCheckInDate: checkIn})

	got, err := svc.LoadState(context.Background(), "u1", true)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if got.OngoingSession == nil || got.OngoingSession.StartTime != "2026-08-29T14:00:00Z" {
		t.Errorf("ongoing session not adopted: %+v", got.OngoingSession)
	}
}

func TestSaveStateRemoteFailureIsSoft(t *testing.T) {
	local := storage.NewMemoryStore()
	remote := storage.NewMemoryStore()
	svc := services.NewDataService(local, remote)
	ctx := context.Background()

	remote.FailSaves = true
	saved, remoteOK, err := svc.SaveState(ctx, "u1", true, streak.Data{CurrentStreak: 1})
	if err != nil {
		t.Fatalf("expected soft failure, got %v", err)
	}
	if remoteOK {
		t.Error("remoteOK = true despite a failed remote save")
	}
	if saved.StudyDays == nil {
		t.Error("saved record not normalized")
	}

	kept, err := local.Load(ctx, "u1")
	if err != nil || kept == nil {
		t.Fatalf("local copy missing after soft failure: %v", err)
	}
}

func TestSaveStateLocalFailureIsHard(t *testing.T) {
	local := storage.NewMemoryStore()
	local.FailSaves = true
	svc := services.NewDataService(local, storage.NewMemoryStore())

	if _, _, err := svc.SaveState(context.Background(), "u1", true, streak.Zero()); err == nil {
		t.Error("expected an error when the local save fails")
	}
}

func TestRepairAll(t *testing.T) {
	remote := storage.NewMemoryStore()
	svc := services.NewDataService(storage.NewMemoryStore(), remote)
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	seed(t, remote, "a", streak.Data{
		CurrentStreak: -1,
		StudyDays:     []string{"2026-08-29", "2026-08-29", "2026-08-30"},
	})
	seed(t, remote, "b", streak.Data{
		OngoingSession: &streak.Session{StartTime: "2026-08-20T10:00:00Z", Date: "2026-08-20"},
	})

	count, err := svc.RepairAll(ctx, now)
	if err != nil {
		t.Fatalf("RepairAll failed: %v", err)
	}
	if count != 2 {
		t.Errorf("repaired %d records, want 2", count)
	}

	a, _ := remote.Load(ctx, "a")
	if a.CurrentStreak != 0 || len(a.StudyDays) != 2 || a.LongestStreak != 2 {
		t.Errorf("record a not repaired: %+v", a)
	}
	b, _ := remote.Load(ctx, "b")
	if b.OngoingSession != nil {
		t.Errorf("stale session survived repair: %+v", b.OngoingSession)
	}
}
