package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Universesboy/french-streak-app/internal/dateutil"
	"github.com/Universesboy/french-streak-app/internal/streak"
)

// StreakService exposes the UI-facing operations. Each mutating
// operation is a serialized load -> pure transition -> save cycle per
// user key, so two racing requests for the same user cannot both pass a
// precondition check against the same stale state.
type StreakService struct {
	data *DataService
	now  func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStreakService(data *DataService) *StreakService {
	return &StreakService{
		data:  data,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// SetClock overrides the time source. Tests use this to run a simulated
// clock through the service.
func (s *StreakService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *StreakService) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// MutationResult is what every mutating operation hands back to the
// handler: the new state, whether anything actually changed, one
// human-readable message describing the outcome, and whether the remote
// sync went through.
type MutationResult struct {
	Data         streak.Data
	Changed      bool
	Message      string
	RemoteSynced bool
}

// CheckIn applies today's check-in for the record under key.
func (s *StreakService) CheckIn(ctx context.Context, key string, synced bool) (*MutationResult, error) {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	data, err := s.data.LoadState(ctx, key, synced)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	if !streak.CanCheckIn(data.LastCheckInDate, now) {
		return &MutationResult{
			Data:         data,
			Changed:      false,
			Message:      "You've already checked in today. Come back tomorrow!",
			RemoteSynced: true,
		}, nil
	}

	updated := streak.CheckIn(data, now)
	saved, remoteOK, err := s.data.SaveState(ctx, key, synced, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save state: %w", err)
	}

	return &MutationResult{
		Data:         saved,
		Changed:      true,
		Message:      fmt.Sprintf("Checked in! Day %d of your streak, $%d earned so far.", saved.CurrentStreak, saved.TotalReward),
		RemoteSynced: remoteOK,
	}, nil
}

// StartSession opens a study session, a no-op if one is already running.
func (s *StreakService) StartSession(ctx context.Context, key string, synced bool) (*MutationResult, error) {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	data, err := s.data.LoadState(ctx, key, synced)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	if data.OngoingSession != nil {
		return &MutationResult{
			Data:         data,
			Changed:      false,
			Message:      "A study session is already running.",
			RemoteSynced: true,
		}, nil
	}

	updated := streak.StartSession(data, now)
	saved, remoteOK, err := s.data.SaveState(ctx, key, synced, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save state: %w", err)
	}

	return &MutationResult{
		Data:         saved,
		Changed:      true,
		Message:      "Study session started. Bonne chance!",
		RemoteSynced: remoteOK,
	}, nil
}

// StopSession closes the running session, a no-op if none is running.
func (s *StreakService) StopSession(ctx context.Context, key string, synced bool) (*MutationResult, error) {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	data, err := s.data.LoadState(ctx, key, synced)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	if data.OngoingSession == nil {
		return &MutationResult{
			Data:         data,
			Changed:      false,
			Message:      "No study session is running.",
			RemoteSynced: true,
		}, nil
	}

	updated := streak.StopSession(data, now)
	saved, remoteOK, err := s.data.SaveState(ctx, key, synced, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save state: %w", err)
	}

	last := saved.StudySessions[len(saved.StudySessions)-1]
	return &MutationResult{
		Data:         saved,
		Changed:      true,
		Message:      fmt.Sprintf("Session saved: %s of study time.", dateutil.FormatHMS(last.Duration)),
		RemoteSynced: remoteOK,
	}, nil
}

// ReplaceState overwrites the stored record with a client-supplied one
// (the saveState operation of the data contract). Normalization happens
// inside the save.
func (s *StreakService) ReplaceState(ctx context.Context, key string, synced bool, data streak.Data) (*MutationResult, error) {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	saved, remoteOK, err := s.data.SaveState(ctx, key, synced, data)
	if err != nil {
		return nil, fmt.Errorf("failed to save state: %w", err)
	}
	return &MutationResult{
		Data:         saved,
		Changed:      true,
		Message:      "Your progress has been saved.",
		RemoteSynced: remoteOK,
	}, nil
}

// GetState loads (and for authenticated users reconciles) the record.
func (s *StreakService) GetState(ctx context.Context, key string, synced bool) (streak.Data, error) {
	return s.data.LoadState(ctx, key, synced)
}

// CanCheckIn answers the check-in availability read.
func (s *StreakService) CanCheckIn(ctx context.Context, key string, synced bool) (bool, error) {
	data, err := s.data.LoadState(ctx, key, synced)
	if err != nil {
		return false, err
	}
	return streak.CanCheckIn(data.LastCheckInDate, s.now()), nil
}

// SessionStatus is the elapsed-time read the timer display polls. It
// recomputes from the stored start time on every call and never mutates
// anything.
type SessionStatus struct {
	Running bool            `json:"running"`
	Session *streak.Session `json:"session,omitempty"`
	Elapsed int64           `json:"elapsedSeconds"`
	Display string          `json:"display"`
}

func (s *StreakService) OngoingSession(ctx context.Context, key string, synced bool) (*SessionStatus, error) {
	data, err := s.data.LoadState(ctx, key, synced)
	if err != nil {
		return nil, err
	}

	elapsed := streak.ElapsedSeconds(data, s.now())
	return &SessionStatus{
		Running: data.OngoingSession != nil,
		Session: data.OngoingSession,
		Elapsed: elapsed,
		Display: dateutil.FormatHMS(elapsed),
	}, nil
}

// Statistics returns the profile stats bundle.
func (s *StreakService) Statistics(ctx context.Context, key string, synced bool) (streak.Stats, error) {
	data, err := s.data.LoadState(ctx, key, synced)
	if err != nil {
		return streak.Stats{}, err
	}
	return streak.Statistics(data, s.now()), nil
}

// Summary returns one of the grouped study-time views.
func (s *StreakService) Summary(ctx context.Context, key string, synced bool, granularity string) (map[string]int64, error) {
	data, err := s.data.LoadState(ctx, key, synced)
	if err != nil {
		return nil, err
	}

	switch granularity {
	case "daily":
		return streak.DailySummary(data.StudySessions), nil
	case "weekly":
		return streak.WeeklySummary(data.StudySessions), nil
	case "monthly":
		return streak.MonthlySummary(data.StudySessions), nil
	case "yearly":
		return streak.YearlySummary(data.StudySessions), nil
	}
	return nil, fmt.Errorf("unknown summary granularity %q", granularity)
}

// RecentSummary returns the dashboard bundle, computed against now.
func (s *StreakService) RecentSummary(ctx context.Context, key string, synced bool) (*streak.RecentSummary, error) {
	data, err := s.data.LoadState(ctx, key, synced)
	if err != nil {
		return nil, err
	}
	return streak.Recent(data, s.now()), nil
}

// RangeTotal sums study time over [start, end] inclusive.
func (s *StreakService) RangeTotal(ctx context.Context, key string, synced bool, start, end time.Time) (int64, error) {
	data, err := s.data.LoadState(ctx, key, synced)
	if err != nil {
		return 0, err
	}
	return streak.TimeInRange(data.StudySessions, start, end), nil
}
