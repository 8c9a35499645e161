package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Universesboy/french-streak-app/internal/dateutil"
	"github.com/Universesboy/french-streak-app/internal/storage"
	"github.com/Universesboy/french-streak-app/internal/streak"
)

// DataService owns the read-modify-write cycle against the two stores.
// Every record passes through streak.Normalize on its way in and out, so
// partially-initialized data never reaches a caller or a store.
type DataService struct {
	local  storage.StateStore
	remote storage.StateStore // nil when running local-only
}

func NewDataService(local, remote storage.StateStore) *DataService {
	return &DataService{local: local, remote: remote}
}

// Synced reports whether a remote store is configured at all.
func (s *DataService) Synced() bool {
	return s.remote != nil
}

// LoadState returns the record under key. For an anonymous caller
// (synced=false) only the local store is consulted and an absent record
// becomes a fresh zero state. For an authenticated caller both stores
// are read and reconciled; a failed remote read degrades to the local
// copy rather than failing the load.
func (s *DataService) LoadState(ctx context.Context, key string, synced bool) (streak.Data, error) {
	local, err := s.local.Load(ctx, key)
	if err != nil {
		// A broken local read behaves like an absent record.
		log.Printf("Local load failed for %s, treating as absent: %v", key, err)
		local = nil
	}

	if !synced || s.remote == nil {
		if local != nil {
			return *local, nil
		}
		return streak.Zero(), nil
	}

	remote, err := s.remote.Load(ctx, key)
	if err != nil {
		log.Printf("Remote load failed for %s, falling back to local: %v", key, err)
		remote = nil
	}

	switch {
	case remote == nil && local == nil:
		return streak.Zero(), nil
	case remote == nil:
		return *local, nil
	case local == nil:
		return *remote, nil
	}

	merged, changed := mergeRecords(*local, *remote)
	if changed {
		// Best effort: the merged record is what we return either way.
		if err := s.remote.Save(ctx, key, &merged); err != nil {
			log.Printf("Failed to write merged record back for %s: %v", key, err)
		}
	}
	return merged, nil
}

// SaveState normalizes and persists the record. The local write must
// succeed; a remote write failure is logged and reported through the
// second return value so the caller can surface a soft warning, but it
// never fails the save.
func (s *DataService) SaveState(ctx context.Context, key string, synced bool, data streak.Data) (streak.Data, bool, error) {
	normalized := streak.Normalize(data)

	if err := s.local.Save(ctx, key, &normalized); err != nil {
		return normalized, false, fmt.Errorf("failed to save local state for %s: %w", key, err)
	}

	if !synced || s.remote == nil {
		return normalized, true, nil
	}

	if err := s.remote.Save(ctx, key, &normalized); err != nil {
		log.Printf("Remote save failed for %s, continuing local-only: %v", key, err)
		return normalized, false, nil
	}
	return normalized, true, nil
}

// RepairUser runs the data-repair pass over one remote record.
func (s *DataService) RepairUser(ctx context.Context, uid string, now time.Time) (streak.Data, error) {
	if s.remote == nil {
		return streak.Data{}, fmt.Errorf("no remote store configured")
	}

	data, err := s.remote.Load(ctx, uid)
	if err != nil {
		return streak.Data{}, fmt.Errorf("failed to load %s for repair: %w", uid, err)
	}
	if data == nil {
		return streak.Data{}, fmt.Errorf("user %s not found", uid)
	}

	repaired := streak.Repair(*data, now)
	if err := s.remote.Save(ctx, uid, &repaired); err != nil {
		return streak.Data{}, fmt.Errorf("failed to save repaired data for %s: %w", uid, err)
	}
	return repaired, nil
}

// RepairAll repairs every remote record and returns how many were
// processed. Individual failures are logged and skipped so one bad
// record cannot stall the batch.
func (s *DataService) RepairAll(ctx context.Context, now time.Time) (int, error) {
	lister, ok := s.remote.(storage.ListableStore)
	if !ok {
		return 0, fmt.Errorf("remote store does not support listing users")
	}

	keys, err := lister.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users for repair: %w", err)
	}

	repaired := 0
	for _, uid := range keys {
		if _, err := s.RepairUser(ctx, uid, now); err != nil {
			log.Printf("Repair skipped for %s: %v", uid, err)
			continue
		}
		repaired++
	}
	return repaired, nil
}

// mergeRecords reconciles a local and a remote copy of the same user's
// record, preferring remote as the base and overlaying local where local
// is ahead. Returns the chosen record and whether it differs from the
// remote copy (and so needs a write-back).
//
// The tiers run in order: a strictly more recent local check-in wins the
// whole record; otherwise extra local study days are unioned in with the
// derived counters recomputed; otherwise extra local sessions are
// unioned in keyed by start time. A local ongoing session is adopted
// whenever the base has none.
func mergeRecords(local, remote streak.Data) (streak.Data, bool) {
	if checkInAfter(local.LastCheckInDate, remote.LastCheckInDate) {
		return local, true
	}

	merged := remote
	changed := false

	if len(local.StudyDays) > len(remote.StudyDays) {
		days := unionDays(remote.StudyDays, local.StudyDays)
		merged.StudyDays = days
		merged.TotalDaysStudied = len(days)
		// The persisted longest streak only ever grows.
		if recomputed := streak.LongestStreakFromDays(days); recomputed > merged.LongestStreak {
			merged.LongestStreak = recomputed
		}
		changed = true
	} else if len(local.StudySessions) > len(remote.StudySessions) {
		merged.StudySessions = unionSessions(remote.StudySessions, local.StudySessions)
		changed = true
	}

	if local.OngoingSession != nil && merged.OngoingSession == nil {
		session := *local.OngoingSession
		merged.OngoingSession = &session
		changed = true
	}

	return merged, changed
}

// checkInAfter reports whether a is a strictly more recent check-in
// instant than b. Absent or unparseable values sort earliest.
func checkInAfter(a, b *string) bool {
	return checkInTime(a).After(checkInTime(b))
}

func checkInTime(s *string) time.Time {
	if s == nil || *s == "" {
		return time.Time{}
	}
	if t, err := dateutil.ParseTimestamp(*s); err == nil {
		return t
	}
	if t, err := dateutil.ParseDate(*s); err == nil {
		return t
	}
	return time.Time{}
}

func unionDays(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, days := range [][]string{base, extra} {
		for _, day := range days {
			if _, ok := seen[day]; ok {
				continue
			}
			seen[day] = struct{}{}
			out = append(out, day)
		}
	}
	return out
}

// unionSessions merges two session histories keyed by startTime. Local
// entries are applied second, so they win exact-start-time collisions.
// The result is re-sorted by start time to keep the history ordered.
func unionSessions(remote, local []streak.Session) []streak.Session {
	byStart := make(map[string]streak.Session, len(remote)+len(local))
	order := make([]string, 0, len(remote)+len(local))
	for _, sessions := range [][]streak.Session{remote, local} {
		for _, session := range sessions {
			if _, ok := byStart[session.StartTime]; !ok {
				order = append(order, session.StartTime)
			}
			byStart[session.StartTime] = session
		}
	}

	sort.Strings(order)
	out := make([]streak.Session, 0, len(order))
	for _, start := range order {
		out = append(out, byStart[start])
	}
	return out
}
