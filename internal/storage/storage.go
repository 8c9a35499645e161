// Package storage provides the two interchangeable stores the streak
// record persists to: a device-local JSON file store and a remote
// per-user document store (Firestore or Postgres, chosen at startup).
package storage

import (
	"context"

	"github.com/Universesboy/french-streak-app/internal/streak"
)

// StateStore loads and saves one streak record per key. Load returns
// (nil, nil) when nothing is stored under the key; implementations never
// surface corrupt data as an error the caller has to handle — a record
// that cannot be read is an absent record.
type StateStore interface {
	Load(ctx context.Context, key string) (*streak.Data, error)
	Save(ctx context.Context, key string, data *streak.Data) error
}

// ListableStore is a StateStore that can enumerate every stored key,
// which the batch repair job needs.
type ListableStore interface {
	StateStore
	Keys(ctx context.Context) ([]string, error)
}
