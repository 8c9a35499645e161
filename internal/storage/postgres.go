package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Universesboy/french-streak-app/internal/streak"
)

// PostgresStore is the alternative remote backend: one JSONB document
// per user in a user_streaks table. Deployments without Firebase
// credentials run against this.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, db *pgxpool.Pool) (*PostgresStore, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS user_streaks (
		uid         TEXT PRIMARY KEY,
		streak_data JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
	`
	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create user_streaks table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Load(ctx context.Context, uid string) (*streak.Data, error) {
	query := `
	SELECT streak_data
	FROM user_streaks
	WHERE uid = $1
	`

	var raw []byte
	err := s.db.QueryRow(ctx, query, uid).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load streak data for %s: %w", uid, err)
	}

	var data streak.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode streak data for %s: %w", uid, err)
	}

	normalized := streak.Normalize(data)
	return &normalized, nil
}

func (s *PostgresStore) Save(ctx context.Context, uid string, data *streak.Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode streak data for %s: %w", uid, err)
	}

	query := `
	INSERT INTO user_streaks (uid, streak_data, created_at, updated_at)
	VALUES ($1, $2, NOW(), NOW())
	ON CONFLICT (uid)
	DO UPDATE SET
		streak_data = $2,
		updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, uid, raw); err != nil {
		return fmt.Errorf("failed to save streak data for %s: %w", uid, err)
	}
	return nil
}

func (s *PostgresStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT uid FROM user_streaks ORDER BY uid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user streaks: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("failed to scan uid: %w", err)
		}
		keys = append(keys, uid)
	}
	return keys, rows.Err()
}
