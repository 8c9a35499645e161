package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Universesboy/french-streak-app/internal/streak"
)

// LocalStore keeps one JSON file per key under a data directory. It is
// the offline copy: every save lands here first, and it is the only
// store anonymous users get.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// filePath flattens the key into a safe file name. Keys are opaque user
// or device IDs, but defend against separators anyway.
func (s *LocalStore) filePath(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}

// Load reads the record for key. A missing file means no record. A file
// that fails to parse is backed up and treated as absent — a corrupt
// local copy must never take the app down.
func (s *LocalStore) Load(_ context.Context, key string) (*streak.Data, error) {
	path := s.filePath(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var data streak.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		backup := path + ".corrupt"
		if renameErr := os.Rename(path, backup); renameErr == nil {
			log.Printf("Corrupt local data for %s backed up to %s: %v", key, backup, err)
		} else {
			log.Printf("Corrupt local data for %s (backup failed: %v): %v", key, renameErr, err)
		}
		return nil, nil
	}

	normalized := streak.Normalize(data)
	return &normalized, nil
}

// Save writes the record atomically: temp file then rename, so a crash
// mid-write leaves the previous copy intact.
func (s *LocalStore) Save(_ context.Context, key string, data *streak.Data) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data for %s: %w", key, err)
	}

	path := s.filePath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file for %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file for %s: %w", key, err)
	}
	return nil
}

// Keys lists every key with a stored record.
func (s *LocalStore) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	return keys, nil
}
