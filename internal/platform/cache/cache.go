// Package cache persists the registry snapshot to a local SQLite file so a
// restart survives the remote store being unreachable. The whole snapshot is
// stored as one JSON payload under a fixed key and overwritten wholesale on
// every registry mutation.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"appraisal/internal/domain/assessment"
)

// snapshotKey matches the storage key the original browser build used, so a
// migrated deployment keeps one recognizable name for its snapshot.
const snapshotKey = "metabev-assessments-v2"

type Snapshot struct {
	db *sql.DB
}

// Open creates the cache file (and its directory) when missing.
func Open(path string) (*Snapshot, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if _, err := db.Exec(`
    CREATE TABLE IF NOT EXISTS snapshots (
      cache_key TEXT PRIMARY KEY,
      payload TEXT NOT NULL,
      updated_at TEXT NOT NULL
    )
  `); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Snapshot{db: db}, nil
}

func (s *Snapshot) Close() error {
	return s.db.Close()
}

// Read returns the cached registry snapshot, or nil when none was written.
func (s *Snapshot) Read(ctx context.Context) ([]assessment.Assessment, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM snapshots WHERE cache_key = ?", snapshotKey).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache snapshot: %w", err)
	}
	var records []assessment.Assessment
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, fmt.Errorf("decode cache snapshot: %w", err)
	}
	return records, nil
}

// Write overwrites the snapshot wholesale.
func (s *Snapshot) Write(ctx context.Context, records []assessment.Assessment) error {
	if records == nil {
		records = []assessment.Assessment{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode cache snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
    INSERT INTO snapshots (cache_key, payload, updated_at)
    VALUES (?, ?, ?)
    ON CONFLICT (cache_key) DO UPDATE
    SET payload = excluded.payload, updated_at = excluded.updated_at
  `, snapshotKey, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write cache snapshot: %w", err)
	}
	return nil
}
