// Package store persists leads and saved quote snapshots in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a lead or quote does not exist.
var ErrNotFound = errors.New("not found")

const timeLayout = time.RFC3339Nano

// Store wraps a migrated database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New returns a Store over db. The schema must already be migrated.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return t, nil
}
