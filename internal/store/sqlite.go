// Package store persists the per-class timestamp pair: the latest known
// upstream timestamp and the timestamp of the currently installed artifact
// set. Writes are validated so a stored timestamp can never move backwards.
package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/blocklistd/blocklistd/pkg/blocklib"
)

const (
	kindInstalled = "installed"
	kindLatest    = "latest"
)

const schema = `
CREATE TABLE IF NOT EXISTS artifact_timestamps (
	class TEXT NOT NULL,
	kind  TEXT NOT NULL,
	ts    INTEGER NOT NULL,
	PRIMARY KEY (class, kind)
);`

// SQLiteStore is a blocklib.TimestampStore backed by a sqlite database
// file. Safe for concurrent use.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the
// schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open timestamp db: %w", err)
	}
	// Serialize writers; sqlite tolerates only one at a time.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init timestamp db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Installed returns the installed timestamp for class, TimestampNone when
// no artifact set was ever installed.
func (s *SQLiteStore) Installed(class blocklib.ArtifactClass) (blocklib.Timestamp, error) {
	return s.read(class, kindInstalled)
}

// Latest returns the latest known upstream timestamp for class,
// TimestampNone when no check ever succeeded.
func (s *SQLiteStore) Latest(class blocklib.ArtifactClass) (blocklib.Timestamp, error) {
	return s.read(class, kindLatest)
}

// SetInstalled records ts as the installed timestamp for class.
func (s *SQLiteStore) SetInstalled(class blocklib.ArtifactClass, ts blocklib.Timestamp) error {
	return s.write(class, kindInstalled, ts)
}

// SetLatest records ts as the latest known upstream timestamp for class.
func (s *SQLiteStore) SetLatest(class blocklib.ArtifactClass, ts blocklib.Timestamp) error {
	return s.write(class, kindLatest, ts)
}

func (s *SQLiteStore) read(class blocklib.ArtifactClass, kind string) (blocklib.Timestamp, error) {
	var ts int64
	err := s.db.QueryRow(
		`SELECT ts FROM artifact_timestamps WHERE class = ? AND kind = ?`,
		string(class), kind,
	).Scan(&ts)
	switch {
	case err == sql.ErrNoRows:
		return blocklib.TimestampNone, nil
	case err != nil:
		return blocklib.TimestampUnknown, fmt.Errorf("read %s/%s: %w", class, kind, err)
	}
	return blocklib.Timestamp(ts), nil
}

// write validates ts against the stored value inside a transaction, so two
// concurrent writers cannot interleave a regression past the check.
func (s *SQLiteStore) write(class blocklib.ArtifactClass, kind string, ts blocklib.Timestamp) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", class, kind, err)
	}
	defer tx.Rollback()

	stored := blocklib.TimestampNone
	var cur int64
	err = tx.QueryRow(
		`SELECT ts FROM artifact_timestamps WHERE class = ? AND kind = ?`,
		string(class), kind,
	).Scan(&cur)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return fmt.Errorf("write %s/%s: %w", class, kind, err)
	default:
		stored = blocklib.Timestamp(cur)
	}

	if err := blocklib.ValidateTimestampWrite(stored, ts); err != nil {
		return fmt.Errorf("write %s/%s: %w", class, kind, err)
	}
	if ts == stored {
		return nil
	}

	if _, err := tx.Exec(
		`INSERT INTO artifact_timestamps (class, kind, ts) VALUES (?, ?, ?)
		 ON CONFLICT (class, kind) DO UPDATE SET ts = excluded.ts`,
		string(class), kind, int64(ts),
	); err != nil {
		return fmt.Errorf("write %s/%s: %w", class, kind, err)
	}
	return tx.Commit()
}

var _ blocklib.TimestampStore = (*SQLiteStore)(nil)
