// Package kv is the namespaced key-value primitive underneath every
// collection. Each logical namespace (records, contacts, templates, logs,
// drafts, account registry, session) lives under its own key and is encoded
// independently, so corruption of one never affects the others.
package kv

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/apex/internal/apperr"
)

// Store is the persistence boundary. Implementations must treat values as
// opaque strings.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set writes the value for key, replacing any previous value. A write
	// the backend rejects for space wraps apperr.ErrStorageFull.
	Set(key, value string) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error
}

// SQLiteStore stores all namespaces as rows of a single kv table.
type SQLiteStore struct {
	db *sql.DB

	// maxBytes caps the total size of stored values, emulating the quota
	// of the browser store this layout was lifted from. Zero means no cap.
	maxBytes int64
}

func NewSQLiteStore(db *sql.DB, maxBytes int64) *SQLiteStore {
	return &SQLiteStore{db: db, maxBytes: maxBytes}
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	// The quota check and the write share one transaction so two
	// concurrent Sets cannot both pass the check and jointly exceed the
	// cap.
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	defer tx.Rollback()

	if s.maxBytes > 0 {
		var used int64
		err := tx.QueryRow(
			`SELECT COALESCE(SUM(LENGTH(value)), 0) FROM kv WHERE key != ?`, key,
		).Scan(&used)
		if err != nil {
			return fmt.Errorf("set %q: %w", key, err)
		}
		if used+int64(len(value)) > s.maxBytes {
			return fmt.Errorf("set %q: %w", key, apperr.ErrStorageFull)
		}
	}

	_, err = tx.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		if isFull(err) {
			return fmt.Errorf("set %q: %w", key, apperr.ErrStorageFull)
		}
		return fmt.Errorf("set %q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// isFull detects the SQLITE_FULL class of errors from the driver.
func isFull(err error) bool {
	return err != nil && strings.Contains(err.Error(), "database or disk is full")
}
