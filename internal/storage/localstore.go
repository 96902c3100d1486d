package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vidyasagar/petsurf/internal/lastvisit"
)

// Backend hands out origin-scoped stores.
type Backend interface {
	Origin(origin string) lastvisit.Store
	Close() error
}

// LocalStorage is a per-origin key-value store persisted in SQLite,
// mirroring a browser's localStorage.
type LocalStorage struct {
	db *DB
}

var _ Backend = (*LocalStorage)(nil)

// NewLocalStorage creates a LocalStorage using the given database.
func NewLocalStorage(db *DB) *LocalStorage {
	return &LocalStorage{db: db}
}

// Origin returns the store for one origin, e.g. "https://petition.president.gov.ua".
func (ls *LocalStorage) Origin(origin string) lastvisit.Store {
	return &originStore{db: ls.db, origin: origin}
}

// Keys lists the keys stored for origin.
func (ls *LocalStorage) Keys(origin string) ([]string, error) {
	var keys []string
	err := ls.db.conn.Select(&keys,
		`SELECT key FROM local_storage WHERE origin = ? ORDER BY key`, origin)
	if err != nil {
		return nil, fmt.Errorf("listing keys for %s: %w", origin, err)
	}
	return keys, nil
}

// Close closes the underlying database.
func (ls *LocalStorage) Close() error {
	return ls.db.Close()
}

type originStore struct {
	db     *DB
	origin string
}

func (s *originStore) GetItem(key string) (string, bool, error) {
	var value string
	err := s.db.conn.Get(&value,
		`SELECT value FROM local_storage WHERE origin = ? AND key = ?`, s.origin, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting %s for %s: %w", key, s.origin, err)
	}
	return value, true, nil
}

func (s *originStore) SetItem(key, value string) error {
	_, err := s.db.conn.Exec(
		`INSERT INTO local_storage (origin, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(origin, key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		s.origin, key, value,
	)
	if err != nil {
		return fmt.Errorf("setting %s for %s: %w", key, s.origin, err)
	}
	return nil
}

func (s *originStore) RemoveItem(key string) error {
	_, err := s.db.conn.Exec(
		`DELETE FROM local_storage WHERE origin = ? AND key = ?`, s.origin, key)
	if err != nil {
		return fmt.Errorf("removing %s for %s: %w", key, s.origin, err)
	}
	return nil
}
