package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Visit is one page load, together with what the last-visited-petition
// script decided for it.
type Visit struct {
	ID           string    `db:"id"`
	TabID        int       `db:"tab_id"`
	URL          string    `db:"url"`
	Title        string    `db:"title"`
	HistoryIndex int       `db:"history_index"`
	Outcome      string    `db:"outcome"`
	VisitedAt    time.Time `db:"visited_at"`
}

// VisitStore records page loads in SQLite.
type VisitStore struct {
	db      *DB
	maxSize int // max number of visits to keep
}

// NewVisitStore creates a visit store using the given database.
func NewVisitStore(db *DB) *VisitStore {
	return &VisitStore{db: db, maxSize: 1000}
}

// Add records a visit. Empty URLs are ignored.
func (vs *VisitStore) Add(v Visit) error {
	if v.URL == "" {
		return nil
	}
	if v.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("creating visit id: %w", err)
		}
		v.ID = id.String()
	}
	if v.VisitedAt.IsZero() {
		v.VisitedAt = time.Now()
	}
	v.VisitedAt = v.VisitedAt.UTC()

	_, err := vs.db.conn.NamedExec(
		`INSERT INTO visits (id, tab_id, url, title, history_index, outcome, visited_at)
		 VALUES (:id, :tab_id, :url, :title, :history_index, :outcome, :visited_at)`, v)
	if err != nil {
		return fmt.Errorf("inserting visit %s: %w", v.URL, err)
	}

	// Trim if over max.
	_, err = vs.db.conn.Exec(
		`DELETE FROM visits WHERE id NOT IN (
			SELECT id FROM visits ORDER BY visited_at DESC, id DESC LIMIT ?)`, vs.maxSize)
	if err != nil {
		return fmt.Errorf("trimming visits: %w", err)
	}
	return nil
}

// Recent returns up to limit visits, newest first.
func (vs *VisitStore) Recent(limit int) ([]Visit, error) {
	if limit <= 0 {
		limit = vs.maxSize
	}
	var visits []Visit
	err := vs.db.conn.Select(&visits,
		`SELECT id, tab_id, url, title, history_index, outcome, visited_at
		 FROM visits ORDER BY visited_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing visits: %w", err)
	}
	return visits, nil
}

// Count returns the number of stored visits.
func (vs *VisitStore) Count() (int, error) {
	var n int
	if err := vs.db.conn.Get(&n, `SELECT COUNT(*) FROM visits`); err != nil {
		return 0, fmt.Errorf("counting visits: %w", err)
	}
	return n, nil
}

// Remove deletes one visit by id.
func (vs *VisitStore) Remove(id string) error {
	if _, err := vs.db.conn.Exec(`DELETE FROM visits WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing visit %s: %w", id, err)
	}
	return nil
}

// Clear removes all visits.
func (vs *VisitStore) Clear() error {
	if _, err := vs.db.conn.Exec(`DELETE FROM visits`); err != nil {
		return fmt.Errorf("clearing visits: %w", err)
	}
	return nil
}
