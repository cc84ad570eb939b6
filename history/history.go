// Package history records every dataset load in a small sqlite database.
package history

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/mogaika/matrix3d/dataset"
)

type DB struct {
	*sql.DB
}

type Entry struct {
	Revision string    `json:"revision"`
	Name     string    `json:"name"`
	Rows     int       `json:"rows"`
	Cols     int       `json:"cols"`
	Bars     int       `json:"bars"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	LoadedAt time.Time `json:"loaded_at"`
}

func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %q", path)
	}
	// one connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS loads (
			revision          TEXT PRIMARY KEY,
			name              TEXT,
			row_count         INTEGER,
			col_count         INTEGER,
			bars              INTEGER,
			min_value         DOUBLE,
			max_value         DOUBLE,
			loaded_at         INTEGER
		);
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "Failed to create schema")
	}

	return &DB{db}, nil
}

func (db *DB) Record(s *dataset.Snapshot) error {
	l := s.Layout
	_, err := db.Exec(
		"INSERT INTO loads (revision, name, row_count, col_count, bars, min_value, max_value, loaded_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		s.Revision, s.Name, l.Rows, l.Cols, len(l.Cells), l.Bounds.Min, l.Bounds.Max, s.LoadedAt.UnixNano())
	return err
}

// List returns up to limit entries, newest first.
func (db *DB) List(limit int) ([]Entry, error) {
	rows, err := db.Query(
		"SELECT revision, name, row_count, col_count, bars, min_value, max_value, loaded_at FROM loads ORDER BY loaded_at DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to query loads")
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var loadedAt int64
		if err := rows.Scan(&e.Revision, &e.Name, &e.Rows, &e.Cols, &e.Bars, &e.Min, &e.Max, &loadedAt); err != nil {
			return nil, errors.Wrapf(err, "Failed to scan load")
		}
		e.LoadedAt = time.Unix(0, loadedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
