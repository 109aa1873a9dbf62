package classifier

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DatasetRow is one collected, classified sample.
type DatasetRow struct {
	ID        int64     `json:"id"`
	TicketID  string    `json:"ticket_id"`
	StationID string    `json:"station_id"`
	LDRCounts float64   `json:"ldr_counts"`
	PH        float64   `json:"ph"`
	Herb      string    `json:"herb"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists the dataset in sqlite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and if needed creates) the dataset database.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("classifier: open dataset db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS dataset (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ticket_id TEXT NOT NULL,
			station_id TEXT NOT NULL,
			ldr_counts REAL NOT NULL,
			ph REAL NOT NULL,
			herb TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("classifier: create dataset table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Insert appends one row to the dataset.
func (s *Store) Insert(row DatasetRow) error {
	_, err := s.db.Exec(`
		INSERT INTO dataset (ticket_id, station_id, ldr_counts, ph, herb, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		row.TicketID, row.StationID, row.LDRCounts, row.PH, row.Herb, row.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("classifier: insert sample: %w", err)
	}
	return nil
}

// Recent returns up to limit rows, newest first.
func (s *Store) Recent(limit int) ([]DatasetRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, ticket_id, station_id, ldr_counts, ph, herb, created_at
		FROM dataset
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("classifier: query dataset: %w", err)
	}
	defer rows.Close()

	var out []DatasetRow
	for rows.Next() {
		var r DatasetRow
		if err := rows.Scan(&r.ID, &r.TicketID, &r.StationID, &r.LDRCounts, &r.PH, &r.Herb, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
