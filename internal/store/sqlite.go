package store

import (
	"database/sql"
)

// Store wraps the SQLite database holding all camp-tracking relations.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Ping verifies the database is reachable; used by the health endpoint.
func (s *Store) Ping() error {
	var one int
	return s.db.QueryRow(`SELECT 1`).Scan(&one)
}
