package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS population_timeseries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    data_date TEXT NOT NULL UNIQUE,
    individuals INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS population_demographics (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    snapshot_date TEXT NOT NULL,
    month INTEGER,
    year INTEGER,
    male_total INTEGER,
    female_total INTEGER,
    children_total INTEGER,
    uac_total INTEGER,
    UNIQUE(snapshot_date)
);

CREATE TABLE IF NOT EXISTS camp_locations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    zone TEXT,
    camp_type TEXT,
    population INTEGER DEFAULT 0,
    capacity INTEGER DEFAULT 0,
    lat REAL,
    lng REAL,
    status TEXT DEFAULT 'active',
    source TEXT,
    last_verified TEXT
);

CREATE TABLE IF NOT EXISTS ai_detections (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    flight_id TEXT NOT NULL,
    object_type TEXT NOT NULL,
    confidence REAL NOT NULL,
    lat REAL,
    lng REAL,
    properties TEXT,
    detected_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS drone_flights (
    id TEXT PRIMARY KEY,
    flight_number INTEGER NOT NULL,
    area TEXT,
    altitude_m INTEGER,
    status TEXT DEFAULT 'planned',
    coverage_pct REAL DEFAULT 0,
    image_count INTEGER DEFAULT 0,
    flight_date TEXT,
    pilot_name TEXT
);

CREATE TABLE IF NOT EXISTS alerts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    severity TEXT NOT NULL,
    zone TEXT,
    message TEXT NOT NULL,
    acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
    acknowledged_by TEXT,
    acknowledged_at DATETIME,
    created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trucks (
    id TEXT PRIMARY KEY,
    name TEXT,
    status TEXT DEFAULT 'idle',
    cargo TEXT,
    lat REAL,
    lng REAL,
    eta TEXT,
    updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_detections_flight ON ai_detections(flight_id);
CREATE INDEX IF NOT EXISTS idx_detections_type ON ai_detections(object_type);
CREATE INDEX IF NOT EXISTS idx_camps_status ON camp_locations(status);
CREATE INDEX IF NOT EXISTS idx_alerts_ack ON alerts(acknowledged, created_at);
`,
	},
	{
		Version:     2,
		Description: "Resource needs as append-only observations",
		SQL: `
CREATE TABLE IF NOT EXISTS resource_needs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    camp_id INTEGER NOT NULL REFERENCES camp_locations(id),
    resource_type TEXT NOT NULL,
    need_pct REAL NOT NULL,
    stock_pct REAL NOT NULL,
    recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_resources_current ON resource_needs(camp_id, resource_type, recorded_at);
`,
	},
	{
		Version:     3,
		Description: "Box-query indexes on spatial columns",
		SQL: `
CREATE INDEX IF NOT EXISTS idx_camps_latlng ON camp_locations(lat, lng);
CREATE INDEX IF NOT EXISTS idx_detections_latlng ON ai_detections(lat, lng);
`,
	},
}

func (s *Store) Migrate() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("get applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		log.Printf("migrations: applying %d - %s", m.Version, m.Description)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Description, time.Now().UTC(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

func (s *Store) ensureMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME
		)
	`)
	return err
}

func (s *Store) getAppliedMigrations() (map[int]bool, error) {
	rows, err := s.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (s *Store) MigrationVersion() (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
