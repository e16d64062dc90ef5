package store

import (
	"database/sql"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
)

// CreateFlight inserts a new drone flight. The natural id ("flight-N") must
// not already exist.
func (s *Store) CreateFlight(f models.Flight) error {
	var pilot sql.NullString
	if f.PilotName != nil {
		pilot = sql.NullString{String: *f.PilotName, Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO drone_flights (id, flight_number, area, altitude_m, status, coverage_pct, image_count, flight_date, pilot_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.FlightNumber, f.Area, f.AltitudeM, f.Status, f.CoveragePct, f.ImageCount, f.FlightDate, pilot)
	return err
}

// GetFlight returns a flight by natural id, or nil when absent.
func (s *Store) GetFlight(id string) (*models.Flight, error) {
	row := s.db.QueryRow(`
		SELECT id, flight_number, area, altitude_m, status, coverage_pct, image_count, flight_date, pilot_name
		FROM drone_flights
		WHERE id = ?
	`, id)

	var f models.Flight
	var pilot sql.NullString
	err := row.Scan(&f.ID, &f.FlightNumber, &f.Area, &f.AltitudeM, &f.Status,
		&f.CoveragePct, &f.ImageCount, &f.FlightDate, &pilot)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if pilot.Valid {
		f.PilotName = &pilot.String
	}
	return &f, nil
}

// GetFlights returns flights newest first. limit <= 0 returns all.
func (s *Store) GetFlights(limit int) ([]models.Flight, error) {
	query := `
		SELECT id, flight_number, area, altitude_m, status, coverage_pct, image_count, flight_date, pilot_name
		FROM drone_flights
		ORDER BY flight_date DESC, flight_number DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []models.Flight
	for rows.Next() {
		var f models.Flight
		var pilot sql.NullString
		if err := rows.Scan(&f.ID, &f.FlightNumber, &f.Area, &f.AltitudeM, &f.Status,
			&f.CoveragePct, &f.ImageCount, &f.FlightDate, &pilot); err != nil {
			return nil, err
		}
		if pilot.Valid {
			f.PilotName = &pilot.String
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

// UpdateFlightStatus moves a flight through its lifecycle and records
// coverage and imagery progress.
func (s *Store) UpdateFlightStatus(id, status string, coveragePct float64, imageCount int) error {
	_, err := s.db.Exec(`
		UPDATE drone_flights
		SET status = ?, coverage_pct = ?, image_count = ?
		WHERE id = ?
	`, status, coveragePct, imageCount, id)
	return err
}
