package store

import (
	"database/sql"
	"time"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
)

// UpsertTruck inserts or replaces a truck row by natural id.
func (s *Store) UpsertTruck(t models.Truck) error {
	var eta sql.NullString
	if t.ETA != nil {
		eta = sql.NullString{String: *t.ETA, Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO trucks (id, name, status, cargo, lat, lng, eta, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			cargo = excluded.cargo,
			lat = excluded.lat,
			lng = excluded.lng,
			eta = excluded.eta,
			updated_at = excluded.updated_at
	`, t.ID, t.Name, t.Status, t.Cargo, t.Lat, t.Lng, eta, t.UpdatedAt)
	return err
}

// GetTrucks returns all trucks ordered by id.
func (s *Store) GetTrucks() ([]models.Truck, error) {
	rows, err := s.db.Query(`
		SELECT id, name, status, cargo, lat, lng, eta, updated_at
		FROM trucks
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trucks []models.Truck
	for rows.Next() {
		var t models.Truck
		var eta sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &t.Status, &t.Cargo, &t.Lat, &t.Lng, &eta, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if eta.Valid {
			t.ETA = &eta.String
		}
		trucks = append(trucks, t)
	}
	return trucks, rows.Err()
}

// UpdateTruckPosition overwrites a truck's GPS fix in place. Status and eta
// are only touched when provided. Returns false when the truck is unknown.
func (s *Store) UpdateTruckPosition(id string, lat, lng float64, status, eta *string, now time.Time) (bool, error) {
	query := `UPDATE trucks SET lat = ?, lng = ?, updated_at = ?`
	args := []any{lat, lng, now}
	if status != nil {
		query += `, status = ?`
		args = append(args, *status)
	}
	if eta != nil {
		query += `, eta = ?`
		args = append(args, *eta)
	}
	query += ` WHERE id = ?`
	args = append(args, id)

	res, err := s.db.Exec(query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetTruck returns one truck by id, or nil when absent.
func (s *Store) GetTruck(id string) (*models.Truck, error) {
	row := s.db.QueryRow(`
		SELECT id, name, status, cargo, lat, lng, eta, updated_at
		FROM trucks
		WHERE id = ?
	`, id)

	var t models.Truck
	var eta sql.NullString
	err := row.Scan(&t.ID, &t.Name, &t.Status, &t.Cargo, &t.Lat, &t.Lng, &eta, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if eta.Valid {
		t.ETA = &eta.String
	}
	return &t, nil
}
