package store

import (
	"database/sql"
	"time"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
)

// InsertAlert appends a new alert and returns its id.
func (s *Store) InsertAlert(a models.Alert) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO alerts (severity, zone, message, acknowledged, created_at)
		VALUES (?, ?, ?, FALSE, ?)
	`, a.Severity, a.Zone, a.Message, a.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetAlert returns one alert by id, or nil when absent.
func (s *Store) GetAlert(id int64) (*models.Alert, error) {
	row := s.db.QueryRow(`
		SELECT id, severity, zone, message, acknowledged, acknowledged_by, acknowledged_at, created_at
		FROM alerts
		WHERE id = ?
	`, id)

	var a models.Alert
	var by sql.NullString
	var at sql.NullTime
	err := row.Scan(&a.ID, &a.Severity, &a.Zone, &a.Message, &a.Acknowledged, &by, &at, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if by.Valid {
		a.AcknowledgedBy = &by.String
	}
	if at.Valid {
		a.AcknowledgedAt = &at.Time
	}
	return &a, nil
}

// GetAlerts returns alerts, unacknowledged first, newest first within each
// group. When unackedOnly is set, acknowledged alerts are excluded.
func (s *Store) GetAlerts(unackedOnly bool) ([]models.Alert, error) {
	query := `
		SELECT id, severity, zone, message, acknowledged, acknowledged_by, acknowledged_at, created_at
		FROM alerts`
	if unackedOnly {
		query += `
		WHERE acknowledged = FALSE`
	}
	query += `
		ORDER BY acknowledged ASC, created_at DESC`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var by sql.NullString
		var at sql.NullTime
		if err := rows.Scan(&a.ID, &a.Severity, &a.Zone, &a.Message, &a.Acknowledged, &by, &at, &a.CreatedAt); err != nil {
			return nil, err
		}
		if by.Valid {
			a.AcknowledgedBy = &by.String
		}
		if at.Valid {
			a.AcknowledgedAt = &at.Time
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// AcknowledgeAlert marks an alert acknowledged. The guard on acknowledged
// makes repeat calls no-ops that preserve the original acknowledger and
// timestamp. Returns false when no row changed.
func (s *Store) AcknowledgeAlert(id int64, by string, now time.Time) (bool, error) {
	res, err := s.db.Exec(`
		UPDATE alerts
		SET acknowledged = TRUE, acknowledged_by = ?, acknowledged_at = ?
		WHERE id = ? AND acknowledged = FALSE
	`, by, now, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CountUnacknowledgedAlerts returns the number of alerts awaiting an
// operator acknowledgement.
func (s *Store) CountUnacknowledgedAlerts() (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM alerts WHERE acknowledged = FALSE`).Scan(&n)
	return n, err
}
