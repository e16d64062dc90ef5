package store

import (
	"database/sql"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
)

// InsertDetection appends an AI detection row. The flight reference is soft:
// no foreign key is enforced, dangling references are kept and counted.
func (s *Store) InsertDetection(d models.Detection) error {
	var props any
	if len(d.Properties) > 0 {
		props = string(d.Properties)
	}
	_, err := s.db.Exec(`
		INSERT INTO ai_detections (flight_id, object_type, confidence, lat, lng, properties, detected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.FlightID, d.ObjectType, d.Confidence, d.Lat, d.Lng, props, d.DetectedAt)
	return err
}

// DetectionFilter narrows GetDetections. Zero values mean "no filter".
type DetectionFilter struct {
	FlightID   string
	ObjectType string
	Limit      int
}

func (s *Store) GetDetections(f DetectionFilter) ([]models.Detection, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 500
	}

	query := `
		SELECT id, flight_id, object_type, confidence, lat, lng, properties, detected_at
		FROM ai_detections WHERE 1=1`
	args := []any{}
	if f.FlightID != "" {
		query += ` AND flight_id = ?`
		args = append(args, f.FlightID)
	}
	if f.ObjectType != "" {
		query += ` AND object_type = ?`
		args = append(args, f.ObjectType)
	}
	query += ` ORDER BY detected_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []models.Detection
	for rows.Next() {
		var d models.Detection
		var props sql.NullString
		if err := rows.Scan(&d.ID, &d.FlightID, &d.ObjectType, &d.Confidence,
			&d.Lat, &d.Lng, &props, &d.DetectedAt); err != nil {
			return nil, err
		}
		if props.Valid {
			d.Properties = []byte(props.String)
		}
		detections = append(detections, d)
	}
	return detections, rows.Err()
}

// GetDetectionsInBounds returns detections inside a lat/lng bounding box.
func (s *Store) GetDetectionsInBounds(minLat, minLng, maxLat, maxLng float64, limit int) ([]models.Detection, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.db.Query(`
		SELECT id, flight_id, object_type, confidence, lat, lng, properties, detected_at
		FROM ai_detections
		WHERE lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?
		ORDER BY detected_at DESC
		LIMIT ?
	`, minLat, maxLat, minLng, maxLng, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var detections []models.Detection
	for rows.Next() {
		var d models.Detection
		var props sql.NullString
		if err := rows.Scan(&d.ID, &d.FlightID, &d.ObjectType, &d.Confidence,
			&d.Lat, &d.Lng, &props, &d.DetectedAt); err != nil {
			return nil, err
		}
		if props.Valid {
			d.Properties = []byte(props.String)
		}
		detections = append(detections, d)
	}
	return detections, rows.Err()
}

// CountDetectionsByType returns object_type -> count, optionally scoped to a
// flight. An unknown flight id yields an empty map, not an error.
func (s *Store) CountDetectionsByType(flightID string) (map[string]int64, error) {
	query := `SELECT object_type, COUNT(*) FROM ai_detections`
	args := []any{}
	if flightID != "" {
		query += ` WHERE flight_id = ?`
		args = append(args, flightID)
	}
	query += ` GROUP BY object_type`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var objectType string
		var n int64
		if err := rows.Scan(&objectType, &n); err != nil {
			return nil, err
		}
		counts[objectType] = n
	}
	return counts, rows.Err()
}
