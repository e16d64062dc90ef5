package store

import (
	"math"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
)

// UpsertCamp inserts or updates a camp keyed by name. Camps arrive from
// external ingestion (OCHA HDX) as well as seeding, so name is the stable key.
func (s *Store) UpsertCamp(c models.Camp) error {
	_, err := s.db.Exec(`
		INSERT INTO camp_locations (name, zone, camp_type, population, capacity, lat, lng, status, source, last_verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			zone = excluded.zone,
			camp_type = excluded.camp_type,
			population = excluded.population,
			capacity = excluded.capacity,
			lat = excluded.lat,
			lng = excluded.lng,
			status = excluded.status,
			source = excluded.source,
			last_verified = excluded.last_verified
	`, c.Name, c.Zone, c.CampType, c.Population, c.Capacity, c.Lat, c.Lng, c.Status, c.Source, c.LastVerified)
	return err
}

// GetCamps returns camps, optionally filtered by status and zone.
func (s *Store) GetCamps(status, zone string) ([]models.Camp, error) {
	query := `
		SELECT id, name, zone, camp_type, population, capacity, lat, lng, status, source, last_verified
		FROM camp_locations WHERE 1=1`
	args := []any{}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if zone != "" {
		query += ` AND zone = ?`
		args = append(args, zone)
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var camps []models.Camp
	for rows.Next() {
		var c models.Camp
		if err := rows.Scan(&c.ID, &c.Name, &c.Zone, &c.CampType, &c.Population, &c.Capacity,
			&c.Lat, &c.Lng, &c.Status, &c.Source, &c.LastVerified); err != nil {
			return nil, err
		}
		camps = append(camps, c)
	}
	return camps, rows.Err()
}

// GetCampsInBounds returns camps inside a lat/lng bounding box, for map
// viewport queries.
func (s *Store) GetCampsInBounds(minLat, minLng, maxLat, maxLng float64) ([]models.Camp, error) {
	rows, err := s.db.Query(`
		SELECT id, name, zone, camp_type, population, capacity, lat, lng, status, source, last_verified
		FROM camp_locations
		WHERE lat BETWEEN ? AND ? AND lng BETWEEN ? AND ?
		ORDER BY name ASC
	`, minLat, maxLat, minLng, maxLng)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var camps []models.Camp
	for rows.Next() {
		var c models.Camp
		if err := rows.Scan(&c.ID, &c.Name, &c.Zone, &c.CampType, &c.Population, &c.Capacity,
			&c.Lat, &c.Lng, &c.Status, &c.Source, &c.LastVerified); err != nil {
			return nil, err
		}
		camps = append(camps, c)
	}
	return camps, rows.Err()
}

type CampsSummary struct {
	TotalPopulation int64   `json:"total_population"`
	TotalCapacity   int64   `json:"total_capacity"`
	OccupancyPct    float64 `json:"occupancy_pct"`
	ActiveCamps     int     `json:"active_camps"`
	TotalCamps      int     `json:"total_camps"`
}

// GetCampsSummary aggregates population and capacity across all camps.
// Occupancy is zero when total capacity is zero (non-residential sites only).
func (s *Store) GetCampsSummary() (*CampsSummary, error) {
	var sum CampsSummary
	err := s.db.QueryRow(`
		SELECT
			COALESCE(SUM(population), 0),
			COALESCE(SUM(capacity), 0),
			COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0),
			COUNT(*)
		FROM camp_locations
	`).Scan(&sum.TotalPopulation, &sum.TotalCapacity, &sum.ActiveCamps, &sum.TotalCamps)
	if err != nil {
		return nil, err
	}
	if sum.TotalCapacity > 0 {
		sum.OccupancyPct = math.Round(float64(sum.TotalPopulation)/float64(sum.TotalCapacity)*1000) / 10
	}
	return &sum, nil
}
