package store

import (
	"database/sql"
	"fmt"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
)

// UpsertPopulationSample inserts or replaces the count for a date.
// data_date is unique; re-ingesting a date overwrites the count.
func (s *Store) UpsertPopulationSample(p models.PopulationSample) error {
	_, err := s.db.Exec(`
		INSERT INTO population_timeseries (data_date, individuals)
		VALUES (?, ?)
		ON CONFLICT(data_date) DO UPDATE SET individuals = excluded.individuals
	`, p.DataDate, p.Individuals)
	return err
}

// UpsertPopulationSamples batches a slice of samples in one transaction.
func (s *Store) UpsertPopulationSamples(samples []models.PopulationSample) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO population_timeseries (data_date, individuals)
		VALUES (?, ?)
		ON CONFLICT(data_date) DO UPDATE SET individuals = excluded.individuals
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	for _, p := range samples {
		if _, err := stmt.Exec(p.DataDate, p.Individuals); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("upsert sample %s: %w", p.DataDate, err)
		}
	}
	stmt.Close()
	return tx.Commit()
}

// GetLatestPopulation returns the most recent sample, or nil when the
// timeseries is empty.
func (s *Store) GetLatestPopulation() (*models.PopulationSample, error) {
	row := s.db.QueryRow(`
		SELECT data_date, individuals
		FROM population_timeseries
		ORDER BY data_date DESC
		LIMIT 1
	`)

	var p models.PopulationSample
	err := row.Scan(&p.DataDate, &p.Individuals)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPopulationTrend returns the most recent n samples in chronological order.
func (s *Store) GetPopulationTrend(n int) ([]models.PopulationSample, error) {
	rows, err := s.db.Query(`
		SELECT data_date, individuals
		FROM population_timeseries
		ORDER BY data_date DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.PopulationSample
	for rows.Next() {
		var p models.PopulationSample
		if err := rows.Scan(&p.DataDate, &p.Individuals); err != nil {
			return nil, err
		}
		samples = append(samples, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into oldest-first order.
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}

// GetPopulationTimeseries returns samples in [fromDate, toDate] ascending.
// Empty bounds are open; limit caps the row count.
func (s *Store) GetPopulationTimeseries(fromDate, toDate string, limit int) ([]models.PopulationSample, error) {
	query := `SELECT data_date, individuals FROM population_timeseries WHERE 1=1`
	args := []any{}
	if fromDate != "" {
		query += ` AND data_date >= ?`
		args = append(args, fromDate)
	}
	if toDate != "" {
		query += ` AND data_date <= ?`
		args = append(args, toDate)
	}
	query += ` ORDER BY data_date ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.PopulationSample
	for rows.Next() {
		var p models.PopulationSample
		if err := rows.Scan(&p.DataDate, &p.Individuals); err != nil {
			return nil, err
		}
		samples = append(samples, p)
	}
	return samples, rows.Err()
}

// UpsertDemographics inserts or replaces a demographic snapshot by date.
func (s *Store) UpsertDemographics(d models.DemographicSnapshot) error {
	_, err := s.db.Exec(`
		INSERT INTO population_demographics (snapshot_date, month, year, male_total, female_total, children_total, uac_total)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(snapshot_date) DO UPDATE SET
			month = excluded.month,
			year = excluded.year,
			male_total = excluded.male_total,
			female_total = excluded.female_total,
			children_total = excluded.children_total,
			uac_total = excluded.uac_total
	`, d.SnapshotDate, d.Month, d.Year, d.MaleTotal, d.FemaleTotal, d.ChildrenTotal, d.UACTotal)
	return err
}

// GetLatestDemographics returns the most recent snapshot, or nil when none.
func (s *Store) GetLatestDemographics() (*models.DemographicSnapshot, error) {
	row := s.db.QueryRow(`
		SELECT snapshot_date, month, year, male_total, female_total, children_total, uac_total
		FROM population_demographics
		ORDER BY snapshot_date DESC
		LIMIT 1
	`)

	var d models.DemographicSnapshot
	err := row.Scan(&d.SnapshotDate, &d.Month, &d.Year, &d.MaleTotal, &d.FemaleTotal, &d.ChildrenTotal, &d.UACTotal)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
