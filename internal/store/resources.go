package store

import (
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
)

// InsertResourceNeed appends a resource observation. Rows are never updated;
// the current value per (camp, resource type) is the latest by recorded_at.
func (s *Store) InsertResourceNeed(r models.ResourceNeed) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO resource_needs (camp_id, resource_type, need_pct, stock_pct, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`, r.CampID, r.ResourceType, r.NeedPct, r.StockPct, r.RecordedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// currentResourceRows selects the latest observation per (camp, resource type).
const currentResourceRows = `
	SELECT id, camp_id, resource_type, need_pct, stock_pct, recorded_at
	FROM (
		SELECT r.*,
			ROW_NUMBER() OVER (
				PARTITION BY camp_id, resource_type
				ORDER BY recorded_at DESC, id DESC
			) AS rn
		FROM resource_needs r
	)
	WHERE rn = 1`

// GetResourceNeeds returns the current observation per (camp, resource type),
// joined with camp name and zone, most needed first. campID 0 means all camps.
func (s *Store) GetResourceNeeds(campID int64) ([]models.ResourceNeed, error) {
	query := `
		SELECT cur.id, cur.camp_id, cur.resource_type, cur.need_pct, cur.stock_pct, cur.recorded_at,
			c.name, c.zone
		FROM (` + currentResourceRows + `
		) cur
		JOIN camp_locations c ON c.id = cur.camp_id`
	args := []any{}
	if campID != 0 {
		query += `
		WHERE cur.camp_id = ?`
		args = append(args, campID)
	}
	query += `
		ORDER BY cur.need_pct DESC, c.name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var needs []models.ResourceNeed
	for rows.Next() {
		var r models.ResourceNeed
		if err := rows.Scan(&r.ID, &r.CampID, &r.ResourceType, &r.NeedPct, &r.StockPct,
			&r.RecordedAt, &r.CampName, &r.CampZone); err != nil {
			return nil, err
		}
		needs = append(needs, r)
	}
	return needs, rows.Err()
}

type ResourceAverages struct {
	AvgNeedPct  float64 `json:"avg_need_pct"`
	AvgStockPct float64 `json:"avg_stock_pct"`
}

// GetResourceSummary averages the current observations across camps, keyed by
// resource type. An empty table yields an empty map.
func (s *Store) GetResourceSummary() (map[string]ResourceAverages, error) {
	rows, err := s.db.Query(`
		SELECT resource_type, AVG(need_pct), AVG(stock_pct)
		FROM (` + currentResourceRows + `
		)
		GROUP BY resource_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summary := make(map[string]ResourceAverages)
	for rows.Next() {
		var resourceType string
		var avg ResourceAverages
		if err := rows.Scan(&resourceType, &avg.AvgNeedPct, &avg.AvgStockPct); err != nil {
			return nil, err
		}
		summary[resourceType] = avg
	}
	return summary, rows.Err()
}
