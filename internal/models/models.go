package models

import (
	"encoding/json"
	"time"
)

// Dates are stored and exchanged as YYYY-MM-DD strings, matching the UNHCR
// export format. Lexical order equals chronological order.
const DateFormat = "2006-01-02"

// PopulationSample is one point in the UNHCR population timeseries.
// DataDate is unique across the series.
type PopulationSample struct {
	DataDate    string `json:"data_date"`
	Individuals int64  `json:"individuals"`
}

// DemographicSnapshot is a periodic sex/age breakdown of the population.
type DemographicSnapshot struct {
	SnapshotDate  string `json:"snapshot_date"`
	Month         int    `json:"month"`
	Year          int    `json:"year"`
	MaleTotal     int64  `json:"male_total"`
	FemaleTotal   int64  `json:"female_total"`
	ChildrenTotal int64  `json:"children_total"`
	UACTotal      int64  `json:"uac_total"`
}

// Camp statuses.
const (
	CampStatusActive   = "active"
	CampStatusFull     = "full"
	CampStatusClosed   = "closed"
	CampStatusPlanning = "planning"
)

type Camp struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Zone         string  `json:"zone"`
	CampType     string  `json:"camp_type"` // "formal" or "informal"
	Population   int64   `json:"population"`
	Capacity     int64   `json:"capacity"` // 0 for non-residential sites
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Status       string  `json:"status"`
	Source       string  `json:"source"`
	LastVerified string  `json:"last_verified"`
}

// Detection object types recognised by the imagery model.
const (
	ObjectTent       = "tent"
	ObjectLatrine    = "latrine"
	ObjectWaterPoint = "water_point"
	ObjectSolar      = "solar"
	ObjectTruck      = "truck"
)

// Detection is one AI-identified object from a drone flight pass.
// FlightID is a soft reference: it may not resolve to a stored flight.
type Detection struct {
	ID         int64           `json:"id"`
	FlightID   string          `json:"flight_id"`
	ObjectType string          `json:"object_type"`
	Confidence float64         `json:"confidence"` // in [0,1]
	Lat        float64         `json:"lat"`
	Lng        float64         `json:"lng"`
	Properties json.RawMessage `json:"properties"` // free-form attribute bag
	DetectedAt time.Time       `json:"detected_at"`
}

// Flight statuses.
const (
	FlightPlanned    = "planned"
	FlightInProgress = "in-progress"
	FlightCompleted  = "completed"
	FlightFailed     = "failed"
)

type Flight struct {
	ID           string  `json:"id"` // natural id, e.g. "flight-47"
	FlightNumber int     `json:"flight_number"`
	Area         string  `json:"area"`
	AltitudeM    int     `json:"altitude_m"`
	Status       string  `json:"status"`
	CoveragePct  float64 `json:"coverage_pct"`
	ImageCount   int     `json:"image_count"`
	FlightDate   string  `json:"flight_date"`
	PilotName    *string `json:"pilot_name"`
}

// ResourceNeed is one observation of unmet demand for a resource type at a
// camp. Rows are append-only; the current value per (camp, resource type) is
// the most recent by RecordedAt.
type ResourceNeed struct {
	ID           int64     `json:"id"`
	CampID       int64     `json:"camp_id"`
	ResourceType string    `json:"resource_type"`
	NeedPct      float64   `json:"need_pct"`  // in [0,100]
	StockPct     float64   `json:"stock_pct"` // in [0,100]
	RecordedAt   time.Time `json:"recorded_at"`

	// Populated on reads that join camp_locations.
	CampName string `json:"camp_name,omitempty"`
	CampZone string `json:"camp_zone,omitempty"`
}

// Alert severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Alert is an operator-facing notification. Acknowledged transitions
// false -> true exactly once; AcknowledgedBy/At are set together.
type Alert struct {
	ID             int64      `json:"id"`
	Severity       string     `json:"severity"`
	Zone           string     `json:"zone"`
	Message        string     `json:"message"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedBy *string    `json:"acknowledged_by"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Truck statuses.
const (
	TruckEnRoute    = "en-route"
	TruckDelivering = "delivering"
	TruckReturning  = "returning"
	TruckIdle       = "idle"
)

// Truck is a live GPS position, overwritten in place on update.
type Truck struct {
	ID        string    `json:"id"` // natural id, e.g. "truck-03"
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Cargo     string    `json:"cargo"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	ETA       *string   `json:"eta"`
	UpdatedAt time.Time `json:"updated_at"`
}
