package dashclient

import (
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
)

// DashboardData is the composite snapshot behind the main dashboard view.
type DashboardData struct {
	Stats           DashboardStats
	PopulationTrend []models.PopulationSample
	Camps           []models.Camp
	Trucks          []models.Truck
	Alerts          []models.Alert
	ResourceNeeds   map[string]float64
	Flights         []models.Flight
	Source          string
}

type DashboardStats struct {
	TotalPopulation int64   `json:"total_population"`
	PopulationAsOf  *string `json:"population_as_of"`
	Tents           int64   `json:"tents"`
	Latrines        int64   `json:"latrines"`
	WaterPoints     int64   `json:"water_points"`
	AidTrucks       int64   `json:"aid_trucks"`
	LastUpdate      string  `json:"last_update"`
}

// PopulationTrend is a chronological window of the population timeseries
// with the net change over the window.
type PopulationTrend struct {
	Data       []models.PopulationSample
	PeriodDays int
	Change     int64
	PctChange  float64
}

type PopulationLatest struct {
	LatestCount  int64                       `json:"latest_count"`
	AsOfDate     *string                     `json:"as_of_date"`
	Demographics *models.DemographicSnapshot `json:"demographics"`
	Source       string                      `json:"source"`
}

type DetectionStats struct {
	Tents       int64 `json:"tents"`
	Latrines    int64 `json:"latrines"`
	WaterPoints int64 `json:"water_points"`
	SolarPanels int64 `json:"solar_panels"`
	Total       int64 `json:"total"`
}

type ResourceAverages struct {
	AvgNeedPct  float64 `json:"avg_need_pct"`
	AvgStockPct float64 `json:"avg_stock_pct"`
}

// NewFlight is the request body for CreateFlight. PilotName is omitted from
// the JSON entirely when nil.
type NewFlight struct {
	FlightNumber int     `json:"flight_number"`
	Area         string  `json:"area"`
	AltitudeM    int     `json:"altitude_m"`
	PilotName    *string `json:"pilot_name,omitempty"`
}

type Health struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}
