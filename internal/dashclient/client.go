// Package dashclient is a typed client for the camp dashboard API. Every
// operation performs exactly one HTTP request; retry and caching are the
// caller's business.
package dashclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/httputil"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates a client for the dashboard API at baseURL,
// e.g. "http://localhost:8000".
func New(baseURL string) *Client {
	return &Client{
		httpClient: httputil.NewClient(),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// do performs one request and decodes a 2xx JSON body into out. Failures map
// onto the client error taxonomy: TransportError when no response arrived,
// RequestError for non-2xx, ShapeError for undecodable bodies.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(data)),
		}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &ShapeError{Field: "(body)"}
		}
	}
	return nil
}

// GetDashboardData fetches the composite snapshot. Every collection field is
// validated present; an empty dashboard is valid, a missing field is not.
func (c *Client) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	var env struct {
		Stats           *DashboardStats            `json:"stats"`
		PopulationTrend *[]models.PopulationSample `json:"population_trend"`
		Camps           *[]models.Camp             `json:"camps"`
		Trucks          *[]models.Truck            `json:"trucks"`
		Alerts          *[]models.Alert            `json:"alerts"`
		ResourceNeeds   *map[string]float64        `json:"resource_needs"`
		Flights         *[]models.Flight           `json:"flights"`
		Source          string                     `json:"source"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, &env); err != nil {
		return nil, err
	}

	switch {
	case env.Stats == nil:
		return nil, &ShapeError{Field: "stats"}
	case env.PopulationTrend == nil:
		return nil, &ShapeError{Field: "population_trend"}
	case env.Camps == nil:
		return nil, &ShapeError{Field: "camps"}
	case env.Trucks == nil:
		return nil, &ShapeError{Field: "trucks"}
	case env.Alerts == nil:
		return nil, &ShapeError{Field: "alerts"}
	case env.ResourceNeeds == nil:
		return nil, &ShapeError{Field: "resource_needs"}
	case env.Flights == nil:
		return nil, &ShapeError{Field: "flights"}
	}

	return &DashboardData{
		Stats:           *env.Stats,
		PopulationTrend: *env.PopulationTrend,
		Camps:           *env.Camps,
		Trucks:          *env.Trucks,
		Alerts:          *env.Alerts,
		ResourceNeeds:   *env.ResourceNeeds,
		Flights:         *env.Flights,
		Source:          env.Source,
	}, nil
}

// GetPopulationTrend fetches the last days samples in chronological order.
func (c *Client) GetPopulationTrend(ctx context.Context, days int) (*PopulationTrend, error) {
	var env struct {
		Data       *[]models.PopulationSample `json:"data"`
		PeriodDays int                        `json:"period_days"`
		Change     int64                      `json:"change"`
		PctChange  float64                    `json:"pct_change"`
	}
	path := "/api/population/trend?days=" + strconv.Itoa(days)
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, &ShapeError{Field: "data"}
	}
	return &PopulationTrend{
		Data:       *env.Data,
		PeriodDays: env.PeriodDays,
		Change:     env.Change,
		PctChange:  env.PctChange,
	}, nil
}

func (c *Client) GetLatestPopulation(ctx context.Context) (*PopulationLatest, error) {
	var latest PopulationLatest
	if err := c.do(ctx, http.MethodGet, "/api/population/latest", nil, &latest); err != nil {
		return nil, err
	}
	return &latest, nil
}

// GetCamps fetches all camp locations.
func (c *Client) GetCamps(ctx context.Context) ([]models.Camp, error) {
	var env struct {
		Count *int           `json:"count"`
		Camps *[]models.Camp `json:"camps"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/camps", nil, &env); err != nil {
		return nil, err
	}
	if env.Camps == nil {
		return nil, &ShapeError{Field: "camps"}
	}
	if env.Count == nil {
		return nil, &ShapeError{Field: "count"}
	}
	return *env.Camps, nil
}

// GetDetectionStats fetches detection counts, optionally scoped to a flight.
func (c *Client) GetDetectionStats(ctx context.Context, flightID string) (*DetectionStats, error) {
	path := "/api/detections/stats"
	if flightID != "" {
		path += "?flight_id=" + flightID
	}
	var stats DetectionStats
	if err := c.do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) GetTrucks(ctx context.Context) ([]models.Truck, error) {
	var env struct {
		Trucks *[]models.Truck `json:"trucks"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/trucks", nil, &env); err != nil {
		return nil, err
	}
	if env.Trucks == nil {
		return nil, &ShapeError{Field: "trucks"}
	}
	return *env.Trucks, nil
}

// GetAlerts fetches all alerts, unacknowledged first.
func (c *Client) GetAlerts(ctx context.Context) ([]models.Alert, error) {
	var env struct {
		Alerts *[]models.Alert `json:"alerts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/alerts", nil, &env); err != nil {
		return nil, err
	}
	if env.Alerts == nil {
		return nil, &ShapeError{Field: "alerts"}
	}
	return *env.Alerts, nil
}

// AcknowledgeAlert marks an alert as seen by an operator. The server echo is
// returned as an opaque document.
func (c *Client) AcknowledgeAlert(ctx context.Context, alertID int64, acknowledgedBy string) (json.RawMessage, error) {
	body := map[string]any{
		"alert_id":        alertID,
		"acknowledged_by": acknowledgedBy,
	}
	var echo json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/api/alerts/acknowledge", body, &echo); err != nil {
		return nil, err
	}
	return echo, nil
}

// CreateFlight registers a planned drone flight. The server assigns the id
// and flight date.
func (c *Client) CreateFlight(ctx context.Context, flight NewFlight) (*models.Flight, error) {
	if flight.AltitudeM == 0 {
		flight.AltitudeM = 120
	}
	var env struct {
		Success bool           `json:"success"`
		Flight  *models.Flight `json:"flight"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/flights", flight, &env); err != nil {
		return nil, err
	}
	if env.Flight == nil {
		return nil, &ShapeError{Field: "flight"}
	}
	return env.Flight, nil
}

func (c *Client) GetResourceSummary(ctx context.Context) (map[string]ResourceAverages, error) {
	var env struct {
		Resources *map[string]ResourceAverages `json:"resources"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/resources/summary", nil, &env); err != nil {
		return nil, err
	}
	if env.Resources == nil {
		return nil, &ShapeError{Field: "resources"}
	}
	return *env.Resources, nil
}

// HealthCheck probes the service and its database connection.
func (c *Client) HealthCheck(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
