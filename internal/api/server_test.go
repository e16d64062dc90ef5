package api_test

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/api"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/store"

	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	s := store.New(db)
	if err := s.Migrate(); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	srv := api.NewServer(s, "8000")

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var health struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	if err := json.NewDecoder(w.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
	if health.Database != "connected" {
		t.Errorf("database = %q, want connected", health.Database)
	}
}

func TestRootEndpoint(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	srv := api.NewServer(s, "8000")

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"online"`) {
		t.Error("expected online status in info document")
	}
}

func TestDashboard_EmptyDatabase(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	srv := api.NewServer(s, "8000")

	req := httptest.NewRequest("GET", "/api/dashboard", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var snapshot map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}

	for _, field := range []string{"stats", "population_trend", "camps", "trucks", "alerts", "resource_needs", "flights", "source"} {
		raw, ok := snapshot[field]
		if !ok {
			t.Errorf("missing field %q", field)
			continue
		}
		if string(raw) == "null" {
			t.Errorf("field %q is null, want empty value", field)
		}
	}

	var trucks []any
	if err := json.Unmarshal(snapshot["trucks"], &trucks); err != nil {
		t.Fatalf("trucks not an array: %v", err)
	}
	if len(trucks) != 0 {
		t.Errorf("len(trucks) = %d, want 0", len(trucks))
	}
}

func TestDashboard_Populated(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	if err := s.UpsertPopulationSample(models.PopulationSample{DataDate: "2024-03-01", Individuals: 7800}); err != nil {
		t.Fatal(err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	if err := s.InsertDetection(models.Detection{FlightID: "flight-1", ObjectType: models.ObjectTent, Confidence: 0.9, DetectedAt: now}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertTruck(models.Truck{ID: "truck-01", Status: models.TruckIdle, UpdatedAt: now}); err != nil {
		t.Fatal(err)
	}

	srv := api.NewServer(s, "8000")
	req := httptest.NewRequest("GET", "/api/dashboard", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var snapshot struct {
		Stats struct {
			TotalPopulation int64  `json:"total_population"`
			Tents           int64  `json:"tents"`
			AidTrucks       int64  `json:"aid_trucks"`
			LastUpdate      string `json:"last_update"`
		} `json:"stats"`
		PopulationTrend []models.PopulationSample `json:"population_trend"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.Stats.TotalPopulation != 7800 {
		t.Errorf("total_population = %d, want 7800", snapshot.Stats.TotalPopulation)
	}
	if snapshot.Stats.Tents != 1 {
		t.Errorf("tents = %d, want 1", snapshot.Stats.Tents)
	}
	if snapshot.Stats.AidTrucks != 1 {
		t.Errorf("aid_trucks = %d, want 1", snapshot.Stats.AidTrucks)
	}
	if snapshot.Stats.LastUpdate == "" {
		t.Error("last_update missing")
	}
	if len(snapshot.PopulationTrend) != 1 {
		t.Errorf("len(population_trend) = %d, want 1", len(snapshot.PopulationTrend))
	}
}

func TestPopulationTrend_Chronological(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	dates := []string{"2024-03-03", "2024-03-01", "2024-03-02"}
	for i, d := range dates {
		if err := s.UpsertPopulationSample(models.PopulationSample{DataDate: d, Individuals: int64(7000 + i*100)}); err != nil {
			t.Fatal(err)
		}
	}

	srv := api.NewServer(s, "8000")
	req := httptest.NewRequest("GET", "/api/population/trend?days=7", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data       []models.PopulationSample `json:"data"`
		PeriodDays int                       `json:"period_days"`
		Change     int64                     `json:"change"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.PeriodDays != 7 {
		t.Errorf("period_days = %d, want 7", resp.PeriodDays)
	}
	if len(resp.Data) != 3 {
		t.Fatalf("len(data) = %d, want 3", len(resp.Data))
	}
	for i := 1; i < len(resp.Data); i++ {
		if resp.Data[i-1].DataDate >= resp.Data[i].DataDate {
			t.Errorf("data not ascending at %d: %s >= %s", i, resp.Data[i-1].DataDate, resp.Data[i].DataDate)
		}
	}
	// 2024-03-01: 7100, 2024-03-03: 7000
	if resp.Change != -100 {
		t.Errorf("change = %d, want -100", resp.Change)
	}
}

func TestCamps_Envelope(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	if err := s.UpsertCamp(models.Camp{Name: "Rukban", Zone: "northeast", Status: models.CampStatusActive, Lat: 33.3, Lng: 38.7}); err != nil {
		t.Fatal(err)
	}

	srv := api.NewServer(s, "8000")
	req := httptest.NewRequest("GET", "/api/camps?status=active", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Count int           `json:"count"`
		Camps []models.Camp `json:"camps"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 1 || len(resp.Camps) != 1 {
		t.Fatalf("count = %d, len(camps) = %d, want 1/1", resp.Count, len(resp.Camps))
	}
	if resp.Camps[0].Name != "Rukban" {
		t.Errorf("camp name = %q, want Rukban", resp.Camps[0].Name)
	}
}

func TestCreateFlight(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	srv := api.NewServer(s, "8000")

	body := strings.NewReader(`{"flight_number": 7, "area": "sector-b"}`)
	req := httptest.NewRequest("POST", "/api/flights", body)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool          `json:"success"`
		Flight  models.Flight `json:"flight"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Flight.ID != "flight-7" {
		t.Errorf("flight id = %q, want flight-7", resp.Flight.ID)
	}
	if resp.Flight.Status != models.FlightPlanned {
		t.Errorf("status = %q, want planned", resp.Flight.Status)
	}
	if resp.Flight.AltitudeM != 120 {
		t.Errorf("altitude_m = %d, want default 120", resp.Flight.AltitudeM)
	}
	if resp.Flight.PilotName != nil {
		t.Errorf("pilot_name = %v, want nil", resp.Flight.PilotName)
	}

	// Same flight number again conflicts.
	req = httptest.NewRequest("POST", "/api/flights", strings.NewReader(`{"flight_number": 7, "area": "sector-b"}`))
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 409 {
		t.Errorf("duplicate flight: expected 409, got %d", w.Code)
	}
}

func TestCreateFlight_Invalid(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	srv := api.NewServer(s, "8000")

	req := httptest.NewRequest("POST", "/api/flights", strings.NewReader(`{"flight_number": 0, "area": "x"}`))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 400 {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestTruckUpdate(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	if err := s.UpsertTruck(models.Truck{ID: "truck-01", Status: models.TruckEnRoute, UpdatedAt: time.Now().UTC()}); err != nil {
		t.Fatal(err)
	}

	srv := api.NewServer(s, "8000")
	body := strings.NewReader(`{"truck_id": "truck-01", "lat": 33.5, "lng": 38.8, "eta": "15:45"}`)
	req := httptest.NewRequest("PUT", "/api/trucks/update", body)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool         `json:"success"`
		Truck   models.Truck `json:"truck"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Truck.Lat != 33.5 || resp.Truck.Lng != 38.8 {
		t.Errorf("position = %v,%v, want 33.5,38.8", resp.Truck.Lat, resp.Truck.Lng)
	}
	if resp.Truck.Status != models.TruckEnRoute {
		t.Errorf("status = %q, want unchanged en-route", resp.Truck.Status)
	}
	if resp.Truck.ETA == nil || *resp.Truck.ETA != "15:45" {
		t.Errorf("eta = %v, want 15:45", resp.Truck.ETA)
	}
}

func TestTruckUpdate_Missing(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	srv := api.NewServer(s, "8000")

	body := strings.NewReader(`{"truck_id": "truck-99", "lat": 1, "lng": 2}`)
	req := httptest.NewRequest("PUT", "/api/trucks/update", body)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 404 {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestAcknowledgeAlert_Flow(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	id, err := s.InsertAlert(models.Alert{Severity: models.SeverityCritical, Zone: "north", Message: "water low", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatal(err)
	}

	srv := api.NewServer(s, "8000")

	ackBody := `{"alert_id": ` + itoa(id) + `, "acknowledged_by": "operator-1"}`
	req := httptest.NewRequest("POST", "/api/alerts/acknowledge", strings.NewReader(ackBody))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("acknowledge: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Repeat acknowledge is an idempotent success.
	req = httptest.NewRequest("POST", "/api/alerts/acknowledge", strings.NewReader(`{"alert_id": `+itoa(id)+`, "acknowledged_by": "operator-2"}`))
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("repeat acknowledge: expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/alerts", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("get alerts: expected 200, got %d", w.Code)
	}

	var resp struct {
		Alerts []models.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Alerts) != 1 {
		t.Fatalf("len(alerts) = %d, want 1", len(resp.Alerts))
	}
	if !resp.Alerts[0].Acknowledged {
		t.Error("alert not acknowledged after POST")
	}
	if resp.Alerts[0].AcknowledgedBy == nil || *resp.Alerts[0].AcknowledgedBy != "operator-1" {
		t.Errorf("acknowledged_by = %v, want operator-1", resp.Alerts[0].AcknowledgedBy)
	}
}

func TestAcknowledgeAlert_Missing(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	srv := api.NewServer(s, "8000")

	req := httptest.NewRequest("POST", "/api/alerts/acknowledge", strings.NewReader(`{"alert_id": 12345, "acknowledged_by": "op"}`))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 404 {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDetectionStats(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	now := time.Now().UTC()
	fixtures := []models.Detection{
		{FlightID: "flight-1", ObjectType: models.ObjectTent, Confidence: 0.9, DetectedAt: now},
		{FlightID: "flight-1", ObjectType: models.ObjectTent, Confidence: 0.8, DetectedAt: now},
		{FlightID: "flight-1", ObjectType: models.ObjectSolar, Confidence: 0.7, DetectedAt: now},
	}
	for _, d := range fixtures {
		if err := s.InsertDetection(d); err != nil {
			t.Fatal(err)
		}
	}

	srv := api.NewServer(s, "8000")
	req := httptest.NewRequest("GET", "/api/detections/stats?flight_id=flight-1", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Tents       int64 `json:"tents"`
		SolarPanels int64 `json:"solar_panels"`
		Total       int64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Tents != 2 || resp.SolarPanels != 1 || resp.Total != 3 {
		t.Errorf("stats = %+v, want tents 2, solar 1, total 3", resp)
	}
}

func TestDetectionStats_UnknownFlight(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	srv := api.NewServer(s, "8000")

	req := httptest.NewRequest("GET", "/api/detections/stats?flight_id=flight-999", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 0 {
		t.Errorf("total = %d, want 0 for unknown flight", resp.Total)
	}
}

func TestResourceSummary(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	if err := s.UpsertCamp(models.Camp{Name: "Alpha", Status: models.CampStatusActive}); err != nil {
		t.Fatal(err)
	}
	camps, err := s.GetCamps("", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertResourceNeed(models.ResourceNeed{
		CampID: camps[0].ID, ResourceType: "water", NeedPct: 66.66, StockPct: 33.33,
		RecordedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}

	srv := api.NewServer(s, "8000")
	req := httptest.NewRequest("GET", "/api/resources/summary", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Resources map[string]struct {
			AvgNeedPct  float64 `json:"avg_need_pct"`
			AvgStockPct float64 `json:"avg_stock_pct"`
		} `json:"resources"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	water, ok := resp.Resources["water"]
	if !ok {
		t.Fatal("missing water summary")
	}
	if water.AvgNeedPct != 66.7 {
		t.Errorf("avg_need_pct = %v, want 66.7 (rounded to one decimal)", water.AvgNeedPct)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
