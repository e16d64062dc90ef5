package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/store"
)

func (s *Server) handleCamps(w http.ResponseWriter, r *http.Request) {
	var camps []models.Camp
	var err error

	if bbox := r.URL.Query().Get("bbox"); bbox != "" {
		minLat, minLng, maxLat, maxLng, perr := parseBBox(bbox)
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		camps, err = s.store.GetCampsInBounds(minLat, minLng, maxLat, maxLng)
	} else {
		camps, err = s.store.GetCamps(r.URL.Query().Get("status"), r.URL.Query().Get("zone"))
	}
	if err != nil {
		serverError(w, "get camps", err)
		return
	}
	if camps == nil {
		camps = []models.Camp{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(camps),
		"camps": camps,
	})
}

func (s *Server) handleCampsSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.store.GetCampsSummary()
	if err != nil {
		serverError(w, "get camps summary", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleDetections(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 500)

	var detections []models.Detection
	var err error
	if bbox := r.URL.Query().Get("bbox"); bbox != "" {
		minLat, minLng, maxLat, maxLng, perr := parseBBox(bbox)
		if perr != nil {
			http.Error(w, perr.Error(), http.StatusBadRequest)
			return
		}
		detections, err = s.store.GetDetectionsInBounds(minLat, minLng, maxLat, maxLng, limit)
	} else {
		detections, err = s.store.GetDetections(store.DetectionFilter{
			FlightID:   r.URL.Query().Get("flight_id"),
			ObjectType: r.URL.Query().Get("object_type"),
			Limit:      limit,
		})
	}
	if err != nil {
		serverError(w, "get detections", err)
		return
	}
	if detections == nil {
		detections = []models.Detection{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":      len(detections),
		"detections": detections,
	})
}

type DetectionStatsResponse struct {
	Tents       int64   `json:"tents"`
	Latrines    int64   `json:"latrines"`
	WaterPoints int64   `json:"water_points"`
	SolarPanels int64   `json:"solar_panels"`
	Total       int64   `json:"total"`
	FlightID    *string `json:"flight_id"`
}

func (s *Server) handleDetectionStats(w http.ResponseWriter, r *http.Request) {
	flightID := r.URL.Query().Get("flight_id")

	counts, err := s.store.CountDetectionsByType(flightID)
	if err != nil {
		serverError(w, "count detections", err)
		return
	}

	resp := DetectionStatsResponse{
		Tents:       counts[models.ObjectTent],
		Latrines:    counts[models.ObjectLatrine],
		WaterPoints: counts[models.ObjectWaterPoint],
		SolarPanels: counts[models.ObjectSolar],
	}
	for _, n := range counts {
		resp.Total += n
	}
	if flightID != "" {
		resp.FlightID = &flightID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := s.store.GetFlights(queryInt(r, "limit", 0))
	if err != nil {
		serverError(w, "get flights", err)
		return
	}
	if flights == nil {
		flights = []models.Flight{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"flights": flights})
}

type NewFlightRequest struct {
	FlightNumber int     `json:"flight_number"`
	Area         string  `json:"area"`
	AltitudeM    int     `json:"altitude_m"`
	PilotName    *string `json:"pilot_name"`
}

func (s *Server) handleCreateFlight(w http.ResponseWriter, r *http.Request) {
	var req NewFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FlightNumber <= 0 {
		http.Error(w, "flight_number must be positive", http.StatusBadRequest)
		return
	}
	if req.Area == "" {
		http.Error(w, "area is required", http.StatusBadRequest)
		return
	}
	if req.AltitudeM == 0 {
		req.AltitudeM = 120
	}

	flight := models.Flight{
		ID:           fmt.Sprintf("flight-%d", req.FlightNumber),
		FlightNumber: req.FlightNumber,
		Area:         req.Area,
		AltitudeM:    req.AltitudeM,
		Status:       models.FlightPlanned,
		FlightDate:   time.Now().Format(models.DateFormat),
		PilotName:    req.PilotName,
	}

	existing, err := s.store.GetFlight(flight.ID)
	if err != nil {
		serverError(w, "check flight", err)
		return
	}
	if existing != nil {
		http.Error(w, "flight already exists", http.StatusConflict)
		return
	}

	if err := s.store.CreateFlight(flight); err != nil {
		serverError(w, "create flight", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"flight":  flight,
	})
}

func (s *Server) handleTrucks(w http.ResponseWriter, r *http.Request) {
	trucks, err := s.store.GetTrucks()
	if err != nil {
		serverError(w, "get trucks", err)
		return
	}
	if trucks == nil {
		trucks = []models.Truck{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"trucks": trucks})
}

type TruckUpdateRequest struct {
	TruckID string  `json:"truck_id"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Status  *string `json:"status"`
	ETA     *string `json:"eta"`
}

func (s *Server) handleTruckUpdate(w http.ResponseWriter, r *http.Request) {
	var req TruckUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.TruckID == "" {
		http.Error(w, "truck_id is required", http.StatusBadRequest)
		return
	}

	changed, err := s.store.UpdateTruckPosition(req.TruckID, req.Lat, req.Lng, req.Status, req.ETA, time.Now().UTC())
	if err != nil {
		serverError(w, "update truck", err)
		return
	}
	if !changed {
		http.Error(w, "truck not found", http.StatusNotFound)
		return
	}

	truck, err := s.store.GetTruck(req.TruckID)
	if err != nil {
		serverError(w, "get truck", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"truck":   truck,
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	includeAcked := true
	if raw := r.URL.Query().Get("include_acknowledged"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "invalid include_acknowledged", http.StatusBadRequest)
			return
		}
		includeAcked = v
	}

	alerts, err := s.store.GetAlerts(!includeAcked)
	if err != nil {
		serverError(w, "get alerts", err)
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

type AlertAcknowledgeRequest struct {
	AlertID        int64  `json:"alert_id"`
	AcknowledgedBy string `json:"acknowledged_by"`
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	var req AlertAcknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.AcknowledgedBy == "" {
		http.Error(w, "acknowledged_by is required", http.StatusBadRequest)
		return
	}

	changed, err := s.store.AcknowledgeAlert(req.AlertID, req.AcknowledgedBy, time.Now().UTC())
	if err != nil {
		serverError(w, "acknowledge alert", err)
		return
	}
	if !changed {
		// Either already acknowledged (idempotent no-op) or missing.
		alert, err := s.store.GetAlert(req.AlertID)
		if err != nil {
			serverError(w, "get alert", err)
			return
		}
		if alert == nil {
			http.Error(w, "alert not found", http.StatusNotFound)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	campID := int64(queryInt(r, "camp_id", 0))

	resources, err := s.store.GetResourceNeeds(campID)
	if err != nil {
		serverError(w, "get resources", err)
		return
	}
	if resources == nil {
		resources = []models.ResourceNeed{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": resources})
}

func (s *Server) handleResourceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.GetResourceSummary()
	if err != nil {
		serverError(w, "get resource summary", err)
		return
	}
	for k, v := range summary {
		v.AvgNeedPct = round1(v.AvgNeedPct)
		v.AvgStockPct = round1(v.AvgStockPct)
		summary[k] = v
	}
	writeJSON(w, http.StatusOK, map[string]any{"resources": summary})
}

func parseBBox(raw string) (minLat, minLng, maxLat, maxLng float64, err error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("bbox must be minLat,minLng,maxLat,maxLng")
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, perr := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if perr != nil {
			return 0, 0, 0, 0, fmt.Errorf("bbox must be numeric")
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}
