package api

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/metrics"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/store"
)

const apiVersion = "1.0.0"

type Server struct {
	store *store.Store
	port  string
}

func NewServer(store *store.Store, port string) *Server {
	return &Server{
		store: store,
		port:  port,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.instrument("/", s.handleRoot))
	mux.HandleFunc("GET /health", s.instrument("/health", s.handleHealth))
	mux.HandleFunc("GET /api/dashboard", s.instrument("/api/dashboard", s.handleDashboard))
	mux.HandleFunc("GET /api/population/latest", s.instrument("/api/population/latest", s.handlePopulationLatest))
	mux.HandleFunc("GET /api/population/trend", s.instrument("/api/population/trend", s.handlePopulationTrend))
	mux.HandleFunc("GET /api/population/timeseries", s.instrument("/api/population/timeseries", s.handlePopulationTimeseries))
	mux.HandleFunc("GET /api/camps", s.instrument("/api/camps", s.handleCamps))
	mux.HandleFunc("GET /api/camps/summary", s.instrument("/api/camps/summary", s.handleCampsSummary))
	mux.HandleFunc("GET /api/detections", s.instrument("/api/detections", s.handleDetections))
	mux.HandleFunc("GET /api/detections/stats", s.instrument("/api/detections/stats", s.handleDetectionStats))
	mux.HandleFunc("GET /api/flights", s.instrument("/api/flights", s.handleGetFlights))
	mux.HandleFunc("POST /api/flights", s.instrument("/api/flights", s.handleCreateFlight))
	mux.HandleFunc("GET /api/trucks", s.instrument("/api/trucks", s.handleTrucks))
	mux.HandleFunc("PUT /api/trucks/update", s.instrument("/api/trucks/update", s.handleTruckUpdate))
	mux.HandleFunc("GET /api/alerts", s.instrument("/api/alerts", s.handleAlerts))
	mux.HandleFunc("POST /api/alerts/acknowledge", s.instrument("/api/alerts/acknowledge", s.handleAcknowledgeAlert))
	mux.HandleFunc("GET /api/resources", s.instrument("/api/resources", s.handleResources))
	mux.HandleFunc("GET /api/resources/summary", s.instrument("/api/resources/summary", s.handleResourceSummary))
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// instrument wraps a handler with request counting and latency tracking.
// The registered pattern keeps the path label cardinality bounded.
func (s *Server) instrument(pattern string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		metrics.HTTPRequestsTotal.WithLabelValues(pattern, r.Method, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestLatency.WithLabelValues(pattern, r.Method).Observe(time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

// serverError hides internals from clients; the cause goes to the log.
func serverError(w http.ResponseWriter, op string, err error) {
	log.Printf("api: %s: %v", op, err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"api":          "Refugee Camp GIS Dashboard",
		"version":      apiVersion,
		"status":       "online",
		"data_sources": []string{"UNHCR", "OCHA HDX"},
	})
}

type HealthStatus struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Version   int    `json:"schema_version"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:    "ok",
		Database:  "connected",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.store.Ping(); err != nil {
		log.Printf("api: health ping: %v", err)
		health.Status = "degraded"
		health.Database = "error"
	} else if version, err := s.store.MigrationVersion(); err == nil {
		health.Version = version
	}

	writeJSON(w, http.StatusOK, health)
}

type PopulationLatestResponse struct {
	LatestCount  int64                       `json:"latest_count"`
	AsOfDate     *string                     `json:"as_of_date"`
	Demographics *models.DemographicSnapshot `json:"demographics"`
	Source       string                      `json:"source"`
}

func (s *Server) handlePopulationLatest(w http.ResponseWriter, r *http.Request) {
	latest, err := s.store.GetLatestPopulation()
	if err != nil {
		serverError(w, "get latest population", err)
		return
	}
	demo, err := s.store.GetLatestDemographics()
	if err != nil {
		serverError(w, "get latest demographics", err)
		return
	}

	resp := PopulationLatestResponse{
		Demographics: demo,
		Source:       "UNHCR",
	}
	if latest != nil {
		resp.LatestCount = latest.Individuals
		resp.AsOfDate = &latest.DataDate
	}
	writeJSON(w, http.StatusOK, resp)
}

type PopulationTrendResponse struct {
	Data       []models.PopulationSample `json:"data"`
	PeriodDays int                       `json:"period_days"`
	Change     int64                     `json:"change"`
	PctChange  float64                   `json:"pct_change"`
}

func (s *Server) handlePopulationTrend(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if days < 1 {
		http.Error(w, "days must be positive", http.StatusBadRequest)
		return
	}
	if days > 365 {
		days = 365
	}

	data, err := s.store.GetPopulationTrend(days)
	if err != nil {
		serverError(w, "get population trend", err)
		return
	}

	resp := PopulationTrendResponse{
		Data:       data,
		PeriodDays: days,
	}
	if resp.Data == nil {
		resp.Data = []models.PopulationSample{}
	}
	if len(data) >= 2 {
		first, last := data[0].Individuals, data[len(data)-1].Individuals
		resp.Change = last - first
		if first != 0 {
			resp.PctChange = round2(float64(resp.Change) / float64(first) * 100)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePopulationTimeseries(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 365)
	fromDate := r.URL.Query().Get("from_date")
	toDate := r.URL.Query().Get("to_date")

	data, err := s.store.GetPopulationTimeseries(fromDate, toDate, limit)
	if err != nil {
		serverError(w, "get population timeseries", err)
		return
	}
	if data == nil {
		data = []models.PopulationSample{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(data),
		"data":  data,
	})
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
