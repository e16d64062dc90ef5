package api

import (
	"log"
	"net/http"
	"time"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
)

// DashboardSnapshot is the single document the frontend polls. Every
// collection field is present with an empty value when the underlying
// relation has no rows; one failed sub-query degrades to its empty value
// rather than failing the whole snapshot.
type DashboardSnapshot struct {
	Stats           DashboardStats            `json:"stats"`
	PopulationTrend []models.PopulationSample `json:"population_trend"`
	Camps           []models.Camp             `json:"camps"`
	Trucks          []models.Truck            `json:"trucks"`
	Alerts          []models.Alert            `json:"alerts"`
	ResourceNeeds   map[string]float64        `json:"resource_needs"`
	Flights         []models.Flight           `json:"flights"`
	Source          string                    `json:"source"`
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

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snapshot := s.buildDashboard()
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) buildDashboard() DashboardSnapshot {
	snapshot := DashboardSnapshot{
		PopulationTrend: []models.PopulationSample{},
		Camps:           []models.Camp{},
		Trucks:          []models.Truck{},
		Alerts:          []models.Alert{},
		ResourceNeeds:   map[string]float64{},
		Flights:         []models.Flight{},
		Source:          "UNHCR + OCHA HDX",
	}
	snapshot.Stats.LastUpdate = time.Now().Format("15:04")

	if latest, err := s.store.GetLatestPopulation(); err != nil {
		log.Printf("api: dashboard population: %v", err)
	} else if latest != nil {
		snapshot.Stats.TotalPopulation = latest.Individuals
		snapshot.Stats.PopulationAsOf = &latest.DataDate
	}

	if counts, err := s.store.CountDetectionsByType(""); err != nil {
		log.Printf("api: dashboard detections: %v", err)
	} else {
		snapshot.Stats.Tents = counts[models.ObjectTent]
		snapshot.Stats.Latrines = counts[models.ObjectLatrine]
		snapshot.Stats.WaterPoints = counts[models.ObjectWaterPoint]
	}

	if trend, err := s.store.GetPopulationTrend(7); err != nil {
		log.Printf("api: dashboard trend: %v", err)
	} else if trend != nil {
		snapshot.PopulationTrend = trend
	}

	if camps, err := s.store.GetCamps("", ""); err != nil {
		log.Printf("api: dashboard camps: %v", err)
	} else if camps != nil {
		snapshot.Camps = camps
	}

	if trucks, err := s.store.GetTrucks(); err != nil {
		log.Printf("api: dashboard trucks: %v", err)
	} else if trucks != nil {
		snapshot.Trucks = trucks
	}
	snapshot.Stats.AidTrucks = int64(len(snapshot.Trucks))

	if alerts, err := s.store.GetAlerts(true); err != nil {
		log.Printf("api: dashboard alerts: %v", err)
	} else if alerts != nil {
		snapshot.Alerts = alerts
	}

	if summary, err := s.store.GetResourceSummary(); err != nil {
		log.Printf("api: dashboard resources: %v", err)
	} else {
		for resourceType, avg := range summary {
			snapshot.ResourceNeeds[resourceType] = round1(avg.AvgNeedPct)
		}
	}

	if flights, err := s.store.GetFlights(5); err != nil {
		log.Printf("api: dashboard flights: %v", err)
	} else if flights != nil {
		snapshot.Flights = flights
	}

	return snapshot
}
