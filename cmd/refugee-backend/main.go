package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/api"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/dashclient"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/ingest"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/store"
)

type Globals struct {
	DB string `help:"Path to the SQLite database." default:"data/campdash.db" env:"CAMPDASH_DB"`
}

type CLI struct {
	Globals

	Serve  ServeCmd  `cmd:"" default:"withargs" help:"Run the dashboard API server."`
	Ingest IngestCmd `cmd:"" help:"Load UNHCR CSV exports and sync OCHA HDX camps."`
	Seed   SeedCmd   `cmd:"" help:"Seed operational demo data (camps, trucks, alerts, flights)."`
	Check  CheckCmd  `cmd:"" help:"Probe a running server's health endpoint."`
}

func (g *Globals) openStore() (*store.Store, func(), error) {
	db, err := sql.Open("sqlite", g.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return st, func() { db.Close() }, nil
}

type ServeCmd struct {
	Port      string `help:"HTTP listen port." default:"8000" env:"PORT"`
	NoSync    bool   `help:"Disable the periodic HDX camp sync."`
	HDXAPIKey string `help:"OCHA HDX API key." env:"OCHA_API_KEY"`
}

func (c *ServeCmd) Run(g *Globals) error {
	st, closeDB, err := g.openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !c.NoSync {
		scheduler := ingest.NewScheduler(ingest.NewHDXClient(st, c.HDXAPIKey))
		if err := scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer scheduler.Stop()
	} else {
		log.Println("hdx sync disabled (--no-sync)")
	}

	server := api.NewServer(st, c.Port)
	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

type IngestCmd struct {
	Population   string `help:"UNHCR population timeseries CSV." type:"path"`
	Demographics string `help:"UNHCR demographics CSV." type:"path"`
	HDX          bool   `help:"Sync camp locations from OCHA HDX."`
	HDXAPIKey    string `help:"OCHA HDX API key." env:"OCHA_API_KEY"`
}

func (c *IngestCmd) Run(g *Globals) error {
	if c.Population == "" && c.Demographics == "" && !c.HDX {
		return fmt.Errorf("nothing to ingest: pass --population, --demographics or --hdx")
	}

	st, closeDB, err := g.openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	loader := ingest.NewLoader(st)
	if c.Population != "" {
		n, err := loader.LoadPopulationTimeseries(c.Population)
		if err != nil {
			return fmt.Errorf("load population timeseries: %w", err)
		}
		log.Printf("population timeseries: %d rows loaded", n)
	}
	if c.Demographics != "" {
		n, err := loader.LoadDemographics(c.Demographics)
		if err != nil {
			return fmt.Errorf("load demographics: %w", err)
		}
		log.Printf("demographics: %d rows loaded", n)
	}
	if c.HDX {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := ingest.NewHDXClient(st, c.HDXAPIKey).Sync(ctx); err != nil {
			return fmt.Errorf("hdx sync: %w", err)
		}
		log.Println("hdx camp sync done")
	}
	return nil
}

type SeedCmd struct{}

func (c *SeedCmd) Run(g *Globals) error {
	st, closeDB, err := g.openStore()
	if err != nil {
		return err
	}
	defer closeDB()

	now := time.Now().UTC()
	today := now.Format(models.DateFormat)

	camps := []models.Camp{
		{Name: "Rukban Camp", Zone: "Zone F", CampType: "informal", Population: 8000, Capacity: 10000, Lat: 33.7094, Lng: 38.5644, Status: models.CampStatusActive, Source: "seed", LastVerified: today},
		{Name: "Bab Al-Salam Camp", Zone: "Zone G", CampType: "formal", Population: 15000, Capacity: 20000, Lat: 36.6167, Lng: 37.0833, Status: models.CampStatusActive, Source: "seed", LastVerified: today},
		{Name: "Zone C Extension", Zone: "Zone C", CampType: "formal", Population: 4200, Capacity: 4000, Lat: 33.72, Lng: 38.58, Status: models.CampStatusFull, Source: "seed", LastVerified: today},
	}
	for _, camp := range camps {
		if err := st.UpsertCamp(camp); err != nil {
			return fmt.Errorf("seed camp %s: %w", camp.Name, err)
		}
	}

	eta := "14:30"
	trucks := []models.Truck{
		{ID: "truck-01", Name: "Convoy Alpha", Status: models.TruckEnRoute, Cargo: "water", Lat: 33.65, Lng: 38.40, ETA: &eta, UpdatedAt: now},
		{ID: "truck-02", Name: "Convoy Bravo", Status: models.TruckDelivering, Cargo: "food", Lat: 33.7094, Lng: 38.5644, UpdatedAt: now},
		{ID: "truck-03", Name: "Convoy Charlie", Status: models.TruckIdle, Cargo: "medical", Lat: 36.60, Lng: 37.08, UpdatedAt: now},
	}
	for _, truck := range trucks {
		if err := st.UpsertTruck(truck); err != nil {
			return fmt.Errorf("seed truck %s: %w", truck.ID, err)
		}
	}

	alerts := []models.Alert{
		{Severity: models.SeverityCritical, Zone: "Zone F", Message: "Water reserves below 20% in Rukban Camp", CreatedAt: now.Add(-2 * time.Hour)},
		{Severity: models.SeverityWarning, Zone: "Zone C", Message: "Zone C Extension over capacity", CreatedAt: now.Add(-6 * time.Hour)},
	}
	for _, alert := range alerts {
		if _, err := st.InsertAlert(alert); err != nil {
			return fmt.Errorf("seed alert: %w", err)
		}
	}

	pilot := "A. Haddad"
	flights := []models.Flight{
		{ID: "flight-1", FlightNumber: 1, Area: "Zone F perimeter", AltitudeM: 120, Status: models.FlightCompleted, CoveragePct: 94.5, ImageCount: 412, FlightDate: now.AddDate(0, 0, -2).Format(models.DateFormat), PilotName: &pilot},
		{ID: "flight-2", FlightNumber: 2, Area: "Zone G shelter grid", AltitudeM: 100, Status: models.FlightPlanned, FlightDate: today},
	}
	for _, flight := range flights {
		if existing, err := st.GetFlight(flight.ID); err != nil {
			return fmt.Errorf("seed flight %s: %w", flight.ID, err)
		} else if existing == nil {
			if err := st.CreateFlight(flight); err != nil {
				return fmt.Errorf("seed flight %s: %w", flight.ID, err)
			}
		}
	}

	seeded, err := st.GetCamps("", "")
	if err != nil {
		return err
	}
	campIDs := make(map[string]int64, len(seeded))
	for _, camp := range seeded {
		campIDs[camp.Name] = camp.ID
	}
	needs := []models.ResourceNeed{
		{CampID: campIDs["Rukban Camp"], ResourceType: "water", NeedPct: 82, StockPct: 18, RecordedAt: now},
		{CampID: campIDs["Rukban Camp"], ResourceType: "food", NeedPct: 55, StockPct: 45, RecordedAt: now},
		{CampID: campIDs["Bab Al-Salam Camp"], ResourceType: "water", NeedPct: 30, StockPct: 70, RecordedAt: now},
		{CampID: campIDs["Bab Al-Salam Camp"], ResourceType: "medical", NeedPct: 48, StockPct: 52, RecordedAt: now},
	}
	for _, need := range needs {
		if _, err := st.InsertResourceNeed(need); err != nil {
			return fmt.Errorf("seed resource need: %w", err)
		}
	}

	log.Printf("seeded %d camps, %d trucks, %d alerts, %d flights, %d resource needs",
		len(camps), len(trucks), len(alerts), len(flights), len(needs))
	return nil
}

type CheckCmd struct {
	URL string `help:"Base URL of the running server." default:"http://localhost:8000" env:"CAMPDASH_URL"`
}

func (c *CheckCmd) Run(g *Globals) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := dashclient.New(c.URL)
	health, err := client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	log.Printf("status=%s database=%s timestamp=%s", health.Status, health.Database, health.Timestamp)
	if health.Database != "connected" {
		return fmt.Errorf("database unhealthy: %s", health.Database)
	}
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("refugee-backend"),
		kong.Description("Refugee camp GIS dashboard backend: store, API and ingestion."),
		kong.UsageOnError(),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
