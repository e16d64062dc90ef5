package ingest

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const hdxSyncSchedule = "@every 6h"

// Scheduler runs periodic ingestion jobs.
type Scheduler struct {
	cron *cron.Cron
	hdx  *HDXClient
}

func NewScheduler(hdx *HDXClient) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		hdx:  hdx,
	}
}

// Start registers the jobs and launches the cron loop. An immediate first
// sync runs in the background so a fresh deployment has camp data before the
// first tick.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(hdxSyncSchedule, s.runHDXSync); err != nil {
		return err
	}
	go s.runHDXSync()
	s.cron.Start()
	log.Printf("scheduler: hdx sync scheduled %s", hdxSyncSchedule)
	return nil
}

// Stop halts the cron loop and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runHDXSync() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.hdx.Sync(ctx); err != nil {
		log.Printf("scheduler: hdx sync: %v", err)
	}
}
