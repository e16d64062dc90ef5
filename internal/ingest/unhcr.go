package ingest

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/metrics"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/store"
)

const upsertBatchSize = 100

// Loader parses UNHCR CSV exports into the store. The exports are messy:
// UTF-16 leftovers (NUL bytes), an Excel "sep=" preamble, mixed date formats
// and duplicated dates.
type Loader struct {
	store *store.Store
}

func NewLoader(store *store.Store) *Loader {
	return &Loader{store: store}
}

// dateFormats accepted in UNHCR exports, tried in order.
var dateFormats = []string{"02-01-06", "2006-01-02", "02-01-2006"}

// parseDate normalizes an export date to YYYY-MM-DD.
func parseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t.Format(models.DateFormat), nil
		}
	}
	return "", fmt.Errorf("unrecognised date format: %q", raw)
}

// readCleanLines reads a CSV file, strips NUL bytes and returns data lines
// with the preamble and header rows removed.
func readCleanLines(path, headerPrefix string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	content := string(bytes.ReplaceAll(raw, []byte{0}, nil))

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "sep=") ||
			strings.HasPrefix(line, headerPrefix) || strings.HasPrefix(line, `"`) {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// LoadPopulationTimeseries ingests a date,individuals export. Duplicate dates
// keep the last occurrence. Returns the number of rows upserted.
func (l *Loader) LoadPopulationTimeseries(path string) (int, error) {
	lines, err := readCleanLines(path, "data_date")
	if err != nil {
		return 0, err
	}

	var samples []models.PopulationSample
	index := make(map[string]int)
	skipped := 0
	for _, line := range lines {
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		date, err := parseDate(parts[0])
		if err != nil {
			skipped++
			continue
		}
		individuals, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			skipped++
			continue
		}

		sample := models.PopulationSample{DataDate: date, Individuals: individuals}
		if i, ok := index[date]; ok {
			samples[i] = sample
			continue
		}
		index[date] = len(samples)
		samples = append(samples, sample)
	}

	log.Printf("ingest: %s: %d unique rows, %d skipped", path, len(samples), skipped)

	for i := 0; i < len(samples); i += upsertBatchSize {
		end := min(i+upsertBatchSize, len(samples))
		if err := l.store.UpsertPopulationSamples(samples[i:end]); err != nil {
			return i, fmt.Errorf("upsert batch at %d: %w", i, err)
		}
	}

	metrics.PopulationRowsIngested.WithLabelValues("unhcr").Add(float64(len(samples)))
	return len(samples), nil
}

// LoadDemographics ingests a demographic snapshot export with columns
// date,month,year,male,female,children,uac.
func (l *Loader) LoadDemographics(path string) (int, error) {
	lines, err := readCleanLines(path, "date")
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, line := range lines {
		parts := strings.Split(line, ",")
		if len(parts) < 7 {
			continue
		}
		date, err := parseDate(parts[0])
		if err != nil {
			log.Printf("ingest: skipping demographic row %q: %v", line, err)
			continue
		}

		fields := make([]int64, 6)
		ok := true
		for i := 1; i < 7; i++ {
			n, err := strconv.ParseInt(strings.TrimSpace(parts[i]), 10, 64)
			if err != nil {
				log.Printf("ingest: skipping demographic row %q: %v", line, err)
				ok = false
				break
			}
			fields[i-1] = n
		}
		if !ok {
			continue
		}

		snapshot := models.DemographicSnapshot{
			SnapshotDate:  date,
			Month:         int(fields[0]),
			Year:          int(fields[1]),
			MaleTotal:     fields[2],
			FemaleTotal:   fields[3],
			ChildrenTotal: fields[4],
			UACTotal:      fields[5],
		}
		if err := l.store.UpsertDemographics(snapshot); err != nil {
			return loaded, fmt.Errorf("upsert demographics %s: %w", date, err)
		}
		loaded++
	}

	metrics.PopulationRowsIngested.WithLabelValues("unhcr-demographics").Add(float64(loaded))
	return loaded, nil
}
