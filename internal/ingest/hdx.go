package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/httputil"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/metrics"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/models"
	"github.com/ivishaltiwari123-glitch/refugee-backend/internal/store"
)

const DefaultHDXSearchURL = "https://data.humdata.org/api/3/action/package_search"

// HDXClient syncs camp locations from the OCHA Humanitarian Data Exchange.
// The search verifies reachability and dataset availability; the camp
// coordinates themselves come from the curated list below.
type HDXClient struct {
	store     *store.Store
	apiKey    string
	searchURL string
	client    *http.Client
}

func NewHDXClient(store *store.Store, apiKey string) *HDXClient {
	return &HDXClient{
		store:     store,
		apiKey:    apiKey,
		searchURL: DefaultHDXSearchURL,
		client:    httputil.NewClient(),
	}
}

// SetSearchURL overrides the HDX endpoint, for tests.
func (h *HDXClient) SetSearchURL(u string) {
	h.searchURL = u
}

type hdxSearchResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Count   int `json:"count"`
		Results []struct {
			Title string `json:"title"`
		} `json:"results"`
	} `json:"result"`
}

// knownCamps are the verified camp locations this deployment tracks.
var knownCamps = []models.Camp{
	{
		Name:       "Rukban Camp",
		Zone:       "Zone F",
		CampType:   "informal",
		Population: 8000,
		Capacity:   10000,
		Lat:        33.7094,
		Lng:        38.5644,
		Status:     models.CampStatusActive,
		Source:     "OCHA HDX",
	},
	{
		Name:       "Bab Al-Salam Camp",
		Zone:       "Zone G",
		CampType:   "formal",
		Population: 15000,
		Capacity:   20000,
		Lat:        36.6167,
		Lng:        37.0833,
		Status:     models.CampStatusActive,
		Source:     "OCHA HDX",
	},
}

// Sync queries HDX for UNHCR displacement datasets and refreshes the known
// camp locations. Transient failures (rate limits, server errors) are
// retried with exponential backoff.
func (h *HDXClient) Sync(ctx context.Context) error {
	query := url.Values{}
	query.Set("q", "syria refugees displacement camps")
	query.Set("fq", "organization:unhcr")
	query.Set("rows", "5")
	requestURL := h.searchURL + "?" + query.Encode()

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		if h.apiKey != "" {
			req.Header.Set("X-CKAN-API-Key", h.apiKey)
		}

		resp, err := h.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch hdx: %w", err)
		}
		defer resp.Body.Close()

		metrics.HDXAPICallsTotal.WithLabelValues("package_search", strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return fmt.Errorf("hdx unavailable: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("fetch hdx: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return err
	}

	var search hdxSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return fmt.Errorf("unmarshal hdx response: %w", err)
	}
	if !search.Success {
		return fmt.Errorf("hdx search unsuccessful")
	}

	for _, r := range search.Result.Results {
		log.Printf("ingest: hdx dataset: %s", r.Title)
	}

	today := time.Now().Format(models.DateFormat)
	for _, camp := range knownCamps {
		camp.LastVerified = today
		if err := h.store.UpsertCamp(camp); err != nil {
			return fmt.Errorf("upsert camp %s: %w", camp.Name, err)
		}
		metrics.CampsSynced.WithLabelValues("hdx").Inc()
	}

	log.Printf("ingest: hdx sync: %d datasets found, %d camps refreshed",
		search.Result.Count, len(knownCamps))
	return nil
}
