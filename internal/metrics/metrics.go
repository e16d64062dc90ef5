package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campdash_http_requests_total",
			Help: "Total HTTP requests served by the dashboard API",
		},
		[]string{"path", "method", "status"},
	)

	HTTPRequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campdash_http_request_latency_seconds",
			Help:    "Dashboard API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	HDXAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campdash_hdx_api_calls_total",
			Help: "Total OCHA HDX API calls",
		},
		[]string{"endpoint", "status"},
	)

	PopulationRowsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campdash_population_rows_ingested_total",
			Help: "Total population timeseries rows successfully ingested",
		},
		[]string{"source"},
	)

	CampsSynced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campdash_camps_synced_total",
			Help: "Total camp records synced from external sources",
		},
		[]string{"source"},
	)
)
