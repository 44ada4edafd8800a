// Package telemetry centralizes the Prometheus collectors so every
// package increments the same registry and main only has to mount one
// handler on /metrics.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PageRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geomap_page_requests_total",
		Help: "Total dashboard page requests",
	})
	RenderDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geomap_render_duration_ms",
		Help:    "Full render pipeline duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	DatasetLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geomap_dataset_loads_total",
		Help: "CSV loads by outcome",
	}, []string{"outcome"})
	RowsValidTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geomap_rows_valid_total",
		Help: "Rows that passed coordinate validation",
	})
	RowsInvalidTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geomap_rows_invalid_total",
		Help: "Rows dropped by coordinate validation",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geomap_cache_hits_total",
		Help: "Dataset cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geomap_cache_misses_total",
		Help: "Dataset cache misses",
	})
)

func init() {
	prometheus.MustRegister(PageRequestsTotal)
	prometheus.MustRegister(RenderDurationMs)
	prometheus.MustRegister(DatasetLoadsTotal)
	prometheus.MustRegister(RowsValidTotal)
	prometheus.MustRegister(RowsInvalidTotal)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
