// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsLoaded counts normalized products per marketplace and dataset.
	RecordsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comparador_records_loaded_total",
			Help: "Products normalized from source datasets",
		},
		[]string{"marketplace", "dataset"},
	)

	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comparador_source_failures_total",
			Help: "Dataset retrievals that failed and were skipped",
		},
		[]string{"dataset"},
	)

	// CacheLookups counts remote payload cache lookups by result (hit/miss/error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comparador_payload_cache_lookups_total",
			Help: "Remote payload cache lookups",
		},
		[]string{"result"},
	)

	LoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "comparador_load_duration_seconds",
			Help:    "Wall time of a full dataset load",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "comparador_catalog_products",
			Help: "Products in the current snapshot",
		},
	)

	// FilterRejections counts filter calls aborted by a validation error, per field.
	FilterRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comparador_filter_rejections_total",
			Help: "Filter requests rejected by input validation",
		},
		[]string{"field"},
	)
)
