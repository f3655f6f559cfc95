package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Catalog and request-guard Prometheus metrics.
var (
	CatalogLoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopsearch",
			Name:      "catalog_load_duration_seconds",
			Help:      "Time spent reading and joining the source tables",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"result"}, // "ok" / "error"
	)

	CatalogListings = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "shopsearch",
			Name:      "catalog_listings",
			Help:      "Number of listings produced by the most recent successful load",
		},
	)

	CatalogCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Name:      "catalog_cache_total",
			Help:      "Catalog cache hits, misses and errors",
		},
		[]string{"result"}, // "hit" / "miss" / "error"
	)

	RateLimitRejects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Name:      "rate_limit_rejects_total",
			Help:      "Requests rejected by the rate limiter",
		},
	)
)

var catalogMetricsRegistered bool

// RegisterCatalogMetrics registers the catalog metrics. Must be called once from main.
func RegisterCatalogMetrics() {
	if catalogMetricsRegistered {
		return
	}
	prometheus.MustRegister(CatalogLoadDuration)
	prometheus.MustRegister(CatalogListings)
	prometheus.MustRegister(CatalogCacheTotal)
	prometheus.MustRegister(RateLimitRejects)
	catalogMetricsRegistered = true
}

// ObserveCatalogLoad records one catalog load. listings is only recorded for successful loads.
func ObserveCatalogLoad(result string, d time.Duration, listings int) {
	CatalogLoadDuration.WithLabelValues(result).Observe(d.Seconds())
	if result == "ok" {
		CatalogListings.Set(float64(listings))
	}
}
