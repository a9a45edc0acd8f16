package gather

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intelwatch_source_fetch_total",
		Help: "Source polls by outcome (ok, error, cached)",
	}, []string{"source", "outcome"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intelwatch_source_fetch_duration_seconds",
		Help:    "Time spent fetching and normalizing one source",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"source"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intelwatch_cache_lookups_total",
		Help: "Cache lookups by result (hit, miss, error)",
	}, []string{"result"})

	droppedItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intelwatch_items_dropped_total",
		Help: "Raw items discarded during normalization, by reason",
	}, []string{"reason"})

	alertsGathered = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intelwatch_alerts_last_cycle",
		Help: "Alerts produced by the most recent gather cycle",
	})
)
