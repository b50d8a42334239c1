package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SnapshotServed tracks snapshot reads by freshness state.
	SnapshotServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxy_catalog_snapshot_served_total",
			Help: "Total catalog snapshot reads by state (fresh, stale, initial)",
		},
		[]string{"state"},
	)

	// RefreshesTotal tracks background refresh outcomes.
	RefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxy_catalog_refreshes_total",
			Help: "Total catalog refresh attempts by result (success, failure, skipped)",
		},
		[]string{"result"},
	)

	// SnapshotProducts reports the size of the current snapshot.
	SnapshotProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxy_catalog_snapshot_products",
			Help: "Number of products in the current catalog snapshot",
		},
	)

	// SnapshotAge reports the age of the current snapshot in seconds.
	SnapshotAge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxy_catalog_snapshot_age_seconds",
			Help: "Age of the current catalog snapshot in seconds",
		},
	)
)
