package imageproxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks image cache hits.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proxy_image_cache_hits_total",
		Help: "Total image cache hits",
	})

	// CacheMisses tracks image cache misses (including expired entries).
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proxy_image_cache_misses_total",
		Help: "Total image cache misses",
	})

	originFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proxy_image_origin_fetches_total",
		Help: "Total image origin fetches by outcome (ok, error, not_image)",
	}, []string{"outcome"})

	originFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "proxy_image_origin_fetch_duration_seconds",
		Help:    "Image origin fetch duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15},
	})

	resizesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proxy_image_resizes_total",
		Help: "Total in-process image resizes performed",
	})

	// CacheBytes reports the total bytes held by the image cache.
	CacheBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "proxy_image_cache_bytes",
		Help: "Total bytes currently held in the image cache",
	})
)
