package fetcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pageRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proxy_upstream_page_requests_total",
		Help: "Total upstream catalog page requests by outcome (ok, empty, error)",
	}, []string{"outcome"})

	pageRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "proxy_upstream_page_request_duration_seconds",
		Help:    "Upstream catalog page request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15},
	})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "proxy_upstream_fetch_duration_seconds",
		Help:    "Full catalog fetch duration in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	})

	retriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "proxy_upstream_retries_total",
		Help: "Total upstream page request retry attempts",
	})
)
