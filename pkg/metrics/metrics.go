// Package metrics documents the Prometheus metrics exported by the proxy.
// Metrics are defined in their respective packages (fetcher, catalog,
// imageproxy, server) via promauto to keep them next to the code they
// measure; this package is the single reference for what is available.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the Prometheus registerer used by the proxy. All metrics are
// automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Reference
//
// Upstream fetch (pkg/fetcher):
//   - proxy_upstream_page_requests_total{outcome} (Counter): page requests by outcome (ok, empty, error)
//   - proxy_upstream_page_request_duration_seconds (Histogram): single page request duration
//   - proxy_upstream_fetch_duration_seconds (Histogram): full catalog fetch duration
//   - proxy_upstream_retries_total (Counter): page request retry attempts
//
// Catalog cache (pkg/catalog):
//   - proxy_catalog_snapshot_served_total{state} (Counter): reads by state (fresh, stale, initial)
//   - proxy_catalog_refreshes_total{result} (Counter): refreshes by result (success, failure, skipped)
//   - proxy_catalog_snapshot_products (Gauge): products in the current snapshot
//   - proxy_catalog_snapshot_age_seconds (Gauge): age of the current snapshot
//
// Image cache (pkg/imageproxy):
//   - proxy_image_cache_hits_total (Counter): image cache hits
//   - proxy_image_cache_misses_total (Counter): image cache misses
//   - proxy_image_origin_fetches_total{outcome} (Counter): origin fetches (ok, error, not_image)
//   - proxy_image_origin_fetch_duration_seconds (Histogram): origin fetch duration
//   - proxy_image_resizes_total (Counter): in-process resizes
//   - proxy_image_cache_bytes (Gauge): bytes held by the image cache
//
// HTTP surface (internal/server):
//   - proxy_http_requests_total{endpoint, status} (Counter): requests by endpoint and status
//   - proxy_http_request_duration_seconds{endpoint} (Histogram): request duration by endpoint
//
// Example queries:
//
//   # Image cache hit rate
//   rate(proxy_image_cache_hits_total[5m]) /
//   (rate(proxy_image_cache_hits_total[5m]) + rate(proxy_image_cache_misses_total[5m]))
//
//   # Share of stale reads
//   rate(proxy_catalog_snapshot_served_total{state="stale"}[5m]) /
//   sum(rate(proxy_catalog_snapshot_served_total[5m]))
//
//   # P95 product-list latency
//   histogram_quantile(0.95, rate(proxy_http_request_duration_seconds_bucket{endpoint="/proxy/products"}[5m]))
