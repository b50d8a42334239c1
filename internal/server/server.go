// Package server wires the catalog cache, query engine, and image cache
// into the proxy's HTTP surface. Routing stays thin: every handler
// delegates straight to the packages under pkg/.
package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gacz1998/Proxy-API/pkg/catalog"
	"github.com/gacz1998/Proxy-API/pkg/imageproxy"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "proxy_http_requests_total",
		Help: "Total HTTP requests by endpoint and status",
	}, []string{"endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "proxy_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds by endpoint",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})
)

// Config holds server configuration.
type Config struct {
	// PlaceholderURL is the redirect target for unavailable images.
	PlaceholderURL string
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		PlaceholderURL: "https://via.placeholder.com/200x150?text=Sin+Imagen",
	}
}

// Server handles the proxy's HTTP endpoints.
type Server struct {
	catalog *catalog.Cache
	images  *imageproxy.Cache
	config  Config
	logger  zerolog.Logger
}

// New creates a server backed by the given caches.
func New(catalogCache *catalog.Cache, imageCache *imageproxy.Cache, cfg Config) *Server {
	if cfg.PlaceholderURL == "" {
		cfg.PlaceholderURL = DefaultConfig().PlaceholderURL
	}
	return &Server{
		catalog: catalogCache,
		images:  imageCache,
		config:  cfg,
		logger:  log.With().Str("component", "server").Logger(),
	}
}

// Handler returns the proxy's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /proxy/products", s.instrument("/proxy/products", s.handleProducts))
	mux.Handle("GET /proxy/products/{sku}", s.instrument("/proxy/products/{sku}", s.handleProductBySKU))
	mux.Handle("GET /proxy/image", s.instrument("/proxy/image", s.handleImage))
	mux.Handle("GET /keep-alive", s.instrument("/keep-alive", s.handleKeepAlive))
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument wraps a handler with request metrics.
func (s *Server) instrument(endpoint string, handler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		handler(rec, r)

		httpRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	})
}
