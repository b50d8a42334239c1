package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/gacz1998/Proxy-API/internal/server"
	"github.com/gacz1998/Proxy-API/pkg/catalog"
	"github.com/gacz1998/Proxy-API/pkg/fetcher"
	"github.com/gacz1998/Proxy-API/pkg/imageproxy"
	"github.com/gacz1998/Proxy-API/pkg/logging"
)

func main() {
	_ = godotenv.Load() // loads .env if present

	logging.Setup(logging.Config{
		Level:  getEnv("LOG_LEVEL", "info"),
		Pretty: getEnvBool("LOG_PRETTY", false),
	})

	port := getEnv("PORT", "8080")
	upstreamURL := getEnv("UPSTREAM_URL", "http://api.chile.cdopromocionales.com/v2/products")
	authToken := getEnv("UPSTREAM_AUTH_TOKEN", "")

	fetcherCfg := fetcher.DefaultConfig(upstreamURL, authToken)
	fetcherCfg.PageSize = getEnvInt("UPSTREAM_PAGE_SIZE", fetcherCfg.PageSize)
	fetcherCfg.WindowSize = getEnvInt("FETCH_WINDOW_SIZE", fetcherCfg.WindowSize)
	fetcherCfg.PageTimeout = getEnvDuration("FETCH_PAGE_TIMEOUT", fetcherCfg.PageTimeout)

	catalogFetcher, err := fetcher.New(fetcherCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create catalog fetcher")
	}

	catalogCfg := catalog.DefaultCacheConfig()
	catalogCfg.TTL = getEnvDuration("CATALOG_TTL", catalogCfg.TTL)
	catalogCache := catalog.NewCache(catalogFetcher.FetchCatalog, catalogCfg)

	imageCfg := imageproxy.DefaultConfig()
	imageCfg.TTL = getEnvDuration("IMAGE_TTL", imageCfg.TTL)
	imageCache := imageproxy.NewCache(imageCfg)

	srv := server.New(catalogCache, imageCache, server.Config{
		PlaceholderURL: getEnv("PLACEHOLDER_URL", server.DefaultConfig().PlaceholderURL),
	})

	addr := ":" + port
	log.Info().
		Str("addr", addr).
		Str("upstream", upstreamURL).
		Dur("catalog_ttl", catalogCfg.TTL).
		Dur("image_ttl", imageCfg.TTL).
		Msg("Starting catalog proxy")

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer env value")
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-boolean env value")
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-duration env value")
	}
	return defaultValue
}
