package imageproxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Common errors returned by the image cache.
var (
	// ErrInvalidURL is returned when the requested URL is missing or not
	// an absolute http(s) URL. Callers answer this with 400.
	ErrInvalidURL = errors.New("invalid image url")

	// ErrUnavailable is returned for any origin or content failure. Callers
	// answer this with a placeholder redirect, never an error status.
	ErrUnavailable = errors.New("image unavailable")
)

// Variant describes a named image size tier.
type Variant struct {
	// Token is substituted into the origin URL to request a size-specific
	// asset. Empty means no URL rewrite for this variant.
	Token string

	// Width triggers an in-process resize to this width. Zero means
	// pass-through.
	Width int
}

// Config holds the image cache configuration.
type Config struct {
	// TTL is how long a cached image stays valid. Independent from the
	// catalog TTL.
	TTL time.Duration

	// FetchTimeout bounds one origin fetch.
	FetchTimeout time.Duration

	// Variants maps size variant names to their behavior. Requests for an
	// unknown variant are served as pass-through.
	Variants map[string]Variant

	// HTTPClient overrides the default HTTP client (for testing).
	HTTPClient *http.Client
}

// DefaultConfig returns the default image cache configuration. Image
// payloads change rarely, so the TTL is much longer than the catalog's.
func DefaultConfig() Config {
	return Config{
		TTL:          14 * 24 * time.Hour,
		FetchTimeout: 15 * time.Second,
		Variants: map[string]Variant{
			"small":  {Token: "small", Width: 200},
			"medium": {Token: "medium", Width: 400},
			"large":  {Token: "large", Width: 800},
		},
	}
}

// Cache fetches and caches image payloads keyed by (url, size variant).
// Entries are immutable once written and never proactively evicted, so
// concurrent reads need no locking beyond the map itself; growth is
// bounded only by process memory.
type Cache struct {
	config     Config
	httpClient *http.Client
	logger     zerolog.Logger

	entries sync.Map // cache key -> *Entry

	// group coalesces concurrent fetches of the same key into one origin
	// request.
	group singleflight.Group
}

// NewCache creates an image cache.
func NewCache(cfg Config) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultConfig().FetchTimeout
	}
	if cfg.Variants == nil {
		cfg.Variants = DefaultConfig().Variants
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.FetchTimeout}
	}

	return &Cache{
		config:     cfg,
		httpClient: httpClient,
		logger:     log.With().Str("component", "image-cache").Logger(),
	}
}

// sizeTokens lists all variant tokens, used to recognize which token an
// origin URL already carries.
func (c *Cache) sizeTokens() []string {
	tokens := make([]string, 0, len(c.config.Variants))
	for _, v := range c.config.Variants {
		if v.Token != "" {
			tokens = append(tokens, v.Token)
		}
	}
	return tokens
}

// Get returns the cached image for (rawURL, variant), fetching it from the
// origin on miss or expiry. Concurrent requests for the same key share one
// origin fetch.
func (c *Cache) Get(ctx context.Context, rawURL, variant string) (*Entry, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	key := cacheKey(rawURL, variant)

	if v, ok := c.entries.Load(key); ok {
		entry := v.(*Entry)
		if !entry.IsExpired(c.config.TTL) {
			CacheHits.Inc()
			return entry, nil
		}
	}
	CacheMisses.Inc()

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have repopulated the key while we queued.
		if v, ok := c.entries.Load(key); ok {
			entry := v.(*Entry)
			if !entry.IsExpired(c.config.TTL) {
				return entry, nil
			}
		}

		// The origin fetch is shared by every coalesced caller, so it must
		// not ride on any single caller's request context. FetchTimeout
		// bounds it instead.
		entry, err := c.fetchAndTransform(context.Background(), rawURL, variant)
		if err != nil {
			return nil, err
		}

		// Replacing an expired entry must not double-count its bytes.
		if old, ok := c.entries.Load(key); ok {
			CacheBytes.Sub(float64(len(old.(*Entry).Data)))
		}
		c.entries.Store(key, entry)
		CacheBytes.Add(float64(len(entry.Data)))
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}

// fetchAndTransform fetches the image from the origin and applies the
// variant's resize if one is configured.
func (c *Cache) fetchAndTransform(ctx context.Context, rawURL, variant string) (*Entry, error) {
	v := c.config.Variants[variant]

	originURL := RewriteSize(rawURL, v.Token, c.sizeTokens())

	data, contentType, err := c.fetchOrigin(ctx, originURL)
	if err != nil {
		return nil, err
	}

	if v.Width > 0 {
		resized, didResize := resizeToWidth(data, v.Width)
		if didResize {
			resizesTotal.Inc()
		}
		data = resized
	}

	return &Entry{
		Data:        data,
		ContentType: contentType,
		CachedAt:    time.Now(),
	}, nil
}

// fetchOrigin performs one origin round trip. The response must be a 2xx
// with an image content type.
func (c *Cache) fetchOrigin(ctx context.Context, originURL string) ([]byte, string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.config.FetchTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		originFetchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, originURL, nil)
	if err != nil {
		originFetchesTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		originFetchesTotal.WithLabelValues("error").Inc()
		c.logger.Warn().Err(err).Str("url", originURL).Msg("Origin fetch failed")
		return nil, "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		originFetchesTotal.WithLabelValues("error").Inc()
		c.logger.Warn().
			Int("status", resp.StatusCode).
			Str("url", originURL).
			Msg("Origin returned non-success status")
		return nil, "", fmt.Errorf("%w: origin status %d", ErrUnavailable, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image") {
		originFetchesTotal.WithLabelValues("not_image").Inc()
		c.logger.Warn().
			Str("content_type", contentType).
			Str("url", originURL).
			Msg("Origin returned non-image content type")
		return nil, "", fmt.Errorf("%w: content type %q", ErrUnavailable, contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		originFetchesTotal.WithLabelValues("error").Inc()
		return nil, "", fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	originFetchesTotal.WithLabelValues("ok").Inc()
	return data, contentType, nil
}

// validateURL rejects anything that is not an absolute http(s) URL.
func validateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q is not an absolute http(s) url", ErrInvalidURL, rawURL)
	}
	return nil
}
