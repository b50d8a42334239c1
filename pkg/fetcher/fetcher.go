// Package fetcher retrieves the full product catalog from the paginated
// upstream API using bounded-concurrency page requests.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gacz1998/Proxy-API/pkg/catalog"
)

// Config holds fetcher configuration.
type Config struct {
	// BaseURL is the upstream products endpoint, e.g.
	// "http://api.example.com/v2/products".
	BaseURL string

	// AuthToken is the upstream auth_token query parameter.
	AuthToken string

	// PageSize is the upstream page size. The first page shorter than this
	// signals end-of-data.
	PageSize int

	// WindowSize is the number of pages fetched concurrently per window.
	WindowSize int

	// PageTimeout bounds a single page request, retries included.
	PageTimeout time.Duration

	// MaxRetries is the number of attempts per page before the page
	// degrades to an empty result.
	MaxRetries int

	// InitialBackoff is the first retry backoff duration.
	InitialBackoff time.Duration

	// HTTPClient overrides the default HTTP client (for testing).
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(baseURL, authToken string) Config {
	return Config{
		BaseURL:        baseURL,
		AuthToken:      authToken,
		PageSize:       100,
		WindowSize:     6,
		PageTimeout:    15 * time.Second,
		MaxRetries:     2,
		InitialBackoff: 500 * time.Millisecond,
	}
}

// Fetcher retrieves the catalog page by page. The upstream does not expose
// its total page count, so pages are fetched in concurrent windows until a
// short or empty page marks the end of the data.
type Fetcher struct {
	config     Config
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a new catalog fetcher.
func New(cfg Config) (*Fetcher, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 6
	}
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 15 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.PageTimeout}
	}

	return &Fetcher{
		config:     cfg,
		httpClient: httpClient,
		logger:     log.With().Str("component", "catalog-fetcher").Logger(),
	}, nil
}

// pageResult carries one page's products back from a worker, indexed by
// page number so the catalog can be reassembled in page order regardless
// of completion order.
type pageResult struct {
	page     int
	products []catalog.Product
	err      error
}

// FetchCatalog retrieves the entire catalog. Page requests run in
// concurrent windows of WindowSize; each failed page degrades to an empty
// result rather than aborting the fetch. Assembly stops at the first page
// with fewer than PageSize items. Returns *UpstreamError when zero
// products could be retrieved at all.
func (f *Fetcher) FetchCatalog(ctx context.Context) ([]catalog.Product, error) {
	start := time.Now()
	defer func() {
		fetchDuration.Observe(time.Since(start).Seconds())
	}()

	var all []catalog.Product
	var lastErr error
	pagesAttempted := 0

	for first := 1; ; first += f.config.WindowSize {
		if err := ctx.Err(); err != nil {
			break
		}

		results := f.fetchWindow(ctx, first)
		pagesAttempted += len(results)

		done := false
		for _, res := range results {
			if res.err != nil {
				lastErr = res.err
			}
			all = append(all, res.products...)
			// A short or empty page marks end-of-data. Later pages in
			// this window were fetched speculatively and are discarded.
			if len(res.products) < f.config.PageSize {
				done = true
				break
			}
		}
		if done {
			break
		}
	}

	if len(all) == 0 {
		f.logger.Error().
			Err(lastErr).
			Int("pages_attempted", pagesAttempted).
			Msg("Catalog fetch yielded zero products")
		return nil, &UpstreamError{Pages: pagesAttempted, Err: lastErr}
	}

	f.logger.Info().
		Int("products", len(all)).
		Int("pages_attempted", pagesAttempted).
		Dur("duration", time.Since(start)).
		Msg("Catalog fetch complete")

	return all, nil
}

// fetchWindow fetches WindowSize consecutive pages starting at first,
// concurrently. Results come back ordered by page number; a failed page
// carries an empty product slice plus its error.
func (f *Fetcher) fetchWindow(ctx context.Context, first int) []pageResult {
	n := f.config.WindowSize
	results := make([]pageResult, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			page := first + idx
			products, err := f.fetchPage(ctx, page)
			if err != nil {
				f.logger.Warn().
					Err(err).
					Int("page", page).
					Msg("Page fetch failed, treating as empty")
				pageRequestsTotal.WithLabelValues("error").Inc()
				results[idx] = pageResult{page: page, err: err}
				return
			}
			if len(products) == 0 {
				pageRequestsTotal.WithLabelValues("empty").Inc()
			} else {
				pageRequestsTotal.WithLabelValues("ok").Inc()
			}
			results[idx] = pageResult{page: page, products: products}
		}(i)
	}
	wg.Wait()

	return results
}

// fetchPage retrieves a single catalog page with its own timeout and retry
// budget.
func (f *Fetcher) fetchPage(ctx context.Context, page int) ([]catalog.Product, error) {
	pageCtx, cancel := context.WithTimeout(ctx, f.config.PageTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		pageRequestDuration.Observe(time.Since(start).Seconds())
	}()

	var products []catalog.Product
	err := retryWithBackoff(pageCtx, f.logger, f.config.MaxRetries, f.config.InitialBackoff, func() error {
		var err error
		products, err = f.doPageRequest(pageCtx, page)
		return err
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// doPageRequest performs one HTTP round trip for a page and decodes the
// response body.
func (f *Fetcher) doPageRequest(ctx context.Context, page int) ([]catalog.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.pageURL(page), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &statusError{StatusCode: resp.StatusCode}
	}

	return decodeProducts(resp.Body)
}

// pageURL builds the upstream URL for a page.
func (f *Fetcher) pageURL(page int) string {
	q := url.Values{}
	if f.config.AuthToken != "" {
		q.Set("auth_token", f.config.AuthToken)
	}
	q.Set("page_size", strconv.Itoa(f.config.PageSize))
	q.Set("page_number", strconv.Itoa(page))
	return f.config.BaseURL + "?" + q.Encode()
}

// decodeProducts parses an upstream page body. The body must be a JSON
// object with a "products" array; anything else is an invalid response.
func decodeProducts(r io.Reader) ([]catalog.Product, error) {
	var body struct {
		Products json.RawMessage `json:"products"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if len(body.Products) == 0 || string(body.Products) == "null" {
		return nil, fmt.Errorf("%w: missing products array", ErrInvalidResponse)
	}

	var products []catalog.Product
	if err := json.Unmarshal(body.Products, &products); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return products, nil
}
