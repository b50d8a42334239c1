// Package integration exercises the full proxy stack end to end: HTTP
// surface, catalog cache, upstream fetcher, and image cache against mock
// upstream and origin servers.
package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gacz1998/Proxy-API/internal/server"
	"github.com/gacz1998/Proxy-API/internal/testutil"
	"github.com/gacz1998/Proxy-API/pkg/catalog"
	"github.com/gacz1998/Proxy-API/pkg/fetcher"
	"github.com/gacz1998/Proxy-API/pkg/imageproxy"
)

type proxyFixture struct {
	ts       *httptest.Server
	upstream *testutil.MockUpstream
	origin   *testutil.MockOrigin
}

func newProxy(t *testing.T, products []catalog.Product, catalogTTL time.Duration) *proxyFixture {
	t.Helper()

	upstream := testutil.NewMockUpstream(products)
	origin := testutil.NewMockOrigin()

	cfg := fetcher.DefaultConfig(upstream.URL(), "test-token")
	cfg.PageSize = 50
	cfg.MaxRetries = 1
	cfg.InitialBackoff = time.Millisecond
	catalogFetcher, err := fetcher.New(cfg)
	require.NoError(t, err)

	catalogCache := catalog.NewCache(catalogFetcher.FetchCatalog, catalog.CacheConfig{TTL: catalogTTL})
	imageCache := imageproxy.NewCache(imageproxy.Config{TTL: time.Hour})

	ts := httptest.NewServer(server.New(catalogCache, imageCache, server.DefaultConfig()).Handler())

	t.Cleanup(func() {
		ts.Close()
		upstream.Close()
		origin.Close()
	})

	return &proxyFixture{ts: ts, upstream: upstream, origin: origin}
}

func (f *proxyFixture) getProducts(t *testing.T, query string) (int, map[string]any) {
	t.Helper()

	resp, err := http.Get(f.ts.URL + "/proxy/products" + query)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestProxy_ProductListFlow(t *testing.T) {
	f := newProxy(t, testutil.GenerateProducts(120), time.Hour)

	status, body := f.getProducts(t, "?page_size=24&page_number=1")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 120, body["total"])
	assert.Len(t, body["products"], 24)

	// The whole catalog was assembled once (3 pages of 50 plus the
	// speculative window remainder), then served from memory.
	firstFetch := f.upstream.RequestCount()
	for i := 0; i < 5; i++ {
		status, _ = f.getProducts(t, "?page_number="+fmt.Sprint(i+1))
		require.Equal(t, http.StatusOK, status)
	}
	assert.Equal(t, firstFetch, f.upstream.RequestCount(),
		"fresh snapshot reads must not hit the upstream")
}

func TestProxy_ConcurrentFirstRequestsShareOneFetch(t *testing.T) {
	f := newProxy(t, testutil.GenerateProducts(40), time.Hour)
	f.upstream.SetDelay(50 * time.Millisecond)

	const n = 10
	var wg sync.WaitGroup
	statuses := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			resp, err := http.Get(f.ts.URL + "/proxy/products")
			if err == nil {
				statuses[idx] = resp.StatusCode
				resp.Body.Close()
			}
		}(i)
	}
	wg.Wait()

	for _, status := range statuses {
		assert.Equal(t, http.StatusOK, status)
	}
	// One window of page requests, not one per client.
	assert.Equal(t, 1, f.upstream.PageRequests(1),
		"concurrent cold-cache requests must share a single upstream fetch")
}

func TestProxy_StaleServedWhileRevalidating(t *testing.T) {
	f := newProxy(t, testutil.GenerateProducts(10), 100*time.Millisecond)

	status, body := f.getProducts(t, "")
	require.Equal(t, http.StatusOK, status)
	require.EqualValues(t, 10, body["total"])

	f.upstream.SetProducts(testutil.GenerateProducts(20))
	time.Sleep(150 * time.Millisecond) // let the snapshot go stale

	// The stale read answers immediately with the old total and triggers a
	// background refresh.
	status, body = f.getProducts(t, "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 10, body["total"], "stale read must serve the old snapshot")

	// Eventually the refreshed catalog is visible.
	require.Eventually(t, func() bool {
		_, body := f.getProducts(t, "")
		return body["total"] == float64(20)
	}, 2*time.Second, 20*time.Millisecond, "background refresh never landed")
}

func TestProxy_UpstreamDownOnColdCache(t *testing.T) {
	f := newProxy(t, nil, time.Hour)

	status, body := f.getProducts(t, "")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.NotEmpty(t, body["error"])
}

func TestProxy_ImageFlow(t *testing.T) {
	f := newProxy(t, testutil.GenerateProducts(5), time.Hour)

	imageURL := f.ts.URL + "/proxy/image?url=" + f.origin.URL() + "/products/p1.png"

	resp, err := http.Get(imageURL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	// Second request is served from the cache.
	resp, err = http.Get(imageURL)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, f.origin.RequestCount())
}
