// Package testutil provides test doubles for the upstream catalog API and
// the image origin.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/gacz1998/Proxy-API/pkg/catalog"
)

// MockUpstream is a configurable stand-in for the paginated catalog API.
// It serves slices of a fixed product list according to the page_size and
// page_number query parameters, the same contract the real upstream uses.
type MockUpstream struct {
	server *httptest.Server

	mu         sync.Mutex
	products   []catalog.Product
	pageStatus map[int]int    // page -> forced HTTP status
	pageBody   map[int]string // page -> raw body override
	delay      time.Duration

	requestCount int
	pagesServed  map[int]int
}

// NewMockUpstream creates a mock upstream serving the given products.
func NewMockUpstream(products []catalog.Product) *MockUpstream {
	m := &MockUpstream{
		products:    products,
		pageStatus:  make(map[int]int),
		pageBody:    make(map[int]string),
		pagesServed: make(map[int]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the mock server URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}

// SetProducts replaces the product list.
func (m *MockUpstream) SetProducts(products []catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
}

// FailPage forces the given page to answer with status.
func (m *MockUpstream) FailPage(page, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageStatus[page] = status
}

// SetPageBody forces the given page to answer with a raw body, for
// invalid-response tests.
func (m *MockUpstream) SetPageBody(page int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageBody[page] = body
}

// SetDelay makes every page response wait before answering.
func (m *MockUpstream) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// RequestCount returns the number of page requests served.
func (m *MockUpstream) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// PageRequests returns how often the given page was requested.
func (m *MockUpstream) PageRequests(page int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pagesServed[page]
}

func (m *MockUpstream) handle(w http.ResponseWriter, r *http.Request) {
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	page, _ := strconv.Atoi(r.URL.Query().Get("page_number"))
	if pageSize <= 0 {
		pageSize = 100
	}
	if page <= 0 {
		page = 1
	}

	m.mu.Lock()
	m.requestCount++
	m.pagesServed[page]++
	status := m.pageStatus[page]
	body, hasBody := m.pageBody[page]
	delay := m.delay
	products := m.products
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if status != 0 {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if hasBody {
		w.Write([]byte(body))
		return
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(products) {
		start = len(products)
	}
	if end > len(products) {
		end = len(products)
	}

	items := products[start:end]
	if items == nil {
		items = []catalog.Product{}
	}
	json.NewEncoder(w).Encode(map[string]any{"products": items})
}

// GenerateProducts builds n distinct products with rotating families and
// categories, for tests that need a sizable catalog.
func GenerateProducts(n int) []catalog.Product {
	families := []string{"Escritura", "Tecnologia", "Textil"}
	categories := []string{"Lapices", "USB", "Gorras"}

	products := make([]catalog.Product, n)
	for i := 0; i < n; i++ {
		products[i] = catalog.Product{
			"code":        fmt.Sprintf("P%04d", i+1),
			"family_name": families[i%len(families)],
			"category":    categories[i%len(categories)],
			"name":        fmt.Sprintf("Producto %d", i+1),
		}
	}
	return products
}
