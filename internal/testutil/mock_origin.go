package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockOrigin is a stand-in for the image origin. By default it answers
// every path with a small valid PNG.
type MockOrigin struct {
	server *httptest.Server

	mu          sync.Mutex
	status      int
	contentType string
	data        []byte

	requestCount int
	lastPath     string
}

// NewMockOrigin creates a mock image origin serving a 4x4 PNG.
func NewMockOrigin() *MockOrigin {
	m := &MockOrigin{
		status:      http.StatusOK,
		contentType: "image/png",
		data:        PNG(4, 4),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// URL returns the mock server URL.
func (m *MockOrigin) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockOrigin) Close() {
	m.server.Close()
}

// SetResponse configures the response for all subsequent requests.
func (m *MockOrigin) SetResponse(status int, contentType string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.contentType = contentType
	m.data = data
}

// RequestCount returns the number of requests served.
func (m *MockOrigin) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// LastPath returns the path of the most recent request.
func (m *MockOrigin) LastPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPath
}

func (m *MockOrigin) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	m.lastPath = r.URL.Path
	status := m.status
	contentType := m.contentType
	data := m.data
	m.mu.Unlock()

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(status)
	w.Write(data)
}

// PNG encodes a solid-color PNG of the given dimensions.
func PNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 120, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
