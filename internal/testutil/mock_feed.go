// Package testutil provides testing utilities for the feed client and stores.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FeedPath is the path the mock server serves the feed document on.
const FeedPath = "/v1/feed"

// MockFeedResponse defines the behavior for one mock feed response.
type MockFeedResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockFeedServer is a configurable mock feed server for testing.
// Queued responses are served once each, in order, before the default.
type MockFeedServer struct {
	server   *httptest.Server
	mu       sync.RWMutex
	queue    []MockFeedResponse
	fallback MockFeedResponse

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
}

// NewMockFeedServer creates a mock server answering with an empty feed.
func NewMockFeedServer() *MockFeedServer {
	mock := &MockFeedServer{
		fallback: NewFeedResponse(),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()

		resp := mock.fallback
		if len(mock.queue) > 0 {
			resp = mock.queue[0]
			mock.queue = mock.queue[1:]
		}
		mock.mu.Unlock()

		if r.URL.Path != FeedPath {
			http.NotFound(w, r)
			return
		}

		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	}))

	return mock
}

// URL returns the base URL of the mock server.
func (m *MockFeedServer) URL() string {
	return m.server.URL
}

// FeedURL returns the full feed endpoint URL.
func (m *MockFeedServer) FeedURL() *url.URL {
	u, _ := url.Parse(m.server.URL + FeedPath)
	return u
}

// Close shuts down the mock server.
func (m *MockFeedServer) Close() {
	m.server.Close()
}

// Reset clears tracking counters and queued responses.
func (m *MockFeedServer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.queue = nil
}

// SetResponse sets the response served whenever the queue is empty.
func (m *MockFeedServer) SetResponse(resp MockFeedResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = resp
}

// Enqueue adds responses served once each before the default one.
func (m *MockFeedServer) Enqueue(resps ...MockFeedResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resps...)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockFeedServer) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockFeedServer) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

// FeedItemJSON is one item in the wire format.
type FeedItemJSON struct {
	ID          string  `json:"id"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Image       string  `json:"image"`
}

// NewFeedItemJSON returns an item with a fresh id and the given image URL.
func NewFeedItemJSON(image string) FeedItemJSON {
	return FeedItemJSON{ID: uuid.NewString(), Image: image}
}

// NewFeedResponse creates a 200 OK response carrying items.
func NewFeedResponse(items ...FeedItemJSON) MockFeedResponse {
	if items == nil {
		items = []FeedItemJSON{}
	}
	body, _ := json.Marshal(struct {
		Items []FeedItemJSON `json:"items"`
	}{Items: items})

	return MockFeedResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
	}
}

// NewInvalidJSONResponse creates a 200 OK response whose body is not JSON.
func NewInvalidJSONResponse() MockFeedResponse {
	return MockFeedResponse{
		StatusCode: http.StatusOK,
		Body:       "invalid json",
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockFeedResponse {
	return MockFeedResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "Rate limit exceeded"}`,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockFeedResponse {
	return MockFeedResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
	}
}
