// Package testutil provides a mock museum catalog API server for tests.
//
// The mock serves a deterministic synthetic dataset on /artworks and
// honours the same query parameters as the real search API (page, limit,
// sort_by) plus conditional requests via ETag / If-None-Match. Tests
// point the client's BaseURL at MockCatalog.URL().
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// artworkDoc mirrors the wire format of a catalog record. testutil keeps
// its own copy of the struct so the client package's in-package tests can
// use the mock without an import cycle.
type artworkDoc struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	PlaceOfOrigin string `json:"place_of_origin"`
	ArtistDisplay string `json:"artist_display"`
	Inscriptions  string `json:"inscriptions"`
	DateStart     int    `json:"date_start"`
	DateEnd       int    `json:"date_end"`
}

type paginationDoc struct {
	Total       int `json:"total"`
	Limit       int `json:"limit"`
	Offset      int `json:"offset"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
}

type envelopeDoc struct {
	Data       []artworkDoc  `json:"data"`
	Pagination paginationDoc `json:"pagination"`
}

var (
	mockTitles  = []string{"Water Lilies", "The Bedroom", "Nighthawks", "American Gothic", "Paris Street", "Sky Above Clouds"}
	mockOrigins = []string{"France", "Netherlands", "United States", "Japan", "Italy"}
	mockArtists = []string{"Claude Monet", "Vincent van Gogh", "Edward Hopper", "Grant Wood", "Gustave Caillebotte"}
)

// MockCatalog is an httptest-backed catalog API with a synthetic dataset.
type MockCatalog struct {
	server *httptest.Server

	mu          sync.Mutex
	total       int
	etagVersion int
	failures    map[int]int // page number -> HTTP status to return

	requestCount     int
	conditionalCount int
	lastHeader       http.Header
}

// NewMockCatalog starts a mock server holding total synthetic artworks.
// The caller must Close it.
func NewMockCatalog(total int) *MockCatalog {
	m := &MockCatalog{
		total:       total,
		etagVersion: 1,
		failures:    make(map[int]int),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/artworks", m.handleArtworks)
	m.server = httptest.NewServer(mux)
	return m
}

// URL returns the base URL of the mock server.
func (m *MockCatalog) URL() string {
	return m.server.URL
}

// Close shuts down the underlying test server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// SetTotal changes the dataset size.
func (m *MockCatalog) SetTotal(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = total
}

// FailPage makes requests for the given page number return the given
// HTTP status instead of data.
func (m *MockCatalog) FailPage(page, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[page] = status
}

// ClearFailures removes all injected page failures.
func (m *MockCatalog) ClearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = make(map[int]int)
}

// BumpVersion invalidates all previously issued ETags.
func (m *MockCatalog) BumpVersion() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.etagVersion++
}

// RequestCount returns the number of /artworks requests served,
// including 304 responses.
func (m *MockCatalog) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// ConditionalCount returns the number of requests that carried an
// If-None-Match header.
func (m *MockCatalog) ConditionalCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conditionalCount
}

// LastRequestHeader returns a copy of the headers of the most recent
// request, or nil when no request was served yet.
func (m *MockCatalog) LastRequestHeader() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastHeader == nil {
		return nil
	}
	return m.lastHeader.Clone()
}

// docAt builds the i-th artwork of the synthetic dataset. The mapping is
// pure so every request sees the same records.
func docAt(i int) artworkDoc {
	return artworkDoc{
		ID:            1000 + i,
		Title:         fmt.Sprintf("%s No. %d", mockTitles[i%len(mockTitles)], i+1),
		PlaceOfOrigin: mockOrigins[i%len(mockOrigins)],
		ArtistDisplay: mockArtists[i%len(mockArtists)],
		Inscriptions:  "",
		DateStart:     1800 + i%200,
		DateEnd:       1805 + i%200,
	}
}

func (m *MockCatalog) handleArtworks(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	m.lastHeader = r.Header.Clone()
	if r.Header.Get("If-None-Match") != "" {
		m.conditionalCount++
	}
	total := m.total
	version := m.etagVersion
	failures := make(map[int]int, len(m.failures))
	for k, v := range m.failures {
		failures[k] = v
	}
	m.mu.Unlock()

	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	limit := queryInt(q.Get("limit"), 12)
	sortBy := q.Get("sort_by")

	if status, ok := failures[page]; ok {
		http.Error(w, http.StatusText(status), status)
		return
	}

	etag := fmt.Sprintf("%q", fmt.Sprintf("v%d-p%d-l%d-s%s", version, page, limit, sortBy))
	w.Header().Set("ETag", etag)
	w.Header().Set("Expires", time.Now().Add(5*time.Minute).UTC().Format(http.TimeFormat))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	docs := make([]artworkDoc, total)
	for i := range docs {
		docs[i] = docAt(i)
	}
	sortDocs(docs, sortBy)

	offset := (page - 1) * limit
	end := offset + limit
	if offset > total {
		offset = total
	}
	if end > total {
		end = total
	}
	totalPages := (total + limit - 1) / limit

	env := envelopeDoc{
		Data: docs[offset:end],
		Pagination: paginationDoc{
			Total:       total,
			Limit:       limit,
			Offset:      offset,
			TotalPages:  totalPages,
			CurrentPage: page,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(env)
}

func sortDocs(docs []artworkDoc, sortBy string) {
	field := sortBy
	desc := false
	if s, ok := strings.CutSuffix(sortBy, ":desc"); ok {
		field = s
		desc = true
	}

	var less func(a, b artworkDoc) bool
	switch field {
	case "title":
		less = func(a, b artworkDoc) bool { return a.Title < b.Title }
	case "place_of_origin":
		less = func(a, b artworkDoc) bool { return a.PlaceOfOrigin < b.PlaceOfOrigin }
	case "date_start":
		less = func(a, b artworkDoc) bool { return a.DateStart < b.DateStart }
	default:
		return
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if desc {
			return less(docs[j], docs[i])
		}
		return less(docs[i], docs[j])
	})
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
