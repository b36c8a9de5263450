// Package catalog provides the museum catalog HTTP client with request
// pacing, response caching, and error handling.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Sternrassler/artic-catalog/pkg/cache"
	"github.com/Sternrassler/artic-catalog/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for catalog client operations.
var (
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Total catalog requests by endpoint and status",
	}, []string{"endpoint", "status"})

	catalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Catalog request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	catalogErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_errors_total",
		Help: "Total catalog errors by class",
	}, []string{"class"})
)

// DefaultBaseURL is the public Art Institute of Chicago catalog API.
const DefaultBaseURL = "https://api.artic.edu/api/v1"

// Client is the catalog API client.
type Client struct {
	httpClient *http.Client
	cache      *cache.Manager
	pacer      *ratelimit.Pacer
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Redis client for response caching. Nil disables caching and every
	// fetch goes straight to the upstream.
	Redis *redis.Client

	// BaseURL of the catalog API (default: DefaultBaseURL).
	BaseURL string

	// User-Agent header. The catalog asks API consumers to identify
	// themselves, so this is required.
	UserAgent string

	// RequestsPerMinute caps the outgoing request rate.
	RequestsPerMinute int

	// Timeout per HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		UserAgent:         userAgent,
		RequestsPerMinute: 60,
		Timeout:           30 * time.Second,
	}
}

// New creates a new catalog client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "catalog-client").Logger()

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  cacheManager,
		pacer:  ratelimit.NewPacer(cfg.RequestsPerMinute, logger),
		config: cfg,
		logger: logger,
	}, nil
}

// Do performs an HTTP request with pacing and caching. It returns the
// response for any HTTP status; callers decide how to treat non-2xx.
// There is exactly one attempt per call: failures are terminal for the
// operation and are never retried here.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		catalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: pace the request
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	// Step 2: check cache
	var cachedEntry *cache.Entry
	cacheKey := cache.Key{
		Endpoint:    endpoint,
		QueryParams: req.URL.Query(),
	}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		if err != nil && err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
		cachedEntry = entry
	}

	// Step 3: make conditional request if cache hit
	if cachedEntry != nil && cache.ShouldMakeConditionalRequest(cachedEntry) {
		cache.AddConditionalHeaders(req, cachedEntry)
		cache.ConditionalRequestsSent.Inc()
		c.logger.Debug().
			Str("endpoint", endpoint).
			Str("etag", cachedEntry.ETag).
			Msg("Making conditional request")
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing catalog request")

	// Step 4: execute (single attempt)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		catalogErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		catalogRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &APIError{
			Class:   ErrorClassNetwork,
			Message: "request failed",
			Err:     err,
		}
	}

	// Step 5: handle 304 Not Modified
	if resp.StatusCode == http.StatusNotModified {
		c.logger.Debug().Str("endpoint", endpoint).Msg("304 Not Modified - using cache")
		catalogRequestsTotal.WithLabelValues(endpoint, "304").Inc()
		cache.NotModifiedResponses.Inc()

		if expiresStr := resp.Header.Get("Expires"); expiresStr != "" && c.cache != nil {
			if newExpires, err := http.ParseTime(expiresStr); err == nil {
				if err := c.cache.UpdateTTL(ctx, cacheKey, newExpires); err != nil {
					c.logger.Warn().Err(err).Msg("Failed to update cache TTL")
				}
			}
		}

		resp.Body.Close()
		return cache.EntryToResponse(cachedEntry), nil
	}

	// Step 6: record errors for observability; the caller builds the
	// typed error from the response.
	if resp.StatusCode >= 400 {
		class := classifyStatus(resp.StatusCode)
		catalogErrorsTotal.WithLabelValues(string(class)).Inc()
		catalogRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Catalog request error")

		return resp, nil
	}

	catalogRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	// Step 7: update cache on success
	if resp.StatusCode == http.StatusOK && c.cache != nil {
		entry, err := cache.ResponseToEntry(resp)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if entry.TTL() > 0 {
			if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to cache response")
			} else {
				c.logger.Debug().
					Str("endpoint", endpoint).
					Dur("ttl", entry.TTL()).
					Msg("Cached response")
			}
		}
	}

	return resp, nil
}

// FetchPage fetches a single page of artworks. On non-2xx status or parse
// failure it returns a *APIError and no page; the currently displayed page
// is the caller's to keep or replace.
func (c *Client) FetchPage(ctx context.Context, pageReq PageRequest) (*Page, error) {
	if err := pageReq.Validate(); err != nil {
		return nil, err
	}

	reqURL := c.config.BaseURL + "/artworks?" + pageReq.Values().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      classifyStatus(resp.StatusCode),
			Message:    resp.Status,
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		catalogErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassDecode,
			Message:    "parse envelope",
			Err:        err,
		}
	}

	c.logger.Debug().
		Int("page", env.Pagination.CurrentPage).
		Int("records", len(env.Data)).
		Int("total", env.Pagination.Total).
		Msg("Fetched catalog page")

	return &Page{
		Artworks:   env.Data,
		Pagination: env.Pagination,
	}, nil
}

// Get performs a GET request against a catalog endpoint path. Used by the
// caching proxy; library callers should prefer FetchPage.
func (c *Client) Get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
