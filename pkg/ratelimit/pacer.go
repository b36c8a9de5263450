// Package ratelimit paces outgoing catalog requests. The public catalog
// API publishes no quota headers, so pacing is purely client-side: a token
// bucket sized from a requests-per-minute budget.
package ratelimit

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Prometheus metrics for request pacing.
var (
	pacerWaitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_pacer_waits_total",
		Help: "Total number of requests that had to wait for the pacer",
	})

	pacerWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_pacer_wait_seconds",
		Help:    "Time spent waiting for the pacer before a request",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	})
)

// DefaultRequestsPerMinute is the polite request budget for the public API.
const DefaultRequestsPerMinute = 60

// Pacer gates outgoing requests to a fixed request rate.
type Pacer struct {
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewPacer creates a pacer allowing perMinute requests per minute with a
// burst of one. Non-positive perMinute falls back to the default budget.
func NewPacer(perMinute int, logger zerolog.Logger) *Pacer {
	if perMinute <= 0 {
		perMinute = DefaultRequestsPerMinute
	}

	interval := time.Minute / time.Duration(perMinute)

	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  logger,
	}
}

// Wait blocks until the next request is allowed or the context is done.
func (p *Pacer) Wait(ctx context.Context) error {
	start := time.Now()

	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	waited := time.Since(start)
	if waited > time.Millisecond {
		pacerWaitsTotal.Inc()
		pacerWaitSeconds.Observe(waited.Seconds())
		p.logger.Debug().
			Dur("waited", waited).
			Msg("Request paced")
	}

	return nil
}

// Allow reports whether a request may proceed immediately without waiting.
func (p *Pacer) Allow() bool {
	return p.limiter.Allow()
}
