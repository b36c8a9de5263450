// catalog-proxy is a caching HTTP proxy in front of the museum catalog
// API. It shares the client's redis response cache and pacing, exposes
// prometheus metrics, and passes catalog responses through verbatim.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/artic-catalog/pkg/catalog"
	"github.com/Sternrassler/artic-catalog/pkg/logging"
)

func main() {
	// Configuration from environment
	redisURL := getEnv("REDIS_URL", "localhost:6379")
	port := getEnv("PORT", "8080")
	userAgent := getEnv("USER_AGENT", "catalog-proxy/1.0 (+https://github.com/Sternrassler/artic-catalog)")
	baseURL := getEnv("CATALOG_URL", catalog.DefaultBaseURL)

	logger := logging.Setup(logging.Config{Level: logging.LevelInfo})

	// Setup Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", redisURL).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("addr", redisURL).Msg("Connected to Redis")

	cfg := catalog.DefaultConfig(userAgent)
	cfg.Redis = redisClient
	cfg.BaseURL = baseURL

	client, err := catalog.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create catalog client")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/catalog/", proxyHandler(client))

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Str("user_agent", userAgent).
		Str("upstream", baseURL).
		Msg("Starting catalog proxy")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// proxyHandler forwards /catalog/* to the upstream API through the
// caching client and streams the response back unchanged.
func proxyHandler(client *catalog.Client) http.HandlerFunc {
	logger := logging.NewLogger("proxy")

	return func(w http.ResponseWriter, r *http.Request) {
		// Example: /catalog/artworks?page=2 -> /artworks?page=2
		endpoint := r.URL.Path[len("/catalog"):]
		if r.URL.RawQuery != "" {
			endpoint += "?" + r.URL.RawQuery
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		resp, err := client.Get(ctx, endpoint)
		if err != nil {
			http.Error(w, fmt.Sprintf("catalog request failed: %v", err), http.StatusBadGateway)
			return
		}
		defer resp.Body.Close()

		for key, values := range resp.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		w.WriteHeader(resp.StatusCode)

		if _, err := io.Copy(w, resp.Body); err != nil {
			logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to stream response")
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
