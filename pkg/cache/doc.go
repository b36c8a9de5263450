// Package cache provides catalog response caching with a Redis backend.
//
// The catalog API serves standard HTTP cache headers, so the manager keys
// entries by endpoint + query parameters and honors the expires header for
// TTL. ETag / Last-Modified values are kept so the client can issue
// conditional requests (If-None-Match / If-Modified-Since) and reuse the
// cached body on 304 Not Modified.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.Key{
//		Endpoint:    "/artworks",
//		QueryParams: url.Values{"page": []string{"1"}, "limit": []string{"12"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from the catalog API
//	}
//
// # HTTP Response Caching
//
//	entry, err := cache.ResponseToEntry(resp)
//	if err != nil {
//		return err
//	}
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Conditional Requests
//
//	if cache.ShouldMakeConditionalRequest(entry) {
//		cache.AddConditionalHeaders(req, entry)
//		// the upstream returns 304 if the page is unchanged
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - catalog_cache_hits_total{layer="redis"} - Cache hits
//   - catalog_cache_misses_total - Cache misses
//   - catalog_cache_size_bytes{layer="redis"} - Cache size
//   - catalog_304_responses_total - Conditional request successes
//   - catalog_conditional_requests_total - Conditional requests sent
//   - catalog_cache_errors_total{operation} - Cache operation errors
package cache
