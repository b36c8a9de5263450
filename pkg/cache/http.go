package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTTL is the fallback TTL when no expires header is present
	DefaultTTL = 5 * time.Minute
)

// ResponseToEntry converts an HTTP response to a cache Entry.
// It parses expires and last-modified headers and reads the response body.
// The response body is restored after reading.
func ResponseToEntry(resp *http.Response) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()

	// Restore body for caller
	resp.Body = io.NopCloser(bytes.NewReader(body))

	entry := &Entry{
		Data:       body,
		ETag:       resp.Header.Get("ETag"),
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		CachedAt:   time.Now(),
	}

	entry.Expires = parseExpires(resp.Header)

	if lastModStr := resp.Header.Get("Last-Modified"); lastModStr != "" {
		if lastMod, err := http.ParseTime(lastModStr); err == nil {
			entry.LastModified = lastMod
		}
	}

	return entry, nil
}

// EntryToResponse converts a cache entry back to an HTTP response, used to
// serve a cached body after a 304 Not Modified.
func EntryToResponse(entry *Entry) *http.Response {
	if entry == nil {
		return nil
	}

	header := entry.Headers.Clone()
	if header == nil {
		header = http.Header{}
	}

	return &http.Response{
		StatusCode:    entry.StatusCode,
		Status:        http.StatusText(entry.StatusCode),
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Data)),
		ContentLength: int64(len(entry.Data)),
	}
}

// parseExpires parses the Expires header from HTTP headers.
// Returns the parsed expiration time, or current time + DefaultTTL if parsing fails.
func parseExpires(headers http.Header) time.Time {
	expiresStr := headers.Get("Expires")
	if expiresStr == "" {
		return time.Now().Add(DefaultTTL)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil {
		return time.Now().Add(DefaultTTL)
	}

	if expires.Before(time.Now()) {
		// Already expired - use minimal TTL
		return time.Now()
	}

	return expires
}

// ShouldMakeConditionalRequest determines if we should add conditional
// request headers (If-None-Match or If-Modified-Since) based on the cache entry.
func ShouldMakeConditionalRequest(entry *Entry) bool {
	if entry == nil {
		return false
	}
	return entry.ETag != "" || !entry.LastModified.IsZero()
}

// AddConditionalHeaders adds If-None-Match (ETag) or If-Modified-Since headers
// to the request if the cache entry supports conditional requests.
func AddConditionalHeaders(req *http.Request, entry *Entry) {
	if entry == nil || req == nil {
		return
	}

	// Prefer ETag over Last-Modified (more accurate)
	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
	} else if !entry.LastModified.IsZero() {
		req.Header.Set("If-Modified-Since", entry.LastModified.Format(http.TimeFormat))
	}
}
