package integration

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/artic-catalog/internal/testutil"
	"github.com/Sternrassler/artic-catalog/pkg/catalog"
	"github.com/Sternrassler/artic-catalog/pkg/selection"
	"github.com/Sternrassler/artic-catalog/pkg/store"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

func newCachedClient(t *testing.T, redisClient *redis.Client, mock *testutil.MockCatalog) *catalog.Client {
	t.Helper()

	cfg := catalog.DefaultConfig("artcat-integration/1.0 (integration@test.com)")
	cfg.Redis = redisClient
	cfg.BaseURL = mock.URL()
	cfg.RequestsPerMinute = 600

	c, err := catalog.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

// TestFullRequestFlow tests the complete flow: pace, cache miss, fetch,
// cache store, then a conditional request answered with 304 from cache.
func TestFullRequestFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockCatalog(50)
	defer mock.Close()

	c := newCachedClient(t, redisClient, mock)

	ctx := context.Background()
	req := catalog.PageRequest{Page: 1, Limit: 10}

	// Request 1: cache miss, full fetch, cache store
	t.Log("Request 1: full flow - cache miss")
	page1, err := c.FetchPage(ctx, req)
	if err != nil {
		t.Fatalf("Request 1 failed: %v", err)
	}
	if len(page1.Artworks) != 10 {
		t.Errorf("Request 1 artworks = %d, want 10", len(page1.Artworks))
	}
	if mock.RequestCount() != 1 {
		t.Errorf("After request 1: upstream requests = %d, want 1", mock.RequestCount())
	}

	// Wait for cache write
	time.Sleep(100 * time.Millisecond)

	// Request 2: conditional request, 304, body served from cache
	t.Log("Request 2: conditional request answered from cache")
	page2, err := c.FetchPage(ctx, req)
	if err != nil {
		t.Fatalf("Request 2 failed: %v", err)
	}

	if mock.ConditionalCount() != 1 {
		t.Errorf("Conditional requests = %d, want 1", mock.ConditionalCount())
	}
	if len(page2.Artworks) != len(page1.Artworks) {
		t.Errorf("Cached page size = %d, want %d", len(page2.Artworks), len(page1.Artworks))
	}
	if page2.Artworks[0].ID != page1.Artworks[0].ID {
		t.Errorf("Cached page differs from original: %d vs %d", page2.Artworks[0].ID, page1.Artworks[0].ID)
	}
}

// TestCrossPageSelectionWalk drives a select-first-N through the real
// client, cache, and store stack.
func TestCrossPageSelectionWalk(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockCatalog(45)
	defer mock.Close()

	c := newCachedClient(t, redisClient, mock)

	dbPath := t.TempDir() + "/selections.db"
	selStore, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	acc := selection.NewAccumulator(selStore)
	ctx := context.Background()

	req := catalog.PageRequest{Page: 1, Limit: 10}
	page, err := c.FetchPage(ctx, req)
	if err != nil {
		t.Fatalf("Failed to fetch first page: %v", err)
	}

	took, err := acc.SelectFirstN(25, page)
	if err != nil {
		t.Fatalf("SelectFirstN failed: %v", err)
	}
	if took != 10 || acc.Pending() != 15 {
		t.Fatalf("took = %d pending = %d, want 10 and 15", took, acc.Pending())
	}

	added, err := acc.Walk(ctx, c, req)
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	if added != 15 {
		t.Errorf("Walk added = %d, want 15", added)
	}
	if acc.Count() != 25 {
		t.Errorf("Selected = %d, want 25", acc.Count())
	}

	// The selection survives a store reopen.
	if err := selStore.Close(); err != nil {
		t.Fatalf("Failed to close store: %v", err)
	}
	reopened, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	restored := selection.NewAccumulator(reopened)
	if restored.Count() != 25 {
		t.Errorf("Restored selection = %d, want 25", restored.Count())
	}
}

// TestSelectionWalkStopsOnFailure verifies that a failing page ends the
// walk and keeps the partial selection.
func TestSelectionWalkStopsOnFailure(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockCatalog(60)
	defer mock.Close()
	mock.FailPage(3, 503)

	c := newCachedClient(t, redisClient, mock)

	acc := selection.NewAccumulator(openMemStore(t))
	ctx := context.Background()

	req := catalog.PageRequest{Page: 1, Limit: 10}
	page, err := c.FetchPage(ctx, req)
	if err != nil {
		t.Fatalf("Failed to fetch first page: %v", err)
	}

	if _, err := acc.SelectFirstN(40, page); err != nil {
		t.Fatalf("SelectFirstN failed: %v", err)
	}

	added, err := acc.Walk(ctx, c, req)
	if err == nil {
		t.Fatal("Expected walk error from failing page")
	}
	if added != 10 {
		t.Errorf("Walk added = %d, want 10 (page 2 only)", added)
	}
	if acc.Pending() != 0 {
		t.Errorf("Pending = %d, want 0 after failure", acc.Pending())
	}
	if acc.Count() != 20 {
		t.Errorf("Selected = %d, want 20 (partial selection kept)", acc.Count())
	}
}

func openMemStore(t *testing.T) *store.SelectionStore {
	t.Helper()
	s, err := store.Open("")
	if err != nil {
		t.Fatalf("Failed to open memory store: %v", err)
	}
	return s
}
