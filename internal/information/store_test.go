package information

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ndtrung-dev/sensorgate/internal/infrastructure/redis"
)

// mockRepository counts calls and serves a single in-memory record.
type mockRepository struct {
	mu      sync.Mutex
	record  *Information
	getErr  error
	gets    int
	updates int
}

func (r *mockRepository) Get(_ context.Context, deviceName string) (*Information, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++

	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.record == nil || r.record.DeviceName != deviceName {
		return nil, ErrNotFound
	}
	copied := *r.record
	return &copied, nil
}

func (r *mockRepository) Update(_ context.Context, deviceName string, fields map[string]string) (*Information, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++

	if r.record == nil || r.record.DeviceName != deviceName {
		return nil, ErrNotFound
	}
	for name, value := range fields {
		ptr := r.record.fieldPtr(name)
		if ptr == nil {
			return nil, ErrUnknownField
		}
		*ptr = value
	}
	copied := *r.record
	return &copied, nil
}

func (r *mockRepository) Ensure(_ context.Context, _ string) error {
	return nil
}

func (r *mockRepository) getCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

// mockCache is an in-memory CacheClient with injectable failures.
type mockCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
	setErr  error
	delErr  error
	dels    []string
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]string)}
}

func (c *mockCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.getErr != nil {
		return "", c.getErr
	}
	value, ok := c.entries[key]
	if !ok {
		return "", redis.ErrCacheMiss
	}
	return value, nil
}

func (c *mockCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	return nil
}

func (c *mockCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dels = append(c.dels, keys...)
	if c.delErr != nil {
		return c.delErr
	}
	for _, key := range keys {
		delete(c.entries, key)
	}
	return nil
}

func testRecord() *Information {
	return &Information{
		DeviceName:   "gateway-01",
		Manufacturer: "Acme Sensors",
		Model:        "SG-100",
	}
}

func TestStoreGetPopulatesCache(t *testing.T) {
	repo := &mockRepository{record: testRecord()}
	cache := newMockCache()
	store := NewStore(repo, cache, time.Hour)
	ctx := context.Background()

	// First read: miss, repository serves, cache populated.
	fields, err := store.Get(ctx, "gateway-01")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if fields["manufacturer"] != "Acme Sensors" {
		t.Errorf("manufacturer = %q", fields["manufacturer"])
	}
	if repo.getCount() != 1 {
		t.Fatalf("repository reads = %d, want 1", repo.getCount())
	}

	cached, ok := cache.entries[CacheKey("gateway-01")]
	if !ok {
		t.Fatal("cache not populated after miss")
	}
	var cachedFields map[string]string
	if err := json.Unmarshal([]byte(cached), &cachedFields); err != nil {
		t.Fatalf("cached entry is not valid JSON: %v", err)
	}
	if cachedFields["model"] != "SG-100" {
		t.Errorf("cached model = %q", cachedFields["model"])
	}

	// Second read: served from cache, repository untouched.
	fields, err = store.Get(ctx, "gateway-01")
	if err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if fields["manufacturer"] != "Acme Sensors" {
		t.Errorf("manufacturer from cache = %q", fields["manufacturer"])
	}
	if repo.getCount() != 1 {
		t.Errorf("repository reads = %d, want exactly 1 across both Gets", repo.getCount())
	}
}

func TestStoreGetNotFound(t *testing.T) {
	repo := &mockRepository{}
	store := NewStore(repo, newMockCache(), time.Hour)

	_, err := store.Get(context.Background(), "missing-device")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStoreGetRepositoryErrorSurfaces(t *testing.T) {
	repoErr := errors.New("disk on fire")
	repo := &mockRepository{getErr: repoErr}
	store := NewStore(repo, newMockCache(), time.Hour)

	_, err := store.Get(context.Background(), "gateway-01")
	if !errors.Is(err, repoErr) {
		t.Errorf("Get() error = %v, want wrapped repository error", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("infrastructure failure must not look like ErrNotFound")
	}
}

func TestStoreGetCacheFailureFallsBack(t *testing.T) {
	repo := &mockRepository{record: testRecord()}
	cache := newMockCache()
	cache.getErr = errors.New("connection refused")
	store := NewStore(repo, cache, time.Hour)

	fields, err := store.Get(context.Background(), "gateway-01")
	if err != nil {
		t.Fatalf("Get() with broken cache error = %v", err)
	}
	if fields["manufacturer"] != "Acme Sensors" {
		t.Errorf("manufacturer = %q", fields["manufacturer"])
	}
}

func TestStoreGetCorruptCacheEntryFallsBack(t *testing.T) {
	repo := &mockRepository{record: testRecord()}
	cache := newMockCache()
	cache.entries[CacheKey("gateway-01")] = `{not json`
	store := NewStore(repo, cache, time.Hour)

	fields, err := store.Get(context.Background(), "gateway-01")
	if err != nil {
		t.Fatalf("Get() with corrupt entry error = %v", err)
	}
	if fields["model"] != "SG-100" {
		t.Errorf("model = %q", fields["model"])
	}
	if repo.getCount() != 1 {
		t.Errorf("repository reads = %d, want 1", repo.getCount())
	}
}

func TestStoreGetWithoutCache(t *testing.T) {
	repo := &mockRepository{record: testRecord()}
	store := NewStore(repo, nil, time.Hour)

	fields, err := store.Get(context.Background(), "gateway-01")
	if err != nil {
		t.Fatalf("Get() in durable-only mode error = %v", err)
	}
	if fields["manufacturer"] != "Acme Sensors" {
		t.Errorf("manufacturer = %q", fields["manufacturer"])
	}
}

func TestStoreUpdateInvalidatesCache(t *testing.T) {
	repo := &mockRepository{record: testRecord()}
	cache := newMockCache()
	store := NewStore(repo, cache, time.Hour)
	ctx := context.Background()

	// Populate the cache first.
	if _, err := store.Get(ctx, "gateway-01"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	fields, err := store.Update(ctx, "gateway-01", map[string]string{"model": "SG-200"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if fields["model"] != "SG-200" {
		t.Errorf("updated model = %q", fields["model"])
	}

	key := CacheKey("gateway-01")
	if len(cache.dels) != 1 || cache.dels[0] != key {
		t.Errorf("cache invalidation dels = %v, want [%s]", cache.dels, key)
	}
	if _, ok := cache.entries[key]; ok {
		t.Error("cache entry still present after invalidation")
	}

	// Next read repopulates with fresh data.
	fields, err = store.Get(ctx, "gateway-01")
	if err != nil {
		t.Fatalf("Get() after update error = %v", err)
	}
	if fields["model"] != "SG-200" {
		t.Errorf("model after repopulation = %q", fields["model"])
	}
}

func TestStoreUpdateToleratesInvalidationFailure(t *testing.T) {
	repo := &mockRepository{record: testRecord()}
	cache := newMockCache()
	cache.delErr = errors.New("connection refused")
	store := NewStore(repo, cache, time.Hour)

	fields, err := store.Update(context.Background(), "gateway-01", map[string]string{"model": "SG-200"})
	if err != nil {
		t.Fatalf("Update() with failing invalidation error = %v", err)
	}
	if fields["model"] != "SG-200" {
		t.Errorf("model = %q", fields["model"])
	}
}

func TestStoreUpdateErrorSkipsInvalidation(t *testing.T) {
	repo := &mockRepository{record: testRecord()}
	cache := newMockCache()
	store := NewStore(repo, cache, time.Hour)

	_, err := store.Update(context.Background(), "gateway-01", map[string]string{"bogus": "x"})
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("Update() error = %v, want ErrUnknownField", err)
	}
	if len(cache.dels) != 0 {
		t.Errorf("failed update must not invalidate, dels = %v", cache.dels)
	}
}

func TestStoreUpdateWithoutCache(t *testing.T) {
	repo := &mockRepository{record: testRecord()}
	store := NewStore(repo, nil, time.Hour)

	fields, err := store.Update(context.Background(), "gateway-01", map[string]string{"sysName": "sg01"})
	if err != nil {
		t.Fatalf("Update() in durable-only mode error = %v", err)
	}
	if fields["sysName"] != "sg01" {
		t.Errorf("sysName = %q", fields["sysName"])
	}
}
