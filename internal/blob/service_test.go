package blob

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/cache"
	"github.com/UsamaZuberi/portfolio-v2/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeStore struct {
	mu      sync.Mutex
	objects []Object
	err     error
	calls   int
}

func (f *fakeStore) Name() string { return "fake" }

func (f *fakeStore) List(context.Context) ([]Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]Object(nil), f.objects...), nil
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestService_CachesListing(t *testing.T) {
	store := &fakeStore{objects: []Object{obj("natours-2.jpg"), obj("natours-1.jpg"), obj("nexter-1.jpg")}}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(store, cache.NewMemoryCache(), time.Minute, nil, m)
	ctx := context.Background()

	assert.True(t, svc.Configured())
	assert.Equal(t, []string{
		"https://cdn.example.com/natours-1.jpg",
		"https://cdn.example.com/natours-2.jpg",
	}, svc.ProjectImages(ctx, "natours"))

	all := svc.AllProjectImages(ctx)
	assert.Len(t, all, 2)
	assert.Equal(t, 1, store.callCount(), "second query served from cache")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("images", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("images", "miss")))

	assert.NoError(t, svc.Invalidate(ctx))
	svc.ProjectImages(ctx, "natours")
	assert.Equal(t, 2, store.callCount())
}

func TestService_FailureReturnsEmpty(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(store, nil, 0, nil, m)
	ctx := context.Background()

	images := svc.ProjectImages(ctx, "natours")
	assert.NotNil(t, images)
	assert.Empty(t, images)

	all := svc.AllProjectImages(ctx)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BlobListFailures))
}

func TestService_Unconfigured(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(nil, nil, 0, zap.New(core), m)

	assert.False(t, svc.Configured())
	assert.Empty(t, svc.ProjectImages(context.Background(), "natours"))
	assert.Empty(t, svc.AllProjectImages(context.Background()))
	assert.Zero(t, logs.Len(), "an unconfigured store is not a failure")
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BlobListFailures))
}

// ctxCache refuses reads and writes once the caller's context is done.
type ctxCache struct {
	cache.Cache
}

func (c ctxCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	return c.Cache.Get(ctx, key)
}

func (c ctxCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.Cache.Set(ctx, key, value, ttl)
}

func TestService_ListingCachedAfterCallerCancel(t *testing.T) {
	store := &fakeStore{objects: []Object{obj("natours-1.jpg")}}
	svc := NewService(store, ctxCache{cache.NewMemoryCache()}, time.Minute, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Len(t, svc.ProjectImages(ctx, "natours"), 1)

	assert.Len(t, svc.ProjectImages(context.Background(), "natours"), 1)
	assert.Equal(t, 1, store.callCount(), "listing from the cancelled caller was cached")
}
