package portfolio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/cache"
	"github.com/UsamaZuberi/portfolio-v2/internal/metrics"
	"github.com/UsamaZuberi/portfolio-v2/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localDocument(t *testing.T) *types.Document {
	t.Helper()
	doc, err := Default()
	require.NoError(t, err)
	return doc
}

type remote struct {
	server *httptest.Server
	hits   int32
	mu     sync.Mutex
	status int
	body   []byte
}

func newRemote(t *testing.T, body []byte) *remote {
	t.Helper()
	r := &remote{status: http.StatusOK, body: body}
	r.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&r.hits, 1)
		r.mu.Lock()
		status, body := r.status, r.body
		r.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(r.server.Close)
	return r
}

func (r *remote) set(status int, body []byte) {
	r.mu.Lock()
	r.status, r.body = status, body
	r.mu.Unlock()
}

func TestResolver_NoRemoteServesLocal(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	r := NewResolver(Options{}, localDocument(t), nil, nil, m)

	res := r.Load(context.Background())
	assert.Equal(t, SourceLocal, res.Source)
	require.NotNil(t, res.Data)
	assert.Equal(t, "Muhammad Usama Zuberi", res.Data.Hero.Name)
	assert.False(t, r.RemoteConfigured())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DataLoads.WithLabelValues("local")))
}

func TestResolver_RemoteServedAndCached(t *testing.T) {
	rem := newRemote(t, documentWithName(t, "Remote Owner"))
	r := NewResolver(Options{RemoteURL: rem.server.URL, RevalidateInterval: time.Minute}, localDocument(t), cache.NewMemoryCache(), nil, nil)
	ctx := context.Background()

	first := r.Load(ctx)
	assert.Equal(t, SourceBlob, first.Source)
	assert.Equal(t, "Remote Owner", first.Data.Hero.Name)

	second := r.Load(ctx)
	assert.Equal(t, SourceBlob, second.Source)
	assert.Equal(t, "Remote Owner", second.Data.Hero.Name)

	assert.Equal(t, int32(1), atomic.LoadInt32(&rem.hits), "second load should come from cache")
}

func TestResolver_CacheExpiryRefetches(t *testing.T) {
	rem := newRemote(t, documentWithName(t, "First"))
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mem := cache.NewMemoryCache().WithClock(func() time.Time { return now })
	r := NewResolver(Options{RemoteURL: rem.server.URL, RevalidateInterval: time.Minute}, localDocument(t), mem, nil, nil)
	ctx := context.Background()

	assert.Equal(t, "First", r.Load(ctx).Data.Hero.Name)

	rem.set(http.StatusOK, documentWithName(t, "Second"))
	now = now.Add(30 * time.Second)
	assert.Equal(t, "First", r.Load(ctx).Data.Hero.Name)

	now = now.Add(31 * time.Second)
	assert.Equal(t, "Second", r.Load(ctx).Data.Hero.Name)
	assert.Equal(t, int32(2), atomic.LoadInt32(&rem.hits))
}

func TestResolver_FailuresFallBackToLocal(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   []byte
	}{
		{"server error", http.StatusInternalServerError, []byte(`{}`)},
		{"not found", http.StatusNotFound, nil},
		{"malformed json", http.StatusOK, []byte(`{"hero": `)},
		{"schema violation", http.StatusOK, []byte(`{"hero": {"name": ""}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rem := newRemote(t, tt.body)
			rem.set(tt.status, tt.body)
			m := metrics.New(prometheus.NewRegistry())
			r := NewResolver(Options{RemoteURL: rem.server.URL}, localDocument(t), nil, nil, m)

			res := r.Load(context.Background())
			assert.Equal(t, SourceLocal, res.Source)
			require.NotNil(t, res.Data)
			assert.Equal(t, "Muhammad Usama Zuberi", res.Data.Hero.Name)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.DataLoads.WithLabelValues("local")))
		})
	}
}

func TestResolver_UnreachableRemote(t *testing.T) {
	rem := newRemote(t, nil)
	url := rem.server.URL
	rem.server.Close()

	r := NewResolver(Options{RemoteURL: url}, localDocument(t), nil, nil, nil)
	res := r.Load(context.Background())
	assert.Equal(t, SourceLocal, res.Source)
	assert.NotNil(t, res.Data)
}

func TestResolver_FallbackDisabled(t *testing.T) {
	t.Run("no remote configured", func(t *testing.T) {
		r := NewResolver(Options{DisableFallback: true}, localDocument(t), nil, nil, nil)
		res := r.Load(context.Background())
		assert.Nil(t, res.Data)
		assert.Equal(t, SourceUnavailable, res.Source)
	})

	t.Run("remote failure", func(t *testing.T) {
		rem := newRemote(t, nil)
		rem.set(http.StatusBadGateway, nil)
		r := NewResolver(Options{RemoteURL: rem.server.URL, DisableFallback: true}, localDocument(t), nil, nil, nil)
		res := r.Load(context.Background())
		assert.Nil(t, res.Data)
		assert.Equal(t, SourceError, res.Source)
	})

	t.Run("remote success is unaffected", func(t *testing.T) {
		rem := newRemote(t, documentWithName(t, "Remote"))
		r := NewResolver(Options{RemoteURL: rem.server.URL, DisableFallback: true}, nil, nil, nil, nil)
		res := r.Load(context.Background())
		assert.Equal(t, SourceBlob, res.Source)
		assert.Equal(t, "Remote", res.Data.Hero.Name)
	})
}

func TestResolver_NilLocalReportsUnavailable(t *testing.T) {
	r := NewResolver(Options{}, nil, nil, nil, nil)
	res := r.Load(context.Background())
	assert.Nil(t, res.Data)
	assert.Equal(t, SourceUnavailable, res.Source)
}

func TestResolver_Revalidate(t *testing.T) {
	rem := newRemote(t, documentWithName(t, "Before"))
	r := NewResolver(Options{RemoteURL: rem.server.URL, RevalidateInterval: time.Hour}, localDocument(t), nil, nil, nil)
	ctx := context.Background()

	assert.Equal(t, "Before", r.Load(ctx).Data.Hero.Name)

	rem.set(http.StatusOK, documentWithName(t, "After"))
	assert.Equal(t, "Before", r.Load(ctx).Data.Hero.Name, "still cached")

	res, err := r.Revalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceBlob, res.Source)
	assert.Equal(t, "After", res.Data.Hero.Name)
}

func TestResolver_ConcurrentMissesShareFetch(t *testing.T) {
	release := make(chan struct{})
	var hits int32
	body := documentWithName(t, "Shared")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write(body)
	}))
	defer server.Close()

	r := NewResolver(Options{RemoteURL: server.URL}, localDocument(t), nil, nil, nil)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]Result, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Load(context.Background())
		}(i)
	}

	// Let the callers pile up behind the first request.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, res := range results {
		assert.Equal(t, SourceBlob, res.Source)
		assert.Equal(t, "Shared", res.Data.Hero.Name)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestResolver_SetLocal(t *testing.T) {
	r := NewResolver(Options{}, localDocument(t), nil, nil, nil)
	replacement := &types.Document{Hero: types.Hero{Name: "Swapped"}}

	r.SetLocal(replacement)
	assert.Equal(t, "Swapped", r.Local().Hero.Name)
	assert.Equal(t, "Swapped", r.Load(context.Background()).Data.Hero.Name)
}
