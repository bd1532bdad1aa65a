package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/cache"
	"github.com/UsamaZuberi/portfolio-v2/internal/fetch"
	"github.com/UsamaZuberi/portfolio-v2/internal/metrics"
	"github.com/UsamaZuberi/portfolio-v2/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DataCacheKey is the cache key of the raw remote document.
const DataCacheKey = "data"

// Options configures a Resolver.
type Options struct {
	// RemoteURL is the remote JSON document. Empty serves the local document.
	RemoteURL string
	// RevalidateInterval is the cache TTL of the remote document.
	RevalidateInterval time.Duration
	// DisableFallback stops the local document from standing in for the remote one.
	DisableFallback bool
	// Fetch overrides the HTTP options for the remote read.
	Fetch *fetch.Options
}

// Resolver loads the data document with a cache-and-revalidate read.
type Resolver struct {
	opts    Options
	cache   cache.Cache
	logger  *zap.Logger
	metrics *metrics.Metrics
	group   singleflight.Group

	mu    sync.RWMutex
	local *types.Document
}

// NewResolver creates a resolver. A nil cache gets an in-process one.
func NewResolver(opts Options, local *types.Document, c cache.Cache, logger *zap.Logger, m *metrics.Metrics) *Resolver {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RevalidateInterval <= 0 {
		opts.RevalidateInterval = time.Minute
	}
	return &Resolver{
		opts:    opts,
		cache:   c,
		logger:  logger,
		metrics: m,
		local:   local,
	}
}

// RemoteConfigured reports whether a remote document URL is set.
func (r *Resolver) RemoteConfigured() bool {
	return r.opts.RemoteURL != ""
}

// Local returns the current local document.
func (r *Resolver) Local() *types.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.local
}

// SetLocal swaps the local document.
func (r *Resolver) SetLocal(doc *types.Document) {
	r.mu.Lock()
	r.local = doc
	r.mu.Unlock()
}

// Load resolves the document. It never returns an error: failures degrade to
// the local document, or to a nil document when fallback is disabled.
func (r *Resolver) Load(ctx context.Context) Result {
	if !r.RemoteConfigured() {
		return r.fallback(SourceUnavailable)
	}

	doc, err := r.remote(ctx)
	if err != nil {
		r.logger.Warn("remote portfolio data unavailable, using fallback",
			zap.String("url", r.opts.RemoteURL),
			zap.Error(err),
		)
		return r.fallback(SourceError)
	}

	r.metrics.RecordDataLoad(string(SourceBlob))
	return Result{Data: doc, Source: SourceBlob}
}

// Revalidate drops the cached remote document and loads it again.
func (r *Resolver) Revalidate(ctx context.Context) (Result, error) {
	if err := r.cache.Delete(ctx, DataCacheKey); err != nil {
		return Result{}, fmt.Errorf("failed to drop cached document: %w", err)
	}
	return r.Load(ctx), nil
}

// fallback serves the local document, or reports failed when fallback is off.
func (r *Resolver) fallback(failed Source) Result {
	if r.opts.DisableFallback {
		r.metrics.RecordDataLoad(string(failed))
		return Result{Data: nil, Source: failed}
	}
	local := r.Local()
	if local == nil {
		r.metrics.RecordDataLoad(string(failed))
		return Result{Data: nil, Source: failed}
	}
	r.metrics.RecordDataLoad(string(SourceLocal))
	return Result{Data: local, Source: SourceLocal}
}

func (r *Resolver) remote(ctx context.Context) (*types.Document, error) {
	raw, ok, err := r.cache.Get(ctx, DataCacheKey)
	if err != nil {
		r.logger.Warn("portfolio data cache read failed", zap.Error(err))
	}
	if ok {
		var doc types.Document
		if err := json.Unmarshal(raw, &doc); err == nil {
			r.metrics.RecordCacheLookup("data", true)
			return &doc, nil
		}
		r.logger.Warn("discarding undecodable cached portfolio data")
	}
	r.metrics.RecordCacheLookup("data", false)

	v, err, shared := r.group.Do(DataCacheKey, func() (any, error) {
		// Detached so one caller's cancellation does not fail the others.
		return r.fetchRemote(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.logger.Debug("shared in-flight portfolio data fetch")
	}
	return v.(*types.Document), nil
}

func (r *Resolver) fetchRemote(ctx context.Context) (*types.Document, error) {
	opts := r.opts.Fetch
	if opts == nil {
		opts = fetch.DefaultOptions()
	}

	start := time.Now()
	result, err := fetch.URL(ctx, r.opts.RemoteURL, opts)
	if err != nil {
		return nil, err
	}

	doc, err := Decode(result.Body)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, DataCacheKey, result.Body, r.opts.RevalidateInterval); err != nil {
		r.logger.Warn("portfolio data cache write failed", zap.Error(err))
	}

	r.logger.Info("fetched remote portfolio data",
		zap.String("url", r.opts.RemoteURL),
		zap.Int("bytes", len(result.Body)),
		zap.Duration("duration", time.Since(start)),
	)
	return doc, nil
}
