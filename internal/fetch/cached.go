package fetch

import (
	"context"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultPreviewTTL is how long a link preview stays cached.
const DefaultPreviewTTL = time.Hour

// CachedFetcher wraps link-preview fetching with a cache.
type CachedFetcher struct {
	cache     cache.Cache
	options   *Options
	cacheTTL  time.Duration
	skipCache bool // For testing or forcing fresh fetches
	logger    *zap.Logger
	group     singleflight.Group
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL: DefaultPreviewTTL,
		Options:  DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher. A nil cache disables caching.
func NewCachedFetcher(c cache.Cache, config *CachedFetcherConfig, logger *zap.Logger) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultPreviewTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFetcher{
		cache:     c,
		options:   config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
		logger:    logger,
	}
}

// CachedPreview extends Preview with cache metadata.
type CachedPreview struct {
	*Preview
	FromCache bool
}

func previewKey(urlStr string) string {
	return "preview:" + urlStr
}

// Preview returns the link preview for urlStr, from cache when fresh.
// Concurrent misses for the same URL share one upstream request.
func (f *CachedFetcher) Preview(ctx context.Context, urlStr string) (*CachedPreview, error) {
	if !f.skipCache && f.cache != nil {
		var cached Preview
		ok, err := cache.GetJSON(ctx, f.cache, previewKey(urlStr), &cached)
		if err != nil {
			f.logger.Warn("preview cache read failed", zap.String("url", urlStr), zap.Error(err))
		}
		if ok {
			return &CachedPreview{Preview: &cached, FromCache: true}, nil
		}
	}

	// Waiters share the fetch, so it must outlive the caller that started it.
	v, err, _ := f.group.Do(urlStr, func() (any, error) {
		detached := context.WithoutCancel(ctx)
		result, err := URL(detached, urlStr, f.options)
		if err != nil {
			return nil, err
		}
		preview, err := ExtractPreview(result.Text(), urlStr)
		if err != nil {
			return nil, err
		}
		if f.cache != nil {
			if err := cache.SetJSON(detached, f.cache, previewKey(urlStr), preview, f.cacheTTL); err != nil {
				f.logger.Warn("preview cache write failed", zap.String("url", urlStr), zap.Error(err))
			}
		}
		return preview, nil
	})
	if err != nil {
		return nil, err
	}
	preview := v.(*Preview)

	return &CachedPreview{Preview: preview}, nil
}

// Invalidate drops the cached preview for urlStr.
func (f *CachedFetcher) Invalidate(ctx context.Context, urlStr string) error {
	if f.cache == nil {
		return nil
	}
	return f.cache.Delete(ctx, previewKey(urlStr))
}
