package blob

import (
	"context"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/cache"
	"github.com/UsamaZuberi/portfolio-v2/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultListTTL is how long a listing is reused.
const DefaultListTTL = 60 * time.Second

// listCacheKey holds the raw object listing.
const listCacheKey = "blob:objects"

// Service answers image queries from a cached store listing.
// Listing failures degrade to empty results.
type Service struct {
	store   Store
	cache   cache.Cache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
	group   singleflight.Group
}

// NewService wraps store. A nil store yields an unconfigured service that
// answers every query with an empty result.
func NewService(store Store, c cache.Cache, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Service {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	if ttl <= 0 {
		ttl = DefaultListTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, cache: c, ttl: ttl, logger: logger, metrics: m}
}

// Configured reports whether a store is attached.
func (s *Service) Configured() bool {
	return s.store != nil
}

// ProjectImages returns the ordered image URLs of one project.
func (s *Service) ProjectImages(ctx context.Context, slug string) []string {
	if !s.Configured() {
		return []string{}
	}
	objects, err := s.objects(ctx)
	if err != nil {
		s.logger.Warn("failed to list project images", zap.String("slug", slug), zap.Error(err))
		return []string{}
	}
	return ProjectImages(objects, slug)
}

// AllProjectImages returns image URLs grouped by project slug.
func (s *Service) AllProjectImages(ctx context.Context) map[string][]string {
	if !s.Configured() {
		return map[string][]string{}
	}
	objects, err := s.objects(ctx)
	if err != nil {
		s.logger.Warn("failed to list all project images", zap.Error(err))
		return map[string][]string{}
	}
	return GroupProjectImages(objects)
}

// Invalidate drops the cached listing.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, listCacheKey)
}

func (s *Service) objects(ctx context.Context) ([]Object, error) {
	if s.store == nil {
		return nil, &Error{Provider: "none", Message: "storage is not configured"}
	}

	var cached []Object
	ok, err := cache.GetJSON(ctx, s.cache, listCacheKey, &cached)
	if err != nil {
		s.logger.Warn("image listing cache read failed", zap.Error(err))
	}
	s.metrics.RecordCacheLookup("images", ok)
	if ok {
		return cached, nil
	}

	v, err, _ := s.group.Do(listCacheKey, func() (any, error) {
		start := time.Now()
		detached := context.WithoutCancel(ctx)
		objects, err := s.store.List(detached)
		if err != nil {
			s.metrics.RecordBlobListFailure()
			return nil, err
		}
		if err := cache.SetJSON(detached, s.cache, listCacheKey, objects, s.ttl); err != nil {
			s.logger.Warn("image listing cache write failed", zap.Error(err))
		}
		s.logger.Debug("listed storage objects",
			zap.String("provider", s.store.Name()),
			zap.Int("count", len(objects)),
			zap.Duration("duration", time.Since(start)),
		)
		return objects, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Object), nil
}
