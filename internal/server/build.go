package server

import (
	"context"
	"fmt"

	"github.com/UsamaZuberi/portfolio-v2/internal/blob"
	"github.com/UsamaZuberi/portfolio-v2/internal/cache"
	"github.com/UsamaZuberi/portfolio-v2/internal/config"
	"github.com/UsamaZuberi/portfolio-v2/internal/contact"
	"github.com/UsamaZuberi/portfolio-v2/internal/db"
	"github.com/UsamaZuberi/portfolio-v2/internal/fetch"
	"github.com/UsamaZuberi/portfolio-v2/internal/github"
	"github.com/UsamaZuberi/portfolio-v2/internal/metrics"
	"github.com/UsamaZuberi/portfolio-v2/internal/portfolio"
	"github.com/UsamaZuberi/portfolio-v2/internal/server/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// OpenCache returns a Redis cache when url is set, else an in-process cache.
// An unreachable Redis degrades to the in-process cache.
func OpenCache(ctx context.Context, url string, logger *zap.Logger) (cache.Cache, func()) {
	if url == "" {
		return cache.NewMemoryCache(), func() {}
	}
	rc, err := cache.NewRedisCache(ctx, url)
	if err != nil {
		logger.Warn("redis unavailable, using in-process cache", zap.Error(err))
		return cache.NewMemoryCache(), func() {}
	}
	return rc, func() {
		if err := rc.Close(); err != nil {
			logger.Warn("error closing redis", zap.Error(err))
		}
	}
}

// NewResolver builds the document resolver for cfg.
func NewResolver(cfg *config.Config, c cache.Cache, logger *zap.Logger, m *metrics.Metrics) (*portfolio.Resolver, error) {
	local, err := portfolio.LoadLocal(cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load local portfolio data: %w", err)
	}
	return portfolio.NewResolver(portfolio.Options{
		RemoteURL:          cfg.DataURL,
		RevalidateInterval: cfg.RevalidateInterval.Std(),
		DisableFallback:    cfg.FallbackDisabled(),
	}, local, c, logger, m), nil
}

// Build wires every dependency named by cfg into a server.
// Optional backends (Redis, Postgres, object storage, JWT) are attached only when configured.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var (
		closers []func()
		watcher *portfolio.FileWatcher
	)
	fail := func(err error) (*Server, error) {
		if watcher != nil {
			watcher.Stop()
		}
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		return nil, err
	}

	c, closeCache := OpenCache(ctx, cfg.RedisURL, logger)
	closers = append(closers, closeCache)
	var cacheHealth HealthChecker
	if rc, ok := c.(*cache.RedisCache); ok {
		cacheHealth = rc
	}

	resolver, err := NewResolver(cfg, c, logger, m)
	if err != nil {
		return fail(err)
	}

	deps := Dependencies{
		Data:        resolver,
		Previews:    fetch.NewCachedFetcher(c, fetch.DefaultCachedFetcherConfig(), logger),
		Metrics:     m,
		Gatherer:    reg,
		Logger:      logger,
		CacheHealth: cacheHealth,
	}

	if resolver.RemoteConfigured() {
		deps.Refresher = portfolio.NewRefresher(resolver, cfg.RevalidateInterval.Std(), logger)
	}
	if cfg.DataFile != "" {
		watcher, err = portfolio.NewFileWatcher(cfg.DataFile, resolver, logger)
		if err != nil {
			return fail(err)
		}
		deps.Watcher = watcher
	}

	store, err := blob.Open(ctx, cfg)
	if err != nil {
		return fail(fmt.Errorf("failed to open image storage: %w", err))
	}
	if store == nil {
		logger.Info("image storage not configured")
	}
	deps.Images = blob.NewService(store, c, cfg.ImageCacheTTL.Std(), logger, m)

	var archive contact.MessageStore
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fail(fmt.Errorf("failed to connect to database: %w", err))
		}
		closers = append(closers, database.Close)
		if err := database.EnsureSchema(ctx); err != nil {
			return fail(err)
		}
		archive = database
		deps.Messages = database
	}
	deps.Contact = contact.NewService(archive, logger, m)
	if !deps.Contact.Archiving() {
		logger.Info("DATABASE_URL not set, contact messages are logged but not archived")
	}

	if owner, repo := cfg.GitHubOwnerRepo(); owner != "" {
		deps.GitHub = github.NewClient(github.Options{Owner: owner, Repo: repo, Token: cfg.GitHubToken}, c, logger)
	}

	if config.JWTConfigured() {
		jwtConfig, err := config.NewJWTConfig()
		if err != nil {
			return fail(fmt.Errorf("failed to create JWT config: %w", err))
		}
		deps.JWT = NewJWTService(jwtConfig)
	} else {
		logger.Info("JWT_SECRET not set, admin routes disabled")
	}

	deps.RateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	deps.Closers = closers

	return New(Config{Port: cfg.Port, AllowedOrigins: cfg.AllowedOrigins()}, deps), nil
}
