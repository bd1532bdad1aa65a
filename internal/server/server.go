// Package server provides the HTTP API for the portfolio site.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/contact"
	"github.com/UsamaZuberi/portfolio-v2/internal/db"
	"github.com/UsamaZuberi/portfolio-v2/internal/fetch"
	"github.com/UsamaZuberi/portfolio-v2/internal/github"
	"github.com/UsamaZuberi/portfolio-v2/internal/metrics"
	"github.com/UsamaZuberi/portfolio-v2/internal/portfolio"
	"github.com/UsamaZuberi/portfolio-v2/internal/server/middleware"
	"github.com/UsamaZuberi/portfolio-v2/internal/server/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DataSource resolves the data document.
type DataSource interface {
	Load(ctx context.Context) portfolio.Result
	Revalidate(ctx context.Context) (portfolio.Result, error)
}

// ImageSource lists project images.
type ImageSource interface {
	Configured() bool
	ProjectImages(ctx context.Context, slug string) []string
	AllProjectImages(ctx context.Context) map[string][]string
	Invalidate(ctx context.Context) error
}

// PreviewSource builds link previews.
type PreviewSource interface {
	Preview(ctx context.Context, url string) (*fetch.CachedPreview, error)
}

// RepoStatsSource reports repository stats.
type RepoStatsSource interface {
	RepoStats(ctx context.Context) github.Stats
}

// MessageLister pages through archived contact messages.
type MessageLister interface {
	ListContactMessages(ctx context.Context, limit, offset int) (*db.ContactMessagePage, error)
}

// HealthChecker reports whether a backing service is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Port            int
	AllowedOrigins  []string // empty allows any origin
	ShutdownTimeout time.Duration
}

// Dependencies are the collaborators the handlers call. Data, Images and
// Contact are required; the rest may be nil, which disables what they back.
type Dependencies struct {
	Data        DataSource
	Images      ImageSource
	Contact     *contact.Service
	Messages    MessageLister
	Previews    PreviewSource
	GitHub      RepoStatsSource
	JWT         *JWTService // admin routes are mounted only when set
	RateLimiter *ratelimit.Limiter
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Logger      *zap.Logger
	CacheHealth HealthChecker // shared cache; nil for the in-process cache

	Refresher *portfolio.Refresher
	Watcher   *portfolio.FileWatcher
	// Closers run on shutdown, last first.
	Closers []func()
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	handler         http.Handler
	data            DataSource
	images          ImageSource
	contact         *contact.Service
	messages        MessageLister
	previews        PreviewSource
	github          RepoStatsSource
	jwtService      *JWTService
	rateLimiter     *ratelimit.Limiter
	metrics         *metrics.Metrics
	logger          *zap.Logger
	cacheHealth     HealthChecker
	allowedOrigins  map[string]bool
	shutdownTimeout time.Duration
	refresher       *portfolio.Refresher
	watcher         *portfolio.FileWatcher
	closers         []func()
	closeOnce       sync.Once
	now             func() time.Time
}

// New creates a new server instance
func New(cfg Config, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	s := &Server{
		data:            deps.Data,
		images:          deps.Images,
		contact:         deps.Contact,
		messages:        deps.Messages,
		previews:        deps.Previews,
		github:          deps.GitHub,
		jwtService:      deps.JWT,
		rateLimiter:     limiter,
		metrics:         deps.Metrics,
		logger:          logger,
		cacheHealth:     deps.CacheHealth,
		shutdownTimeout: cfg.ShutdownTimeout,
		refresher:       deps.Refresher,
		watcher:         deps.Watcher,
		closers:         deps.Closers,
		now:             time.Now,
	}
	if len(cfg.AllowedOrigins) > 0 {
		s.allowedOrigins = make(map[string]bool, len(cfg.AllowedOrigins))
		for _, o := range cfg.AllowedOrigins {
			s.allowedOrigins[o] = true
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	if deps.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	// Data document
	mux.HandleFunc("GET /api/portfolio-data", s.handlePortfolioData)
	mux.HandleFunc("GET /api/portfolio-data/{section}", s.handlePortfolioSection)
	mux.HandleFunc("GET /api/timeline", s.handleTimeline)

	// Projects
	mux.HandleFunc("GET /api/projects/images", s.handleAllProjectImages)
	mux.HandleFunc("GET /api/projects/{slug}/images", s.handleProjectImages)
	mux.HandleFunc("GET /api/projects/{slug}/gallery", s.handleProjectGallery)
	mux.HandleFunc("GET /api/projects/{slug}/preview", s.handleProjectPreview)

	mux.HandleFunc("POST /api/contact", s.handleContact)
	mux.HandleFunc("GET /api/github/repo", s.handleGitHubRepo)

	// Admin
	if s.jwtService != nil {
		auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
		mux.Handle("POST /api/admin/revalidate", auth(http.HandlerFunc(s.handleRevalidate)))
		mux.Handle("GET /api/admin/contact-messages", auth(http.HandlerFunc(s.handleListContactMessages)))
	}

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts background work and serves until ctx is cancelled or the
// process receives SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if s.refresher != nil {
		s.refresher.Start(ctx)
	}
	if s.watcher != nil {
		if err := s.watcher.Start(ctx); err != nil {
			s.logger.Warn("data file watcher not started", zap.Error(err))
		}
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.closeAll()
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", listener.Addr().String()))
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			s.closeAll()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown stops the listener, background work and backing connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	s.closeAll()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) closeAll() {
	s.closeOnce.Do(func() {
		if s.refresher != nil {
			s.refresher.Stop()
		}
		if s.watcher != nil {
			s.watcher.Stop()
		}
		s.rateLimiter.Stop()
		for i := len(s.closers) - 1; i >= 0; i-- {
			s.closers[i]()
		}
	})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case s.allowedOrigins == nil:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && s.allowedOrigins[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.metrics.RecordRateLimited(info.Endpoint)
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging adds request logging and request metrics
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// The mux records the matched pattern on r.
		s.metrics.ObserveRequest(r.Pattern, rec.status, start)
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", clientID(r)),
		}
		if rec.status >= http.StatusInternalServerError {
			s.logger.Warn("request failed", fields...)
			return
		}
		s.logger.Debug("request", fields...)
	})
}

// healthCheckTimeout bounds the shared cache ping.
const healthCheckTimeout = 2 * time.Second

// Health statuses
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status         string          `json:"status"`
	Cache          string          `json:"cache"` // memory, redis or unreachable
	ContactArchive bool            `json:"contactArchive"`
	DataFile       *DataFileHealth `json:"dataFile,omitempty"`
}

// DataFileHealth counts applied and rejected reloads of the local data file.
type DataFileHealth struct {
	Reloads int `json:"reloads"`
	Rejects int `json:"rejects"`
}

// handleHealth reports server health. An unreachable shared cache degrades
// the status but still answers 200, since requests fall back to the source.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:         HealthOK,
		Cache:          "memory",
		ContactArchive: s.contact.Archiving(),
	}

	if s.cacheHealth != nil {
		resp.Cache = "redis"
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := s.cacheHealth.Health(ctx); err != nil {
			s.logger.Warn("cache health check failed", zap.Error(err))
			resp.Status = HealthDegraded
			resp.Cache = "unreachable"
		}
	}

	if s.watcher != nil {
		reloads, rejects := s.watcher.Stats()
		resp.DataFile = &DataFileHealth{Reloads: reloads, Rejects: rejects}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// clientID identifies the caller by the IP in RemoteAddr.
// X-Forwarded-For is not trusted.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Info("rate limit exceeded",
		zap.String("endpoint", info.Endpoint),
		zap.Int("limit", info.Limit),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
