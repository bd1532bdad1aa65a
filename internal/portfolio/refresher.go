package portfolio

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Revalidator is the part of Resolver the Refresher drives.
type Revalidator interface {
	Revalidate(ctx context.Context) (Result, error)
}

// Refresher revalidates the remote document on a fixed interval so readers rarely see a miss.
type Refresher struct {
	target   Revalidator
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRefresher creates a stopped refresher.
func NewRefresher(target Revalidator, interval time.Duration, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{
		target:   target,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the refresh loop. Calling Start on a running refresher is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running || r.interval <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	go r.run(ctx, r.done)
}

// Stop ends the loop and waits for it to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()
	<-done
}

func (r *Refresher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := r.target.Revalidate(ctx)
			if err != nil {
				r.logger.Warn("scheduled revalidation failed", zap.Error(err))
				continue
			}
			r.logger.Debug("revalidated portfolio data", zap.String("source", string(result.Source)))
		}
	}
}
