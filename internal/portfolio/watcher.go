package portfolio

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/UsamaZuberi/portfolio-v2/internal/types"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses bursts of writes from editors into one reload.
const DefaultDebounce = 250 * time.Millisecond

// LocalSetter receives reloaded documents.
type LocalSetter interface {
	SetLocal(doc *types.Document)
}

// FileWatcher reloads the local data file when it changes on disk.
// An invalid file keeps the previous document.
type FileWatcher struct {
	path     string
	target   LocalSetter
	logger   *zap.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher

	mu        sync.Mutex
	pending   time.Time // zero when nothing is waiting
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
	reloads   int
	rejects   int
	reloadedC chan struct{}
}

// NewFileWatcher prepares a watcher for path. The parent directory is watched
// so editors that replace the file atomically are still seen.
func NewFileWatcher(path string, target LocalSetter, logger *zap.Logger) (*FileWatcher, error) {
	if path == "" {
		return nil, fmt.Errorf("data file path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data file path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileWatcher{
		path:      abs,
		target:    target,
		logger:    logger,
		debounce:  DefaultDebounce,
		watcher:   w,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		reloadedC: make(chan struct{}, 1),
	}, nil
}

// Start begins watching.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	if fw.running {
		fw.mu.Unlock()
		return nil
	}
	fw.running = true
	fw.mu.Unlock()

	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		fw.mu.Lock()
		fw.running = false
		fw.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(fw.path), err)
	}

	fw.logger.Info("watching portfolio data file", zap.String("path", fw.path))
	go fw.run(ctx)
	return nil
}

// Stop ends watching and releases the underlying watcher.
func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	wasRunning := fw.running
	fw.running = false
	fw.mu.Unlock()

	if wasRunning {
		close(fw.stopCh)
		<-fw.doneCh
	}
	if err := fw.watcher.Close(); err != nil {
		fw.logger.Warn("error closing file watcher", zap.Error(err))
	}
}

// Stats returns the number of applied reloads and rejected files.
func (fw *FileWatcher) Stats() (reloads, rejects int) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.reloads, fw.rejects
}

// Reloaded signals after each processed change. Used by tests.
func (fw *FileWatcher) Reloaded() <-chan struct{} {
	return fw.reloadedC
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)

	tick := fw.debounce / 5
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopCh:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", zap.Error(err))
		case <-ticker.C:
			fw.processPending()
		}
	}
}

func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != fw.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	fw.mu.Lock()
	fw.pending = time.Now()
	fw.mu.Unlock()
}

func (fw *FileWatcher) processPending() {
	fw.mu.Lock()
	if fw.pending.IsZero() || time.Since(fw.pending) < fw.debounce {
		fw.mu.Unlock()
		return
	}
	fw.pending = time.Time{}
	fw.mu.Unlock()

	fw.reload()

	select {
	case fw.reloadedC <- struct{}{}:
	default:
	}
}

func (fw *FileWatcher) reload() {
	doc, err := LoadLocal(fw.path)
	if err != nil {
		fw.logger.Warn("keeping previous portfolio data, reload rejected",
			zap.String("path", fw.path),
			zap.Error(err),
		)
		fw.mu.Lock()
		fw.rejects++
		fw.mu.Unlock()
		return
	}

	fw.target.SetLocal(doc)
	fw.mu.Lock()
	fw.reloads++
	fw.mu.Unlock()
	fw.logger.Info("reloaded portfolio data file", zap.String("path", fw.path))
}
