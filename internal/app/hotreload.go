package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// HotReloader watches a binary for a newer build and reports it once. The desktop
// host uses it during development to offer a restart after recompiling.
type HotReloader struct {
	path     string
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	baseline time.Time
	cancel   context.CancelFunc
	onNewer  func()
}

// NewHotReloader watches path, resolving symlinks first so a rebuilt file behind a
// link is noticed.
func NewHotReloader(path string, interval time.Duration, logger *slog.Logger) (*HotReloader, error) {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &HotReloader{
		path:     path,
		interval: interval,
		logger:   logger,
		baseline: info.ModTime(),
	}, nil
}

// NewExecutableReloader watches the running executable.
func NewExecutableReloader(interval time.Duration, logger *slog.Logger) (*HotReloader, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return NewHotReloader(exe, interval, logger)
}

// OnNewBinary sets the callback run from the watch goroutine when a newer binary
// appears.
func (h *HotReloader) OnNewBinary(fn func()) {
	h.mu.Lock()
	h.onNewer = fn
	h.mu.Unlock()
}

// Path returns the watched file.
func (h *HotReloader) Path() string {
	return h.path
}

// Start begins polling. It stops after the first detection or on Stop.
func (h *HotReloader) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	h.cancel = cancel
	h.mu.Unlock()
	go h.watch(ctx)
}

// Stop ends polling.
func (h *HotReloader) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

func (h *HotReloader) watch(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !h.newer() {
				continue
			}
			h.logger.Info("newer binary detected", "path", h.path)
			h.mu.Lock()
			fn := h.onNewer
			h.mu.Unlock()
			if fn != nil {
				fn()
			}
			return
		}
	}
}

func (h *HotReloader) newer() bool {
	info, err := os.Stat(h.path)
	if err != nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return info.ModTime().After(h.baseline)
}

// ResetBaseline accepts the current file as seen, so a declined restart is not
// offered again for the same build.
func (h *HotReloader) ResetBaseline() {
	if info, err := os.Stat(h.path); err == nil {
		h.mu.Lock()
		h.baseline = info.ModTime()
		h.mu.Unlock()
	}
}

// Restart replaces the process with the watched binary, keeping arguments and
// environment. It does not return on success.
func (h *HotReloader) Restart() error {
	return syscall.Exec(h.path, os.Args, os.Environ())
}
