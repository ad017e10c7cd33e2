// Package session scopes the backend session to the life of the process.
// A Hook releases it exactly once, on a termination signal or on normal
// teardown, whichever comes first.
package session

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/mark3labs/resumescan/internal/logger"
)

// DefaultTimeout bounds the cleanup request so the release goroutine ends.
const DefaultTimeout = 5 * time.Second

// Cleaner drops the server-side session.
type Cleaner interface {
	Cleanup(ctx context.Context) error
}

// CleanerFunc adapts a function to Cleaner.
type CleanerFunc func(ctx context.Context) error

// Cleanup calls f.
func (f CleanerFunc) Cleanup(ctx context.Context) error { return f(ctx) }

// Option configures a Hook.
type Option func(*Hook)

// WithTimeout sets the per-request bound for the cleanup call.
func WithTimeout(d time.Duration) Option {
	return func(h *Hook) { h.timeout = d }
}

// WithSignals replaces the termination signals listened for.
func WithSignals(sigs ...os.Signal) Option {
	return func(h *Hook) { h.signals = sigs }
}

// WithNotifier replaces os/signal subscription. Used by tests to deliver
// signals by hand.
func WithNotifier(notify func(chan<- os.Signal, ...os.Signal), stop func(chan<- os.Signal)) Option {
	return func(h *Hook) {
		h.notify = notify
		h.stop = stop
	}
}

// OnSignal runs fn after a termination signal has triggered the release,
// typically to stop the UI.
func OnSignal(fn func(os.Signal)) Option {
	return func(h *Hook) { h.onSignal = fn }
}

// Hook is a release-once handle for the backend session.
type Hook struct {
	cleaner  Cleaner
	timeout  time.Duration
	signals  []os.Signal
	notify   func(chan<- os.Signal, ...os.Signal)
	stop     func(chan<- os.Signal)
	onSignal func(os.Signal)

	disposed atomic.Bool
	done     chan struct{}

	mu         sync.Mutex
	sigCh      chan os.Signal
	quit       chan struct{}
	registered bool
	closed     bool
}

// NewHook creates an unregistered hook around cleaner.
func NewHook(cleaner Cleaner, opts ...Option) *Hook {
	h := &Hook{
		cleaner: cleaner,
		timeout: DefaultTimeout,
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGHUP},
		notify:  signal.Notify,
		stop:    signal.Stop,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register subscribes to termination signals. Calling it again, or after
// Close, does nothing.
func (h *Hook) Register() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.registered || h.closed {
		return
	}

	h.sigCh = make(chan os.Signal, 1)
	h.quit = make(chan struct{})
	h.notify(h.sigCh, h.signals...)
	h.registered = true

	go h.listen(h.sigCh, h.quit)
}

func (h *Hook) listen(sigCh <-chan os.Signal, quit <-chan struct{}) {
	select {
	case sig := <-sigCh:
		h.mu.Lock()
		closed := h.closed
		h.mu.Unlock()
		if closed {
			return
		}
		logger.Info("received %s, releasing backend session", sig)
		h.Release()
		if h.onSignal != nil {
			h.onSignal(sig)
		}
	case <-quit:
	}
}

// Close unsubscribes from signals and releases the session. A signal that
// arrives afterwards cannot trigger a second cleanup.
func (h *Hook) Close() <-chan struct{} {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		if h.registered {
			h.stop(h.sigCh)
			close(h.quit)
		}
	}
	h.mu.Unlock()

	return h.Release()
}

// Release starts the cleanup call if it has not run yet and returns a
// channel closed when that call finishes. It never blocks and never fails.
func (h *Hook) Release() <-chan struct{} {
	if !h.disposed.CompareAndSwap(false, true) {
		return h.done
	}

	go func() {
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("session cleanup panicked: %v", r)
			}
		}()

		ctx := context.Background()
		if h.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.timeout)
			defer cancel()
		}

		if err := h.cleaner.Cleanup(ctx); err != nil {
			logger.Warn("session cleanup failed: %v", err)
			return
		}
		logger.Debug("backend session released")
	}()

	return h.done
}

// Released reports whether the cleanup has been started.
func (h *Hook) Released() bool {
	return h.disposed.Load()
}

// Wait blocks until the cleanup finishes or grace elapses. It reports
// whether the cleanup finished in time.
func (h *Hook) Wait(grace time.Duration) bool {
	if !h.disposed.Load() {
		return true
	}
	if grace <= 0 {
		select {
		case <-h.done:
			return true
		default:
			return false
		}
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-h.done:
		return true
	case <-timer.C:
		logger.Warn("session cleanup still running after %s", grace)
		return false
	}
}
