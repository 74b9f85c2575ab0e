package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc releases one component.
type ShutdownFunc func(ctx context.Context) error

// RunFunc blocks while a component serves. Returning, with or without an error, triggers shutdown.
type RunFunc func() error

type hook struct {
	name string
	fn   ShutdownFunc
}

// Manager stops components in reverse registration order and supervises long-running ones.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	hooks   []hook
	stopped bool

	cancel  context.CancelFunc
	runners sync.WaitGroup
	errMu   sync.Mutex
	runErr  error
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Register adds a shutdown hook.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, hook{name: name, fn: fn})
}

// Listen cancels the application context on SIGINT or SIGTERM.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	m.cancel = cancel

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}

// Go runs fn in the background. If fn returns before shutdown began, the application context
// is cancelled and the error is reported by Err.
func (m *Manager) Go(name string, fn RunFunc) {
	m.runners.Add(1)
	go func() {
		defer m.runners.Done()
		err := fn()

		m.mu.Lock()
		stopping := m.stopped
		m.mu.Unlock()
		if stopping {
			return
		}

		if err != nil {
			m.logger.Error("component exited", zap.String("component", name), zap.Error(err))
			m.errMu.Lock()
			m.runErr = errors.Join(m.runErr, err)
			m.errMu.Unlock()
		} else {
			m.logger.Warn("component exited unexpectedly", zap.String("component", name))
		}
		if m.cancel != nil {
			m.cancel()
		}
	}()
}

// Err returns the errors of components that exited on their own.
func (m *Manager) Err() error {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.runErr
}

// Shutdown runs every hook newest first within the configured timeout, then waits for
// background runners. Hook failures are joined; the remaining hooks still run.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	m.stopped = true
	hooks := append([]hook(nil), m.hooks...)
	m.hooks = nil
	m.mu.Unlock()

	var result error
	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		started := time.Now()
		if err := h.fn(ctx); err != nil {
			m.logger.Error("shutdown hook failed", zap.String("component", h.name), zap.Error(err))
			result = errors.Join(result, err)
			continue
		}
		m.logger.Info("component stopped", zap.String("component", h.name), zap.Duration("took", time.Since(started)))
	}

	done := make(chan struct{})
	go func() {
		m.runners.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		result = errors.Join(result, ctx.Err())
	}
	return result
}
