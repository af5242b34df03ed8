// Package lifecycle sequences the shutdown of serve-mode components. The
// scheduler and HTTP server must stop before their stores close, so hooks
// run in reverse registration order.
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

// ShutdownFunc releases one component. It must respect ctx's deadline.
type ShutdownFunc func(ctx context.Context) error

// Manager collects shutdown hooks during startup and drains them in reverse
// order when the process is asked to stop.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	names []string
	fns   []ShutdownFunc
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{timeout: timeout, logger: logger}
}

// Register appends a named shutdown hook. Registration order is startup
// order; shutdown walks the list backwards.
func (m *Manager) Register(name string, fn ShutdownFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, name)
	m.fns = append(m.fns, fn)
}

// Shutdown drains the registered hooks under the configured deadline. Hook
// failures are logged and joined but never stop the remaining hooks.
func (m *Manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for i := len(m.fns) - 1; i >= 0; i-- {
		started := time.Now()
		if err := m.fns[i](ctx); err != nil {
			m.logger.Error("component shutdown failed",
				zap.String("component", m.names[i]),
				zap.Error(err))
			errs = append(errs, err)
			continue
		}
		m.logger.Info("component stopped",
			zap.String("component", m.names[i]),
			zap.Duration("took", time.Since(started)))
	}
	return errors.Join(errs...)
}

// Listen watches for SIGTERM/SIGINT in the background and invokes cancel on
// the first one received.
func (m *Manager) Listen(cancel context.CancelFunc) {
	if cancel == nil {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		defer signal.Stop(sigCh)
		sig := <-sigCh
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()
}
