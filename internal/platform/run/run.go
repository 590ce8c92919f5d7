package run

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const defaultShutdownTimeout = 10 * time.Second

// Runner drives a service until SIGINT/SIGTERM or until its start function
// returns, then runs the registered shutdown hooks in reverse order.
type Runner struct {
	Logger          *zap.Logger
	ShutdownTimeout time.Duration

	mu    sync.Mutex
	hooks []func(context.Context) error
}

func New(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{Logger: log, ShutdownTimeout: defaultShutdownTimeout}
}

// OnShutdown registers fn to run once the service is asked to stop.
func (r *Runner) OnShutdown(fn func(context.Context) error) {
	r.mu.Lock()
	r.hooks = append(r.hooks, fn)
	r.mu.Unlock()
}

// WithSignals runs start and returns the process exit code.
func (r *Runner) WithSignals(start func(ctx context.Context) error) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return r.Until(ctx, start)
}

// Until is WithSignals with the stop condition supplied by ctx.
func (r *Runner) Until(ctx context.Context, start func(ctx context.Context) error) int {
	errCh := make(chan error, 1)
	go func() {
		errCh <- start(ctx)
	}()

	select {
	case <-ctx.Done():
		r.Logger.Info("shutdown signal received")
		r.shutdown()
		select {
		case err := <-errCh:
			return r.exitCode(err)
		case <-time.After(r.timeout()):
			r.Logger.Warn("service did not stop in time")
			return 1
		}
	case err := <-errCh:
		r.shutdown()
		return r.exitCode(err)
	}
}

func (r *Runner) timeout() time.Duration {
	if r.ShutdownTimeout <= 0 {
		return defaultShutdownTimeout
	}
	return r.ShutdownTimeout
}

func (r *Runner) shutdown() {
	r.mu.Lock()
	hooks := r.hooks
	r.hooks = nil
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx); err != nil {
			r.Logger.Warn("shutdown hook failed", zap.Error(err))
		}
	}
}

func (r *Runner) exitCode(err error) int {
	if err == nil || errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
		return 0
	}
	r.Logger.Error("service exited with error", zap.Error(err))
	return 1
}

func Exit(code int) {
	os.Exit(code)
}
