package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
)

// Start serves HTTP in the background. The returned channel is closed when
// a termination signal arrives or the listener fails; Err tells which.
func (a *App) Start() <-chan struct{} {
	done := make(chan struct{})
	var once sync.Once
	finish := func() { once.Do(func() { close(done) }) }

	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server stopped unexpectedly", "address", a.httpServer.Addr, "error", err)
			a.serveErr <- err
			finish()
		}
	}()

	go func() {
		ctx, stop := signal.NotifyContext(a.ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
		defer stop()

		<-ctx.Done()
		if a.ctx.Err() == nil {
			slog.Info("termination signal received")
		}
		finish()
	}()

	return done
}

// Err returns the listener error that ended Start, if any.
func (a *App) Err() error {
	select {
	case err := <-a.serveErr:
		a.serveErr <- err
		return err
	default:
		return nil
	}
}

// Stop drains in-flight requests first so no upload is cut off mid-record,
// then stops the dataset janitor and waits for it, then runs the closers
// newest first (modules before config).
func (a *App) Stop(ctx context.Context) {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to drain http server", "error", err)
	}

	if a.cancel != nil {
		a.cancel()
	}

	if a.goroutine != nil {
		slog.InfoContext(ctx, "waiting for background jobs to finish")
		if err := a.goroutine.Wait(); err != nil {
			slog.ErrorContext(ctx, "background job failed", "error", err)
		}
	}

	for _, c := range slices.Backward(a.closers) {
		if err := c.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", c.name, "error", err)
		}
	}

	slog.InfoContext(ctx, "application gracefully shutdown")
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	a.closers = append(a.closers, closer{name: name, fn: fn})
}
