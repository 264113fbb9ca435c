package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// ShutdownSignals are the signals that trigger a graceful shutdown.
var ShutdownSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// WithSignal derives a context that is cancelled on the first shutdown signal.
// The returned stop func unregisters the handler and cancels the context.
func WithSignal(parent context.Context, log *zap.Logger) (context.Context, context.CancelFunc) {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, ShutdownSignals...)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
