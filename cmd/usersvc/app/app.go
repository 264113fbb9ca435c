package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"user-management-service/cmd/usersvc/di"
	"user-management-service/cmd/usersvc/server"
	"user-management-service/internal/adapter/console"
	"user-management-service/internal/config"
	"user-management-service/pkg/logger"
)

// consoleDrainTimeout bounds how long shutdown waits for the console loop.
const consoleDrainTimeout = 500 * time.Millisecond

// Options selects where configuration comes from and how the app talks to
// the user in console mode.
type Options struct {
	ConfigPath string
	Mode       string
	In         io.Reader
	Out        io.Writer
}

// App represents the application
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Container *di.Container
	HTTP      *http.Server

	in  io.Reader
	out io.Writer
}

// New creates a new application instance. ctx bounds connection setup.
func New(ctx context.Context, opts Options) (*App, error) {
	// Load configuration
	cfg, err := config.LoadConfig(opts.ConfigPath, config.WithMode(opts.Mode))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := initLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Create DI container
	container, err := di.NewContainer(ctx, cfg, l)
	if err != nil {
		_ = l.Sync()
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	a := &App{
		Config:    cfg,
		Logger:    l,
		Container: container,
		in:        opts.In,
		out:       opts.Out,
	}
	if a.in == nil {
		a.in = os.Stdin
	}
	if a.out == nil {
		a.out = os.Stdout
	}

	if cfg.App.Mode == config.ModeHTTP {
		a.HTTP = server.SetupGinServer(container.GinHandler, container.RateLimiter, cfg, l)
	}

	return a, nil
}

// Run starts the configured front-end and blocks until it finishes or ctx is
// cancelled, then releases all resources.
func (a *App) Run(ctx context.Context) error {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			a.Logger.Error("panic recovered in application",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()

	a.Logger.Info("starting application",
		zap.String("service", a.Config.Logger.ServiceName),
		zap.String("version", a.Config.Logger.ServiceVersion),
		zap.String("environment", a.Config.App.Env),
		zap.String("mode", a.Config.App.Mode),
	)

	// Start front-end in goroutine
	errChan := make(chan error, 1)
	go func() {
		// Add panic recovery for front-end goroutine
		defer func() {
			if r := recover(); r != nil {
				errChan <- fmt.Errorf("front-end panic: %v", r)
			}
		}()

		errChan <- a.serve(ctx)
	}()

	// Wait for context cancellation or the front-end to finish
	var runErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutting down application...")
		if a.HTTP == nil {
			runErr = a.awaitConsole(errChan)
		}
	case runErr = <-errChan:
	}

	if err := a.shutdown(); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

// awaitConsole gives a console command that is still running a short window
// to observe the cancelled context before the database is closed. A console
// blocked on input never returns, so the wait is bounded.
func (a *App) awaitConsole(errChan <-chan error) error {
	select {
	case err := <-errChan:
		return err
	case <-time.After(consoleDrainTimeout):
		a.Logger.Debug("console still waiting for input, closing resources")
		return nil
	}
}

func (a *App) serve(ctx context.Context) error {
	if a.HTTP == nil {
		return console.New(a.Container.UserUC, a.in, a.out, a.Logger).Run(ctx)
	}

	a.Logger.Info("REST API running", zap.String("address", a.HTTP.Addr))
	if err := a.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	// Create shutdown context with configurable timeout
	timeout := time.Duration(a.Config.App.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.Logger.Info("starting graceful shutdown",
		zap.Int("timeout_seconds", a.Config.App.ShutdownTimeoutSeconds),
	)

	var errs []error

	// Shutdown HTTP server
	if a.HTTP != nil {
		a.Logger.Info("shutting down HTTP server...")
		if err := a.HTTP.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("failed to shutdown HTTP server", zap.Error(err))
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}

	// Close container resources
	if a.Container != nil {
		a.Logger.Info("closing container resources...")
		if err := a.Container.Close(); err != nil {
			a.Logger.Error("failed to close container", zap.Error(err))
			errs = append(errs, fmt.Errorf("container close: %w", err))
		}
	}

	a.Logger.Info("application shutdown complete")

	// Sync logger
	if err := a.Logger.Sync(); err != nil {
		// Ignore sync errors for stdout/stderr
		if err.Error() != "sync /dev/stdout: invalid argument" &&
			err.Error() != "sync /dev/stderr: invalid argument" {
			errs = append(errs, fmt.Errorf("logger sync: %w", err))
		}
	}

	// Return aggregated errors
	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	return nil
}

// initLogger initializes the application logger
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	loggerCfg := logger.Config{
		Level:          cfg.Logger.Level,
		Format:         cfg.Logger.Format,
		OutputPath:     cfg.Logger.OutputPath,
		EnableSampling: cfg.Logger.EnableSampling,
		ServiceName:    cfg.Logger.ServiceName,
		ServiceVersion: cfg.Logger.ServiceVersion,
		Environment:    cfg.App.Env,
		MaxSizeMB:      cfg.Logger.MaxSizeMB,
		MaxBackups:     cfg.Logger.MaxBackups,
		MaxAgeDays:     cfg.Logger.MaxAgeDays,
	}

	return logger.NewWithConfig(loggerCfg)
}
