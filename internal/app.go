// Package internal contains core application functionality
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"trafficlens/internal/analytics"
	"trafficlens/internal/config"
	"trafficlens/internal/http"
	"trafficlens/internal/report"
	"trafficlens/internal/report/gaclient"
)

// Application wires configuration, logging, the reporting client and the HTTP server.
type Application struct {
	App       *fiber.App
	Config    *config.Config
	Logger    *slog.Logger
	Analytics *analytics.Analytics

	listener net.Listener
	done     chan error
}

// NewApp creates a new application instance with default settings
func NewApp() (*Application, error) {
	cfg := config.GetConfig()
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig creates a new application with the provided config, talking
// to Google Analytics with the configured credentials.
func NewAppWithConfig(cfg *config.Config) (*Application, error) {
	logger := cartridge.NewLogger(cfg, nil)

	client, err := NewReportClient(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}

	return NewAppWithClient(cfg, logger, client), nil
}

// NewAppWithClient creates an application on top of an existing report client.
func NewAppWithClient(cfg *config.Config, logger *slog.Logger, client report.Client) *Application {
	a := analytics.New(client, analytics.Options{
		SiteID:   cfg.SiteID,
		Location: cfg.GetLocation(),
		Logger:   logger,
		Workers:  cfg.OverviewWorkers,
	})

	handler := &http.Handler{
		Analytics:           a,
		Logger:              logger,
		DefaultNumberOfDays: cfg.DefaultNumberOfDays,
		DefaultMaxResults:   cfg.DefaultMaxResults,
		RequestTimeout:      cfg.GetRequestTimeout(),
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		DisableStartupMessage: true,
	})
	MountRoutes(app, handler, cfg, logger)

	return &Application{
		App:       app,
		Config:    cfg,
		Logger:    logger,
		Analytics: a,
	}
}

// NewReportClient builds the Google Analytics client. When no site is configured
// a client that cannot be built is not fatal: the service still serves health
// and reports ErrNotEnabled for everything else.
func NewReportClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (report.Client, error) {
	client, err := gaclient.NewFromCredentialsFile(ctx, cfg.CredentialsFile, logger)
	if err == nil {
		return client, nil
	}

	if cfg.IsEnabled() {
		return nil, fmt.Errorf("failed to create reporting client: %w", err)
	}

	logger.Warn("Reporting client unavailable, running without a site",
		slog.Any("error", err))
	return unconfiguredClient{err: err}, nil
}

// StartAsync starts listening on the configured port without blocking.
func (a *Application) StartAsync() error {
	ln, err := net.Listen("tcp", ":"+a.Config.AppPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", a.Config.AppPort, err)
	}
	a.listener = ln
	a.done = make(chan error, 1)

	a.Logger.Info("Server listening",
		slog.String("addr", ln.Addr().String()),
		slog.String("environment", a.Config.Environment),
		slog.Bool("enabled", a.Analytics.IsEnabled()))

	go func() {
		a.done <- a.App.Listener(ln)
	}()

	return nil
}

// Addr returns the address the server listens on, or nil before StartAsync.
func (a *Application) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Shutdown stops accepting connections and waits for in-flight requests. The
// listener is closed here as well: a shutdown racing the serve goroutine would
// otherwise leave Serve blocked in Accept.
func (a *Application) Shutdown(ctx context.Context) error {
	if err := a.App.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	if a.listener != nil {
		if err := a.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			a.Logger.Warn("Failed to close listener", slog.Any("error", err))
		}
	}

	if a.done != nil {
		select {
		case err := <-a.done:
			if err != nil && !errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("server stopped with error: %w", err)
			}
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for server to stop: %w", ctx.Err())
		}
		a.done = nil
	}

	a.Logger.Info("Server stopped")
	return nil
}

// unconfiguredClient stands in for a reporting client that could not be built.
type unconfiguredClient struct {
	err error
}

func (c unconfiguredClient) Execute(ctx context.Context, siteID string, q report.Query) (*report.Response, error) {
	return nil, c.err
}

func (c unconfiguredClient) ExecuteRealtime(ctx context.Context, siteID string, q report.Query) (*report.Response, error) {
	return nil, c.err
}

func (c unconfiguredClient) ResolveSiteID(ctx context.Context, url string) (string, error) {
	return "", c.err
}
