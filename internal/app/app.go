// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/JakeFAU/horde-relay/internal/api"
	"github.com/JakeFAU/horde-relay/internal/catalog"
	"github.com/JakeFAU/horde-relay/internal/clock/system"
	"github.com/JakeFAU/horde-relay/internal/config"
	"github.com/JakeFAU/horde-relay/internal/docs"
	"github.com/JakeFAU/horde-relay/internal/horde"
	"github.com/JakeFAU/horde-relay/internal/id/uuid"
	"github.com/JakeFAU/horde-relay/internal/preferences"
	"github.com/JakeFAU/horde-relay/internal/relay"
)

// App holds the shared services built once at startup.
type App struct {
	cfg     config.Config
	logger  *zap.Logger
	horde   *horde.Client
	prefs   *preferences.Store
	catalog *catalog.Catalog
	relay   *relay.Relay
	server  *api.Server
}

// New wires every component from cfg.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := horde.New(horde.Config{
		BaseURL:     cfg.Horde.BaseURL,
		ClientAgent: cfg.Horde.ClientAgent,
		Timeout:     cfg.Horde.Timeout,
	})
	prefs := preferences.New(preferences.Config{
		DefaultModel: cfg.Preferences.DefaultModel,
		Capacity:     cfg.Preferences.Capacity,
		TTL:          cfg.Preferences.TTL,
	})
	cat := catalog.New(client, logger.Named("catalog"))
	rel := relay.New(
		client,
		prefs,
		system.New(),
		relay.NewExponentialRetryPolicy(cfg.Relay.CheckRetries),
		relay.Config{PollInterval: cfg.Relay.PollInterval, MaxWait: cfg.Relay.MaxWait},
		logger.Named("relay"),
	)
	server := api.NewServer(
		prefs,
		cat,
		rel,
		docs.NewRenderer(cfg.Docs.ReadmePath),
		uuid.New(),
		api.Options{BestEffort: cfg.Relay.BestEffort, AllowedOrigins: cfg.CORS.AllowedOrigins},
		logger.Named("api"),
	)

	logger.Info("application services initialized",
		zap.String("horde_base_url", cfg.Horde.BaseURL),
		zap.String("default_model", cfg.Preferences.DefaultModel),
		zap.Bool("best_effort", cfg.Relay.BestEffort),
	)
	return &App{
		cfg:     cfg,
		logger:  logger,
		horde:   client,
		prefs:   prefs,
		catalog: cat,
		relay:   rel,
		server:  server,
	}, nil
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Catalog exposes the catalog proxy.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

// Handler returns the HTTP handler serving every route.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Close releases the remote client and flushes the logger.
func (a *App) Close() {
	a.logger.Info("shutting down application services")
	if err := a.horde.Close(); err != nil {
		a.logger.Warn("error closing horde client", zap.Error(err))
	}
	// Sync fails on terminals; nothing to do about it at shutdown.
	_ = a.logger.Sync()
}
