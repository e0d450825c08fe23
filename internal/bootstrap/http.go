package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/quickgig/quickgig-api/config"
	httpx "github.com/quickgig/quickgig-api/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the HTTP server around the lifecycle router. The
// caller starts it and owns its shutdown.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	if cfg == nil {
		return nil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
		appCfg.Sanitize()
	}

	handler := httpx.NewRouter(httpx.RouterServices{
		Jobs:         cfg.Services.Jobs,
		Applications: cfg.Services.Applications,
		Checklist:    cfg.Services.Checklist,
		Completion:   cfg.Services.Completion,
		Logger:       logger,
	})

	return &http.Server{
		Addr:         appCfg.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  appCfg.HTTP.ReadTimeout,
		WriteTimeout: appCfg.HTTP.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context  context.Context
	Server   *http.Server
	Services ServiceContainer
	Timeout  time.Duration
	Logger   *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server and the event bus.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(cfg.Context), timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Stop the bus after in-flight requests drain so their events still land.
	if cfg.Services.Bus != nil {
		cfg.Services.Bus.StopAll()
	}
	if cfg.Services.captureDone != nil {
		select {
		case <-cfg.Services.captureDone:
		case <-shutdownCtx.Done():
			if cfg.Logger != nil {
				cfg.Logger.Warn("timeout waiting for payment capture loop to stop")
			}
		}
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
