package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"DragonVeins/internal/usecase"
	pkgcache "DragonVeins/pkg/cache"
	"DragonVeins/pkg/config"
	xhttp "DragonVeins/pkg/http"
	applogger "DragonVeins/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	poller     *usecase.MarketPoller
	handler    xhttp.Handler
	cache      pkgcache.Service
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	poller *usecase.MarketPoller,
	handler xhttp.Handler,
	c pkgcache.Service,
) *App {
	return &App{
		cfg:     cfg,
		logger:  logger,
		poller:  poller,
		handler: handler,
		cache:   c,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
	)

	if err := a.poller.Start(ctx); err != nil {
		a.logger.Error("poller start error", applogger.Error(err))
		return err
	}
	a.logger.Info("market poller started",
		applogger.String("currency", a.cfg.CoinGecko.Currency),
		applogger.Duration("interval", a.cfg.CoinGecko.RefreshInterval),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop the poll loop first so no cycle lands mid-teardown.
	if err := a.poller.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("poller stop error", applogger.Error(err))
	}

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if closer, ok := a.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
