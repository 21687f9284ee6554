package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ScreenPull/internal/domain/repository"
	"ScreenPull/internal/usecase"
	pkgch "ScreenPull/pkg/clickhouse"
	"ScreenPull/pkg/config"
	xhttp "ScreenPull/pkg/http"
	applogger "ScreenPull/pkg/logger"
)

// App encapsulates the application lifecycle: the HTTP server, the job
// orchestrator, and the infrastructure clients that need an ordered close.
type App struct {
	cfg          *config.Config
	logger       *applogger.Logger
	orchestrator *usecase.Orchestrator
	httpServer   *xhttp.Server
	publisher    repository.EventPublisher
	candleStore  repository.CandleStore
	chClient     *pkgch.Client
}

// New creates an App with all dependencies.
func New(
	cfg *config.Config,
	lgr *applogger.Logger,
	orchestrator *usecase.Orchestrator,
	handler xhttp.Handler,
	publisher repository.EventPublisher,
	candleStore repository.CandleStore,
	chClient *pkgch.Client,
) *App {
	metricsPath := cfg.Metrics.Path
	if !cfg.Metrics.Enabled {
		metricsPath = ""
	}
	httpServer := xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	return &App{
		cfg:          cfg,
		logger:       lgr,
		orchestrator: orchestrator,
		httpServer:   httpServer,
		publisher:    publisher,
		candleStore:  candleStore,
		chClient:     chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("screenpull started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops intake first, then drains running jobs, then closes
// infrastructure clients.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.orchestrator.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("orchestrator drain incomplete", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("event publisher close error", applogger.Error(err))
		}
	}
	if a.candleStore != nil {
		if err := a.candleStore.Close(); err != nil {
			a.logger.Warn("candle store close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
