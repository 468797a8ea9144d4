package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	drepo "StockScout/internal/domain/repository"
	"StockScout/internal/usecase"
	pkgch "StockScout/pkg/clickhouse"
	"StockScout/pkg/config"
	xhttp "StockScout/pkg/http"
	applogger "StockScout/pkg/logger"
)

// App encapsulates the entire application lifecycle: the HTTP API, the
// optional periodic ingestion loop, and graceful teardown of the
// infrastructure clients.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	ingestor   *usecase.Ingestor
	handler    xhttp.Handler
	chClient   *pkgch.Client
	publisher  drepo.QuotePublisher
	store      drepo.StockStore
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	ingestor *usecase.Ingestor,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	publisher drepo.QuotePublisher,
	store drepo.StockStore,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		ingestor:  ingestor,
		handler:   handler,
		chClient:  chClient,
		publisher: publisher,
		store:     store,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Periodic ingestion; interval 0 means manual runs over the API only.
	if a.cfg.Ingest.Interval > 0 {
		go a.ingestLoop(ctx)
		a.logger.Info("periodic ingestion enabled",
			applogger.Duration("interval_ms", a.cfg.Ingest.Interval),
			applogger.Strings("symbols", a.cfg.Finnhub.Symbols),
		)
	}

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

// ingestLoop runs one pass immediately, then one per interval. Each pass gets
// a deadline of the interval itself so a stalled pass cannot overlap the next.
func (a *App) ingestLoop(ctx context.Context) {
	run := func() {
		passCtx, cancel := context.WithTimeout(ctx, a.cfg.Ingest.Interval)
		defer cancel()
		report := a.ingestor.Run(passCtx, a.cfg.Finnhub.Symbols)
		if len(report.Errors) > 0 {
			a.logger.Warn("scheduled ingestion pass had errors",
				applogger.String("run_id", report.RunID),
				applogger.Int("errors", len(report.Errors)),
			)
		}
	}

	run()
	ticker := time.NewTicker(a.cfg.Ingest.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("store close error", applogger.Error(err))
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
