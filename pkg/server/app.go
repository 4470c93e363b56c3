package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"PromoPulse/internal/engine"
	"PromoPulse/internal/handler/api"
	"PromoPulse/internal/handler/ws"
	pkgcache "PromoPulse/pkg/cache"
	pkgch "PromoPulse/pkg/clickhouse"
	"PromoPulse/pkg/config"
	xhttp "PromoPulse/pkg/http"
	pkgkafka "PromoPulse/pkg/kafka"
	applogger "PromoPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// App encapsulates the application lifecycle: detection engine, HTTP API
// and the live anomaly feed.
type App struct {
	cfg        *config.Config
	engine     *engine.DetectionEngine
	chClient   *pkgch.Client
	cache      pkgcache.Service
	producer   *pkgkafka.Producer
	logger     *applogger.Logger
	httpServer *xhttp.Server
	feed       *ws.FeedHub
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	eng *engine.DetectionEngine,
	chClient *pkgch.Client,
	cache pkgcache.Service,
	producer *pkgkafka.Producer,
	l *applogger.Logger,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:      cfg,
		engine:   eng,
		chClient: chClient,
		cache:    cache,
		producer: producer,
		logger:   l,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	apiHandler := api.NewAnomaliesEchoHandler(a.logger, a.engine)

	handlers := []xhttp.Handler{apiHandler}
	if a.cfg.Feed.Enabled {
		a.feed = ws.NewFeedHub(a.logger, a.cfg.Feed.BufferSize)
		a.engine.OnBatch(a.feed.Broadcast)
		handlers = append(handlers, a.feed)
	}

	a.httpServer = xhttp.NewServer(multiHandler(handlers),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.logger),
	)

	a.engine.Start()
	a.logger.Info("detection engine started",
		applogger.Duration("interval", a.cfg.Detection.Interval),
		applogger.Int("thresholds", len(a.engine.ListThresholds())),
	)

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	// stop producing new anomalies first, draining any in-flight cycle
	a.engine.Stop()

	if a.feed != nil {
		a.feed.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}

// multiHandler registers several route groups on one Echo instance.
type multiHandler []xhttp.Handler

func (m multiHandler) RegisterRoutes(e *echo.Echo) {
	for _, h := range m {
		h.RegisterRoutes(e)
	}
}
