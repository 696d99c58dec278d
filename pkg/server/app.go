package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/service/binance"
	"CoinPulse/pkg/cache"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/logger"
)

// App owns the process lifecycle: the HTTP server, the optional market
// stream, and every resource that needs an orderly shutdown.
type App struct {
	cfg    *config.Config
	log    *logger.Logger
	server *xhttp.Server

	stream    *binance.Stream              // may be nil
	sink      repository.ForecastSink      // may be nil
	publisher repository.ForecastPublisher // may be nil
	cache     cache.Service

	stopStream context.CancelFunc
}

// New assembles the application.
func New(
	cfg *config.Config,
	log *logger.Logger,
	server *xhttp.Server,
	stream *binance.Stream,
	sink repository.ForecastSink,
	publisher repository.ForecastPublisher,
	cacheSvc cache.Service,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		server:    server,
		stream:    stream,
		sink:      sink,
		publisher: publisher,
		cache:     cacheSvc,
	}
}

// Run starts everything and blocks until SIGINT or SIGTERM, then shuts down
// in reverse start order.
func (a *App) Run() error {
	if a.stream != nil {
		ctx, cancel := context.WithCancel(context.Background())
		a.stopStream = cancel
		go a.stream.Run(ctx)
	}

	if err := a.server.Start(); err != nil {
		return err
	}
	a.log.Info("application started",
		logger.Int("port", a.cfg.Server.Port),
		logger.String("environment", a.cfg.Environment),
		logger.Bool("stream", a.stream != nil),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.log.Info("shutting down")
	a.Shutdown()
	return nil
}

// Shutdown stops the stream, drains the HTTP server and closes every sink.
func (a *App) Shutdown() {
	if a.stopStream != nil {
		a.stopStream()
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(ctx); err != nil {
		a.log.Error("http shutdown", logger.Error(err))
	}

	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			a.log.Error("forecast sink close", logger.Error(err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Error("forecast publisher close", logger.Error(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Error("cache close", logger.Error(err))
		}
	}

	// Flushes any aggregated error logs still buffered.
	a.log.RemoveCollector()
}
