package di

import (
	"context"
	"fmt"
	"time"

	"CoinPulse/internal/artifacts"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/domain/service"
	"CoinPulse/internal/forecast"
	"CoinPulse/internal/handler/api"
	internalrepo "CoinPulse/internal/repository"
	"CoinPulse/internal/service/binance"
	"CoinPulse/internal/service/news"
	"CoinPulse/internal/service/ratelimit"
	"CoinPulse/internal/usecase"
	"CoinPulse/pkg/cache"
	pkgch "CoinPulse/pkg/clickhouse"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	pkgkafka "CoinPulse/pkg/kafka"
	"CoinPulse/pkg/logger"
	"CoinPulse/pkg/metrics"
	"CoinPulse/pkg/server"
)

// ProvideLogger creates the process logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	level := "info"
	format := "json"
	if cfg.Environment == "development" {
		level = "debug"
		format = "console"
	}
	return logger.New(&logger.Config{
		Level:  level,
		Format: format,
		Output: "stdout",
	})
}

// ProvideMetrics creates the Prometheus recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHTTPClient creates the outbound HTTP client.
func ProvideHTTPClient(cfg *config.Config) *xhttp.Client {
	return xhttp.NewClient(xhttp.WithTimeout(cfg.Binance.RequestTimeout))
}

// ProvideCache creates the cache service: in-memory alone, or layered over
// Redis when Redis is enabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}

	redis, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(redis), nil
}

// ProvideRateLimiter creates the shared upstream rate limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideMarketData creates the Binance REST client.
func ProvideMarketData(
	cfg *config.Config,
	httpClient *xhttp.Client,
	c cache.Service,
	limiter *ratelimit.Limiter,
	m repository.Metrics,
	log *logger.Logger,
) repository.MarketData {
	return binance.New(cfg, httpClient, c, limiter, m, log)
}

// ProvideNewsSource creates the CryptoPanic client.
func ProvideNewsSource(
	cfg *config.Config,
	httpClient *xhttp.Client,
	c cache.Service,
	m repository.Metrics,
	log *logger.Logger,
) repository.NewsSource {
	return news.New(cfg, httpClient, c, m, log)
}

// ProvideArtifactSource creates the model artifact loader, memoized when
// configured.
func ProvideArtifactSource(cfg *config.Config) forecast.ArtifactSource {
	store := artifacts.NewFSStore(cfg.Artifacts.Dir)
	if cfg.Artifacts.Memoize {
		return artifacts.NewMemoStore(store)
	}
	return store
}

// ProvideForecaster creates the forecast engine.
func ProvideForecaster(source forecast.ArtifactSource) service.Forecaster {
	return forecast.NewEngine(source)
}

// ProvideForecastSink creates the ClickHouse forecast log, or nil when
// ClickHouse is disabled.
func ProvideForecastSink(cfg *config.Config, log *logger.Logger) (repository.ForecastSink, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sink, err := internalrepo.NewForecastLog(ctx, client, log)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("forecast log: %w", err)
	}
	return sink, nil
}

// ProvideForecastPublisher creates the Kafka forecast event publisher, or nil
// when Kafka is disabled. When enabled it also routes aggregated error logs
// through the same producer.
func ProvideForecastPublisher(cfg *config.Config, log *logger.Logger) (repository.ForecastPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	log.AddCollector(&logger.CollectionConfig{
		TimeInterval:   time.Minute,
		CountThreshold: 100,
		Topic:          cfg.Kafka.Topic + ".errors",
		Publisher:      producer,
	})

	return internalrepo.NewForecastEvents(producer, cfg.Kafka.Topic), nil
}

// ProvideStream creates the live quote stream, or nil when disabled.
func ProvideStream(cfg *config.Config, c cache.Service, m repository.Metrics, log *logger.Logger) *binance.Stream {
	if !cfg.Binance.StreamEnabled {
		return nil
	}
	return binance.NewStream(cfg, c, m, log)
}

// ProvideMarketUseCase creates the market use case.
func ProvideMarketUseCase(market repository.MarketData, log *logger.Logger) *usecase.MarketUseCase {
	return usecase.NewMarketUseCase(market, log)
}

// ProvideNewsUseCase creates the news use case.
func ProvideNewsUseCase(source repository.NewsSource) *usecase.NewsUseCase {
	return usecase.NewNewsUseCase(source)
}

// ProvideForecastUseCase creates the forecast use case.
func ProvideForecastUseCase(
	cfg *config.Config,
	market repository.MarketData,
	engine service.Forecaster,
	sink repository.ForecastSink,
	publisher repository.ForecastPublisher,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.ForecastUseCase {
	return usecase.NewForecastUseCase(cfg, market, engine, sink, publisher, m, log)
}

// ProvideRouter bundles the API handlers.
func ProvideRouter(
	log *logger.Logger,
	market *usecase.MarketUseCase,
	newsUC *usecase.NewsUseCase,
	forecastUC *usecase.ForecastUseCase,
) *api.Router {
	return api.NewRouter(
		api.NewMarketEchoHandler(log, market, newsUC),
		api.NewForecastEchoHandler(log, forecastUC),
	)
}

// ProvideHTTPServer creates the HTTP server.
func ProvideHTTPServer(cfg *config.Config, router *api.Router) *xhttp.Server {
	return xhttp.NewServer(router,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(cfg.Metrics.Path),
	)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	srv *xhttp.Server,
	stream *binance.Stream,
	sink repository.ForecastSink,
	publisher repository.ForecastPublisher,
	c cache.Service,
) *server.App {
	return server.New(cfg, log, srv, stream, sink, publisher, c)
}
