package di

import (
	"context"
	"fmt"
	"time"

	"ScreenPull/internal/domain/models"
	"ScreenPull/internal/domain/repository"
	"ScreenPull/internal/handler/api"
	internalrepo "ScreenPull/internal/repository"
	"ScreenPull/internal/service/marketdata"
	"ScreenPull/internal/service/universe"
	"ScreenPull/internal/usecase"
	"ScreenPull/pkg/cache"
	pkgch "ScreenPull/pkg/clickhouse"
	"ScreenPull/pkg/config"
	xhttp "ScreenPull/pkg/http"
	pkgkafka "ScreenPull/pkg/kafka"
	applogger "ScreenPull/pkg/logger"
	"ScreenPull/pkg/metrics"
	"ScreenPull/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// candle archive is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideCandleStore creates the candle archive over ClickHouse, or nil
// when disabled.
func ProvideCandleStore(chClient *pkgch.Client) (repository.CandleStore, error) {
	if chClient == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := internalrepo.NewCHCandleStore(ctx, chClient)
	if err != nil {
		return nil, fmt.Errorf("candle store: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatch(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideEventPublisher creates the job event publisher. Without Kafka the
// orchestrator publishes into a no-op sink.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.EventPublisher {
	if producer == nil {
		return internalrepo.NewNoopEventPublisher()
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic)
}

// ProvideCache creates the candle cache: layered over Redis when the Redis
// store is configured, plain in-memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Store.Type == "redis" {
		redisCache, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Store.Redis.Addr),
			cache.WithRedisPassword(cfg.Store.Redis.Password),
			cache.WithRedisDB(cfg.Store.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return cache.NewLayeredCache(redisCache), nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideJobStore creates the job store selected by config. The Redis store
// uses its own connection with a distinct key prefix, separate from the
// candle cache.
func ProvideJobStore(cfg *config.Config) (repository.JobStore, error) {
	if cfg.Store.Type == "redis" {
		redisCache, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Store.Redis.Addr),
			cache.WithRedisPassword(cfg.Store.Redis.Password),
			cache.WithRedisDB(cfg.Store.Redis.DB),
			cache.WithRedisPrefix("screenpull-jobs"),
		)
		if err != nil {
			return nil, fmt.Errorf("redis job store: %w", err)
		}
		return internalrepo.NewRedisJobStore(redisCache.Client(), cfg.Store.TTL), nil
	}
	return internalrepo.NewMemoryJobStore(cfg.Store.TTL), nil
}

// ProvideSymbolProvider creates the static universe provider.
func ProvideSymbolProvider() *universe.StaticProvider {
	return universe.NewStaticProvider()
}

// ProvideMarketData creates the Yahoo chart client.
func ProvideMarketData(
	cfg *config.Config,
	lgr *applogger.Logger,
	cacheSvc cache.Service,
	candleStore repository.CandleStore,
) repository.MarketDataProvider {
	opts := []marketdata.Option{
		marketdata.WithInterval(cfg.MarketData.Interval),
		marketdata.WithSymbolSuffix(cfg.MarketData.SymbolSuffix),
		marketdata.WithRateLimit(cfg.MarketData.RateCapacity, cfg.MarketData.RateRefill),
	}
	if cfg.MarketData.Timeout > 0 {
		opts = append(opts, marketdata.WithTimeout(cfg.MarketData.Timeout))
	}
	if cfg.Screening.CacheEnabled {
		opts = append(opts, marketdata.WithCache(cacheSvc, cfg.MarketData.CacheTTL))
	}
	if candleStore != nil {
		opts = append(opts, marketdata.WithArchive(candleStore))
	}
	return marketdata.NewService(cfg.MarketData.BaseURL, lgr, opts...)
}

// ProvideScreeningConfig maps YAML screening settings onto the domain config.
func ProvideScreeningConfig(cfg *config.Config) models.ScreeningConfig {
	sc := models.ScreeningConfig{
		Period:                  cfg.Screening.Period,
		DaysToLookback:          cfg.Screening.DaysToLookback,
		MinPrice:                cfg.Screening.MinPrice,
		MaxPrice:                cfg.Screening.MaxPrice,
		VolumeRatio:             cfg.Screening.VolumeRatio,
		ConsolidationPercentage: cfg.Screening.ConsolidationPercentage,
		Concurrency:             cfg.Screening.Concurrency,
		PaceDelay:               cfg.Screening.PaceDelay,
		CacheEnabled:            cfg.Screening.CacheEnabled,
		UseEMA:                  cfg.Screening.UseEMA,
	}
	sc.Normalize()
	return sc
}

// ProvideOrchestrator creates the screening orchestrator.
func ProvideOrchestrator(
	store repository.JobStore,
	symbols *universe.StaticProvider,
	market repository.MarketDataProvider,
	events repository.EventPublisher,
	m repository.Metrics,
	lgr *applogger.Logger,
	sc models.ScreeningConfig,
) *usecase.Orchestrator {
	return usecase.NewOrchestrator(store, symbols, market, events, m, lgr, sc)
}

// ProvideProgressWSHandler creates the WebSocket progress handler.
func ProvideProgressWSHandler(lgr *applogger.Logger, orch *usecase.Orchestrator) *api.ProgressWSHandler {
	return api.NewProgressWSHandler(lgr, orch)
}

// ProvideHTTPHandler creates the screening HTTP handler.
func ProvideHTTPHandler(
	lgr *applogger.Logger,
	orch *usecase.Orchestrator,
	provider *universe.StaticProvider,
	ws *api.ProgressWSHandler,
) xhttp.Handler {
	return api.NewScreeningEchoHandler(lgr, orch, provider, ws)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	orch *usecase.Orchestrator,
	handler xhttp.Handler,
	publisher repository.EventPublisher,
	candleStore repository.CandleStore,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, lgr, orch, handler, publisher, candleStore, chClient)
}
