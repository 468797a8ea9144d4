package di

import (
	"context"
	"fmt"
	"time"

	"StockScout/internal/domain/repository"
	"StockScout/internal/handler/api"
	internalrepo "StockScout/internal/repository"
	icache "StockScout/internal/service/cache"
	"StockScout/internal/service/finnhub"
	"StockScout/internal/service/ratelimit"
	"StockScout/internal/usecase"
	pkgch "StockScout/pkg/clickhouse"
	"StockScout/pkg/config"
	xhttp "StockScout/pkg/http"
	pkgkafka "StockScout/pkg/kafka"
	applogger "StockScout/pkg/logger"
	"StockScout/pkg/metrics"
	"StockScout/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideStockStore creates ClickHouse storage with the schema initialized.
func ProvideStockStore(chClient *pkgch.Client) (repository.StockStore, error) {
	store := internalrepo.NewClickHouseStockStore(chClient.DB())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("stock store schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideQuotePublisher creates the Kafka quote publisher, or nil when Kafka
// is disabled.
func ProvideQuotePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.QuotePublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaQuotePublisher(producer, cfg.Kafka.Topic)
}

// ProvidePool creates the global fetch concurrency pool.
func ProvidePool(cfg *config.Config) *ratelimit.Pool {
	size := cfg.Finnhub.Concurrency
	if size <= 0 {
		size = 2
	}
	return ratelimit.New(size)
}

// ProvideMarketDataSource creates the Finnhub REST client.
func ProvideMarketDataSource(
	cfg *config.Config,
	pool *ratelimit.Pool,
	logger *applogger.Logger,
	m repository.Metrics,
) repository.MarketDataSource {
	return finnhub.New(finnhub.Config{
		APIKey:         cfg.Finnhub.APIKey,
		BaseURL:        cfg.Finnhub.BaseURL,
		RequestDelay:   cfg.Finnhub.RequestDelay,
		RequestTimeout: cfg.Finnhub.RequestTimeout,
		MaxRetries:     cfg.Finnhub.MaxRetries,
	}, pool, logger, m)
}

// ProvideMapper creates the payload-to-record mapper.
func ProvideMapper() repository.RecordMapper {
	return finnhub.Mapper{}
}

// ProvideCache creates the recommendations cache: Redis when configured,
// in-process TTL map otherwise.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if cfg.Analysis.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Analysis.Redis.Addr,
			Password: cfg.Analysis.Redis.Password,
			DB:       cfg.Analysis.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideIngestor creates the ingestion use case.
func ProvideIngestor(
	source repository.MarketDataSource,
	mapper repository.RecordMapper,
	store repository.StockStore,
	pub repository.QuotePublisher,
	c icache.BytesCache,
	m repository.Metrics,
	logger *applogger.Logger,
) *usecase.Ingestor {
	return usecase.NewIngestor(source, mapper, store, pub, c, m, logger)
}

// ProvideRecommender creates the scoring use case.
func ProvideRecommender(
	store repository.StockStore,
	c icache.BytesCache,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.Recommender {
	ttl := cfg.Analysis.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return usecase.NewRecommender(store, c, ttl, cfg.Analysis.LookbackDays, cfg.Finnhub.Symbols, m, logger)
}

// ProvideStocksHandler creates the HTTP handler.
func ProvideStocksHandler(
	logger *applogger.Logger,
	ingestor *usecase.Ingestor,
	rec *usecase.Recommender,
	store repository.StockStore,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewStocksHandler(logger, ingestor, rec, store, cfg.Finnhub.Symbols)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	ingestor *usecase.Ingestor,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	pub repository.QuotePublisher,
	store repository.StockStore,
) *server.App {
	return server.New(cfg, logger, ingestor, handler, chClient, pub, store)
}
