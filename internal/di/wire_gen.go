// Hand-maintained injector mirroring the wire.Build graph in wire.go.
// Running `go generate ./internal/di` regenerates this file with wire.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package di

import (
	"StockScout/pkg/config"
	"StockScout/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	metrics := ProvideMetrics()
	client, err := ProvideClickHouseClient(cfg)
	if err != nil {
		return nil, err
	}
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	bytesCache := ProvideCache(cfg)
	pool := ProvidePool(cfg)
	stockStore, err := ProvideStockStore(client)
	if err != nil {
		return nil, err
	}
	quotePublisher := ProvideQuotePublisher(producer, cfg)
	marketDataSource := ProvideMarketDataSource(cfg, pool, logger, metrics)
	recordMapper := ProvideMapper()
	ingestor := ProvideIngestor(marketDataSource, recordMapper, stockStore, quotePublisher, bytesCache, metrics, logger)
	recommender := ProvideRecommender(stockStore, bytesCache, metrics, logger, cfg)
	handler := ProvideStocksHandler(logger, ingestor, recommender, stockStore, cfg)
	app := ProvideApp(cfg, logger, ingestor, handler, client, quotePublisher, stockStore)
	return app, nil
}
