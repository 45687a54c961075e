//go:build wireinject
// +build wireinject

package bootstrap

import (
	"context"

	"fxrates-etl/internal/config"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var cacheSet = wire.NewSet(
	ProvideRedisClient,
	ProvideHTTPCache,
)

func InitRateSyncApp(ctx context.Context, cfg config.Config, log *zap.Logger) (App, func(), error) {
	wire.Build(
		ProvideRateStore,
		ProvideNBPFetcher,
		ProvideRateSync,
		ProvideRateSyncApp,
	)
	return nil, nil, nil
}

func InitWeatherApp(ctx context.Context, cfg config.Config, log *zap.Logger) (App, func(), error) {
	wire.Build(
		cacheSet,
		ProvideWeatherFetcher,
		ProvideWeatherWriter,
		ProvideWeatherService,
		ProvideWeatherApp,
	)
	return nil, nil, nil
}

func InitMarketApp(ctx context.Context, cfg config.Config, log *zap.Logger) (App, func(), error) {
	wire.Build(
		cacheSet,
		ProvidePriceFetcher,
		ProvidePriceWriter,
		ProvideMarketService,
		ProvideMarketApp,
	)
	return nil, nil, nil
}
