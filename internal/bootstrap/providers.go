package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"fxrates-etl/internal/application"
	"fxrates-etl/internal/config"
	infraconfig "fxrates-etl/internal/infrastructure/config"
	"fxrates-etl/internal/infrastructure/httpx"
	"fxrates-etl/internal/infrastructure/metrics"
	"fxrates-etl/internal/infrastructure/parquetstore"
	"fxrates-etl/internal/infrastructure/pg"
	"fxrates-etl/internal/infrastructure/provider"
	redisstore "fxrates-etl/internal/infrastructure/redis"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required for STORAGE=pg")

func zone(cfg config.Config) *time.Location {
	loc, err := cfg.Zone()
	if err != nil {
		return time.UTC
	}
	return loc
}

func outputPath(cfg config.Config, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(cfg.OutputDir, file)
}

func ProvideDB(ctx context.Context, log *zap.Logger, cfg config.Config) (*pg.DB, func(), error) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

// ProvideRateStore picks the rate table backend from STORAGE.
func ProvideRateStore(ctx context.Context, cfg config.Config, log *zap.Logger) (application.RateTableStore, func(), error) {
	if cfg.Storage != "pg" {
		return parquetstore.NewRateTableFile(outputPath(cfg, cfg.Rates.File)), func() {}, nil
	}
	db, cleanup, err := ProvideDB(ctx, log, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	return pg.NewRateTableRepo(db), cleanup, nil
}

func ProvideWeatherWriter(cfg config.Config) application.WeatherTableWriter {
	return &parquetstore.WeatherFile{Path: outputPath(cfg, cfg.Weather.File)}
}

func ProvidePriceWriter(cfg config.Config) application.PriceTableWriter {
	return &parquetstore.PriceFile{Path: outputPath(cfg, cfg.Market.File)}
}

// ProvideRedisClient returns a nil client when the response cache is disabled or the
// server does not answer; the jobs then talk to the upstream APIs directly.
func ProvideRedisClient(ctx context.Context, cfg config.Config, log *zap.Logger) (*redis.Client, func(), error) {
	if cfg.Cache.Backend != "redis" {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("cache.unavailable", zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
		_ = client.Close()
		return nil, func() {}, nil
	}
	return client, func() { _ = client.Close() }, nil
}

func ProvideHTTPCache(client *redis.Client, cfg config.Config) httpx.Cache {
	if client == nil {
		return nil
	}
	return redisstore.New(client, cfg.Cache.TTL)
}

func newHTTPClient(cfg config.Config, retries int, breaker *gobreaker.CircuitBreaker, cache httpx.Cache, log *zap.Logger) *httpx.Client {
	return &httpx.Client{
		HTTP:            &http.Client{Timeout: cfg.HTTPTimeout},
		UserAgent:       infraconfig.DefaultUserAgent,
		MaxRetries:      retries,
		InitialInterval: infraconfig.DefaultRetryInitial,
		MaxInterval:     infraconfig.DefaultRetryMax,
		Breaker:         breaker,
		Cache:           cache,
		Log:             log,
	}
}

// ProvideNBPFetcher keeps NBP requests uncached: a chunk that ends at yesterday can
// gain rows once the bank publishes a late table.
func ProvideNBPFetcher(cfg config.Config, log *zap.Logger) application.RateFetcher {
	return &provider.NBPFetcher{
		BaseURL: cfg.Rates.BaseURL,
		Table:   cfg.Rates.Table,
		Client:  newHTTPClient(cfg, cfg.Rates.MaxRetries, nil, nil, log),
	}
}

func ProvideWeatherFetcher(cfg config.Config, cache httpx.Cache, log *zap.Logger) application.WeatherFetcher {
	return &provider.OpenMeteoArchive{
		BaseURL: cfg.Weather.BaseURL,
		Client:  newHTTPClient(cfg, cfg.Weather.MaxRetries, httpx.NewBreaker("open-meteo"), cache, log),
	}
}

func ProvidePriceFetcher(cfg config.Config, cache httpx.Cache, log *zap.Logger) application.PriceFetcher {
	return &provider.YahooChart{
		BaseURL: cfg.Market.BaseURL,
		Client:  newHTTPClient(cfg, cfg.Market.MaxRetries, httpx.NewBreaker("yahoo"), cache, log),
	}
}

func ProvideRateSync(cfg config.Config, store application.RateTableStore, fetcher application.RateFetcher, log *zap.Logger) *application.RateSyncService {
	return application.NewRateSyncService(store, fetcher, application.RateSyncOptions{
		Currencies:   cfg.Rates.Currencies,
		DefaultStart: config.Date(cfg.Rates.StartDate),
		ChunkDays:    cfg.Rates.ChunkDays,
		Zone:         zone(cfg),
		Concurrency:  cfg.Rates.Concurrency,
	}, application.WithLogger(log))
}

func ProvideWeatherService(cfg config.Config, fetcher application.WeatherFetcher, writer application.WeatherTableWriter, log *zap.Logger) *application.WeatherService {
	return application.NewWeatherService(fetcher, writer, application.WeatherOptions{
		Locations: cfg.Weather.Locations,
		Start:     config.Date(cfg.Weather.StartDate),
		Zone:      zone(cfg),
	}, application.WithLogger(log))
}

func ProvideMarketService(cfg config.Config, fetcher application.PriceFetcher, writer application.PriceTableWriter, log *zap.Logger) *application.MarketService {
	return application.NewMarketService(fetcher, writer, application.MarketOptions{
		Instruments: cfg.Market.Instruments,
		Start:       config.Date(cfg.Market.StartDate),
		Zone:        zone(cfg),
	}, application.WithLogger(log))
}

func ProvideRateSyncApp(svc *application.RateSyncService) App {
	return func(ctx context.Context, m *metrics.Metrics) (Outcome, error) {
		started := time.Now()
		res, err := svc.Sync(ctx)
		m.ObserveRateSync(res, err, time.Since(started), time.Now())
		return Outcome{Partial: res.Partial(), AllFailed: res.AllFailed()}, err
	}
}

func ProvideWeatherApp(svc *application.WeatherService) App {
	return func(ctx context.Context, m *metrics.Metrics) (Outcome, error) {
		started := time.Now()
		res, err := svc.Run(ctx)
		m.ObserveRun(res, err, time.Since(started), time.Now())
		return Outcome{Partial: res.Partial(), AllFailed: res.AllFailed()}, err
	}
}

func ProvideMarketApp(svc *application.MarketService) App {
	return func(ctx context.Context, m *metrics.Metrics) (Outcome, error) {
		started := time.Now()
		res, err := svc.Run(ctx)
		m.ObserveRun(res, err, time.Since(started), time.Now())
		return Outcome{Partial: res.Partial(), AllFailed: res.AllFailed()}, err
	}
}
