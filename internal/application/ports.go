package application

import (
	"context"
	"time"

	"fxrates-etl/internal/domain"
)

// RateFetcher retrieves mid rates for one currency over one chunk. Implementations
// issue a single request per call and report failures as *FetchError.
type RateFetcher interface {
	FetchRates(ctx context.Context, currency string, chunk domain.DateChunk) ([]domain.RawRate, error)
}

// RateTableStore loads and replaces the persisted rate table as a whole.
// Save must leave the previous table intact when it fails.
type RateTableStore interface {
	// Load returns found=false when nothing has been persisted yet.
	Load(ctx context.Context) (table domain.RateTable, found bool, err error)
	Save(ctx context.Context, table domain.RateTable) error
}

type WeatherFetcher interface {
	FetchDailyTemperatures(ctx context.Context, loc domain.Location, from, to time.Time) ([]domain.DailyTemperature, error)
}

type PriceFetcher interface {
	FetchDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]domain.DailyClose, error)
}

type WeatherTableWriter interface {
	SaveWeather(ctx context.Context, rows []domain.WeatherObservation) error
}

type PriceTableWriter interface {
	SavePrices(ctx context.Context, rows []domain.PriceObservation) error
}
