package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"fxrates-etl/internal/domain"
)

var (
	errNetwork = errors.New("connection reset")
	errDisk    = errors.New("disk full")
)

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeRateStore struct {
	mu      sync.Mutex
	table   domain.RateTable
	found   bool
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeRateStore) Load(context.Context) (domain.RateTable, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, false, f.loadErr
	}
	return append(domain.RateTable(nil), f.table...), f.found, nil
}

func (f *fakeRateStore) Save(_ context.Context, t domain.RateTable) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.table = append(domain.RateTable(nil), t...)
	f.found = true
	f.saves++
	return nil
}

type fetchCall struct {
	Currency string
	Chunk    domain.DateChunk
}

// fakeRateFetcher answers every day of a chunk with a rate derived from the currency,
// unless respond or fail override it.
type fakeRateFetcher struct {
	mu      sync.Mutex
	calls   []fetchCall
	fail    map[fetchCall]error
	respond func(currency string, chunk domain.DateChunk) []domain.RawRate
}

func (f *fakeRateFetcher) FetchRates(_ context.Context, currency string, chunk domain.DateChunk) ([]domain.RawRate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := fetchCall{Currency: currency, Chunk: chunk}
	f.calls = append(f.calls, call)
	if err, ok := f.fail[call]; ok {
		return nil, err
	}
	if f.respond != nil {
		return f.respond(currency, chunk), nil
	}
	var out []domain.RawRate
	for d := chunk.Start; !d.After(chunk.End); d = domain.AddDays(d, 1) {
		out = append(out, domain.RawRate{EffectiveDate: domain.FormatDate(d), Mid: baseRate(currency)})
	}
	return out, nil
}

func baseRate(currency string) float64 {
	switch currency {
	case "EUR":
		return 4.3
	case "USD":
		return 4.0
	default:
		return 5.0
	}
}

type fakeWeatherFetcher struct {
	days map[string][]domain.DailyTemperature
	fail map[string]error
}

func (f *fakeWeatherFetcher) FetchDailyTemperatures(_ context.Context, loc domain.Location, _, _ time.Time) ([]domain.DailyTemperature, error) {
	if err := f.fail[loc.Name]; err != nil {
		return nil, err
	}
	return f.days[loc.Name], nil
}

type fakePriceFetcher struct {
	closes map[string][]domain.DailyClose
	fail   map[string]error
	from   time.Time
	to     time.Time
}

func (f *fakePriceFetcher) FetchDailyCloses(_ context.Context, symbol string, from, to time.Time) ([]domain.DailyClose, error) {
	f.from, f.to = from, to
	if err := f.fail[symbol]; err != nil {
		return nil, err
	}
	return f.closes[symbol], nil
}

type fakeTableWriter struct {
	weather []domain.WeatherObservation
	prices  []domain.PriceObservation
	err     error
	saves   int
}

func (f *fakeTableWriter) SaveWeather(_ context.Context, rows []domain.WeatherObservation) error {
	if f.err != nil {
		return f.err
	}
	f.weather = rows
	f.saves++
	return nil
}

func (f *fakeTableWriter) SavePrices(_ context.Context, rows []domain.PriceObservation) error {
	if f.err != nil {
		return f.err
	}
	f.prices = rows
	f.saves++
	return nil
}

func ptr(v float64) *float64 { return &v }
