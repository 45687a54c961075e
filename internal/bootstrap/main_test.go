package bootstrap_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fxrates-etl/internal/bootstrap"
	"fxrates-etl/internal/domain"
	"fxrates-etl/internal/infrastructure/parquetstore"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// upstream emulates the three APIs; every calendar day has data.
type upstream struct {
	requests   atomic.Int64
	failSymbol string
}

func (u *upstream) router(t *testing.T) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u.requests.Add(1)
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/api/exchangerates/rates/{table}/{code}/{start}/{end}/", func(w http.ResponseWriter, r *http.Request) {
		from, to := mustDay(t, chi.URLParam(r, "start")), mustDay(t, chi.URLParam(r, "end"))
		var items []string
		for d := from; !d.After(to); d = domain.AddDays(d, 1) {
			items = append(items, fmt.Sprintf(`{"no":"x","effectiveDate":%q,"mid":4.25}`, domain.FormatDate(d)))
		}
		fmt.Fprintf(w, `{"table":"A","currency":"c","code":%q,"rates":[%s]}`,
			chi.URLParam(r, "code"), strings.Join(items, ","))
	})
	r.Get("/v1/archive", func(w http.ResponseWriter, r *http.Request) {
		from, to := mustDay(t, r.URL.Query().Get("start_date")), mustDay(t, r.URL.Query().Get("end_date"))
		var days, temps []string
		for d := from; !d.After(to); d = domain.AddDays(d, 1) {
			days = append(days, strconv.Quote(domain.FormatDate(d)))
			temps = append(temps, "10.5")
		}
		fmt.Fprintf(w, `{"daily":{"time":[%s],"temperature_2m_mean":[%s]}}`,
			strings.Join(days, ","), strings.Join(temps, ","))
	})
	r.Get("/v8/finance/chart/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "symbol") == u.failSymbol {
			http.Error(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, http.StatusNotFound)
			return
		}
		p1, _ := strconv.ParseInt(r.URL.Query().Get("period1"), 10, 64)
		p2, _ := strconv.ParseInt(r.URL.Query().Get("period2"), 10, 64)
		var ts, closes []string
		for s := p1; s < p2; s += 24 * 60 * 60 {
			ts = append(ts, strconv.FormatInt(s+15*60*60, 10))
			closes = append(closes, "100.5")
		}
		fmt.Fprintf(w, `{"chart":{"result":[{"meta":{"gmtoffset":0},"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`,
			strings.Join(ts, ","), strings.Join(closes, ","))
	})
	return r
}

func mustDay(t *testing.T, s string) time.Time {
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func setupEnv(t *testing.T, u *upstream) (outDir, metricsPath string) {
	t.Helper()
	srv := httptest.NewServer(u.router(t))
	t.Cleanup(srv.Close)

	outDir = t.TempDir()
	metricsPath = filepath.Join(t.TempDir(), "etl.prom")
	start := domain.FormatDate(domain.AddDays(domain.Day(time.Now().UTC()), -14))
	for k, v := range map[string]string{
		"CONFIG_FILE":         "",
		"LOG_LEVEL":           "error",
		"OUTPUT_DIR":          outDir,
		"RUN_TIMEZONE":        "UTC",
		"METRICS_TEXTFILE":    metricsPath,
		"STORAGE":             "parquet",
		"CACHE_BACKEND":       "none",
		"NBP_API_BASE":        srv.URL,
		"NBP_START_DATE":      start,
		"NBP_CURRENCIES":      "eur,usd,gbp",
		"OPEN_METEO_API_BASE": srv.URL,
		"WEATHER_START_DATE":  start,
		"YAHOO_API_BASE":      srv.URL,
		"MARKET_START_DATE":   start,
	} {
		t.Setenv(k, v)
	}
	return outDir, metricsPath
}

func TestRun_RateSync(t *testing.T) {
	u := &upstream{}
	outDir, metricsPath := setupEnv(t, u)

	require.Equal(t, bootstrap.ExitOK, bootstrap.Main(bootstrap.JobRates, bootstrap.InitRateSyncApp))

	table, found, err := parquetstore.NewRateTableFile(filepath.Join(outDir, "nbp_rates.parquet")).Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, table, 3*14)
	wm, _ := table.Watermark()
	require.Equal(t, domain.AddDays(domain.Day(time.Now().UTC()), -1), wm)

	raw, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.Contains(t, string(raw), `etl_run_status{job="nbp-rates",status="saved"} 1`)

	// the second run finds the table current and issues no requests
	before := u.requests.Load()
	require.Equal(t, bootstrap.ExitOK, bootstrap.Main(bootstrap.JobRates, bootstrap.InitRateSyncApp))
	require.Equal(t, before, u.requests.Load())
}

func TestRun_InvalidConfig(t *testing.T) {
	setupEnv(t, &upstream{})
	t.Setenv("NBP_CHUNK_DAYS", "200")
	require.Equal(t, bootstrap.ExitFatal, bootstrap.Main(bootstrap.JobRates, bootstrap.InitRateSyncApp))
}

func TestRun_Weather(t *testing.T) {
	outDir, _ := setupEnv(t, &upstream{})
	require.Equal(t, bootstrap.ExitOK, bootstrap.Main(bootstrap.JobWeather, bootstrap.InitWeatherApp))

	rows, err := (&parquetstore.WeatherFile{Path: filepath.Join(outDir, "weather_data.parquet")}).LoadWeather()
	require.NoError(t, err)
	// three default cities, start through today
	require.Len(t, rows, 3*15)
	require.InDelta(t, 5.0, rows[0].HDD, 1e-9)
}

func TestRun_MarketPartial(t *testing.T) {
	u := &upstream{failSymbol: "GC=F"}
	outDir, _ := setupEnv(t, u)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
market:
  instruments:
    - {symbol: "EURPLN=X", name: EUR_PLN}
    - {symbol: "GC=F", name: Gold}
`), 0o644))
	t.Setenv("CONFIG_FILE", cfgPath)

	require.Equal(t, bootstrap.ExitPartial, bootstrap.Main(bootstrap.JobMarket, bootstrap.InitMarketApp))

	rows, err := (&parquetstore.PriceFile{Path: filepath.Join(outDir, "financial_data_long.parquet")}).LoadPrices()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	for _, r := range rows {
		require.Equal(t, "EUR_PLN", r.Instrument)
	}
}
