package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"fxrates-etl/internal/domain"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Common
	Env             string        `yaml:"env" default:"local"`
	LogLevel        string        `yaml:"log_level" default:"info" validate:"oneof=debug info warn error"`
	OutputDir       string        `yaml:"output_dir" default:"data" validate:"required"`
	RunTimezone     string        `yaml:"run_timezone" default:"UTC" validate:"required"`
	HTTPTimeout     time.Duration `yaml:"http_timeout" default:"10s" validate:"gt=0"`
	MetricsTextfile string        `yaml:"metrics_textfile"`
	// Storage of the rate table
	Storage     string `yaml:"storage" default:"parquet" validate:"oneof=parquet pg"`
	DatabaseURL string `yaml:"database_url" validate:"required_if=Storage pg"`

	Cache   CacheConfig   `yaml:"cache"`
	Rates   RatesConfig   `yaml:"rates"`
	Weather WeatherConfig `yaml:"weather"`
	Market  MarketConfig  `yaml:"market"`
}

// CacheConfig controls the HTTP response cache in front of the archive APIs.
type CacheConfig struct {
	Backend       string        `yaml:"backend" default:"none" validate:"oneof=none redis"`
	RedisAddr     string        `yaml:"redis_addr" default:"localhost:6379"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	TTL           time.Duration `yaml:"ttl" default:"1h" validate:"gt=0"`
}

type RatesConfig struct {
	BaseURL     string   `yaml:"base_url" default:"https://api.nbp.pl" validate:"url"`
	Table       string   `yaml:"table" default:"A" validate:"oneof=A B"`
	Currencies  []string `yaml:"currencies" default:"[\"EUR\",\"USD\",\"GBP\"]" validate:"min=1,dive,len=3"`
	StartDate   string   `yaml:"start_date" default:"2024-01-01" validate:"datetime=2006-01-02"`
	ChunkDays   int      `yaml:"chunk_days" default:"93" validate:"min=1,max=93"`
	File        string   `yaml:"file" default:"nbp_rates.parquet" validate:"required"`
	MaxRetries  int      `yaml:"max_retries" validate:"min=0,max=10"`
	Concurrency int      `yaml:"concurrency" default:"1" validate:"min=1,max=16"`
}

type WeatherConfig struct {
	BaseURL    string            `yaml:"base_url" default:"https://archive-api.open-meteo.com" validate:"url"`
	StartDate  string            `yaml:"start_date" default:"2024-01-01" validate:"datetime=2006-01-02"`
	File       string            `yaml:"file" default:"weather_data.parquet" validate:"required"`
	MaxRetries int               `yaml:"max_retries" default:"5" validate:"min=0,max=10"`
	Locations  []domain.Location `yaml:"locations" default:"[{\"name\":\"Frankfurt\",\"lat\":50.11,\"lon\":8.68},{\"name\":\"Chicago\",\"lat\":41.85,\"lon\":-87.65},{\"name\":\"Warszawa\",\"lat\":52.23,\"lon\":21.01}]" validate:"min=1,dive"`
}

type MarketConfig struct {
	BaseURL     string              `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"url"`
	StartDate   string              `yaml:"start_date" default:"2024-01-01" validate:"datetime=2006-01-02"`
	File        string              `yaml:"file" default:"financial_data_long.parquet" validate:"required"`
	MaxRetries  int                 `yaml:"max_retries" default:"3" validate:"min=0,max=10"`
	Instruments []domain.Instrument `yaml:"instruments" default:"[{\"symbol\":\"EURPLN=X\",\"name\":\"EUR_PLN\"},{\"symbol\":\"USDPLN=X\",\"name\":\"USD_PLN\"},{\"symbol\":\"CHFPLN=X\",\"name\":\"CHF_PLN\"},{\"symbol\":\"BZ=F\",\"name\":\"Oil_Brent\"},{\"symbol\":\"CL=F\",\"name\":\"Oil_WTI\"},{\"symbol\":\"NG=F\",\"name\":\"Natural_Gas\"},{\"symbol\":\"GC=F\",\"name\":\"Gold\"},{\"symbol\":\"HG=F\",\"name\":\"Copper\"}]" validate:"min=1,dive"`
}

var ErrInvalidConfig = errors.New("invalid config")

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func msDef(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return time.Duration(atoiDef(v, int(def/time.Millisecond))) * time.Millisecond
}

func listDef(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	return out
}

// Load builds the config from the optional CONFIG_FILE, struct defaults and environment
// variables, in increasing order of precedence, and validates the result.
func Load() (Config, error) {
	var cfg Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := defaults.Set(&cfg); err != nil {
		return Config{}, fmt.Errorf("apply defaults: %w", err)
	}
	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := cfg.Zone(); err != nil {
		return Config{}, fmt.Errorf("%w: RUN_TIMEZONE: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.OutputDir = getEnv("OUTPUT_DIR", cfg.OutputDir)
	cfg.RunTimezone = getEnv("RUN_TIMEZONE", cfg.RunTimezone)
	cfg.HTTPTimeout = msDef("HTTP_TIMEOUT_MS", cfg.HTTPTimeout)
	cfg.MetricsTextfile = getEnv("METRICS_TEXTFILE", cfg.MetricsTextfile)
	cfg.Storage = getEnv("STORAGE", cfg.Storage)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)

	cfg.Cache.Backend = getEnv("CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.RedisAddr = getEnv("REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.RedisPassword = getEnv("REDIS_PASSWORD", cfg.Cache.RedisPassword)
	cfg.Cache.RedisDB = atoiDef(getEnv("REDIS_DB", strconv.Itoa(cfg.Cache.RedisDB)), cfg.Cache.RedisDB)
	cfg.Cache.TTL = msDef("CACHE_TTL_MS", cfg.Cache.TTL)

	cfg.Rates.BaseURL = getEnv("NBP_API_BASE", cfg.Rates.BaseURL)
	cfg.Rates.Table = getEnv("NBP_TABLE", cfg.Rates.Table)
	cfg.Rates.Currencies = listDef("NBP_CURRENCIES", cfg.Rates.Currencies)
	cfg.Rates.StartDate = getEnv("NBP_START_DATE", cfg.Rates.StartDate)
	cfg.Rates.ChunkDays = atoiDef(getEnv("NBP_CHUNK_DAYS", strconv.Itoa(cfg.Rates.ChunkDays)), cfg.Rates.ChunkDays)
	cfg.Rates.File = getEnv("NBP_FILE", cfg.Rates.File)
	cfg.Rates.MaxRetries = atoiDef(getEnv("NBP_MAX_RETRIES", strconv.Itoa(cfg.Rates.MaxRetries)), cfg.Rates.MaxRetries)
	cfg.Rates.Concurrency = atoiDef(getEnv("NBP_FETCH_CONCURRENCY", strconv.Itoa(cfg.Rates.Concurrency)), cfg.Rates.Concurrency)

	cfg.Weather.BaseURL = getEnv("OPEN_METEO_API_BASE", cfg.Weather.BaseURL)
	cfg.Weather.StartDate = getEnv("WEATHER_START_DATE", cfg.Weather.StartDate)
	cfg.Weather.File = getEnv("WEATHER_FILE", cfg.Weather.File)

	cfg.Market.BaseURL = getEnv("YAHOO_API_BASE", cfg.Market.BaseURL)
	cfg.Market.StartDate = getEnv("MARKET_START_DATE", cfg.Market.StartDate)
	cfg.Market.File = getEnv("MARKET_FILE", cfg.Market.File)
}

// Zone returns the location whose calendar decides "today" for a run.
func (c Config) Zone() (*time.Location, error) {
	return time.LoadLocation(c.RunTimezone)
}

// Date parses one of the validated YYYY-MM-DD start dates.
func Date(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return t
}
