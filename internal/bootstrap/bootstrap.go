package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fxrates-etl/internal/config"
	"fxrates-etl/internal/infrastructure/logx"
	"fxrates-etl/internal/infrastructure/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	JobRates   = "nbp-rates"
	JobWeather = "weather-archive"
	JobMarket  = "market-prices"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFatal   = 1
	ExitPartial = 2
)

// Outcome is what a finished run reports back to the process.
type Outcome struct {
	Partial   bool
	AllFailed bool
}

// App executes one job run and records it on m.
type App func(ctx context.Context, m *metrics.Metrics) (Outcome, error)

// Injector builds the App of one job together with its cleanup.
type Injector func(ctx context.Context, cfg config.Config, log *zap.Logger) (App, func(), error)

func ExitCode(o Outcome, err error) int {
	switch {
	case err != nil, o.AllFailed:
		return ExitFatal
	case o.Partial:
		return ExitPartial
	default:
		return ExitOK
	}
}

// Main loads the config, runs the job built by init until it finishes or the process
// is interrupted, flushes metrics and returns the exit code.
func Main(job string, init Injector) int {
	cfg, err := config.Load()
	if err != nil {
		logx.L().Error("config.invalid", zap.String("job", job), zap.Error(err))
		return ExitFatal
	}
	logx.SetLevel(cfg.LogLevel)
	log := logx.ForRun(job, uuid.NewString())
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := init(ctx, cfg, log)
	if err != nil {
		log.Error("run.init_failed", zap.Error(err))
		return ExitFatal
	}
	defer cleanup()

	m := metrics.New(job)
	started := time.Now()
	log.Info("run.started", zap.String("env", cfg.Env), zap.String("output_dir", cfg.OutputDir))

	out, err := app(ctx, m)
	code := ExitCode(out, err)
	if ferr := m.Flush(cfg.MetricsTextfile); ferr != nil {
		log.Warn("metrics.flush_failed", zap.String("path", cfg.MetricsTextfile), zap.Error(ferr))
	}

	fields := []zap.Field{
		zap.Int("exit_code", code),
		zap.Bool("partial", out.Partial),
		zap.Duration("took", time.Since(started)),
	}
	if err != nil {
		log.Error("run.failed", append(fields, zap.Error(err))...)
		return code
	}
	log.Info("run.finished", fields...)
	return code
}
