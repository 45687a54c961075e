package logx

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
)

func init() {
	logger = New(os.Getenv("LOG_LEVEL"))
}

// New builds a JSON production logger at the given level (info when empty or unknown).
func New(level string) *zap.Logger {
	zapCfg := zap.NewProductionConfig()
	zapCfg.Sampling = nil
	zapCfg.DisableStacktrace = true
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level != "" {
		_ = zapCfg.Level.UnmarshalText([]byte(strings.ToLower(level)))
	}

	l, err := zapCfg.Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
	return l
}

// L returns the package-level logger instance.
func L() *zap.Logger {
	return logger
}

// SetLevel rebuilds the package-level logger once the config has been loaded.
func SetLevel(level string) {
	logger = New(level)
}

// ForRun tags every entry of one job run with the job name and run id.
func ForRun(job, runID string) *zap.Logger {
	return logger.With(zap.String("job", job), zap.String("run_id", runID))
}
