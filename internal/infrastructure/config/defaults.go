package config

import "time"

const (
	DefaultHTTPTimeout     = 10 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRetryInitial    = 200 * time.Millisecond
	DefaultRetryMax        = 5 * time.Second
	DefaultPGMaxConns      = 2
	DefaultPGMinConns      = 1
	DefaultUserAgent       = "fxrates-etl/1.0"
)
