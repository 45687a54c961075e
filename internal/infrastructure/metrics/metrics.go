// Package metrics records the outcome of one job run and writes it in the
// node_exporter textfile format.
package metrics

import (
	"time"

	"fxrates-etl/internal/application"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	reg *prometheus.Registry

	RowsFetched   prometheus.Counter
	FetchFailures prometheus.Counter
	RowsPersisted prometheus.Gauge
	RunDuration   prometheus.Gauge
	LastSuccess   prometheus.Gauge
	RunStatus     *prometheus.GaugeVec
}

// New builds a private registry whose series all carry job as a constant label.
func New(job string) *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	labels := prometheus.Labels{"job": job}

	return &Metrics{
		reg: reg,
		RowsFetched: f.NewCounter(prometheus.CounterOpts{
			Name:        "etl_rows_fetched_total",
			Help:        "Rows received from the upstream API in this run",
			ConstLabels: labels,
		}),
		FetchFailures: f.NewCounter(prometheus.CounterOpts{
			Name:        "etl_fetch_failures_total",
			Help:        "Requests (chunks or items) that failed in this run",
			ConstLabels: labels,
		}),
		RowsPersisted: f.NewGauge(prometheus.GaugeOpts{
			Name:        "etl_rows_persisted",
			Help:        "Rows in the output table after the last save",
			ConstLabels: labels,
		}),
		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Name:        "etl_run_duration_seconds",
			Help:        "Wall time of the run",
			ConstLabels: labels,
		}),
		LastSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name:        "etl_last_success_timestamp_seconds",
			Help:        "Unix time of the last run that finished without a fatal error",
			ConstLabels: labels,
		}),
		RunStatus: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "etl_run_status",
			Help:        "1 for the status the run ended with",
			ConstLabels: labels,
		}, []string{"status"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// ObserveRateSync records a finished rate sync.
func (m *Metrics) ObserveRateSync(res application.SyncResult, err error, took time.Duration, now time.Time) {
	m.RowsFetched.Add(float64(res.Fetched))
	m.FetchFailures.Add(float64(len(res.Failures)))
	if res.Status == application.StatusSaved {
		m.RowsPersisted.Set(float64(res.Total))
	}
	m.finish(string(res.Status), res.Partial(), err, took, now)
}

// ObserveRun records a finished weather or market run.
func (m *Metrics) ObserveRun(res application.RunResult, err error, took time.Duration, now time.Time) {
	m.RowsFetched.Add(float64(res.Rows))
	m.FetchFailures.Add(float64(len(res.Failures)))
	if res.Status == application.StatusSaved {
		m.RowsPersisted.Set(float64(res.Rows))
	}
	m.finish(string(res.Status), res.Partial(), err, took, now)
}

func (m *Metrics) finish(status string, partial bool, err error, took time.Duration, now time.Time) {
	m.RunDuration.Set(took.Seconds())
	switch {
	case err != nil:
		status = "failed"
	case partial:
		status = "partial"
	}
	m.RunStatus.WithLabelValues(status).Set(1)
	if err == nil {
		m.LastSuccess.Set(float64(now.Unix()))
	}
}

// Flush writes all series to path; an empty path disables the export.
func (m *Metrics) Flush(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}
