package application

import (
	"context"
	"time"

	"fxrates-etl/internal/domain"

	"go.uber.org/zap"
)

type WeatherOptions struct {
	Locations []domain.Location
	Start     time.Time
	Zone      *time.Location
}

// RunResult summarizes a one-shot fetch and save job.
type RunResult struct {
	Status    Status
	From      time.Time
	To        time.Time
	Rows      int
	Attempted int
	Failures  []*ItemError
}

func (r RunResult) Partial() bool { return len(r.Failures) > 0 }

func (r RunResult) AllFailed() bool { return r.Attempted > 0 && len(r.Failures) == r.Attempted }

// WeatherService rebuilds the daily temperature table from the configured start to today.
type WeatherService struct {
	base
	fetcher WeatherFetcher
	writer  WeatherTableWriter
	opts    WeatherOptions
}

func NewWeatherService(fetcher WeatherFetcher, writer WeatherTableWriter, opts WeatherOptions, o ...Option) *WeatherService {
	if opts.Zone == nil {
		opts.Zone = time.UTC
	}
	opts.Start = domain.Day(opts.Start)
	return &WeatherService{base: newBase(o), fetcher: fetcher, writer: writer, opts: opts}
}

func (s *WeatherService) Run(ctx context.Context) (RunResult, error) {
	res := RunResult{From: s.opts.Start, To: domain.DayIn(s.clock.Now(), s.opts.Zone)}
	s.log.Info("weather.fetch_started",
		zap.String("from", domain.FormatDate(res.From)),
		zap.String("to", domain.FormatDate(res.To)),
		zap.Int("locations", len(s.opts.Locations)),
	)

	var rows []domain.WeatherObservation
	for _, loc := range s.opts.Locations {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempted++
		days, err := s.fetcher.FetchDailyTemperatures(ctx, loc, res.From, res.To)
		if err != nil {
			ierr := &ItemError{Item: loc.Name, Err: err}
			res.Failures = append(res.Failures, ierr)
			s.log.Warn("weather.location_failed", zap.String("city", loc.Name), zap.Error(err))
			continue
		}
		n := 0
		for _, day := range days {
			if day.MeanC == nil {
				continue
			}
			rows = append(rows, domain.WeatherObservation{
				Date:      domain.Day(day.Date),
				City:      loc.Name,
				TempMeanC: *day.MeanC,
				HDD:       domain.HeatingDegreeDays(*day.MeanC),
			})
			n++
		}
		s.log.Info("weather.location_fetched", zap.String("city", loc.Name), zap.Int("rows", n))
	}

	if len(rows) == 0 {
		res.Status = StatusNoNewData
		s.log.Info("weather.no_data")
		return res, nil
	}
	if err := s.writer.SaveWeather(ctx, rows); err != nil {
		perr := &PersistenceError{Op: "save weather table", Err: err}
		s.log.Error("weather.save_failed", zap.Error(perr), zap.Bool("locked", perr.Locked()))
		return res, perr
	}
	res.Rows = len(rows)
	res.Status = StatusSaved
	s.log.Info("weather.saved", zap.Int("rows", res.Rows), zap.Int("failed_locations", len(res.Failures)))
	return res, nil
}
