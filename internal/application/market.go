package application

import (
	"context"
	"time"

	"fxrates-etl/internal/domain"

	"go.uber.org/zap"
)

type MarketOptions struct {
	Instruments []domain.Instrument
	Start       time.Time
	Zone        *time.Location
}

// MarketService rebuilds the long-format close price table.
type MarketService struct {
	base
	fetcher PriceFetcher
	writer  PriceTableWriter
	opts    MarketOptions
}

func NewMarketService(fetcher PriceFetcher, writer PriceTableWriter, opts MarketOptions, o ...Option) *MarketService {
	if opts.Zone == nil {
		opts.Zone = time.UTC
	}
	opts.Start = domain.Day(opts.Start)
	return &MarketService{base: newBase(o), fetcher: fetcher, writer: writer, opts: opts}
}

func (s *MarketService) Run(ctx context.Context) (RunResult, error) {
	res := RunResult{From: s.opts.Start, To: domain.DayIn(s.clock.Now(), s.opts.Zone)}
	s.log.Info("market.fetch_started",
		zap.String("from", domain.FormatDate(res.From)),
		zap.String("to", domain.FormatDate(res.To)),
		zap.Int("instruments", len(s.opts.Instruments)),
	)

	var rows []domain.PriceObservation
	for _, inst := range s.opts.Instruments {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempted++
		closes, err := s.fetcher.FetchDailyCloses(ctx, inst.Symbol, res.From, res.To)
		if err != nil {
			res.Failures = append(res.Failures, &ItemError{Item: inst.Symbol, Err: err})
			s.log.Warn("market.instrument_failed", zap.String("symbol", inst.Symbol), zap.Error(err))
			continue
		}
		n := 0
		for _, c := range closes {
			if c.Close == nil {
				continue
			}
			rows = append(rows, domain.PriceObservation{
				Date:       domain.Day(c.Date),
				Instrument: inst.Name,
				Price:      *c.Close,
			})
			n++
		}
		s.log.Info("market.instrument_fetched", zap.String("symbol", inst.Symbol), zap.String("name", inst.Name), zap.Int("rows", n))
	}

	if len(rows) == 0 {
		res.Status = StatusNoNewData
		s.log.Info("market.no_data")
		return res, nil
	}
	if err := s.writer.SavePrices(ctx, rows); err != nil {
		perr := &PersistenceError{Op: "save price table", Err: err}
		s.log.Error("market.save_failed", zap.Error(perr), zap.Bool("locked", perr.Locked()))
		return res, perr
	}
	res.Rows = len(rows)
	res.Status = StatusSaved
	s.log.Info("market.saved", zap.Int("rows", res.Rows), zap.Int("failed_instruments", len(res.Failures)))
	return res, nil
}
