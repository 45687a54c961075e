package application

import (
	"context"
	"errors"
	"time"

	"fxrates-etl/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type RateSyncOptions struct {
	Currencies []string
	// DefaultStart is where fetching begins when nothing is persisted yet.
	DefaultStart time.Time
	ChunkDays    int
	// Zone decides which calendar day "yesterday" is taken from.
	Zone *time.Location
	// Concurrency > 1 fetches independent (currency, chunk) pairs in parallel.
	Concurrency int
}

// FetchPlan is fixed before the first request of a run.
type FetchPlan struct {
	Watermark    time.Time
	HasWatermark bool
	From         time.Time
	To           time.Time
	Currencies   []string
	Chunks       []domain.DateChunk
}

func (p FetchPlan) Empty() bool { return p.From.After(p.To) }

type SyncResult struct {
	Status   Status
	Plan     FetchPlan
	Existing int
	Fetched  int
	Total    int
	// Attempted counts the (currency, chunk) requests issued.
	Attempted int
	Failures  []*FetchError
}

// Partial reports whether some chunks failed and will be retried by the next run.
func (r SyncResult) Partial() bool { return len(r.Failures) > 0 }

// AllFailed reports a run in which every request failed.
func (r SyncResult) AllFailed() bool { return r.Attempted > 0 && len(r.Failures) == r.Attempted }

// RateSyncService extends the persisted rate table up to yesterday.
type RateSyncService struct {
	base
	store   RateTableStore
	fetcher RateFetcher
	opts    RateSyncOptions
}

func NewRateSyncService(store RateTableStore, fetcher RateFetcher, opts RateSyncOptions, o ...Option) *RateSyncService {
	if opts.ChunkDays <= 0 {
		opts.ChunkDays = domain.DefaultChunkDays
	}
	if opts.Zone == nil {
		opts.Zone = time.UTC
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	opts.DefaultStart = domain.Day(opts.DefaultStart)
	return &RateSyncService{
		base:    newBase(o),
		store:   store,
		fetcher: fetcher,
		opts:    opts,
	}
}

// Plan computes the fetch range from the global watermark of existing: the day after
// the latest date of any currency, up to yesterday as of now.
func (s *RateSyncService) Plan(existing domain.RateTable, now time.Time) FetchPlan {
	p := FetchPlan{
		From:       s.opts.DefaultStart,
		To:         domain.AddDays(domain.DayIn(now, s.opts.Zone), -1),
		Currencies: s.opts.Currencies,
	}
	if wm, ok := existing.Watermark(); ok {
		p.Watermark, p.HasWatermark = wm, true
		p.From = domain.AddDays(wm, 1)
	}
	p.Chunks = domain.SplitDateRange(p.From, p.To, s.opts.ChunkDays)
	return p
}

func (s *RateSyncService) Sync(ctx context.Context) (SyncResult, error) {
	existing, found, err := s.store.Load(ctx)
	if err != nil {
		return SyncResult{}, &PersistenceError{Op: "load rate table", Err: err}
	}
	plan := s.Plan(existing, s.clock.Now())
	res := SyncResult{Plan: plan, Existing: len(existing)}

	log := s.log.With(zap.Bool("existing_found", found), zap.Int("existing_rows", len(existing)))
	if plan.HasWatermark {
		log = log.With(zap.String("watermark", domain.FormatDate(plan.Watermark)))
	}
	if plan.Empty() {
		res.Status = StatusUpToDate
		log.Info("rates.up_to_date")
		return res, nil
	}
	log.Info("rates.fetch_started",
		zap.String("from", domain.FormatDate(plan.From)),
		zap.String("to", domain.FormatDate(plan.To)),
		zap.Strings("currencies", plan.Currencies),
		zap.Int("chunks", len(plan.Chunks)),
	)

	var fresh domain.RateTable
	outcomes := s.fetchAll(ctx, plan)
	res.Attempted = len(outcomes)
	for _, o := range outcomes {
		if o.err != nil {
			res.Failures = append(res.Failures, o.err)
			continue
		}
		fresh = append(fresh, o.records...)
	}
	res.Fetched = len(fresh)
	if err := ctx.Err(); err != nil {
		log.Warn("rates.run_abandoned", zap.Error(err))
		return res, err
	}

	if len(fresh) == 0 {
		res.Status = StatusNoNewData
		log.Info("rates.no_new_data", zap.Int("failed_chunks", len(res.Failures)))
		return res, nil
	}

	merged := domain.MergeRates(existing, fresh)
	if err := s.store.Save(ctx, merged); err != nil {
		perr := &PersistenceError{Op: "save rate table", Err: err}
		log.Error("rates.save_failed", zap.Error(perr), zap.Bool("locked", perr.Locked()))
		return res, perr
	}
	res.Total = len(merged)
	res.Status = StatusSaved
	log.Info("rates.saved",
		zap.Int("fetched_rows", res.Fetched),
		zap.Int("total_rows", res.Total),
		zap.Int("failed_chunks", len(res.Failures)),
	)
	return res, nil
}

type chunkTask struct {
	currency string
	chunk    domain.DateChunk
}

type chunkOutcome struct {
	records domain.RateTable
	err     *FetchError
}

// fetchAll returns one outcome per (currency, chunk) in plan order.
func (s *RateSyncService) fetchAll(ctx context.Context, plan FetchPlan) []chunkOutcome {
	var tasks []chunkTask
	for _, c := range plan.Currencies {
		for _, ch := range plan.Chunks {
			tasks = append(tasks, chunkTask{currency: c, chunk: ch})
		}
	}
	out := make([]chunkOutcome, len(tasks))

	if s.opts.Concurrency <= 1 {
		for i, t := range tasks {
			if ctx.Err() != nil {
				out[i] = chunkOutcome{err: &FetchError{Currency: t.currency, Chunk: t.chunk, Err: ctx.Err()}}
				continue
			}
			out[i] = s.fetchOne(ctx, t)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			out[i] = s.fetchOne(ctx, t)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *RateSyncService) fetchOne(ctx context.Context, t chunkTask) chunkOutcome {
	log := s.log.With(
		zap.String("currency", t.currency),
		zap.String("chunk_start", domain.FormatDate(t.chunk.Start)),
		zap.String("chunk_end", domain.FormatDate(t.chunk.End)),
	)
	raws, err := s.fetcher.FetchRates(ctx, t.currency, t.chunk)
	if err != nil {
		var ferr *FetchError
		if !errors.As(err, &ferr) {
			ferr = &FetchError{Currency: t.currency, Chunk: t.chunk, Err: err}
		}
		log.Warn("rates.chunk_failed", zap.Error(ferr))
		return chunkOutcome{err: ferr}
	}

	records := make(domain.RateTable, 0, len(raws))
	for _, r := range raws {
		day, err := domain.ParseDate(r.EffectiveDate)
		if err != nil {
			log.Warn("rates.observation_skipped", zap.Error(err))
			continue
		}
		records = append(records, domain.RateRecord{CurrencyCode: t.currency, RateDate: day, Rate: r.Mid})
	}
	log.Info("rates.chunk_fetched", zap.Int("rows", len(records)))
	return chunkOutcome{records: records}
}
