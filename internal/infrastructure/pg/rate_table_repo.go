package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fxrates-etl/internal/application"
	"fxrates-etl/internal/domain"

	"github.com/jackc/pgx/v5"
)

// RateTableRepo keeps the rate table in the nbp_rates relation. Save replaces the
// whole table in a single transaction.
type RateTableRepo struct {
	db  *DB
	uow *UnitOfWork
}

var _ application.RateTableStore = (*RateTableRepo)(nil)

func NewRateTableRepo(db *DB) *RateTableRepo {
	return &RateTableRepo{db: db, uow: &UnitOfWork{Pool: db.Pool}}
}

func (r *RateTableRepo) Load(ctx context.Context) (domain.RateTable, bool, error) {
	const q = `SELECT currency_code, rate_date, rate FROM nbp_rates ORDER BY currency_code, rate_date`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, false, fmt.Errorf("query nbp_rates: %w", err)
	}
	var out domain.RateTable
	for rows.Next() {
		var (
			rec  domain.RateRecord
			date time.Time
		)
		if err := rows.Scan(&rec.CurrencyCode, &date, &rec.Rate); err != nil {
			rows.Close()
			return nil, false, fmt.Errorf("scan nbp_rates: %w", err)
		}
		rec.RateDate = domain.Day(date)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("read nbp_rates: %w", err)
	}
	return out, len(out) > 0, nil
}

func (r *RateTableRepo) Save(ctx context.Context, table domain.RateTable) error {
	return r.uow.Do(ctx, func(ctx context.Context) error {
		tx := txFromCtx(ctx)
		if tx == nil {
			return errors.New("pg: save outside transaction")
		}
		if _, err := tx.Exec(ctx, `TRUNCATE nbp_rates`); err != nil {
			return fmt.Errorf("truncate nbp_rates: %w", err)
		}
		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"nbp_rates"},
			[]string{"currency_code", "rate_date", "rate"},
			pgx.CopyFromSlice(len(table), func(i int) ([]any, error) {
				rec := table[i]
				return []any{rec.CurrencyCode, rec.RateDate, rec.Rate}, nil
			}),
		)
		if err != nil {
			return fmt.Errorf("copy nbp_rates: %w", err)
		}
		if int(n) != len(table) {
			return fmt.Errorf("copy nbp_rates: wrote %d of %d rows", n, len(table))
		}
		return nil
	})
}
