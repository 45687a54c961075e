package parquetstore

import (
	"context"

	"fxrates-etl/internal/application"
	"fxrates-etl/internal/domain"
)

type rateRow struct {
	CurrencyCode string  `parquet:"currency_code"`
	RateDate     int32   `parquet:"rate_date,date"`
	Rate         float64 `parquet:"rate"`
}

// RateTableFile keeps the NBP rate table in one Parquet file.
type RateTableFile struct {
	Path string
}

var _ application.RateTableStore = (*RateTableFile)(nil)

func NewRateTableFile(path string) *RateTableFile { return &RateTableFile{Path: path} }

func (f *RateTableFile) Load(ctx context.Context) (domain.RateTable, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	rows, found, err := readTable[rateRow](f.Path)
	if err != nil || !found {
		return nil, found, err
	}
	out := make(domain.RateTable, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.RateRecord{
			CurrencyCode: r.CurrencyCode,
			RateDate:     domain.FromEpochDays(r.RateDate),
			Rate:         r.Rate,
		})
	}
	return out, true, nil
}

func (f *RateTableFile) Save(ctx context.Context, table domain.RateTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([]rateRow, 0, len(table))
	for _, r := range table {
		rows = append(rows, rateRow{
			CurrencyCode: r.CurrencyCode,
			RateDate:     domain.EpochDays(r.RateDate),
			Rate:         r.Rate,
		})
	}
	return writeTable(f.Path, rows)
}
