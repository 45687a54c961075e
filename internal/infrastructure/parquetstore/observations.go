package parquetstore

import (
	"context"

	"fxrates-etl/internal/application"
	"fxrates-etl/internal/domain"
)

type weatherRow struct {
	Date      int32   `parquet:"Date,date"`
	City      string  `parquet:"City"`
	TempMeanC float64 `parquet:"Temp_Mean_C"`
	HDD       float64 `parquet:"HDD"`
}

type priceRow struct {
	Date       int32   `parquet:"Date,date"`
	Instrument string  `parquet:"Instrument"`
	Price      float64 `parquet:"Price"`
}

// WeatherFile overwrites the weather table on every save.
type WeatherFile struct {
	Path string
}

var _ application.WeatherTableWriter = (*WeatherFile)(nil)

func (f *WeatherFile) SaveWeather(ctx context.Context, obs []domain.WeatherObservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([]weatherRow, 0, len(obs))
	for _, o := range obs {
		rows = append(rows, weatherRow{
			Date:      domain.EpochDays(o.Date),
			City:      o.City,
			TempMeanC: o.TempMeanC,
			HDD:       o.HDD,
		})
	}
	return writeTable(f.Path, rows)
}

// LoadWeather reads back what SaveWeather wrote.
func (f *WeatherFile) LoadWeather() ([]domain.WeatherObservation, error) {
	rows, _, err := readTable[weatherRow](f.Path)
	if err != nil {
		return nil, err
	}
	out := make([]domain.WeatherObservation, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.WeatherObservation{
			Date:      domain.FromEpochDays(r.Date),
			City:      r.City,
			TempMeanC: r.TempMeanC,
			HDD:       r.HDD,
		})
	}
	return out, nil
}

// PriceFile overwrites the long-format price table on every save.
type PriceFile struct {
	Path string
}

var _ application.PriceTableWriter = (*PriceFile)(nil)

func (f *PriceFile) SavePrices(ctx context.Context, obs []domain.PriceObservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([]priceRow, 0, len(obs))
	for _, o := range obs {
		rows = append(rows, priceRow{
			Date:       domain.EpochDays(o.Date),
			Instrument: o.Instrument,
			Price:      o.Price,
		})
	}
	return writeTable(f.Path, rows)
}

func (f *PriceFile) LoadPrices() ([]domain.PriceObservation, error) {
	rows, _, err := readTable[priceRow](f.Path)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PriceObservation, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.PriceObservation{
			Date:       domain.FromEpochDays(r.Date),
			Instrument: r.Instrument,
			Price:      r.Price,
		})
	}
	return out, nil
}
