package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HDDBaseTemperatureC is the mean daily temperature below which heating is needed.
var HDDBaseTemperatureC = decimal.RequireFromString("15.5")

// Location is a named place tracked by the weather archive job.
type Location struct {
	Name string  `yaml:"name" json:"name" validate:"required"`
	Lat  float64 `yaml:"lat" json:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `yaml:"lon" json:"lon" validate:"gte=-180,lte=180"`
}

// WeatherObservation is one daily row of the weather table.
type WeatherObservation struct {
	Date      time.Time
	City      string
	TempMeanC float64
	HDD       float64
}

// HeatingDegreeDays returns max(0, 15.5 - meanC).
func HeatingDegreeDays(meanC float64) float64 {
	hdd := HDDBaseTemperatureC.Sub(decimal.NewFromFloat(meanC))
	if hdd.IsNegative() {
		return 0
	}
	return hdd.InexactFloat64()
}

// DailyTemperature is a daily mean reported by the archive; MeanC is nil when the
// archive has no value for the day.
type DailyTemperature struct {
	Date  time.Time
	MeanC *float64
}
