package domain

import "time"

// Instrument maps a quote symbol to the name written to the output table.
type Instrument struct {
	Symbol string `yaml:"symbol" json:"symbol" validate:"required"`
	Name   string `yaml:"name" json:"name" validate:"required"`
}

// PriceObservation is one daily close in long format.
type PriceObservation struct {
	Date       time.Time
	Instrument string
	Price      float64
}

// DailyClose is a close price for a trading day; Close is nil on market holidays.
type DailyClose struct {
	Date  time.Time
	Close *float64
}
