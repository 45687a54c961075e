package domain

import "errors"

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)
