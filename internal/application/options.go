package application

import "go.uber.org/zap"

type base struct {
	clock Clock
	log   *zap.Logger
}

type Option func(*base)

func WithClock(c Clock) Option        { return func(b *base) { b.clock = c } }
func WithLogger(l *zap.Logger) Option { return func(b *base) { b.log = l } }

func newBase(opts []Option) base {
	var b base
	for _, opt := range opts {
		opt(&b)
	}
	if b.clock == nil {
		b.clock = realClock{}
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	return b
}

// Status is the outcome of a run that did not fail outright.
type Status string

const (
	StatusUpToDate  Status = "up_to_date"
	StatusNoNewData Status = "no_new_data"
	StatusSaved     Status = "saved"
)
