package application

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"

	"fxrates-etl/internal/domain"
)

// ErrLocked marks a persistence target held by another process.
var ErrLocked = errors.New("target locked by another process")

// FetchError reports a failed request for one currency and chunk.
type FetchError struct {
	Currency string
	Chunk    domain.DateChunk
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Currency, e.Chunk, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ItemError reports a failed fetch for a single weather location or instrument.
type ItemError struct {
	Item string
	Err  error
}

func (e *ItemError) Error() string { return fmt.Sprintf("fetch %s: %v", e.Item, e.Err) }

func (e *ItemError) Unwrap() error { return e.Err }

// PersistenceError is fatal for a run. The previously persisted table is left as it was.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Locked() {
		return fmt.Sprintf("%s: %v (file is open in another program, close it and try again)", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Locked reports whether the target was not writable because something else holds it.
func (e *PersistenceError) Locked() bool {
	return errors.Is(e.Err, ErrLocked) ||
		errors.Is(e.Err, fs.ErrPermission) ||
		errors.Is(e.Err, syscall.EBUSY)
}
