package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire and display format of a civil date.
const DateLayout = "2006-01-02"

// Day returns the civil date of t in its own location, as 00:00 UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayIn returns the civil date of t as observed in loc.
func DayIn(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(t.In(loc))
}

func AddDays(d time.Time, n int) time.Time { return d.AddDate(0, 0, n) }

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func FormatDate(d time.Time) string { return d.Format(DateLayout) }

const secondsPerDay = 24 * 60 * 60

// EpochDays is the number of days since 1970-01-01, the Parquet DATE encoding.
func EpochDays(d time.Time) int32 {
	return int32(Day(d).Unix() / secondsPerDay)
}

func FromEpochDays(n int32) time.Time {
	return time.Unix(int64(n)*secondsPerDay, 0).UTC()
}
