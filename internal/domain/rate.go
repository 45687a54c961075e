package domain

import (
	"sort"
	"time"
)

// RateRecord is one mid-market observation for a currency on a date.
type RateRecord struct {
	CurrencyCode string
	RateDate     time.Time
	Rate         float64
}

// RateKey identifies a record; a table holds at most one record per key.
type RateKey struct {
	CurrencyCode string
	RateDate     time.Time
}

func (r RateRecord) Key() RateKey {
	return RateKey{CurrencyCode: r.CurrencyCode, RateDate: Day(r.RateDate)}
}

// RawRate is an observation as the rate service reports it.
type RawRate struct {
	EffectiveDate string
	Mid           float64
}

// RateTable is the persisted long-format table of rate records.
type RateTable []RateRecord

// Watermark returns the latest date in the table over all currencies.
func (t RateTable) Watermark() (time.Time, bool) {
	var last time.Time
	for _, r := range t {
		if d := Day(r.RateDate); d.After(last) {
			last = d
		}
	}
	return last, !last.IsZero()
}

// MergeRates unions existing and fresh records. When both hold the same key the
// fresh record wins. The result is sorted by currency code, then date.
func MergeRates(existing, fresh RateTable) RateTable {
	byKey := make(map[RateKey]RateRecord, len(existing)+len(fresh))
	for _, r := range existing {
		if _, ok := byKey[r.Key()]; !ok {
			byKey[r.Key()] = normalize(r)
		}
	}
	seenFresh := make(map[RateKey]bool, len(fresh))
	for _, r := range fresh {
		k := r.Key()
		// a single fetch batch keeps its first occurrence
		if seenFresh[k] {
			continue
		}
		seenFresh[k] = true
		byKey[k] = normalize(r)
	}

	out := make(RateTable, 0, len(byKey))
	for _, r := range byKey {
		out = append(out, r)
	}
	out.Sort()
	return out
}

func (t RateTable) Sort() {
	sort.Slice(t, func(i, j int) bool {
		if t[i].CurrencyCode != t[j].CurrencyCode {
			return t[i].CurrencyCode < t[j].CurrencyCode
		}
		return t[i].RateDate.Before(t[j].RateDate)
	})
}

func normalize(r RateRecord) RateRecord {
	r.RateDate = Day(r.RateDate)
	return r
}
