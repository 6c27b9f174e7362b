// Package schedule derives and maintains care reminders. For every
// (plant, event type) pair it reconciles the event type default, the
// plant's own override and the plant's care history into one effective
// configuration, and keeps at most one outstanding reminder row in sync
// with it.
package schedule

import (
	"errors"
	"time"

	"github.com/fischervincent/grow-journal-sub000/internal/models"
)

// ErrInvalidInterval rejects intervals with a value below 1 or an
// unrecognized unit before anything is persisted.
var ErrInvalidInterval = errors.New("invalid reminder interval")

// Interval is a reminder recurrence: a magnitude plus a unit.
type Interval struct {
	Value int                 `json:"value"`
	Unit  models.IntervalUnit `json:"unit"`
}

func (iv Interval) Validate() error {
	if iv.Value < 1 {
		return ErrInvalidInterval
	}
	switch iv.Unit {
	case models.UnitDays, models.UnitWeeks, models.UnitMonths, models.UnitYears:
		return nil
	}
	return ErrInvalidInterval
}

// AddTo projects a date forward by the interval. Days and weeks add whole
// days; months and years use calendar arithmetic with Go's AddDate overflow
// normalization. Every component that turns an interval into a date goes
// through here so the inference engine, the resolver fallback and the bulk
// applicator can never drift apart.
func (iv Interval) AddTo(t time.Time) time.Time {
	switch iv.Unit {
	case models.UnitWeeks:
		return t.AddDate(0, 0, iv.Value*7)
	case models.UnitMonths:
		return t.AddDate(0, iv.Value, 0)
	case models.UnitYears:
		return t.AddDate(iv.Value, 0, 0)
	default:
		return t.AddDate(0, 0, iv.Value)
	}
}

// intervalFromDays converts a raw day count to a human-scaled interval:
// up to two weeks stays in days, up to two months becomes weeks, up to a
// year becomes months, beyond that years. Rounding never yields a value
// below 1.
func intervalFromDays(days int) Interval {
	switch {
	case days <= 14:
		return Interval{Value: clampOne(days), Unit: models.UnitDays}
	case days <= 60:
		return Interval{Value: clampOne(roundDiv(days, 7)), Unit: models.UnitWeeks}
	case days <= 365:
		return Interval{Value: clampOne(roundDiv(days, 30)), Unit: models.UnitMonths}
	default:
		return Interval{Value: clampOne(roundDiv(days, 365)), Unit: models.UnitYears}
	}
}

func roundDiv(n, d int) int {
	return (n + d/2) / d
}

func clampOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
