package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/fischervincent/grow-journal-sub000/internal/models"
)

func TestInferInterval_InsufficientHistory(t *testing.T) {
	cases := map[string][]time.Time{
		"empty":  {},
		"single": {day(2025, time.January, 1)},
		"same day duplicates": {
			time.Date(2025, time.January, 1, 18, 0, 0, 0, time.UTC),
			time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC),
		},
	}
	for name, history := range cases {
		if _, err := InferInterval(history); !errors.Is(err, ErrInsufficientHistory) {
			t.Errorf("%s: expected ErrInsufficientHistory, got %v", name, err)
		}
	}
}

func TestInferInterval_SteadyRhythm(t *testing.T) {
	// Gaps of exactly 9 days: low variance, recommend the mean.
	history := []time.Time{
		day(2025, time.January, 19),
		day(2025, time.January, 10),
		day(2025, time.January, 1),
	}
	iv, err := InferInterval(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv.Value != 9 || iv.Unit != models.UnitDays {
		t.Fatalf("expected 9 days, got %d %s", iv.Value, iv.Unit)
	}
}

func TestInferInterval_NoisyHistoryUsesMode(t *testing.T) {
	// Gaps 3, 10, 3: CV is high, so the mode (3) wins over the mean.
	history := []time.Time{
		day(2025, time.January, 17),
		day(2025, time.January, 14),
		day(2025, time.January, 4),
		day(2025, time.January, 1),
	}
	iv, err := InferInterval(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv.Value != 3 || iv.Unit != models.UnitDays {
		t.Fatalf("expected 3 days, got %d %s", iv.Value, iv.Unit)
	}
}

func TestInferInterval_AllUniqueGapsFallToMinimum(t *testing.T) {
	// Gaps 4 and 15: no repeats, take the smallest gap.
	history := []time.Time{
		day(2025, time.January, 20),
		day(2025, time.January, 5),
		day(2025, time.January, 1),
	}
	iv, err := InferInterval(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv.Value != 4 || iv.Unit != models.UnitDays {
		t.Fatalf("expected 4 days, got %d %s", iv.Value, iv.Unit)
	}
}

func TestInferInterval_ModalTieBreaksToSmallerGap(t *testing.T) {
	// Gaps 9, 9, 2, 2, 30: both 9 and 2 repeat; the smaller wins.
	history := []time.Time{
		day(2025, time.March, 14),
		day(2025, time.March, 5),
		day(2025, time.February, 24),
		day(2025, time.February, 22),
		day(2025, time.February, 20),
		day(2025, time.January, 21),
	}
	iv, err := InferInterval(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv.Value != 2 || iv.Unit != models.UnitDays {
		t.Fatalf("expected 2 days, got %d %s", iv.Value, iv.Unit)
	}
}

func TestInferInterval_OutOfOrderGapsDiscarded(t *testing.T) {
	// The middle entry is newer than the first: that pair's gap is
	// negative and must be skipped, leaving the 9-day gaps.
	history := []time.Time{
		day(2025, time.January, 19),
		day(2025, time.January, 28),
		day(2025, time.January, 19),
		day(2025, time.January, 10),
	}
	iv, err := InferInterval(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv.Value != 9 || iv.Unit != models.UnitDays {
		t.Fatalf("expected 9 days, got %d %s", iv.Value, iv.Unit)
	}
}

func TestInferInterval_CapsAtTenEvents(t *testing.T) {
	// Ten newest events at a steady 5-day rhythm, then far older
	// outliers that must not be looked at.
	var history []time.Time
	cur := day(2025, time.June, 1)
	for i := 0; i < 10; i++ {
		history = append(history, cur)
		cur = cur.AddDate(0, 0, -5)
	}
	history = append(history, day(2024, time.January, 1), day(2023, time.January, 1))

	iv, err := InferInterval(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iv.Value != 5 || iv.Unit != models.UnitDays {
		t.Fatalf("expected 5 days, got %d %s", iv.Value, iv.Unit)
	}
}

func TestInferInterval_UnitScaling(t *testing.T) {
	cases := []struct {
		name    string
		gapDays int
		want    Interval
	}{
		{"two weeks stays days", 14, Interval{Value: 14, Unit: models.UnitDays}},
		{"three weeks", 21, Interval{Value: 3, Unit: models.UnitWeeks}},
		{"two months", 60, Interval{Value: 9, Unit: models.UnitWeeks}},
		{"three months", 90, Interval{Value: 3, Unit: models.UnitMonths}},
		{"yearly", 400, Interval{Value: 1, Unit: models.UnitYears}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start := day(2020, time.January, 1)
			history := []time.Time{
				start.AddDate(0, 0, 2*tc.gapDays),
				start.AddDate(0, 0, tc.gapDays),
				start,
			}
			iv, err := InferInterval(history)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if iv != tc.want {
				t.Fatalf("expected %d %s, got %d %s", tc.want.Value, tc.want.Unit, iv.Value, iv.Unit)
			}
		})
	}
}
