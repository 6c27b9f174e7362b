package schedule

import (
	"errors"
	"math"
	"time"
)

// historyCap bounds how far back inference looks.
const historyCap = 10

// ErrInsufficientHistory means no recommendation can be made from the
// available events. Callers fall back to the configured fixed interval;
// this is an expected steady state, not a user-facing error.
var ErrInsufficientHistory = errors.New("insufficient event history")

// InferInterval recommends a recurrence from past care events, newest
// first. It is a heuristic, not a statistical model: a consistent rhythm
// (low coefficient of variation across the day gaps) trusts the mean,
// a noisy one trusts the most frequent gap, and when no gap repeats it
// takes the smallest one, biasing toward checking sooner rather than
// later.
func InferInterval(history []time.Time) (Interval, error) {
	if len(history) > historyCap {
		history = history[:historyCap]
	}
	if len(history) < 2 {
		return Interval{}, ErrInsufficientHistory
	}

	var gaps []int
	for i := 0; i+1 < len(history); i++ {
		// history[i+1] is the older of the pair. Out-of-order or
		// same-day duplicates produce non-positive gaps; skip them.
		if g := daysBetween(history[i+1], history[i]); g > 0 {
			gaps = append(gaps, g)
		}
	}
	if len(gaps) == 0 {
		return Interval{}, ErrInsufficientHistory
	}

	mean, stddev := meanStddev(gaps)
	days := mostFrequentGap(gaps)
	if stddev/mean < 0.3 {
		days = int(math.Round(mean))
	}
	return intervalFromDays(days), nil
}

// daysBetween counts whole calendar days from older to newer, ignoring
// time of day.
func daysBetween(older, newer time.Time) int {
	a := time.Date(older.Year(), older.Month(), older.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(newer.Year(), newer.Month(), newer.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func meanStddev(gaps []int) (float64, float64) {
	var sum float64
	for _, g := range gaps {
		sum += float64(g)
	}
	mean := sum / float64(len(gaps))
	var sq float64
	for _, g := range gaps {
		d := float64(g) - mean
		sq += d * d
	}
	// Population variance: the gaps are the whole history we act on.
	return mean, math.Sqrt(sq / float64(len(gaps)))
}

// mostFrequentGap returns the modal gap, ties broken by the smaller
// value. When every gap is unique it returns the minimum.
func mostFrequentGap(gaps []int) int {
	counts := make(map[int]int, len(gaps))
	for _, g := range gaps {
		counts[g]++
	}
	best, bestCount := 0, 0
	for g, c := range counts {
		if c > bestCount || (c == bestCount && g < best) {
			best, bestCount = g, c
		}
	}
	if bestCount > 1 {
		return best
	}
	min := gaps[0]
	for _, g := range gaps[1:] {
		if g < min {
			min = g
		}
	}
	return min
}
