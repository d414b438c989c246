// Package stats computes level counts and time metrics over a record
// sequence.
package stats

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tinytelemetry/logscope/internal/model"
)

// Compute returns the statistics of records. Input order does not need to
// be chronological.
func Compute(records []model.Record) model.Statistics {
	acc := NewAccumulator()
	for _, r := range records {
		acc.Add(r)
	}
	return acc.Result()
}

// SecondsBetween returns b-a in seconds, clamped at zero. Reversed or
// corrupt timestamps never yield a negative duration.
func SecondsBetween(a, b time.Time) float64 {
	d := b.Sub(a).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// Accumulator streams records into statistics. Result is identical to
// Compute over the same records in the same order.
type Accumulator struct {
	total       int
	levelCounts map[string]int
	levelOrder  []string
	timestamps  []time.Time
}

func NewAccumulator() *Accumulator {
	return &Accumulator{levelCounts: make(map[string]int)}
}

// Add folds one record into the running totals.
func (a *Accumulator) Add(r model.Record) {
	a.total++
	if _, seen := a.levelCounts[r.Level]; !seen {
		a.levelOrder = append(a.levelOrder, r.Level)
	}
	a.levelCounts[r.Level]++
	if r.HasTimestamp() {
		a.timestamps = append(a.timestamps, r.Timestamp)
	}
}

// Result snapshots the statistics so far. The accumulator stays usable.
func (a *Accumulator) Result() model.Statistics {
	st := model.Statistics{
		Total:       a.total,
		LevelCounts: make(map[string]int, len(a.levelCounts)),
		LevelOrder:  append([]string(nil), a.levelOrder...),
	}
	for level, n := range a.levelCounts {
		st.LevelCounts[level] = n
	}

	if len(a.timestamps) == 0 {
		return st
	}

	sorted := append([]time.Time(nil), a.timestamps...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	first, last := sorted[0], sorted[len(sorted)-1]
	st.TimeSpan = &model.TimeSpan{
		First:           first,
		Last:            last,
		DurationSeconds: int64(SecondsBetween(first, last)),
	}

	if len(sorted) < 2 {
		return st
	}

	deltas := Intervals(sorted)
	avg := stat.Mean(deltas, nil)
	minDelta, maxDelta := deltas[0], deltas[0]
	for _, d := range deltas[1:] {
		if d < minDelta {
			minDelta = d
		}
		if d > maxDelta {
			maxDelta = d
		}
	}
	st.AvgIntervalSeconds = &avg
	st.MinIntervalSeconds = &minDelta
	st.MaxIntervalSeconds = &maxDelta
	return st
}

// Intervals returns the consecutive gaps, in seconds, of an ascending
// sequence of times.
func Intervals(sorted []time.Time) []float64 {
	if len(sorted) < 2 {
		return nil
	}
	deltas := make([]float64, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		deltas[i-1] = SecondsBetween(sorted[i-1], sorted[i])
	}
	return deltas
}
