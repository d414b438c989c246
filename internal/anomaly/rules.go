package anomaly

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/tinytelemetry/logscope/internal/model"
	"github.com/tinytelemetry/logscope/internal/stats"
)

const (
	spikeConfidence = 0.85
	spikeSeverity   = 4
)

// FrequencySpikeRule fires when records at Level (matched exactly, case
// sensitive) outnumber Threshold.
type FrequencySpikeRule struct {
	Level     string
	Threshold int
}

func (r FrequencySpikeRule) Name() string { return "frequency_spike" }

func (r FrequencySpikeRule) Evaluate(records []model.Record, st model.Statistics) []model.AnomalyFinding {
	count, ok := st.LevelCounts[r.Level]
	if !ok && st.Total == 0 {
		// Statistics not supplied: count directly.
		for _, rec := range records {
			if rec.Level == r.Level {
				count++
			}
		}
	}
	if count <= r.Threshold {
		return nil
	}

	related := make([]int, 0, count)
	for i, rec := range records {
		if rec.Level == r.Level {
			related = append(related, i)
		}
	}
	return []model.AnomalyFinding{{
		Kind:                 model.FrequencySpike,
		Confidence:           spikeConfidence,
		Description:          fmt.Sprintf("Unusual spike in %s logs detected (%d occurrences)", r.Level, count),
		RelatedRecordIndices: related,
		Severity:             spikeSeverity,
	}}
}

const (
	DefaultGapZThreshold = 3.0
	DefaultGapMinGaps    = 10
)

// GapRule flags inter-arrival gaps whose population z-score exceeds
// ZThreshold. Records without timestamps are ignored.
type GapRule struct {
	ZThreshold float64 // default DefaultGapZThreshold
	MinGaps    int     // default DefaultGapMinGaps
}

func (r GapRule) Name() string { return "time_gap" }

func (r GapRule) Evaluate(records []model.Record, _ model.Statistics) []model.AnomalyFinding {
	zThreshold := r.ZThreshold
	if zThreshold <= 0 {
		zThreshold = DefaultGapZThreshold
	}
	minGaps := r.MinGaps
	if minGaps <= 0 {
		minGaps = DefaultGapMinGaps
	}

	type stamped struct {
		index int
		rec   model.Record
	}
	var timed []stamped
	for i, rec := range records {
		if rec.HasTimestamp() {
			timed = append(timed, stamped{index: i, rec: rec})
		}
	}
	if len(timed)-1 < minGaps {
		return nil
	}
	sort.SliceStable(timed, func(i, j int) bool { return timed[i].rec.Timestamp.Before(timed[j].rec.Timestamp) })

	gaps := make([]float64, len(timed)-1)
	for i := 1; i < len(timed); i++ {
		gaps[i-1] = stats.SecondsBetween(timed[i-1].rec.Timestamp, timed[i].rec.Timestamp)
	}

	mean, std := stat.PopMeanStdDev(gaps, nil)
	if std == 0 || math.IsNaN(std) {
		return nil
	}

	var related []int
	maxZ, longest := 0.0, 0.0
	for i, g := range gaps {
		z := math.Abs(g-mean) / std
		if z <= zThreshold {
			continue
		}
		related = append(related, timed[i+1].index)
		if z > maxZ {
			maxZ = z
		}
		if g > longest {
			longest = g
		}
	}
	if len(related) == 0 {
		return nil
	}

	confidence := gapConfidence(maxZ, zThreshold)
	return []model.AnomalyFinding{{
		Kind:       model.TimePatternAnomaly,
		Confidence: confidence,
		Description: fmt.Sprintf("Irregular timing: %d of %d intervals deviate from the %.1fs mean by more than %.1f standard deviations (longest %.1fs)",
			len(related), len(gaps), mean, zThreshold, longest),
		RelatedRecordIndices: related,
		Severity:             severityFor(confidence),
	}}
}

func gapConfidence(maxZ, zThreshold float64) float64 {
	return math.Min(0.95, math.Max(0.5, 0.5+0.1*(maxZ-zThreshold)))
}

// severityFor maps confidence onto 1..5, never decreasing as confidence grows.
func severityFor(confidence float64) int {
	s := 1 + int(math.Floor(4*confidence))
	if s > 5 {
		return 5
	}
	if s < 1 {
		return 1
	}
	return s
}
