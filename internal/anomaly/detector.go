// Package anomaly scores record sequences for unusual behavior. Local rule
// sets and delegated scoring backends implement the same Detector
// capability and can be swapped or chained freely.
package anomaly

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/tinytelemetry/logscope/internal/model"
)

var (
	// ErrBackendUnavailable marks a delegated backend that could not be
	// reached, timed out, or failed the call.
	ErrBackendUnavailable = errors.New("anomaly backend unavailable")
	// ErrContractViolation marks a backend response that does not match
	// the finding contract.
	ErrContractViolation = errors.New("anomaly backend contract violation")
)

// Detector turns records (and their precomputed statistics) into findings.
type Detector interface {
	Name() string
	Detect(ctx context.Context, records []model.Record, st model.Statistics) ([]model.AnomalyFinding, error)
}

// Trainer accepts a batch of records representing normal behavior.
// Nothing about later Detect calls is guaranteed by a successful Train.
type Trainer interface {
	Train(ctx context.Context, records []model.Record) error
}

// Rule is one local heuristic evaluated by HeuristicDetector. Rules leave
// ID, Detector and DetectedAt unset; the detector stamps them.
type Rule interface {
	Name() string
	Evaluate(records []model.Record, st model.Statistics) []model.AnomalyFinding
}

// DegradedError reports that detection fell back after the primary
// detector failed. Findings returned alongside it are still usable.
type DegradedError struct {
	Detector string
	Fallback string // empty when nothing replaced the primary
	Cause    error
}

func (e *DegradedError) Error() string {
	if e.Fallback == "" {
		return fmt.Sprintf("anomaly detection degraded: %s failed, no findings: %v", e.Detector, e.Cause)
	}
	return fmt.Sprintf("anomaly detection degraded: %s failed, used %s: %v", e.Detector, e.Fallback, e.Cause)
}

func (e *DegradedError) Unwrap() error { return e.Cause }

// normalizeIndices sorts and de-duplicates related record indices.
func normalizeIndices(indices []int) []int {
	if len(indices) == 0 {
		return []int{}
	}
	out := append([]int(nil), indices...)
	sort.Ints(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
