package anomaly

import (
	"context"

	"github.com/tinytelemetry/logscope/internal/model"
)

// FallbackDetector runs Primary and, if it fails, Fallback. A primary
// failure is always reported as *DegradedError next to whatever findings
// the fallback produced. A nil Fallback yields no findings.
type FallbackDetector struct {
	Primary  Detector
	Fallback Detector
}

func (f FallbackDetector) Name() string { return f.Primary.Name() }

func (f FallbackDetector) Detect(ctx context.Context, records []model.Record, st model.Statistics) ([]model.AnomalyFinding, error) {
	findings, err := f.Primary.Detect(ctx, records, st)
	if err == nil {
		return findings, nil
	}

	degraded := &DegradedError{Detector: f.Primary.Name(), Cause: err}
	if f.Fallback == nil {
		return []model.AnomalyFinding{}, degraded
	}
	degraded.Fallback = f.Fallback.Name()
	// The fallback gets a fresh context: the primary may have consumed the
	// caller's deadline.
	findings, fbErr := f.Fallback.Detect(context.WithoutCancel(ctx), records, st)
	if fbErr != nil {
		degraded.Fallback = ""
		return []model.AnomalyFinding{}, degraded
	}
	return findings, degraded
}

// Train trains the primary when it supports training.
func (f FallbackDetector) Train(ctx context.Context, records []model.Record) error {
	if t, ok := f.Primary.(Trainer); ok {
		return t.Train(ctx, records)
	}
	return nil
}
