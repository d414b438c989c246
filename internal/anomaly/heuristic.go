package anomaly

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/model"
)

// HeuristicName is the detector label stamped on heuristic findings.
const HeuristicName = "heuristic"

// HeuristicConfig holds tunable parameters for HeuristicDetector.
type HeuristicConfig struct {
	MinRecords int    // below this sample size no findings are produced
	Rules      []Rule // evaluated in order; nil uses DefaultRules()
	Logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

// HeuristicDetector evaluates local rules. It is a complete detector on
// its own and the fallback whenever a delegated backend fails.
type HeuristicDetector struct {
	minRecords int
	rules      []Rule
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// DefaultRules is the error-frequency rule at its default threshold plus
// the inter-arrival gap rule.
func DefaultRules() []Rule {
	return []Rule{
		FrequencySpikeRule{Level: "ERROR", Threshold: model.DefaultErrorThreshold},
		GapRule{},
	}
}

// NewHeuristicDetector creates a detector over the configured rules.
func NewHeuristicDetector(conf ...HeuristicConfig) *HeuristicDetector {
	d := &HeuristicDetector{
		minRecords: model.DefaultMinAnomalySample,
		rules:      DefaultRules(),
		logger:     zap.NewNop(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	if len(conf) > 0 {
		c := conf[0]
		if c.MinRecords > 0 {
			d.minRecords = c.MinRecords
		}
		if c.Rules != nil {
			d.rules = c.Rules
		}
		if c.Logger != nil {
			d.logger = c.Logger
		}
		if c.now != nil {
			d.now = c.now
		}
		if c.newID != nil {
			d.newID = c.newID
		}
	}
	return d
}

func (d *HeuristicDetector) Name() string { return HeuristicName }

// Detect never fails; the error return satisfies Detector.
func (d *HeuristicDetector) Detect(_ context.Context, records []model.Record, st model.Statistics) ([]model.AnomalyFinding, error) {
	if len(records) < d.minRecords {
		d.logger.Debug("anomaly: sample too small", zap.Int("records", len(records)), zap.Int("min", d.minRecords))
		return []model.AnomalyFinding{}, nil
	}

	findings := []model.AnomalyFinding{}
	detectedAt := d.now()
	for _, rule := range d.rules {
		for _, f := range rule.Evaluate(records, st) {
			f.ID = d.newID()
			f.Detector = HeuristicName
			f.DetectedAt = detectedAt
			f.RelatedRecordIndices = normalizeIndices(f.RelatedRecordIndices)
			findings = append(findings, f)
		}
	}
	d.logger.Debug("anomaly: heuristic pass done", zap.Int("records", len(records)), zap.Int("findings", len(findings)))
	return findings, nil
}
