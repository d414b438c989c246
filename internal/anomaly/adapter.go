package anomaly

import (
	"context"
	"fmt"

	"github.com/tinytelemetry/logscope/internal/model"
	"github.com/tinytelemetry/logscope/internal/socketrpc"
)

// BackendAdapter serves a Detector over the socket RPC protocol, so the
// local heuristic can stand in for an external scoring backend.
type BackendAdapter struct {
	detector Detector
	trainer  Trainer
}

// NewBackendAdapter wraps detector. trainer may be nil, in which case
// Train calls succeed without effect.
func NewBackendAdapter(detector Detector, trainer Trainer) *BackendAdapter {
	return &BackendAdapter{detector: detector, trainer: trainer}
}

var _ socketrpc.Backend = (*BackendAdapter)(nil)

// Detect ignores the threshold: local rules carry their own.
func (a *BackendAdapter) Detect(ctx context.Context, params socketrpc.DetectParams) ([]socketrpc.WireFinding, error) {
	records := socketrpc.FromWireRecords(params.Records)
	findings, err := a.detector.Detect(ctx, records, model.Statistics{})
	if err != nil {
		return nil, fmt.Errorf("anomaly: %s detect: %w", a.detector.Name(), err)
	}

	out := make([]socketrpc.WireFinding, 0, len(findings))
	for _, f := range findings {
		out = append(out, socketrpc.WireFinding{
			Type:           string(f.Kind),
			Confidence:     f.Confidence,
			Description:    f.Description,
			RelatedIndices: f.RelatedRecordIndices,
			Severity:       f.Severity,
		})
	}
	return out, nil
}

func (a *BackendAdapter) Train(ctx context.Context, params socketrpc.TrainParams) error {
	if a.trainer == nil {
		return nil
	}
	return a.trainer.Train(ctx, socketrpc.FromWireRecords(params.Records))
}
