package anomaly

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/model"
	"github.com/tinytelemetry/logscope/internal/socketrpc"
)

//go:embed finding.schema.json
var findingSchemaJSON []byte

const findingSchemaURL = "logscope://anomaly/finding.schema.json"

var findingSchema = mustCompileFindingSchema()

func mustCompileFindingSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(findingSchemaURL, bytes.NewReader(findingSchemaJSON)); err != nil {
		panic(fmt.Sprintf("anomaly: add finding schema: %v", err))
	}
	schema, err := compiler.Compile(findingSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("anomaly: compile finding schema: %v", err))
	}
	return schema
}

// BackendClient is the transport to a delegated scoring backend.
// *socketrpc.Client implements it.
type BackendClient interface {
	Detect(ctx context.Context, params socketrpc.DetectParams) (json.RawMessage, error)
	Train(ctx context.Context, params socketrpc.TrainParams) error
}

// RemoteName is the detector label stamped on delegated findings.
const RemoteName = "remote"

// RemoteConfig holds tunable parameters for RemoteDetector.
type RemoteConfig struct {
	Threshold  float64       // forwarded to the backend, default model.DefaultBackendThreshold
	Timeout    time.Duration // per call, default model.DefaultBackendTimeout
	MinRecords int           // same sample guard as the heuristic path
	Logger     *zap.Logger
}

// RemoteDetector delegates scoring to an external backend. Every response
// is validated as a whole; one malformed finding rejects the batch.
type RemoteDetector struct {
	client     BackendClient
	threshold  float64
	timeout    time.Duration
	minRecords int
	logger     *zap.Logger
}

// NewRemoteDetector creates a detector that calls client.
func NewRemoteDetector(client BackendClient, conf ...RemoteConfig) *RemoteDetector {
	d := &RemoteDetector{
		client:     client,
		threshold:  model.DefaultBackendThreshold,
		timeout:    model.DefaultBackendTimeout,
		minRecords: model.DefaultMinAnomalySample,
		logger:     zap.NewNop(),
	}
	if len(conf) > 0 {
		c := conf[0]
		if c.Threshold > 0 {
			d.threshold = c.Threshold
		}
		if c.Timeout > 0 {
			d.timeout = c.Timeout
		}
		if c.MinRecords > 0 {
			d.minRecords = c.MinRecords
		}
		if c.Logger != nil {
			d.logger = c.Logger
		}
	}
	return d
}

func (d *RemoteDetector) Name() string { return RemoteName }

func (d *RemoteDetector) Detect(ctx context.Context, records []model.Record, _ model.Statistics) ([]model.AnomalyFinding, error) {
	if len(records) < d.minRecords {
		return []model.AnomalyFinding{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	raw, err := d.client.Detect(ctx, socketrpc.DetectParams{
		Records:   socketrpc.ToWireRecords(records),
		Threshold: d.threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("anomaly: remote detect: %w: %w", ErrBackendUnavailable, err)
	}

	wire, err := decodeFindings(raw, len(records))
	if err != nil {
		return nil, fmt.Errorf("anomaly: remote detect: %w: %w", ErrContractViolation, err)
	}

	detectedAt := time.Now()
	findings := make([]model.AnomalyFinding, 0, len(wire))
	for _, w := range wire {
		findings = append(findings, model.AnomalyFinding{
			ID:                   uuid.NewString(),
			Kind:                 model.ParseFindingKind(w.Type),
			Detector:             RemoteName,
			Confidence:           w.Confidence,
			Description:          w.Description,
			RelatedRecordIndices: normalizeIndices(w.RelatedIndices),
			Severity:             w.Severity,
			DetectedAt:           detectedAt,
		})
	}
	d.logger.Debug("anomaly: remote detect done",
		zap.Int("records", len(records)),
		zap.Int("findings", len(findings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return findings, nil
}

// Train forwards a batch of normal records to the backend.
func (d *RemoteDetector) Train(ctx context.Context, records []model.Record) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.client.Train(ctx, socketrpc.TrainParams{Records: socketrpc.ToWireRecords(records)}); err != nil {
		return fmt.Errorf("anomaly: remote train: %w: %w", ErrBackendUnavailable, err)
	}
	return nil
}

// decodeFindings validates raw against the finding schema and checks that
// every related index points into the submitted batch.
func decodeFindings(raw json.RawMessage, recordCount int) ([]socketrpc.WireFinding, error) {
	var instance interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&instance); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if err := findingSchema.Validate(instance); err != nil {
		return nil, err
	}

	var findings []socketrpc.WireFinding
	if err := json.Unmarshal(raw, &findings); err != nil {
		return nil, fmt.Errorf("decode findings: %w", err)
	}
	for i, f := range findings {
		for _, idx := range f.RelatedIndices {
			if idx >= recordCount {
				return nil, fmt.Errorf("finding %d: related index %d out of range (%d records)", i, idx, recordCount)
			}
		}
	}
	return findings, nil
}
