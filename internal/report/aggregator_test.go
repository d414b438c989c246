package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/logscope/internal/anomaly"
	"github.com/tinytelemetry/logscope/internal/ingest"
	"github.com/tinytelemetry/logscope/internal/logparse"
	"github.com/tinytelemetry/logscope/internal/logsource"
	"github.com/tinytelemetry/logscope/internal/model"
	"github.com/tinytelemetry/logscope/internal/patterns"
	"github.com/tinytelemetry/logscope/internal/stats"
)

func spikeLines() []string {
	var lines []string
	add := func(n int, level, msg string) {
		for i := 0; i < n; i++ {
			ts := time.Date(2023, 12, 1, 10, 0, len(lines), 0, time.UTC).Format(logparse.TimestampLayout)
			lines = append(lines, ts+" ["+level+"] "+msg)
		}
	}
	add(20, "INFO", "Request served ok")
	add(10, "ERROR", "Database connection failed")
	add(15, "INFO", "Request served ok")
	return lines
}

// failingDetector always fails with err.
type failingDetector struct{ err error }

func (d failingDetector) Name() string { return "broken" }
func (d failingDetector) Detect(context.Context, []model.Record, model.Statistics) ([]model.AnomalyFinding, error) {
	return nil, d.err
}

// slowDetector waits for its context.
type slowDetector struct{}

func (slowDetector) Name() string { return "slow" }
func (slowDetector) Detect(ctx context.Context, _ []model.Record, _ model.Statistics) ([]model.AnomalyFinding, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type captureObserver struct{ reports []model.AnalysisReport }

func (o *captureObserver) ObserveReport(r model.AnalysisReport) { o.reports = append(o.reports, r) }

func TestBuildComposesEngines(t *testing.T) {
	t.Parallel()
	records, ingestStats := ingest.CollectLines(spikeLines(), logparse.DefaultDispatcher())
	obs := &captureObserver{}
	agg := New()
	agg.Observer = obs

	report, err := agg.Build(context.Background(), "app.log", records, ingestStats)
	require.NoError(t, err)

	assert.Equal(t, "app.log", report.Source)
	assert.Equal(t, stats.Compute(records), report.Statistics)
	assert.Equal(t, patterns.Summarize(records), report.Patterns)
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, model.FrequencySpike, report.Anomalies[0].Kind)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, 45, report.Ingest.Parsed)
	assert.False(t, report.GeneratedAt.IsZero())
	require.Len(t, obs.reports, 1)
}

func TestBuildDetectorFailureIsAWarning(t *testing.T) {
	t.Parallel()
	records, ingestStats := ingest.CollectLines(spikeLines(), logparse.DefaultDispatcher())
	agg := New()
	agg.Detector = failingDetector{err: anomaly.ErrBackendUnavailable}

	report, err := agg.Build(context.Background(), "app.log", records, ingestStats)
	require.NoError(t, err)
	assert.Equal(t, 45, report.Statistics.Total)
	assert.NotEmpty(t, report.Patterns.TopFirstTokens)
	assert.NotNil(t, report.Anomalies)
	assert.Empty(t, report.Anomalies)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "broken")
}

func TestBuildDetectorTimeout(t *testing.T) {
	t.Parallel()
	records, ingestStats := ingest.CollectLines(spikeLines(), logparse.DefaultDispatcher())
	agg := New()
	agg.Detector = slowDetector{}
	agg.AnomalyTimeout = 50 * time.Millisecond

	start := time.Now()
	report, err := agg.Build(context.Background(), "app.log", records, ingestStats)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 45, report.Statistics.Total)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "deadline exceeded")
}

func TestBuildDegradedUsesFallbackFindings(t *testing.T) {
	t.Parallel()
	records, ingestStats := ingest.CollectLines(spikeLines(), logparse.DefaultDispatcher())
	agg := New()
	agg.Detector = anomaly.FallbackDetector{
		Primary:  failingDetector{err: anomaly.ErrContractViolation},
		Fallback: anomaly.NewHeuristicDetector(),
	}

	report, err := agg.Build(context.Background(), "app.log", records, ingestStats)
	require.NoError(t, err)
	require.Len(t, report.Anomalies, 1)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "degraded")
}

func TestBuildEmptyInput(t *testing.T) {
	t.Parallel()
	report, err := New().Build(context.Background(), "empty.log", nil, model.IngestStats{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Statistics.Total)
	assert.Nil(t, report.Statistics.TimeSpan)
	assert.Empty(t, report.Anomalies)
	assert.NotNil(t, report.Ingest.ByParser)
}

func TestRunReadsFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "app.log")
	content := strings.Join(append(spikeLines(), "This is not a valid log entry"), "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src, err := logsource.OpenFile(context.Background(), path)
	require.NoError(t, err)

	report, err := New().Run(context.Background(), src, logparse.DefaultDispatcher())
	require.NoError(t, err)
	assert.Equal(t, path, report.Source)
	assert.Equal(t, 45, report.Statistics.Total)
	assert.Equal(t, 1, report.Ingest.Dropped)
	assert.Equal(t, int64(44), report.Statistics.TimeSpan.DurationSeconds)
}

// brokenSource fails after its lines.
type brokenSource struct{ ch chan model.IngestEnvelope }

func (s brokenSource) Lines() <-chan model.IngestEnvelope { return s.ch }
func (s brokenSource) Err() error                         { return errors.New("device error") }
func (s brokenSource) Stop()                              {}
func (s brokenSource) Name() string                       { return "broken" }

func TestRunReadFailureProducesNoReport(t *testing.T) {
	t.Parallel()
	ch := make(chan model.IngestEnvelope)
	close(ch)
	report, err := New().Run(context.Background(), brokenSource{ch: ch}, logparse.DefaultDispatcher())
	require.Error(t, err)
	assert.Empty(t, report.Source)
}
