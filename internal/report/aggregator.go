// Package report assembles one analysis run into an AnalysisReport.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tinytelemetry/logscope/internal/anomaly"
	"github.com/tinytelemetry/logscope/internal/ingest"
	"github.com/tinytelemetry/logscope/internal/logparse"
	"github.com/tinytelemetry/logscope/internal/logsource"
	"github.com/tinytelemetry/logscope/internal/model"
	"github.com/tinytelemetry/logscope/internal/patterns"
	"github.com/tinytelemetry/logscope/internal/stats"
)

// Observer is notified after every built report. metrics.Collector
// implements it.
type Observer interface {
	ObserveReport(report model.AnalysisReport)
}

// Aggregator runs the statistics, pattern and anomaly engines over one
// materialized record sequence. The zero value is not usable; build one
// with New.
type Aggregator struct {
	Patterns       *patterns.Engine
	Detector       anomaly.Detector
	AnomalyTimeout time.Duration // 0 = no extra bound beyond the caller's context
	Logger         *zap.Logger
	Observer       Observer

	now func() time.Time
}

// New returns an aggregator with the default pattern engine and the local
// heuristic detector.
func New() *Aggregator {
	return &Aggregator{
		Patterns: patterns.NewEngine(),
		Detector: anomaly.NewHeuristicDetector(),
		Logger:   zap.NewNop(),
	}
}

// Build computes the report. The engines only read records. A detector
// failure or timeout never fails the build: findings fall back to empty
// (or to the detector's own fallback) and a warning is attached.
func (a *Aggregator) Build(ctx context.Context, source string, records []model.Record, ingestStats model.IngestStats) (model.AnalysisReport, error) {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := a.now
	if now == nil {
		now = time.Now
	}

	var (
		st        model.Statistics
		summary   model.PatternSummary
		findings  []model.AnomalyFinding
		anomalyWn string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st = stats.Compute(records)
		findings, anomalyWn = a.detect(gctx, records, st, logger)
		return nil
	})
	g.Go(func() error {
		engine := a.Patterns
		if engine == nil {
			engine = patterns.NewEngine()
		}
		summary = engine.Summarize(records)
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.AnalysisReport{}, err
	}

	if findings == nil {
		findings = []model.AnomalyFinding{}
	}
	if ingestStats.ByParser == nil {
		ingestStats.ByParser = map[string]int{}
	}

	report := model.AnalysisReport{
		Source:      source,
		GeneratedAt: now().UTC(),
		Statistics:  st,
		Patterns:    summary,
		Anomalies:   findings,
		Ingest:      ingestStats,
	}
	if anomalyWn != "" {
		report.Warnings = append(report.Warnings, anomalyWn)
	}

	logger.Info("report: built",
		zap.String("source", source),
		zap.Int("records", st.Total),
		zap.Int("findings", len(findings)),
		zap.Int("warnings", len(report.Warnings)),
	)
	if a.Observer != nil {
		a.Observer.ObserveReport(report)
	}
	return report, nil
}

// detect runs the detector and turns any failure into a warning.
func (a *Aggregator) detect(ctx context.Context, records []model.Record, st model.Statistics, logger *zap.Logger) ([]model.AnomalyFinding, string) {
	if a.Detector == nil {
		return nil, ""
	}
	if a.AnomalyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.AnomalyTimeout)
		defer cancel()
	}

	findings, err := a.Detector.Detect(ctx, records, st)
	if err == nil {
		return findings, ""
	}

	var degraded *anomaly.DegradedError
	if errors.As(err, &degraded) {
		logger.Warn("report: anomaly detection degraded", zap.Error(err))
		return findings, degraded.Error()
	}
	logger.Warn("report: anomaly detection failed", zap.String("detector", a.Detector.Name()), zap.Error(err))
	return nil, fmt.Sprintf("anomaly detection unavailable (%s): %v", a.Detector.Name(), err)
}

// Run reads src to the end and builds its report. A read failure aborts
// the run with no report.
func (a *Aggregator) Run(ctx context.Context, src logsource.LogSource, d *logparse.Dispatcher) (model.AnalysisReport, error) {
	records, ingestStats, err := ingest.Collect(ctx, src, d, a.Logger)
	if err != nil {
		return model.AnalysisReport{}, err
	}
	return a.Build(ctx, src.Name(), records, ingestStats)
}
