// Package metrics exposes pipeline counters for analysis runs on a private
// Prometheus registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tinytelemetry/logscope/internal/model"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "logscope"

// Config holds optional collector settings.
type Config struct {
	Namespace string
	// ProcessMetrics adds the Go runtime and process collectors.
	ProcessMetrics bool
}

// Collector records what each analysis run did. It implements
// report.Observer.
type Collector struct {
	registry *prometheus.Registry

	runs         prometheus.Counter
	linesParsed  *prometheus.CounterVec
	linesDropped prometheus.Counter
	findings     *prometheus.CounterVec
	warnings     prometheus.Counter
	lastRecords  prometheus.Gauge
	lastRunTime  prometheus.Gauge
}

// New creates a collector registered on its own registry.
func New(conf ...Config) *Collector {
	ns := DefaultNamespace
	var process bool
	if len(conf) > 0 {
		if conf[0].Namespace != "" {
			ns = conf[0].Namespace
		}
		process = conf[0].ProcessMetrics
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "runs_total",
			Help:      "Completed analysis runs.",
		}),
		linesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "lines_parsed_total",
			Help:      "Lines turned into records, by the parser that accepted them.",
		}, []string{"parser"}),
		linesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "lines_dropped_total",
			Help:      "Lines no parser accepted.",
		}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "anomaly_findings_total",
			Help:      "Anomaly findings reported, by kind and detector.",
		}, []string{"kind", "detector"}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "anomaly_degradations_total",
			Help:      "Runs whose anomaly detection failed or fell back.",
		}),
		lastRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "last_run_records",
			Help:      "Records analyzed by the most recent run.",
		}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the most recent report was generated.",
		}),
	}

	c.registry.MustRegister(c.runs, c.linesParsed, c.linesDropped, c.findings, c.warnings, c.lastRecords, c.lastRunTime)
	if process {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// ObserveReport folds one finished report into the counters.
func (c *Collector) ObserveReport(report model.AnalysisReport) {
	c.runs.Inc()
	for parser, n := range report.Ingest.ByParser {
		c.linesParsed.WithLabelValues(parser).Add(float64(n))
	}
	c.linesDropped.Add(float64(report.Ingest.Dropped))
	for _, f := range report.Anomalies {
		detector := f.Detector
		if detector == "" {
			detector = "unknown"
		}
		c.findings.WithLabelValues(string(f.Kind), detector).Inc()
	}
	if len(report.Warnings) > 0 {
		c.warnings.Inc()
	}
	c.lastRecords.Set(float64(report.Statistics.Total))
	c.lastRunTime.Set(float64(report.GeneratedAt.Unix()))
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
