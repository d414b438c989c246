package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/anomaly"
	"github.com/tinytelemetry/logscope/internal/ingest"
	"github.com/tinytelemetry/logscope/internal/logparse"
	"github.com/tinytelemetry/logscope/internal/logsource"
	"github.com/tinytelemetry/logscope/internal/model"
	"github.com/tinytelemetry/logscope/internal/patterns"
	"github.com/tinytelemetry/logscope/internal/report"
	"github.com/tinytelemetry/logscope/internal/socketrpc"
)

// stdinArg selects standard input as a path argument.
const stdinArg = "-"

// pipeline bundles the parts one analysis run needs.
type pipeline struct {
	agg        *report.Aggregator
	dispatcher *logparse.Dispatcher
	srcConf    logsource.Config
	logger     *zap.Logger
	closers    []func() error
}

// newPipeline wires the engines from config. observer may be nil.
func (c *cli) newPipeline(observer report.Observer) *pipeline {
	p := &pipeline{
		dispatcher: logparse.DefaultDispatcher(),
		srcConf:    logsource.Config{MaxLineSize: c.cfg.MaxLineSize, Logger: c.logger},
		logger:     c.logger,
	}

	detector, closer := c.newDetector()
	if closer != nil {
		p.closers = append(p.closers, closer)
	}

	p.agg = report.New()
	p.agg.Patterns = patterns.NewEngine(patterns.Config{
		TopN:      c.cfg.TopN,
		Templates: c.cfg.Templates,
		Logger:    c.logger,
	})
	p.agg.Detector = detector
	p.agg.AnomalyTimeout = c.cfg.AnomalyTimeout
	p.agg.Logger = c.logger
	p.agg.Observer = observer
	return p
}

// newHeuristic builds the local detector from config.
func (c *cli) newHeuristic() *anomaly.HeuristicDetector {
	return anomaly.NewHeuristicDetector(anomaly.HeuristicConfig{
		MinRecords: c.cfg.MinRecords,
		Rules: []anomaly.Rule{
			anomaly.FrequencySpikeRule{Level: "ERROR", Threshold: c.cfg.ErrorThreshold},
			anomaly.GapRule{},
		},
		Logger: c.logger,
	})
}

// newRemote builds the socket-backed detector and the client it owns.
func (c *cli) newRemote() (*anomaly.RemoteDetector, *socketrpc.Client) {
	client := socketrpc.NewClient(c.cfg.SocketPath, socketrpc.ClientConfig{CallTimeout: c.cfg.BackendTimeout})
	remote := anomaly.NewRemoteDetector(client, anomaly.RemoteConfig{
		Threshold:  c.cfg.Threshold,
		Timeout:    c.cfg.BackendTimeout,
		MinRecords: c.cfg.MinRecords,
		Logger:     c.logger,
	})
	return remote, client
}

// newDetector returns the configured detector. With the socket backend the
// local heuristic is the fallback.
func (c *cli) newDetector() (anomaly.Detector, func() error) {
	heuristic := c.newHeuristic()
	if c.cfg.Backend != backendSocket {
		return heuristic, nil
	}
	remote, client := c.newRemote()
	return anomaly.FallbackDetector{Primary: remote, Fallback: heuristic}, client.Close
}

// open returns the line source for one path argument.
func (p *pipeline) open(ctx context.Context, path string) (logsource.LogSource, error) {
	if path == stdinArg {
		return logsource.NewStdinSource(ctx, p.srcConf), nil
	}
	src, err := logsource.OpenFile(ctx, path, p.srcConf)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}
	return src, nil
}

// collect reads path into records without analyzing them.
func (p *pipeline) collect(ctx context.Context, path string) ([]model.Record, model.IngestStats, error) {
	src, err := p.open(ctx, path)
	if err != nil {
		return nil, model.IngestStats{}, err
	}
	return ingest.Collect(ctx, src, p.dispatcher, p.logger)
}

// analyze reads path and builds its report.
func (p *pipeline) analyze(ctx context.Context, path string) (model.AnalysisReport, error) {
	src, err := p.open(ctx, path)
	if err != nil {
		return model.AnalysisReport{}, err
	}
	return p.agg.Run(ctx, src, p.dispatcher)
}

func (p *pipeline) close() {
	for _, fn := range p.closers {
		if err := fn(); err != nil {
			p.logger.Debug("logscope: close", zap.Error(err))
		}
	}
}

// expandPaths replaces each directory argument with the log files inside
// it. No arguments means stdin.
func expandPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		return []string{stdinArg}, nil
	}
	var paths []string
	for _, arg := range args {
		if arg == stdinArg {
			paths = append(paths, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("ingest: read %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := logsource.Discover(arg)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("ingest: read %s: no .log or .json files found", arg)
		}
		paths = append(paths, found...)
	}
	return paths, nil
}
