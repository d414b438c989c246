package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/logparse"
	"github.com/tinytelemetry/logscope/internal/logsource"
	"github.com/tinytelemetry/logscope/internal/model"
)

// Collect drains src through the dispatcher and returns the parsed records
// in input order together with this run's line counters. A read failure
// discards everything collected so far: there is no partial result.
func Collect(ctx context.Context, src logsource.LogSource, d *logparse.Dispatcher, logger *zap.Logger) ([]model.Record, model.IngestStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defer src.Stop()

	stats := model.IngestStats{ByParser: make(map[string]int)}
	for _, name := range d.ParserNames() {
		stats.ByParser[name] = 0
	}

	var records []model.Record
	for env := range src.Lines() {
		stats.Lines++
		record, parser, ok := d.ParseNamed(env.Line)
		if !ok {
			stats.Dropped++
			continue
		}
		stats.Parsed++
		stats.ByParser[parser]++
		records = append(records, record)
	}

	if err := ctx.Err(); err != nil {
		return nil, model.IngestStats{}, fmt.Errorf("ingest: read %s: %w", src.Name(), err)
	}
	if err := src.Err(); err != nil {
		return nil, model.IngestStats{}, fmt.Errorf("ingest: read %s: %w", src.Name(), err)
	}

	logger.Debug("ingest: source drained",
		zap.String("source", src.Name()),
		zap.Int("lines", stats.Lines),
		zap.Int("parsed", stats.Parsed),
		zap.Int("dropped", stats.Dropped),
	)
	return records, stats, nil
}

// CollectLines parses an in-memory slice of lines. Blank lines are skipped
// the same way the line sources skip them.
func CollectLines(lines []string, d *logparse.Dispatcher) ([]model.Record, model.IngestStats) {
	stats := model.IngestStats{ByParser: make(map[string]int)}
	for _, name := range d.ParserNames() {
		stats.ByParser[name] = 0
	}

	records := make([]model.Record, 0, len(lines))
	for _, line := range lines {
		if isBlank(line) {
			continue
		}
		stats.Lines++
		record, parser, ok := d.ParseNamed(line)
		if !ok {
			stats.Dropped++
			continue
		}
		stats.Parsed++
		stats.ByParser[parser]++
		records = append(records, record)
	}
	return records, stats
}

func isBlank(line string) bool {
	for _, r := range line {
		if r != ' ' && r != '\t' && r != '\r' && r != '\n' {
			return false
		}
	}
	return true
}
