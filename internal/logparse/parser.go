package logparse

import (
	"sync/atomic"

	"github.com/tinytelemetry/logscope/internal/model"
)

// LineParser turns one raw line into a Record. Parse reports false when the
// line is not in the parser's format.
type LineParser interface {
	Name() string
	Parse(line string) (model.Record, bool)
}

// Dispatcher tries parsers in declared order; the first success wins and a
// line no parser accepts is dropped. Counters are safe for concurrent use.
type Dispatcher struct {
	parsers []LineParser

	lines    atomic.Int64
	parsed   atomic.Int64
	dropped  atomic.Int64
	byParser []atomic.Int64
}

// NewDispatcher creates a dispatcher over parsers, tried in the given order.
func NewDispatcher(parsers ...LineParser) *Dispatcher {
	return &Dispatcher{
		parsers:  parsers,
		byParser: make([]atomic.Int64, len(parsers)),
	}
}

// DefaultDispatcher tries the standard line format, then OTEL JSON log
// records, then generic structured JSON.
func DefaultDispatcher() *Dispatcher {
	return NewDispatcher(StandardParser{}, OTELParser{}, StructuredParser{})
}

// Parse runs the line through the parser chain.
func (d *Dispatcher) Parse(line string) (model.Record, bool) {
	record, _, ok := d.ParseNamed(line)
	return record, ok
}

// ParseNamed is Parse that also reports which parser accepted the line.
func (d *Dispatcher) ParseNamed(line string) (model.Record, string, bool) {
	d.lines.Add(1)
	for i, p := range d.parsers {
		if record, ok := p.Parse(line); ok {
			d.parsed.Add(1)
			d.byParser[i].Add(1)
			return record, p.Name(), true
		}
	}
	d.dropped.Add(1)
	return model.Record{}, "", false
}

// ParseAll parses every line, dropping the ones no parser accepts.
func (d *Dispatcher) ParseAll(lines []string) []model.Record {
	records := make([]model.Record, 0, len(lines))
	for _, line := range lines {
		if record, ok := d.Parse(line); ok {
			records = append(records, record)
		}
	}
	return records
}

// ParserNames returns the parser names in dispatch order.
func (d *Dispatcher) ParserNames() []string {
	names := make([]string, len(d.parsers))
	for i, p := range d.parsers {
		names[i] = p.Name()
	}
	return names
}

// Stats returns a snapshot of the line counters.
func (d *Dispatcher) Stats() model.IngestStats {
	stats := model.IngestStats{
		Lines:    int(d.lines.Load()),
		Parsed:   int(d.parsed.Load()),
		Dropped:  int(d.dropped.Load()),
		ByParser: make(map[string]int, len(d.parsers)),
	}
	for i, p := range d.parsers {
		stats.ByParser[p.Name()] += int(d.byParser[i].Load())
	}
	return stats
}

// Reset zeroes the counters.
func (d *Dispatcher) Reset() {
	d.lines.Store(0)
	d.parsed.Store(0)
	d.dropped.Store(0)
	for i := range d.byParser {
		d.byParser[i].Store(0)
	}
}
