package model

import "time"

// Record is one normalized log line. It is the canonical type shared by the
// parsers, the analysis engines, storage, and the delegated backend wire.
type Record struct {
	Timestamp time.Time `json:"timestamp,omitzero" yaml:"timestamp,omitempty"`  // zero = line carried no parseable time
	Level     string    `json:"level" yaml:"level"`                             // raw, never normalized
	Message   string    `json:"message" yaml:"message"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"` // empty = format has no origin label
}

// HasTimestamp reports whether the record carries a timestamp.
func (r Record) HasTimestamp() bool {
	return !r.Timestamp.IsZero()
}

// TimeSpan covers the earliest and latest timestamped records.
type TimeSpan struct {
	First           time.Time `json:"first" yaml:"first"`
	Last            time.Time `json:"last" yaml:"last"`
	DurationSeconds int64     `json:"duration_seconds" yaml:"duration_seconds"`
}

// Statistics aggregates a record sequence.
type Statistics struct {
	Total       int            `json:"total" yaml:"total"`
	LevelCounts map[string]int `json:"level_counts" yaml:"level_counts"`
	// LevelOrder lists the keys of LevelCounts in first-seen order.
	LevelOrder []string  `json:"-" yaml:"-"`
	TimeSpan   *TimeSpan `json:"time_span,omitempty" yaml:"time_span,omitempty"`

	AvgIntervalSeconds *float64 `json:"avg_interval_seconds,omitempty" yaml:"avg_interval_seconds,omitempty"`
	MinIntervalSeconds *float64 `json:"min_interval_seconds,omitempty" yaml:"min_interval_seconds,omitempty"`
	MaxIntervalSeconds *float64 `json:"max_interval_seconds,omitempty" yaml:"max_interval_seconds,omitempty"`
}

// RankedCount is a string and how many records produced it.
type RankedCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// TemplateCount is a mined message template and its cluster size.
type TemplateCount struct {
	Template string `json:"template" yaml:"template"`
	Count    int    `json:"count" yaml:"count"`
}

// PatternSummary holds the recurring message shapes of a record sequence.
type PatternSummary struct {
	TopFirstTokens []RankedCount   `json:"top_first_tokens" yaml:"top_first_tokens"`
	TopPrefixes    []RankedCount   `json:"top_prefixes" yaml:"top_prefixes"`
	Templates      []TemplateCount `json:"templates,omitempty" yaml:"templates,omitempty"`
}

// IngestStats counts what happened to raw lines on the way to records.
type IngestStats struct {
	Lines    int            `json:"lines" yaml:"lines"`
	Parsed   int            `json:"parsed" yaml:"parsed"`
	Dropped  int            `json:"dropped" yaml:"dropped"`
	ByParser map[string]int `json:"by_parser,omitempty" yaml:"by_parser,omitempty"`
}

// AnalysisReport is the assembled output of one analysis run.
type AnalysisReport struct {
	Source      string           `json:"source" yaml:"source"`
	GeneratedAt time.Time        `json:"generated_at" yaml:"generated_at"`
	Statistics  Statistics       `json:"statistics" yaml:"statistics"`
	Patterns    PatternSummary   `json:"patterns" yaml:"patterns"`
	Anomalies   []AnomalyFinding `json:"anomalies" yaml:"anomalies"`
	Ingest      IngestStats      `json:"ingest" yaml:"ingest"`
	Warnings    []string         `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}
