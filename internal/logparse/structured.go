package logparse

import (
	"encoding/json"

	"github.com/tinytelemetry/logscope/internal/model"
)

// DefaultStructuredLevel is used when a structured line has no level.
const DefaultStructuredLevel = "UNKNOWN"

// StructuredParser reads one JSON object per line with the optional keys
// timestamp, level, message and source.
type StructuredParser struct{}

func (StructuredParser) Name() string { return "structured" }

func (StructuredParser) Parse(line string) (model.Record, bool) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(line), &raw); err != nil || raw == nil {
		return model.Record{}, false
	}

	record := model.Record{
		Level: DefaultStructuredLevel,
	}
	if ts, ok := raw["timestamp"].(string); ok {
		record.Timestamp = parseTimestamp(ts)
	}
	if level, ok := raw["level"].(string); ok {
		record.Level = level
	}
	if message, ok := raw["message"].(string); ok {
		record.Message = message
	}
	if source, ok := raw["source"].(string); ok {
		record.Source = source
	}
	return record, true
}
