package logparse

import (
	"strings"
	"time"

	"github.com/tinytelemetry/logscope/internal/model"
)

// TimestampLayout is the date/time layout shared by the standard and
// structured formats. Times carry no offset and are read as UTC.
const TimestampLayout = "2006-01-02 15:04:05"

// StandardParser reads "YYYY-MM-DD HH:MM:SS [LEVEL] message" lines.
type StandardParser struct{}

func (StandardParser) Name() string { return "standard" }

// Parse accepts a line with a bracketed level even when the timestamp part
// is not a valid time; only a missing or unterminated bracket pair rejects.
func (StandardParser) Parse(line string) (model.Record, bool) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 3 {
		return model.Record{}, false
	}

	remainder := parts[2]
	open := strings.IndexByte(remainder, '[')
	if open < 0 {
		return model.Record{}, false
	}
	closeRel := strings.IndexByte(remainder[open+1:], ']')
	if closeRel < 0 {
		return model.Record{}, false
	}
	closeIdx := open + 1 + closeRel

	message := remainder[closeIdx+1:]
	message = strings.TrimPrefix(message, " ")

	return model.Record{
		Timestamp: parseTimestamp(parts[0] + " " + parts[1]),
		Level:     remainder[open+1 : closeIdx],
		Message:   message,
	}, true
}

// parseTimestamp returns the zero time when s is not in TimestampLayout.
func parseTimestamp(s string) time.Time {
	ts, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return ts
}
