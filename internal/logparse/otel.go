package logparse

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tinytelemetry/logscope/internal/model"
)

// OTELParser reads OpenTelemetry JSON log lines: a bare log record or an
// envelope (resourceLogs / scopeLogs / logRecords). An envelope yields its
// first log record. JSON that is not OTEL-shaped is left to later parsers.
type OTELParser struct{}

func (OTELParser) Name() string { return "otel" }

func (OTELParser) Parse(line string) (model.Record, bool) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(line), &raw); err != nil || raw == nil {
		return model.Record{}, false
	}

	logRecord, resourceAttrs, ok := firstOTELLogRecord(raw)
	if !ok {
		return model.Record{}, false
	}
	return otelRecord(logRecord, resourceAttrs), true
}

func firstOTELLogRecord(raw map[string]interface{}) (map[string]interface{}, map[string]string, bool) {
	if resourceLogs, ok := raw["resourceLogs"].([]interface{}); ok {
		for _, item := range resourceLogs {
			resourceLog, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			attrs := parseOTELResourceAttributes(resourceLog["resource"])
			scopeLogs := resourceLog["scopeLogs"]
			if scopeLogs == nil {
				// Older OTEL naming.
				scopeLogs = resourceLog["instrumentationLibraryLogs"]
			}
			if record, ok := firstFromScopeLogs(scopeLogs); ok {
				return record, attrs, true
			}
		}
		return nil, nil, false
	}

	for _, key := range []string{"scopeLogs", "instrumentationLibraryLogs"} {
		if scopeLogs, ok := raw[key]; ok {
			record, found := firstFromScopeLogs(scopeLogs)
			return record, parseOTELResourceAttributes(raw["resource"]), found
		}
	}

	if logRecords, ok := raw["logRecords"]; ok {
		record, found := firstFromLogRecords(logRecords)
		return record, parseOTELResourceAttributes(raw["resource"]), found
	}

	if isOTELLogRecord(raw) {
		return raw, nil, true
	}
	return nil, nil, false
}

func firstFromScopeLogs(value interface{}) (map[string]interface{}, bool) {
	scopeLogs, ok := value.([]interface{})
	if !ok {
		return nil, false
	}
	for _, item := range scopeLogs {
		scopeLog, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if record, ok := firstFromLogRecords(scopeLog["logRecords"]); ok {
			return record, true
		}
	}
	return nil, false
}

func firstFromLogRecords(value interface{}) (map[string]interface{}, bool) {
	logRecords, ok := value.([]interface{})
	if !ok {
		return nil, false
	}
	for _, item := range logRecords {
		if record, ok := item.(map[string]interface{}); ok {
			return record, true
		}
	}
	return nil, false
}

func otelRecord(raw map[string]interface{}, resourceAttrs map[string]string) model.Record {
	level := extractStringField(raw, "severityText")
	if level == "" {
		level = severityFromOTELNumber(parseOTELSeverityNumber(raw["severityNumber"]))
	}
	if level == "" {
		level = DefaultStructuredLevel
	}

	source := resourceAttrs["service.name"]
	if source == "" {
		source = parseOTELAttributes(raw["attributes"])["service.name"]
	}

	return model.Record{
		Timestamp: extractOTELTimestamp(raw),
		Level:     level,
		Message:   sanitizeLogMessage(extractOTELBody(raw["body"])),
		Source:    source,
	}
}

func parseOTELResourceAttributes(value interface{}) map[string]string {
	resource, ok := value.(map[string]interface{})
	if !ok {
		return map[string]string{}
	}
	return parseOTELAttributes(resource["attributes"])
}

func parseOTELAttributes(value interface{}) map[string]string {
	out := map[string]string{}
	attributes, ok := value.([]interface{})
	if !ok {
		return out
	}

	for _, item := range attributes {
		attr, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		key := extractStringField(attr, "key")
		if key == "" {
			continue
		}
		if val := extractOTELAnyValue(attr["value"]); val != "" {
			out[key] = val
		}
	}
	return out
}

func extractOTELBody(value interface{}) string {
	switch body := value.(type) {
	case string:
		return body
	case map[string]interface{}:
		return extractOTELAnyValue(body)
	default:
		return stringifyJSONValue(body)
	}
}

func extractOTELAnyValue(value interface{}) string {
	anyValue, ok := value.(map[string]interface{})
	if !ok {
		return stringifyJSONValue(value)
	}

	for _, key := range []string{"stringValue", "boolValue", "intValue", "doubleValue", "bytesValue"} {
		if val, ok := anyValue[key]; ok {
			return stringifyJSONValue(val)
		}
	}

	if arrayValue, ok := anyValue["arrayValue"].(map[string]interface{}); ok {
		if vals, ok := arrayValue["values"].([]interface{}); ok {
			parts := make([]string, 0, len(vals))
			for _, v := range vals {
				if part := extractOTELAnyValue(v); part != "" {
					parts = append(parts, part)
				}
			}
			return strings.Join(parts, ",")
		}
	}

	return stringifyJSONValue(anyValue)
}

func extractOTELTimestamp(raw map[string]interface{}) time.Time {
	for _, key := range []string{"timeUnixNano", "observedTimeUnixNano"} {
		if ts, ok := parseTimeUnixNano(raw[key]); ok {
			return ts
		}
	}
	return time.Time{}
}

func parseTimeUnixNano(value interface{}) (time.Time, bool) {
	var n int64
	switch v := value.(type) {
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		n = parsed
	case float64:
		n = int64(v)
	default:
		return time.Time{}, false
	}
	if n <= 0 {
		return time.Time{}, false
	}
	return time.Unix(0, n).UTC(), true
}

func parseOTELSeverityNumber(value interface{}) int {
	switch v := value.(type) {
	case float64:
		if v <= 0 {
			return 0
		}
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return 0
		}
		return n
	default:
		return 0
	}
}

func severityFromOTELNumber(number int) string {
	switch {
	case number >= 1 && number <= 4:
		return "TRACE"
	case number >= 5 && number <= 8:
		return "DEBUG"
	case number >= 9 && number <= 12:
		return "INFO"
	case number >= 13 && number <= 16:
		return "WARN"
	case number >= 17 && number <= 20:
		return "ERROR"
	case number >= 21 && number <= 24:
		return "FATAL"
	default:
		return ""
	}
}

// isOTELLogRecord reports whether a bare object is an OTEL log record. An
// object carrying structured-line keys is only taken when it also has an
// OTEL body or severityText.
func isOTELLogRecord(raw map[string]interface{}) bool {
	_, hasBody := raw["body"]
	_, hasSeverityText := raw["severityText"]
	if !hasBody && !hasSeverityText {
		for _, key := range []string{"level", "message", "timestamp"} {
			if _, ok := raw[key]; ok {
				return false
			}
		}
	}

	for _, key := range []string{
		"timeUnixNano",
		"observedTimeUnixNano",
		"severityNumber",
		"severityText",
		"traceId",
		"spanId",
	} {
		if _, ok := raw[key]; ok {
			return true
		}
	}

	_, hasAttrs := raw["attributes"]
	return hasBody && hasAttrs
}

func stringifyJSONValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64, bool:
		return fmt.Sprintf("%v", v)
	default:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}
	return ""
}

func sanitizeLogMessage(message string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(message)
}

func extractStringField(raw map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if str := stringifyJSONValue(raw[k]); str != "" {
			return str
		}
	}
	return ""
}
