package logparse

import (
	"testing"
	"time"
)

func TestOTELParserLogRecord(t *testing.T) {
	t.Parallel()
	line := `{"timeUnixNano":"1701424800000000000","severityNumber":17,"body":{"stringValue":"payment\tfailed"},"attributes":[{"key":"service.name","value":{"stringValue":"billing"}}]}`

	record, ok := OTELParser{}.Parse(line)
	if !ok {
		t.Fatal("expected OTEL log record to parse")
	}
	if record.Level != "ERROR" {
		t.Errorf("level = %q, want ERROR (severityNumber 17)", record.Level)
	}
	if record.Message != "payment failed" {
		t.Errorf("message = %q, want tabs replaced", record.Message)
	}
	if record.Source != "billing" {
		t.Errorf("source = %q, want billing", record.Source)
	}
	want := time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)
	if !record.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", record.Timestamp, want)
	}
}

func TestOTELParserEnvelopeTakesFirstRecord(t *testing.T) {
	t.Parallel()
	line := `{"resourceLogs":[{"resource":{"attributes":[{"key":"service.name","value":{"stringValue":"api"}}]},"scopeLogs":[{"logRecords":[{"severityText":"Warn","body":{"stringValue":"first"}},{"severityText":"ERROR","body":{"stringValue":"second"}}]}]}]}`

	record, ok := OTELParser{}.Parse(line)
	if !ok {
		t.Fatal("expected OTEL envelope to parse")
	}
	if record.Level != "Warn" {
		t.Errorf("level = %q, want raw severityText Warn", record.Level)
	}
	if record.Message != "first" {
		t.Errorf("message = %q, want first", record.Message)
	}
	if record.Source != "api" {
		t.Errorf("source = %q, want api", record.Source)
	}
	if record.HasTimestamp() {
		t.Error("record without timeUnixNano should have no timestamp")
	}
}

func TestOTELParserRejectsPlainJSON(t *testing.T) {
	t.Parallel()
	for _, line := range []string{
		`{"level":"INFO","message":"plain"}`,
		`{"level":"ERROR","message":"db down","traceId":"abc","spanId":"def"}`,
		`{"timestamp":"2023-12-01 10:00:00","timeUnixNano":"1701424800000000000"}`,
		`{"resourceLogs":[]}`,
		`not json`,
	} {
		if _, ok := (OTELParser{}).Parse(line); ok {
			t.Errorf("Parse(%q) should be rejected", line)
		}
	}
}

func TestSeverityFromOTELNumber(t *testing.T) {
	t.Parallel()
	tests := map[int]string{0: "", 1: "TRACE", 5: "DEBUG", 9: "INFO", 13: "WARN", 17: "ERROR", 21: "FATAL", 25: ""}
	for number, want := range tests {
		if got := severityFromOTELNumber(number); got != want {
			t.Errorf("severityFromOTELNumber(%d) = %q, want %q", number, got, want)
		}
	}
}
