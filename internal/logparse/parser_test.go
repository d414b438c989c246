package logparse

import (
	"sync"
	"testing"
)

func TestDispatcherOrderAndCounters(t *testing.T) {
	t.Parallel()
	d := DefaultDispatcher()

	lines := []string{
		"2023-12-01 10:00:00 [INFO] Application started",
		`{"timestamp":"2023-12-01 10:01:00","level":"ERROR","message":"Database connection failed"}`,
		`{"severityText":"WARN","body":"otel line"}`,
		"not a log",
		"",
	}
	records := d.ParseAll(lines)
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0].Level != "INFO" || records[1].Level != "ERROR" || records[2].Level != "WARN" {
		t.Errorf("unexpected levels: %q %q %q", records[0].Level, records[1].Level, records[2].Level)
	}

	stats := d.Stats()
	if stats.Lines != 5 || stats.Parsed != 3 || stats.Dropped != 2 {
		t.Errorf("stats = %+v, want lines=5 parsed=3 dropped=2", stats)
	}
	want := map[string]int{"standard": 1, "otel": 1, "structured": 1}
	for name, n := range want {
		if stats.ByParser[name] != n {
			t.Errorf("ByParser[%s] = %d, want %d", name, stats.ByParser[name], n)
		}
	}

	d.Reset()
	if s := d.Stats(); s.Lines != 0 || s.Dropped != 0 || s.ByParser["standard"] != 0 {
		t.Errorf("after Reset stats = %+v", s)
	}
}

func TestDispatcherStructuredLineWithTraceID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		line       string
		wantParser string
		wantLevel  string
		wantMsg    string
	}{
		{
			name:       "structured with traceId",
			line:       `{"timestamp":"2023-12-01 10:00:00","level":"ERROR","message":"db down","traceId":"abc","source":"api"}`,
			wantParser: "structured",
			wantLevel:  "ERROR",
			wantMsg:    "db down",
		},
		{
			name:       "structured with severityNumber",
			line:       `{"level":"WARN","message":"slow","severityNumber":13}`,
			wantParser: "structured",
			wantLevel:  "WARN",
			wantMsg:    "slow",
		},
		{
			name:       "otel record with traceId and body",
			line:       `{"severityText":"ERROR","body":{"stringValue":"boom"},"traceId":"abc","timeUnixNano":"1701424800000000000"}`,
			wantParser: "otel",
			wantLevel:  "ERROR",
			wantMsg:    "boom",
		},
		{
			name:       "bare traceId object",
			line:       `{"traceId":"abc","spanId":"def"}`,
			wantParser: "otel",
			wantLevel:  DefaultStructuredLevel,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			record, parser, ok := DefaultDispatcher().ParseNamed(tt.line)
			if !ok {
				t.Fatal("expected line to parse")
			}
			if parser != tt.wantParser {
				t.Errorf("parser = %q, want %q", parser, tt.wantParser)
			}
			if record.Level != tt.wantLevel || record.Message != tt.wantMsg {
				t.Errorf("record = %+v, want level %q message %q", record, tt.wantLevel, tt.wantMsg)
			}
		})
	}

	record, _, _ := DefaultDispatcher().ParseNamed(tests[0].line)
	if record.Source != "api" || !record.HasTimestamp() {
		t.Errorf("structured fields lost: %+v", record)
	}
}

func TestDispatcherFirstSuccessWins(t *testing.T) {
	t.Parallel()
	// A JSON object whose text looks like the standard format goes to the
	// standard parser because it is tried first.
	line := `{"message": "a [b] c"}`
	d := DefaultDispatcher()
	record, ok := d.Parse(line)
	if !ok {
		t.Fatal("expected line to parse")
	}
	if record.Level != "b" {
		t.Errorf("level = %q, want b from the standard parser", record.Level)
	}
	if d.Stats().ByParser["standard"] != 1 {
		t.Errorf("ByParser = %v, want standard=1", d.Stats().ByParser)
	}
}

func TestDispatcherParserNames(t *testing.T) {
	t.Parallel()
	names := DefaultDispatcher().ParserNames()
	want := []string{"standard", "otel", "structured"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDispatcherConcurrentCounters(t *testing.T) {
	t.Parallel()
	d := DefaultDispatcher()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.Parse("2023-12-01 10:00:00 [INFO] tick")
				d.Parse("garbage")
			}
		}()
	}
	wg.Wait()

	stats := d.Stats()
	if stats.Parsed != 800 || stats.Dropped != 800 || stats.Lines != 1600 {
		t.Errorf("stats = %+v, want parsed=800 dropped=800 lines=1600", stats)
	}
}
