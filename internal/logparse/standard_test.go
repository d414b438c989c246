package logparse

import (
	"testing"
	"time"
)

func TestStandardParser(t *testing.T) {
	t.Parallel()
	ts := time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		line    string
		ok      bool
		level   string
		message string
		hasTime bool
	}{
		{"basic", "2023-12-01 10:00:00 [INFO] Application started", true, "INFO", "Application started", true},
		{"empty message", "2023-12-01 10:00:00 [ERROR]", true, "ERROR", "", true},
		{"no space after bracket", "2023-12-01 10:00:00 [WARN]disk", true, "WARN", "disk", true},
		{"message keeps later brackets", "2023-12-01 10:00:00 [INFO] user [42] logged in", true, "INFO", "user [42] logged in", true},
		{"bad timestamp keeps record", "yesterday noon [WARN] late", true, "WARN", "late", false},
		{"raw level kept", "2023-12-01 10:00:00 [warning] mixed case", true, "warning", "mixed case", true},
		{"too few parts", "2023-12-01 [INFO]", false, "", "", false},
		{"no brackets", "not a log", false, "", "", false},
		{"unterminated bracket", "2023-12-01 10:00:00 [ERROR oops", false, "", "", false},
		{"empty line", "", false, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			record, ok := StandardParser{}.Parse(tt.line)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if !ok {
				return
			}
			if record.Level != tt.level {
				t.Errorf("level = %q, want %q", record.Level, tt.level)
			}
			if record.Message != tt.message {
				t.Errorf("message = %q, want %q", record.Message, tt.message)
			}
			if record.HasTimestamp() != tt.hasTime {
				t.Fatalf("HasTimestamp = %v, want %v", record.HasTimestamp(), tt.hasTime)
			}
			if tt.hasTime && !record.Timestamp.Equal(ts) {
				t.Errorf("timestamp = %v, want %v", record.Timestamp, ts)
			}
			if record.Source != "" {
				t.Errorf("source = %q, want empty", record.Source)
			}
		})
	}
}
