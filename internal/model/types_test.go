package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRecordJSONOmitsMissingTimestamp(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{
			name:   "no timestamp",
			record: Record{Level: "INFO", Message: "hello"},
			want:   `{"level":"INFO","message":"hello"}`,
		},
		{
			name:   "with timestamp",
			record: Record{Timestamp: time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC), Level: "ERROR", Message: "x", Source: "api"},
			want:   `{"timestamp":"2023-12-01T10:00:00Z","level":"ERROR","message":"x","source":"api"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := json.Marshal(tt.record)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("json = %s, want %s", b, tt.want)
			}
			if tt.record.Timestamp.IsZero() && strings.Contains(string(b), "0001-01-01") {
				t.Errorf("zero time leaked into %s", b)
			}
		})
	}
}
