package model

import (
	"testing"
	"time"
)

func TestParseFindingKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tag       string
		want      FindingKind
		wantOther bool
	}{
		{"frequency_spike", FrequencySpike, false},
		{"frequency_anomaly", FrequencySpike, false},
		{"content_anomaly", ContentAnomaly, false},
		{"time_pattern_anomaly", TimePatternAnomaly, false},
		{"TimePatternAnomaly", TimePatternAnomaly, false},
		{"repeating_error", Other("repeating_error"), true},
		{"window_anomaly", Other("window_anomaly"), true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got := ParseFindingKind(tt.tag)
			if got != tt.want {
				t.Errorf("ParseFindingKind(%q) = %q, want %q", tt.tag, got, tt.want)
			}
			if got.IsOther() != tt.wantOther {
				t.Errorf("ParseFindingKind(%q).IsOther() = %v, want %v", tt.tag, got.IsOther(), tt.wantOther)
			}
		})
	}
}

func TestRecordHasTimestamp(t *testing.T) {
	t.Parallel()

	if (Record{Level: "INFO"}).HasTimestamp() {
		t.Error("record without timestamp reported HasTimestamp")
	}
	r := Record{Timestamp: time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)}
	if !r.HasTimestamp() {
		t.Error("record with timestamp reported no timestamp")
	}
}
