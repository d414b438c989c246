package logparse

import "testing"

func TestNormalizeSeverity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected string
	}{
		// Standard forms
		{"TRACE", "TRACE"}, {"DEBUG", "DEBUG"}, {"INFO", "INFO"},
		{"WARN", "WARN"}, {"ERROR", "ERROR"}, {"FATAL", "FATAL"},
		// Variants
		{"TRC", "TRACE"}, {"DBG", "DEBUG"}, {"INFORMATION", "INFO"},
		{"WARNING", "WARN"}, {"ERR", "ERROR"}, {"CRITICAL", "FATAL"},
		{"PANIC", "FATAL"},
		// Case and whitespace
		{"info", "INFO"}, {"  warn\t", "WARN"},
		// Prefix matching
		{"ERROR_CODE_42", "ERROR"}, {"CRITICAL_ALERT", "FATAL"},
		// Unknown levels pass through upper-cased
		{"notice", "NOTICE"}, {"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeSeverity(tt.input); got != tt.expected {
				t.Errorf("NormalizeSeverity(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelRankOrdering(t *testing.T) {
	t.Parallel()
	ordered := []string{"trace", "DEBUG", "Info", "WARNING", "ERROR", "CRITICAL", "NOTICE"}
	for i := 1; i < len(ordered); i++ {
		if LevelRank(ordered[i-1]) >= LevelRank(ordered[i]) {
			t.Errorf("LevelRank(%q) should be below LevelRank(%q)", ordered[i-1], ordered[i])
		}
	}
	if LevelRank("UNKNOWN") != RankUnknown {
		t.Errorf("LevelRank(UNKNOWN) = %d, want %d", LevelRank("UNKNOWN"), RankUnknown)
	}
}
