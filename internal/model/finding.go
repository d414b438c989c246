package model

import "time"

// FindingKind tags what an anomaly finding is about. The set is open: any
// label outside the known constants is an "other" kind carried verbatim.
type FindingKind string

const (
	FrequencySpike     FindingKind = "frequency_spike"
	ContentAnomaly     FindingKind = "content_anomaly"
	TimePatternAnomaly FindingKind = "time_pattern_anomaly"
)

// Other returns an open-set kind for label.
func Other(label string) FindingKind {
	return FindingKind(label)
}

// ParseFindingKind maps a backend type tag onto a kind. Legacy tags used by
// older scoring backends are folded into the known constants.
func ParseFindingKind(tag string) FindingKind {
	switch tag {
	case "frequency_spike", "frequency_anomaly", "FrequencySpike", "FrequencyAnomaly":
		return FrequencySpike
	case "content_anomaly", "ContentAnomaly":
		return ContentAnomaly
	case "time_pattern_anomaly", "TimePatternAnomaly":
		return TimePatternAnomaly
	default:
		return Other(tag)
	}
}

// IsOther reports whether k is outside the known kinds.
func (k FindingKind) IsOther() bool {
	switch k {
	case FrequencySpike, ContentAnomaly, TimePatternAnomaly:
		return false
	}
	return true
}

// AnomalyFinding is one anomaly detection result.
type AnomalyFinding struct {
	ID                   string      `json:"id" yaml:"id"`
	Kind                 FindingKind `json:"kind" yaml:"kind"`
	Detector             string      `json:"detector,omitempty" yaml:"detector,omitempty"`
	Confidence           float64     `json:"confidence" yaml:"confidence"`
	Description          string      `json:"description" yaml:"description"`
	RelatedRecordIndices []int       `json:"related_record_indices" yaml:"related_record_indices"`
	Severity             int         `json:"severity" yaml:"severity"` // 1 (low) .. 5 (critical)
	DetectedAt           time.Time   `json:"detected_at" yaml:"detected_at"`
}
