package logparse

import "strings"

// Display ranks for the common severity vocabulary. Levels are never
// rewritten on records; ranks only order them for presentation.
const (
	RankTrace = iota
	RankDebug
	RankInfo
	RankWarn
	RankError
	RankFatal
	RankUnknown
)

// NormalizeSeverity maps common spellings of a level onto a short
// upper-case form. Unrecognized levels are returned upper-cased as-is.
func NormalizeSeverity(severity string) string {
	normalized := strings.ToUpper(strings.TrimSpace(severity))

	switch normalized {
	case "TRACE", "TRAC", "TRC":
		return "TRACE"
	case "DEBUG", "DEBU", "DBG", "DEB":
		return "DEBUG"
	case "INFO", "INFORMATION", "INF":
		return "INFO"
	case "WARN", "WARNING", "WRNG", "WRN":
		return "WARN"
	case "ERROR", "ERR", "ERRO":
		return "ERROR"
	case "FATAL", "FATL", "FTL", "CRITICAL", "CRIT", "CRT", "PANIC", "PNC":
		return "FATAL"
	}

	if len(normalized) >= 4 {
		switch normalized[:4] {
		case "INFO":
			return "INFO"
		case "WARN":
			return "WARN"
		case "ERRO":
			return "ERROR"
		case "DEBU":
			return "DEBUG"
		case "TRAC":
			return "TRACE"
		case "FATA", "CRIT":
			return "FATAL"
		}
	}
	return normalized
}

// LevelRank orders a raw level string for display, least severe first.
func LevelRank(level string) int {
	switch NormalizeSeverity(level) {
	case "TRACE":
		return RankTrace
	case "DEBUG":
		return RankDebug
	case "INFO":
		return RankInfo
	case "WARN":
		return RankWarn
	case "ERROR":
		return RankError
	case "FATAL":
		return RankFatal
	default:
		return RankUnknown
	}
}
