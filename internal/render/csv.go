package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tinytelemetry/logscope/internal/model"
)

// csvRenderer writes one category,key,value row per fact.
type csvRenderer struct{}

func (r *csvRenderer) Render(w io.Writer, report model.AnalysisReport) error {
	cw := csv.NewWriter(w)
	st := report.Statistics

	rows := [][]string{
		{"category", "key", "value"},
		{"report", "source", report.Source},
		{"report", "generated_at", report.GeneratedAt.Format(time.RFC3339)},
		{"statistics", "total_entries", strconv.Itoa(st.Total)},
	}
	for _, level := range orderedLevels(st) {
		rows = append(rows, []string{"level_count", level, strconv.Itoa(st.LevelCounts[level])})
	}
	if ts := st.TimeSpan; ts != nil {
		rows = append(rows,
			[]string{"time_span", "first_entry", ts.First.Format(time.RFC3339)},
			[]string{"time_span", "last_entry", ts.Last.Format(time.RFC3339)},
			[]string{"time_span", "duration_seconds", strconv.FormatInt(ts.DurationSeconds, 10)},
		)
	}
	if st.AvgIntervalSeconds != nil {
		rows = append(rows,
			[]string{"statistics", "average_time_diff", formatFloat(*st.AvgIntervalSeconds)},
			[]string{"statistics", "min_time_diff", formatFloat(*st.MinIntervalSeconds)},
			[]string{"statistics", "max_time_diff", formatFloat(*st.MaxIntervalSeconds)},
		)
	}
	for _, rc := range report.Patterns.TopFirstTokens {
		rows = append(rows, []string{"first_token", rc.Value, strconv.Itoa(rc.Count)})
	}
	for _, rc := range report.Patterns.TopPrefixes {
		rows = append(rows, []string{"prefix", rc.Value, strconv.Itoa(rc.Count)})
	}
	for _, tc := range report.Patterns.Templates {
		rows = append(rows, []string{"template", tc.Template, strconv.Itoa(tc.Count)})
	}
	for i, f := range report.Anomalies {
		category := fmt.Sprintf("anomaly.%d", i)
		rows = append(rows,
			[]string{category, "id", f.ID},
			[]string{category, "kind", string(f.Kind)},
			[]string{category, "detector", f.Detector},
			[]string{category, "confidence", formatFloat(f.Confidence)},
			[]string{category, "severity", strconv.Itoa(f.Severity)},
			[]string{category, "description", f.Description},
			[]string{category, "related_record_indices", joinIndices(f.RelatedRecordIndices)},
			[]string{category, "detected_at", f.DetectedAt.Format(time.RFC3339)},
		)
	}
	rows = append(rows,
		[]string{"ingest", "lines", strconv.Itoa(report.Ingest.Lines)},
		[]string{"ingest", "parsed", strconv.Itoa(report.Ingest.Parsed)},
		[]string{"ingest", "dropped", strconv.Itoa(report.Ingest.Dropped)},
	)
	for _, warning := range report.Warnings {
		rows = append(rows, []string{"warning", "", strings.TrimSpace(warning)})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("render: write csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
