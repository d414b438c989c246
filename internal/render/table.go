package render

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/tinytelemetry/logscope/internal/model"
)

type tableRenderer struct{}

func (r *tableRenderer) Render(w io.Writer, report model.AnalysisReport) error {
	st := report.Statistics
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "LEVEL\tCOUNT\n")
	for _, level := range orderedLevels(st) {
		fmt.Fprintf(tw, "%s\t%d\n", level, st.LevelCounts[level])
	}
	fmt.Fprintf(tw, "TOTAL\t%d\n", st.Total)
	if err := tw.Flush(); err != nil {
		return err
	}

	if ts := st.TimeSpan; ts != nil {
		fmt.Fprintf(w, "\nSpan: %s .. %s (%s)\n", ts.First.Format(time.RFC3339), ts.Last.Format(time.RFC3339), FormatDuration(ts.DurationSeconds))
	}
	if st.AvgIntervalSeconds != nil {
		fmt.Fprintf(w, "Interval: avg %.2fs, min %.2fs, max %.2fs\n", *st.AvgIntervalSeconds, *st.MinIntervalSeconds, *st.MaxIntervalSeconds)
	}

	if len(report.Patterns.TopFirstTokens) > 0 || len(report.Patterns.TopPrefixes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(tw, "PATTERN\tVALUE\tCOUNT\n")
		for _, rc := range report.Patterns.TopFirstTokens {
			fmt.Fprintf(tw, "first_token\t%s\t%d\n", rc.Value, rc.Count)
		}
		for _, rc := range report.Patterns.TopPrefixes {
			fmt.Fprintf(tw, "prefix\t%s\t%d\n", rc.Value, rc.Count)
		}
		for _, tc := range report.Patterns.Templates {
			fmt.Fprintf(tw, "template\t%s\t%d\n", tc.Template, tc.Count)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(report.Anomalies) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(tw, "SEVERITY\tKIND\tCONFIDENCE\tDETECTOR\tRECORDS\tDESCRIPTION\n")
		for _, f := range report.Anomalies {
			fmt.Fprintf(tw, "%d/5\t%s\t%.0f%%\t%s\t%d\t%s\n",
				f.Severity, f.Kind, f.Confidence*100, f.Detector, len(f.RelatedRecordIndices), f.Description)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		for _, f := range report.Anomalies {
			fmt.Fprintf(w, "\n--- %s ---\n", f.ID)
			fmt.Fprintf(w, "Detected: %s\n", f.DetectedAt.Format(time.RFC3339))
			fmt.Fprintf(w, "Related records: %s\n", joinIndices(f.RelatedRecordIndices))
		}
	}

	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "\nwarning: %s\n", warning)
	}
	return nil
}
