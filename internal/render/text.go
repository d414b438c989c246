package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tinytelemetry/logscope/internal/model"
)

var (
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	heading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

const textTimeLayout = "2006-01-02 15:04:05"

type textRenderer struct{}

func (r *textRenderer) Render(w io.Writer, report model.AnalysisReport) error {
	var b strings.Builder
	st := report.Statistics

	b.WriteString(heading.Render("=== Log Analysis Results ===") + "\n")
	if report.Source != "" {
		fmt.Fprintf(&b, "%s %s\n", dim.Render("Source:"), report.Source)
	}
	fmt.Fprintf(&b, "Total log entries: %s\n", humanize.Comma(int64(st.Total)))
	fmt.Fprintf(&b, "%s\n", dim.Render(fmt.Sprintf("Lines read: %s, skipped: %s",
		humanize.Comma(int64(report.Ingest.Lines)), humanize.Comma(int64(report.Ingest.Dropped)))))

	b.WriteString("\n" + heading.Render("Log Level Distribution:") + "\n")
	for _, level := range orderedLevels(st) {
		fmt.Fprintf(&b, "  %s: %s\n", levelStyle(level).Render(level), humanize.Comma(int64(st.LevelCounts[level])))
	}

	if ts := st.TimeSpan; ts != nil {
		b.WriteString("\n" + heading.Render("Time Span:") + "\n")
		fmt.Fprintf(&b, "  First Entry: %s\n", ts.First.Format(textTimeLayout))
		fmt.Fprintf(&b, "  Last Entry: %s\n", ts.Last.Format(textTimeLayout))
		fmt.Fprintf(&b, "  Duration: %s\n", FormatDuration(ts.DurationSeconds))
	}
	if st.AvgIntervalSeconds != nil {
		fmt.Fprintf(&b, "\nAverage Time Between Entries: %.2f seconds\n", *st.AvgIntervalSeconds)
		fmt.Fprintf(&b, "%s\n", dim.Render(fmt.Sprintf("Shortest gap: %.2f seconds, longest gap: %.2f seconds",
			*st.MinIntervalSeconds, *st.MaxIntervalSeconds)))
	}

	writeRanked(&b, "Top Message Starts:", report.Patterns.TopFirstTokens)
	writeRanked(&b, "Top Message Prefixes:", report.Patterns.TopPrefixes)
	if len(report.Patterns.Templates) > 0 {
		b.WriteString("\n" + heading.Render("Message Templates:") + "\n")
		for i, tc := range report.Patterns.Templates {
			fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, tc.Template, humanize.Comma(int64(tc.Count)))
		}
	}

	if len(report.Anomalies) > 0 {
		b.WriteString("\n" + heading.Render("Detected Anomalies:") + "\n")
		for i, f := range report.Anomalies {
			fmt.Fprintf(&b, "  %d. %s (Confidence: %.1f%%, Severity: %s)\n",
				i+1, f.Description, f.Confidence*100, severityStyle(f.Severity).Render(fmt.Sprintf("%d/5", f.Severity)))
			fmt.Fprintf(&b, "     %s\n", dim.Render(fmt.Sprintf("kind=%s detector=%s id=%s detected=%s",
				f.Kind, f.Detector, f.ID, f.DetectedAt.Format(time.RFC3339))))
			fmt.Fprintf(&b, "     %s\n", dim.Render(fmt.Sprintf("related records: %s", joinIndices(f.RelatedRecordIndices))))
		}
	} else {
		b.WriteString("\n" + green.Render("No anomalies detected.") + "\n")
	}

	for _, warning := range report.Warnings {
		fmt.Fprintf(&b, "\n%s %s\n", yellow.Render("warning:"), warning)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRanked(b *strings.Builder, title string, ranked []model.RankedCount) {
	if len(ranked) == 0 {
		return
	}
	b.WriteString("\n" + heading.Render(title) + "\n")
	for i, rc := range ranked {
		fmt.Fprintf(b, "  %d. %s (%s)\n", i+1, rc.Value, humanize.Comma(int64(rc.Count)))
	}
}

func levelStyle(level string) lipgloss.Style {
	switch strings.ToUpper(level) {
	case "ERROR", "FATAL", "CRITICAL":
		return red
	case "WARN", "WARNING":
		return yellow
	case "INFO":
		return cyan
	default:
		return lipgloss.NewStyle()
	}
}

func severityStyle(severity int) lipgloss.Style {
	switch {
	case severity >= 4:
		return red
	case severity == 3:
		return yellow
	default:
		return lipgloss.NewStyle()
	}
}
