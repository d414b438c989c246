package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tinytelemetry/logscope/internal/model"
	"github.com/tinytelemetry/logscope/internal/render"
)

// Tab is one view of the report.
type Tab int

const (
	TabOverview Tab = iota
	TabPatterns
	TabAnomalies
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabOverview:
		return "Overview"
	case TabPatterns:
		return "Patterns"
	case TabAnomalies:
		return "Anomalies"
	default:
		return fmt.Sprintf("Tab(%d)", int(t))
	}
}

const timeLayout = "2006-01-02 15:04:05"

// renderTab builds the scrollable body for tab.
func renderTab(t Tab, rep model.AnalysisReport, width int) string {
	switch t {
	case TabPatterns:
		return renderPatterns(rep, width)
	case TabAnomalies:
		return renderAnomalies(rep, width)
	default:
		return renderOverview(rep, width)
	}
}

func renderOverview(rep model.AnalysisReport, width int) string {
	st := rep.Statistics
	var b strings.Builder

	b.WriteString(sectionTitleStyle.Render("Levels") + "\n")
	b.WriteString(renderLevelChart(st, width) + "\n\n")

	b.WriteString(sectionTitleStyle.Render("Time") + "\n")
	if ts := st.TimeSpan; ts != nil {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("First:   "), ts.First.Format(timeLayout))
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Last:    "), ts.Last.Format(timeLayout))
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Duration:"), render.FormatDuration(ts.DurationSeconds))
	} else {
		b.WriteString(helpStyle.Render("No timestamped records") + "\n")
	}
	if st.AvgIntervalSeconds != nil {
		fmt.Fprintf(&b, "%s %.2fs (min %.2fs, max %.2fs)\n", labelStyle.Render("Avg gap: "),
			*st.AvgIntervalSeconds, *st.MinIntervalSeconds, *st.MaxIntervalSeconds)
	}

	b.WriteString("\n" + sectionTitleStyle.Render("Ingest") + "\n")
	in := rep.Ingest
	fmt.Fprintf(&b, "%s %s read, %s parsed, %s skipped\n", labelStyle.Render("Lines:   "),
		humanize.Comma(int64(in.Lines)), humanize.Comma(int64(in.Parsed)), humanize.Comma(int64(in.Dropped)))
	for _, name := range sortedKeys(in.ByParser) {
		fmt.Fprintf(&b, "  %-12s %s\n", name, humanize.Comma(int64(in.ByParser[name])))
	}

	if len(rep.Warnings) > 0 {
		b.WriteString("\n" + sectionTitleStyle.Render("Warnings") + "\n")
		for _, w := range rep.Warnings {
			b.WriteString(warnStyle.Render("! "+w) + "\n")
		}
	}
	return b.String()
}

func renderPatterns(rep model.AnalysisReport, width int) string {
	p := rep.Patterns
	var b strings.Builder
	writeRankedBars(&b, "Top message starts", p.TopFirstTokens, width)
	b.WriteString("\n")
	writeRankedBars(&b, "Top message prefixes", p.TopPrefixes, width)
	if len(p.Templates) > 0 {
		b.WriteString("\n" + sectionTitleStyle.Render("Templates") + "\n")
		for _, t := range p.Templates {
			fmt.Fprintf(&b, "%8s  %s\n", humanize.Comma(int64(t.Count)), truncate(t.Template, max(20, width-12)))
		}
	}
	return b.String()
}

// writeRankedBars renders a ranked list with proportional bars.
func writeRankedBars(b *strings.Builder, title string, items []model.RankedCount, width int) {
	b.WriteString(sectionTitleStyle.Render(title) + "\n")
	if len(items) == 0 {
		b.WriteString(helpStyle.Render("none") + "\n")
		return
	}

	const barWidth = 12
	maxCount := items[0].Count
	for _, it := range items {
		maxCount = max(maxCount, it.Count)
	}
	valueWidth := max(20, width-barWidth-14)
	for i, it := range items {
		fill := 0
		if maxCount > 0 {
			fill = it.Count * barWidth / maxCount
		}
		if fill == 0 && it.Count > 0 {
			fill = 1
		}
		color := ColorBlue
		if i == 0 {
			color = ColorOrange
		}
		bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", fill)) +
			labelStyle.Render(strings.Repeat("░", barWidth-fill))
		fmt.Fprintf(b, "%s %7s  %s\n", bar, humanize.Comma(int64(it.Count)), truncate(it.Value, valueWidth))
	}
}

func renderAnomalies(rep model.AnalysisReport, width int) string {
	var b strings.Builder
	if len(rep.Anomalies) == 0 {
		b.WriteString(helpStyle.Render("No anomalies detected") + "\n")
	}
	for i, f := range rep.Anomalies {
		sev := lipgloss.NewStyle().Foreground(findingSeverityColor(f.Severity)).Bold(true)
		fmt.Fprintf(&b, "%s %s  %s\n",
			sev.Render(fmt.Sprintf("[%d] sev %d", i+1, f.Severity)),
			string(f.Kind),
			labelStyle.Render(fmt.Sprintf("confidence %.2f", f.Confidence)))
		b.WriteString("    " + truncate(f.Description, max(20, width-4)) + "\n")
		meta := []string{}
		if f.Detector != "" {
			meta = append(meta, "detector "+f.Detector)
		}
		if !f.DetectedAt.IsZero() {
			meta = append(meta, "at "+f.DetectedAt.Format(timeLayout))
		}
		meta = append(meta, fmt.Sprintf("%d related records", len(f.RelatedRecordIndices)))
		b.WriteString("    " + labelStyle.Render(strings.Join(meta, " · ")) + "\n")
		if len(f.RelatedRecordIndices) > 0 {
			b.WriteString("    " + labelStyle.Render("records: "+truncate(joinInts(f.RelatedRecordIndices), max(20, width-13))) + "\n")
		}
		b.WriteString("\n")
	}
	for _, w := range rep.Warnings {
		b.WriteString(warnStyle.Render("! "+w) + "\n")
	}
	return b.String()
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, " ")
}
