package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/logscope/internal/logparse"
	"github.com/tinytelemetry/logscope/internal/model"
)

const (
	levelChartHeight = 8
	legendWidth      = 22
)

// chartLevels orders levels least severe first so the bars read left to right.
func chartLevels(counts map[string]int) []string {
	levels := make([]string, 0, len(counts))
	for level := range counts {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool {
		ri, rj := logparse.LevelRank(levels[i]), logparse.LevelRank(levels[j])
		if ri != rj {
			return ri < rj
		}
		return levels[i] < levels[j]
	})
	return levels
}

// renderLevelChart draws one bar per level next to a count legend.
func renderLevelChart(st model.Statistics, width int) string {
	if len(st.LevelCounts) == 0 {
		return helpStyle.Render("No records")
	}

	levels := chartLevels(st.LevelCounts)
	chartWidth := width - legendWidth - 2
	if chartWidth < 10 {
		chartWidth = 10
	}
	barWidth := 3
	if need := len(levels)*(barWidth+1) - 1; need > chartWidth {
		barWidth = 1
	}

	bc := barchart.New(chartWidth, levelChartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(barWidth),
		barchart.WithNoAxis(),
	)
	for _, level := range levels {
		color := severityColor(level)
		bc.Push(barchart.BarData{
			Label: level,
			Values: []barchart.BarValue{{
				Name:  level,
				Value: float64(st.LevelCounts[level]),
				Style: lipgloss.NewStyle().Foreground(color).Background(color),
			}},
		})
	}
	bc.Draw()

	legend := make([]string, 0, len(levels)+2)
	for i := len(levels) - 1; i >= 0; i-- {
		level := levels[i]
		label := fmt.Sprintf("%-10s %8d", truncate(level, 10), st.LevelCounts[level])
		legend = append(legend, lipgloss.NewStyle().Foreground(severityColor(level)).Render(label))
	}
	legend = append(legend, labelStyle.Render(strings.Repeat("─", 19)))
	legend = append(legend, fmt.Sprintf("%-10s %8d", "TOTAL", st.Total))

	return lipgloss.JoinHorizontal(lipgloss.Top, bc.View(), "  ", strings.Join(legend, "\n"))
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
