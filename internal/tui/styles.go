package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/logscope/internal/logparse"
)

// Palette.
var (
	ColorWhite  = lipgloss.Color("15")
	ColorGray   = lipgloss.Color("245")
	ColorBlue   = lipgloss.Color("39")
	ColorOrange = lipgloss.Color("208")
	ColorRed    = lipgloss.Color("196")
	ColorPink   = lipgloss.Color("201")
	ColorGreen  = lipgloss.Color("42")
	ColorNavy   = lipgloss.Color("17")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorNavy).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Underline(true).
			Padding(0, 1)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorBlue)

	labelStyle = lipgloss.NewStyle().Foreground(ColorGray)
	helpStyle  = lipgloss.NewStyle().Foreground(ColorGray).Italic(true)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorOrange)
	errorStyle = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
)

// severityColor maps a raw level onto the palette by its normalized rank.
func severityColor(level string) lipgloss.Color {
	switch logparse.NormalizeSeverity(level) {
	case "FATAL":
		return ColorPink
	case "ERROR":
		return ColorRed
	case "WARN":
		return ColorOrange
	case "INFO":
		return ColorBlue
	case "DEBUG", "TRACE":
		return ColorGray
	default:
		return ColorWhite
	}
}

// findingSeverityColor colors a finding severity from 1 (low) to 5 (critical).
func findingSeverityColor(severity int) lipgloss.Color {
	switch {
	case severity >= 5:
		return ColorPink
	case severity == 4:
		return ColorRed
	case severity == 3:
		return ColorOrange
	case severity == 2:
		return ColorBlue
	default:
		return ColorGray
	}
}
