package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bannerLine is one "● Label value" row of a startup banner.
type bannerLine struct {
	label string
	value string
	on    bool
}

// printBanner writes the startup banner for long-running commands.
func printBanner(w io.Writer, title string, rows []bannerLine) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	lines := []string{
		"",
		"    " + cyan.Bold(true).Render("logscope") + " " + dim.Render("v"+version),
		"",
		dim.Render("    ─────────────────────────────────"),
		"",
		bold.Render("    " + title),
		"",
	}
	for _, r := range rows {
		mark, value := check, cyan.Render(r.value)
		if !r.on {
			mark, value = dot, dim.Render(r.value)
		}
		lines = append(lines, fmt.Sprintf("    %s  %-14s %s", mark, r.label, value))
	}
	lines = append(lines, "", dim.Render("    Press Ctrl+C to stop"), "")
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

// shortenPath replaces the home directory prefix with ~.
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if rel, err := filepath.Rel(home, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.Join("~", rel)
	}
	return path
}
