// Package tui is the interactive terminal viewer for an analysis report.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/logscope/internal/model"
)

// NewViewer builds the viewer model without starting a program.
func NewViewer(ctx context.Context, rep model.AnalysisReport, reload ReloadFunc) *App {
	return NewApp(NewReportPage(ctx, rep, reload), NewHelpPage())
}

// Run shows rep until the user quits or ctx is cancelled. updates, when
// non-nil, pushes newer reports (watch mode) into the running viewer.
func Run(ctx context.Context, rep model.AnalysisReport, reload ReloadFunc, updates <-chan ReportMsg) error {
	prog := tea.NewProgram(NewViewer(ctx, rep, reload), tea.WithAltScreen(), tea.WithContext(ctx))

	if updates != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-updates:
					if !ok {
						return
					}
					prog.Send(msg)
				}
			}
		}()
	}

	if _, err := prog.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
