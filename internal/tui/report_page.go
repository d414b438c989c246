package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/logscope/internal/model"
)

// ReloadFunc re-runs the analysis that produced the shown report.
type ReloadFunc func(ctx context.Context) (model.AnalysisReport, error)

// ReportMsg delivers a new report, or the error that prevented one.
type ReportMsg struct {
	Report model.AnalysisReport
	Err    error
}

// headerLines and footerLines frame the viewport.
const (
	headerLines = 3
	footerLines = 1
)

// ReportPage shows one report across tabs in a scrollable viewport.
type ReportPage struct {
	report   model.AnalysisReport
	reload   ReloadFunc
	ctx      context.Context
	keys     KeyMap
	help     help.Model
	viewport viewport.Model
	tab      Tab
	loading  bool
	loadErr  error
}

// NewReportPage creates the report page. reload may be nil, which disables
// the reload key.
func NewReportPage(ctx context.Context, rep model.AnalysisReport, reload ReloadFunc) *ReportPage {
	p := &ReportPage{
		report:   rep,
		reload:   reload,
		ctx:      ctx,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(80, 20),
	}
	p.keys.Reload.SetEnabled(reload != nil)
	p.refresh()
	return p
}

func (p *ReportPage) ID() string { return PageReport }

func (p *ReportPage) Init() tea.Cmd { return nil }

// Tab returns the active tab.
func (p *ReportPage) Tab() Tab { return p.tab }

// Report returns the report being shown.
func (p *ReportPage) Report() model.AnalysisReport { return p.report }

func (p *ReportPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.resize(msg.Width, msg.Height)
		return nil, nil

	case ReportMsg:
		p.loading = false
		if msg.Err != nil {
			p.loadErr = msg.Err
			return nil, nil
		}
		p.loadErr = nil
		p.report = msg.Report
		p.refresh()
		return nil, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.ForceQuit), key.Matches(msg, p.keys.Quit):
			return tea.Quit, nil
		case key.Matches(msg, p.keys.Help):
			return nil, &PageNav{PageID: PageHelp}
		case key.Matches(msg, p.keys.NextTab):
			p.setTab((p.tab + 1) % tabCount)
			return nil, nil
		case key.Matches(msg, p.keys.PrevTab):
			p.setTab((p.tab + tabCount - 1) % tabCount)
			return nil, nil
		case key.Matches(msg, p.keys.Home):
			p.viewport.GotoTop()
			return nil, nil
		case key.Matches(msg, p.keys.End):
			p.viewport.GotoBottom()
			return nil, nil
		case key.Matches(msg, p.keys.Reload):
			return p.startReload(), nil
		}
	}

	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd, nil
}

func (p *ReportPage) startReload() tea.Cmd {
	if p.reload == nil || p.loading {
		return nil
	}
	p.loading = true
	reload, ctx := p.reload, p.ctx
	return func() tea.Msg {
		rep, err := reload(ctx)
		return ReportMsg{Report: rep, Err: err}
	}
}

func (p *ReportPage) setTab(t Tab) {
	if t == p.tab {
		return
	}
	p.tab = t
	p.refresh()
	p.viewport.GotoTop()
}

func (p *ReportPage) resize(width, height int) {
	p.help.Width = width
	p.viewport.Width = max(20, width)
	p.viewport.Height = max(3, height-headerLines-footerLines)
	p.refresh()
}

// refresh re-renders the active tab into the viewport.
func (p *ReportPage) refresh() {
	p.viewport.SetContent(renderTab(p.tab, p.report, p.viewport.Width))
}

func (p *ReportPage) View(width, height int) string {
	if width <= 0 || height <= 0 {
		return "Loading report..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		p.renderHeader(width),
		p.viewport.View(),
		p.help.View(p.keys),
	)
}

func (p *ReportPage) renderHeader(width int) string {
	title := "logscope"
	if p.report.Source != "" {
		title += " · " + p.report.Source
	}
	status := ""
	switch {
	case p.loading:
		status = helpStyle.Render("re-analyzing...")
	case p.loadErr != nil:
		status = errorStyle.Render("reload failed: " + p.loadErr.Error())
	case !p.report.GeneratedAt.IsZero():
		status = labelStyle.Render("generated " + p.report.GeneratedAt.Local().Format(timeLayout))
	}
	top := titleStyle.Render(truncate(title, max(10, width-2)))
	if status != "" {
		top = lipgloss.JoinHorizontal(lipgloss.Top, top, " ", status)
	}

	tabs := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		label := t.String()
		if t == TabAnomalies {
			label += " (" + strconv.Itoa(len(p.report.Anomalies)) + ")"
		}
		if t == p.tab {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	rule := labelStyle.Render(strings.Repeat("─", max(0, width)))
	return lipgloss.JoinVertical(lipgloss.Left, top, lipgloss.JoinHorizontal(lipgloss.Top, tabs...), rule)
}
