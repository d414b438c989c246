package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/logscope/internal/model"
)

func sampleReport() model.AnalysisReport {
	avg, lo, hi := 75.0, 60.0, 90.0
	first := time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)
	return model.AnalysisReport{
		Source:      "app.log",
		GeneratedAt: first.Add(time.Hour),
		Statistics: model.Statistics{
			Total:       3,
			LevelCounts: map[string]int{"INFO": 1, "ERROR": 2},
			LevelOrder:  []string{"INFO", "ERROR"},
			TimeSpan:    &model.TimeSpan{First: first, Last: first.Add(150 * time.Second), DurationSeconds: 150},

			AvgIntervalSeconds: &avg,
			MinIntervalSeconds: &lo,
			MaxIntervalSeconds: &hi,
		},
		Patterns: model.PatternSummary{
			TopFirstTokens: []model.RankedCount{{Value: "Connection", Count: 2}, {Value: "Service", Count: 1}},
			TopPrefixes:    []model.RankedCount{{Value: "Connection refused to", Count: 2}},
		},
		Anomalies: []model.AnomalyFinding{{
			Kind:                 model.FrequencySpike,
			Detector:             "heuristic",
			Confidence:           0.85,
			Description:          "Unusual spike in ERROR logs detected (2 occurrences)",
			RelatedRecordIndices: []int{1, 2},
			Severity:             4,
		}},
		Ingest: model.IngestStats{Lines: 4, Parsed: 3, Dropped: 1, ByParser: map[string]int{"standard": 3}},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func newSizedApp(t *testing.T, reload ReloadFunc) (*App, *ReportPage) {
	t.Helper()
	page := NewReportPage(context.Background(), sampleReport(), reload)
	app := NewApp(page, NewHelpPage())
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app, page
}

func TestTabCycling(t *testing.T) {
	t.Parallel()
	app, page := newSizedApp(t, nil)

	steps := []struct {
		key  string
		want Tab
	}{
		{"tab", TabPatterns},
		{"tab", TabAnomalies},
		{"tab", TabOverview},
		{"shift+tab", TabAnomalies},
		{"shift+tab", TabPatterns},
	}
	for i, s := range steps {
		app.Update(keyMsg(s.key))
		if got := page.Tab(); got != s.want {
			t.Fatalf("step %d (%s): tab = %v, want %v", i, s.key, got, s.want)
		}
	}
}

func TestQuitKey(t *testing.T) {
	t.Parallel()
	app, _ := newSizedApp(t, nil)

	_, cmd := app.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("q command produced %T, want tea.QuitMsg", cmd())
	}
}

func TestHelpPageNavigation(t *testing.T) {
	t.Parallel()
	app, _ := newSizedApp(t, nil)

	app.Update(keyMsg("?"))
	if got := app.ActivePage(); got != PageHelp {
		t.Fatalf("active page = %q, want %q", got, PageHelp)
	}
	if view := app.View(); !strings.Contains(view, "next tab") {
		t.Errorf("help view missing bindings:\n%s", view)
	}

	app.Update(keyMsg("esc"))
	if got := app.ActivePage(); got != PageReport {
		t.Fatalf("active page after esc = %q, want %q", got, PageReport)
	}
}

func TestReload(t *testing.T) {
	t.Parallel()
	calls := 0
	reload := func(context.Context) (model.AnalysisReport, error) {
		calls++
		rep := sampleReport()
		rep.Source = "reloaded.log"
		return rep, nil
	}
	app, page := newSizedApp(t, reload)

	_, cmd := app.Update(keyMsg("r"))
	if cmd == nil {
		t.Fatal("r returned no command")
	}
	msg := cmd()
	if !strings.Contains(app.View(), "re-analyzing") {
		t.Error("view does not show reload in progress")
	}
	app.Update(msg)

	if calls != 1 {
		t.Errorf("reload calls = %d, want 1", calls)
	}
	if got := page.Report().Source; got != "reloaded.log" {
		t.Errorf("source = %q, want reloaded.log", got)
	}
}

func TestReloadDisabledWithoutFunc(t *testing.T) {
	t.Parallel()
	app, page := newSizedApp(t, nil)

	app.Update(keyMsg("r"))
	if got := page.Report().Source; got != "app.log" {
		t.Errorf("source changed to %q", got)
	}
}

func TestReloadErrorKeepsReport(t *testing.T) {
	t.Parallel()
	app, page := newSizedApp(t, nil)

	app.Update(ReportMsg{Err: errors.New("file vanished")})
	if got := page.Report().Source; got != "app.log" {
		t.Errorf("source = %q, want the previous report kept", got)
	}
	if view := app.View(); !strings.Contains(view, "file vanished") {
		t.Errorf("view missing reload error:\n%s", view)
	}
}

func TestReportMsgReachesHiddenReportPage(t *testing.T) {
	t.Parallel()
	app, page := newSizedApp(t, nil)

	app.Update(keyMsg("?"))
	rep := sampleReport()
	rep.Source = "pushed.log"
	app.Update(ReportMsg{Report: rep})

	if got := page.Report().Source; got != "pushed.log" {
		t.Errorf("source = %q, want pushed.log", got)
	}
}

func TestViewBeforeWindowSize(t *testing.T) {
	t.Parallel()
	app := NewViewer(context.Background(), sampleReport(), nil)
	if got := app.View(); got != "Loading report..." {
		t.Errorf("View = %q", got)
	}
}

func TestRenderTabs(t *testing.T) {
	t.Parallel()
	rep := sampleReport()

	tests := []struct {
		tab  Tab
		want []string
	}{
		{TabOverview, []string{"Levels", "ERROR", "TOTAL", "2m 30s", "75.00s", "standard"}},
		{TabPatterns, []string{"Top message starts", "Connection", "Connection refused to"}},
		{TabAnomalies, []string{"frequency_spike", "confidence 0.85", "Unusual spike in ERROR logs", "records: 1 2"}},
	}
	for _, tt := range tests {
		got := renderTab(tt.tab, rep, 100)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("%v tab missing %q:\n%s", tt.tab, w, got)
			}
		}
	}
}

func TestRenderEmptyReport(t *testing.T) {
	t.Parallel()
	rep := model.AnalysisReport{Anomalies: []model.AnomalyFinding{}, Warnings: []string{"backend down"}}

	if got := renderOverview(rep, 80); !strings.Contains(got, "No records") || !strings.Contains(got, "No timestamped records") {
		t.Errorf("empty overview:\n%s", got)
	}
	got := renderAnomalies(rep, 80)
	if !strings.Contains(got, "No anomalies detected") || !strings.Contains(got, "backend down") {
		t.Errorf("empty anomalies:\n%s", got)
	}
}

func TestChartLevelsOrder(t *testing.T) {
	t.Parallel()
	got := chartLevels(map[string]int{"ERROR": 1, "debug": 4, "INFO": 2, "custom": 1})
	want := []string{"debug", "INFO", "ERROR", "custom"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("chartLevels = %v, want %v", got, want)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
