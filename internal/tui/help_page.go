package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpPage lists every key binding.
type HelpPage struct {
	keys KeyMap
	help help.Model
}

// NewHelpPage creates the help page.
func NewHelpPage() *HelpPage {
	h := help.New()
	h.ShowAll = true
	return &HelpPage{keys: DefaultKeyMap(), help: h}
}

func (p *HelpPage) ID() string    { return PageHelp }
func (p *HelpPage) Init() tea.Cmd { return nil }

func (p *HelpPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.ForceQuit):
			return tea.Quit, nil
		case key.Matches(msg, p.keys.Escape), key.Matches(msg, p.keys.Help), key.Matches(msg, p.keys.Quit):
			return nil, &PageNav{PageID: PageReport}
		}
	}
	return nil, nil
}

func (p *HelpPage) View(width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Keys"),
		"",
		p.help.View(p.keys),
		"",
		helpStyle.Render("esc, ? or q to go back"),
	)
	return lipgloss.NewStyle().MaxWidth(max(1, width)).MaxHeight(max(1, height)).Render(body)
}
