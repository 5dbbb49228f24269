package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/unbound-force/debtmap/internal/priority"
	"github.com/unbound-force/debtmap/internal/report"
	"github.com/unbound-force/debtmap/internal/tier"
)

// browserKeys are the bindings of the interactive browser. Scrolling
// keys are handled by the viewport itself.
type browserKeys struct {
	Scroll key.Binding
	Next   key.Binding
	Prev   key.Binding
	Toggle key.Binding
	Quit   key.Binding
	Help   key.Binding
}

func (k browserKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Toggle, k.Quit, k.Help}
}

func (k browserKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Scroll, k.Next, k.Prev},
		{k.Toggle, k.Quit, k.Help},
	}
}

var browserKeyMap = browserKeys{
	Scroll: key.NewBinding(key.WithKeys("up", "down", "pgup", "pgdown"), key.WithHelp("^/v pgup/pgdn", "scroll")),
	Next:   key.NewBinding(key.WithKeys("n", "right", "l"), key.WithHelp("n", "next item")),
	Prev:   key.NewBinding(key.WithKeys("p", "left", "h"), key.WithHelp("p", "previous item")),
	Toggle: key.NewBinding(key.WithKeys("tab", "enter"), key.WithHelp("tab", "table/breakdown")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// browserModel lets the user page through ranked debt items, either as
// the full table or one score breakdown at a time.
type browserModel struct {
	result   priority.Result
	styles   report.Styles
	keys     browserKeys
	help     help.Model
	viewport viewport.Model
	ready    bool
	detail   bool
	selected int
}

func newBrowserModel(res priority.Result) browserModel {
	return browserModel{
		result: res,
		styles: report.DefaultStyles(),
		keys:   browserKeyMap,
		help:   help.New(),
	}
}

// render returns the viewport content for the current mode and
// selection.
func (m browserModel) render() string {
	res := m.result
	s := m.styles
	var sb strings.Builder

	sb.WriteString(s.Header.Render(fmt.Sprintf(
		"debtmap: %d function(s), %d item(s), total debt score %.1f",
		res.FunctionsAnalyzed, len(res.Items), res.TotalDebtScore)))
	sb.WriteString("\n")

	counts := res.CountByTier()
	tiers := make([]string, 0, len(tier.All))
	for _, t := range tier.All {
		tiers = append(tiers, s.TierStyle(t).Render(fmt.Sprintf("%s %d", t, counts[t])))
	}
	sb.WriteString(strings.Join(tiers, "  "))
	sb.WriteString("\n\n")

	if len(res.Items) == 0 {
		sb.WriteString(s.Muted.Render("No debt items above the reporting threshold."))
		sb.WriteString("\n")
		return sb.String()
	}

	it := res.Items[m.selected]
	if m.detail {
		sb.WriteString(s.SubHeader.Render(fmt.Sprintf("Item %d of %d", m.selected+1, len(res.Items))))
		sb.WriteString("\n")
		sb.WriteString(priority.Explain(it))
		if steps := it.Recommendation().Steps; len(steps) > 0 {
			sb.WriteString("\n")
			for i, step := range steps {
				fmt.Fprintf(&sb, "  %d. %s\n", i+1, step)
			}
		}
		return sb.String()
	}

	sb.WriteString(report.RenderTable(res.Items, s))
	sb.WriteString("\n")
	loc := it.Location()
	sb.WriteString(s.Muted.Render(fmt.Sprintf("selected #%d %s:%d, press tab for its breakdown",
		m.selected+1, loc.File, loc.Line)))
	sb.WriteString("\n")
	return sb.String()
}

// move shifts the selection by delta, clamped to the item range.
func (m *browserModel) move(delta int) {
	n := len(m.result.Items)
	if n == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), n-1)
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		const footerHeight = 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}
		m.viewport.SetContent(m.render())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Next):
			m.move(1)
			return m.refresh(), nil
		case key.Matches(msg, m.keys.Prev):
			m.move(-1)
			return m.refresh(), nil
		case key.Matches(msg, m.keys.Toggle):
			m.detail = !m.detail
			m = m.refresh()
			m.viewport.GotoTop()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m browserModel) refresh() browserModel {
	if m.ready {
		m.viewport.SetContent(m.render())
	}
	return m
}

func (m browserModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	footer := m.styles.Muted.Render(fmt.Sprintf(" %3.f%% ", m.viewport.ScrollPercent()*100)) +
		" " + m.help.View(m.keys)
	return m.viewport.View() + "\n" + footer
}

// runInteractiveAnalyze launches the Bubble Tea browser over the
// ranked items.
func runInteractiveAnalyze(res priority.Result) error {
	p := tea.NewProgram(newBrowserModel(res), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
