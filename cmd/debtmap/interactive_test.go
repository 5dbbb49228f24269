package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/unbound-force/debtmap/internal/debt"
	"github.com/unbound-force/debtmap/internal/priority"
	"github.com/unbound-force/debtmap/internal/role"
	"github.com/unbound-force/debtmap/internal/score"
	"github.com/unbound-force/debtmap/internal/tier"
)

// twoItems extends sampleItems with a second, lower ranked item.
func twoItems() priority.Result {
	res := sampleItems()
	swallow := debt.ErrorSwallowing{Pattern: "discarded error", Context: "f.Close()"}
	res.Items = append(res.Items, priority.FunctionItem(&priority.UnifiedDebtItem{
		Location:       priority.Location{File: "internal/app/store.go", Function: "save", Line: 17},
		Debt:           swallow,
		Score:          score.UnifiedScore{BaseScore: 5, ExponentialFactor: 1, RiskBoost: 1, FinalScore: 5},
		Role:           role.IOWrapper,
		Recommendation: priority.Recommend(swallow, role.IOWrapper),
		Cyclomatic:     2,
		Tier:           tier.T3TestingGaps,
	}))
	return res
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, m browserModel) browserModel {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(browserModel)
	if !m.ready {
		t.Fatal("model should be ready after a window size message")
	}
	return m
}

func press(m browserModel, s string) browserModel {
	next, _ := m.Update(keyPress(s))
	return next.(browserModel)
}

func TestBrowserRender_Empty(t *testing.T) {
	output := newBrowserModel(priority.Result{}).render()

	if !strings.Contains(output, "0 function(s), 0 item(s)") {
		t.Errorf("expected zero counts in title, got:\n%s", output)
	}
	if !strings.Contains(output, "No debt items above the reporting threshold.") {
		t.Errorf("expected empty notice, got:\n%s", output)
	}
}

func TestBrowserRender_Table(t *testing.T) {
	output := newBrowserModel(sampleItems()).render()

	for _, want := range []string{"9 function(s), 1 item(s)", "T2 1", "30.2", "Testing Gap", "selected #1 internal/app/calc.go:42"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected table view to contain %q, got:\n%s", want, output)
		}
	}
	if strings.Contains(output, "final:") {
		t.Errorf("table view should not include the breakdown, got:\n%s", output)
	}
}

func TestBrowser_ToggleBreakdown(t *testing.T) {
	m := sized(t, newBrowserModel(sampleItems()))

	m = press(m, "tab")
	if !m.detail {
		t.Fatal("tab should switch to the breakdown view")
	}
	output := m.render()
	for _, want := range []string{"Item 1 of 1", "(*Engine).Run", "role:", "final:", "1. "} {
		if !strings.Contains(output, want) {
			t.Errorf("expected breakdown to contain %q, got:\n%s", want, output)
		}
	}

	m = press(m, "enter")
	if m.detail {
		t.Error("enter should switch back to the table view")
	}
}

func TestBrowser_SelectionClamps(t *testing.T) {
	m := sized(t, newBrowserModel(twoItems()))

	m = press(m, "p")
	if m.selected != 0 {
		t.Errorf("selected = %d after p at the top, want 0", m.selected)
	}
	m = press(m, "n")
	m = press(m, "n")
	if m.selected != 1 {
		t.Errorf("selected = %d after moving past the end, want 1", m.selected)
	}

	m = press(m, "tab")
	if output := m.render(); !strings.Contains(output, "Item 2 of 2") || !strings.Contains(output, "save") {
		t.Errorf("breakdown should show the second item, got:\n%s", output)
	}
}

func TestBrowser_MoveWithoutItems(t *testing.T) {
	m := press(newBrowserModel(priority.Result{}), "n")
	if m.selected != 0 {
		t.Errorf("selected = %d with no items, want 0", m.selected)
	}
}

func TestBrowser_Quit(t *testing.T) {
	_, cmd := newBrowserModel(sampleItems()).Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestBrowser_ViewBeforeReady(t *testing.T) {
	if got := newBrowserModel(sampleItems()).View(); got != "Initializing..." {
		t.Errorf("View() = %q, want Initializing...", got)
	}
}
