package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/reflex/internal/model"
)

func typeRunes(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestNamePromptRejectsEmpty(t *testing.T) {
	m := newNameModel()
	typeRunes(m, "   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("empty name must not quit the prompt")
	}
	if m.errMsg != "Please enter a valid name" {
		t.Fatalf("unexpected error message %q", m.errMsg)
	}
	if !strings.Contains(m.View(), "Please enter a valid name") {
		t.Fatalf("error not shown in view")
	}
}

func TestNamePromptAcceptsName(t *testing.T) {
	m := newNameModel()
	typeRunes(m, "Ada")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected quit command after a valid name")
	}
	if m.name != "Ada" {
		t.Fatalf("expected name Ada, got %q", m.name)
	}
}

func TestNamePromptCtrlC(t *testing.T) {
	m := newNameModel()
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.interrupted {
		t.Fatalf("ctrl+c should mark the prompt interrupted")
	}
}

func TestReplayPromptKeys(t *testing.T) {
	cases := []struct {
		msg         tea.KeyMsg
		again       bool
		interrupted bool
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, true, false},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Y")}, true, false},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}, false, false},
		{tea.KeyMsg{Type: tea.KeyEnter}, false, false},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, false, true},
	}
	for _, tc := range cases {
		m := newReplayModel("result")
		_, cmd := m.Update(tc.msg)
		if cmd == nil {
			t.Fatalf("%s: expected quit", tc.msg)
		}
		if m.again != tc.again || m.interrupted != tc.interrupted {
			t.Fatalf("%s: got again=%v interrupted=%v", tc.msg, m.again, m.interrupted)
		}
	}

	m := newReplayModel("result")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); cmd != nil {
		t.Fatalf("unbound key should be ignored")
	}
	if !strings.Contains(m.View(), "Play again? (y/n)") {
		t.Fatalf("missing replay question")
	}
}

func TestResultView(t *testing.T) {
	threshold := 600 * time.Millisecond
	cases := []struct {
		outcome model.RoundOutcome
		want    []string
	}{
		{model.RoundOutcome{Verdict: model.VerdictWin, Reaction: 452 * time.Millisecond},
			[]string{"YOU WIN!", "Amazing reflexes, Ada!", "Reaction Time: 0.452 seconds", "Target Time:   0.600 seconds"}},
		{model.RoundOutcome{Verdict: model.VerdictTooSlow, Reaction: 600 * time.Millisecond},
			[]string{"YOU ARE TOO SLOW", "Better luck next time, Ada!", "Reaction Time: 0.600 seconds"}},
		{model.RoundOutcome{Verdict: model.VerdictWrongColor, Reaction: 520 * time.Millisecond},
			[]string{"WRONG COLOR!", "Wait for the right color, Ada!"}},
	}
	for _, tc := range cases {
		out := ResultView("Ada", tc.outcome, threshold)
		for _, want := range tc.want {
			if !strings.Contains(out, want) {
				t.Fatalf("%v: missing %q in\n%s", tc.outcome.Verdict, want, out)
			}
		}
	}
}

func TestClampName(t *testing.T) {
	if got := ClampName("  Ada  "); got != "Ada" {
		t.Fatalf("expected trimmed name, got %q", got)
	}
	long := ClampName(strings.Repeat("x", 40))
	if len([]rune(long)) > MaxNameWidth || !strings.HasSuffix(long, "…") {
		t.Fatalf("expected truncated name, got %q", long)
	}
}
