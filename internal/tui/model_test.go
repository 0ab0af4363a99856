package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/seqtrain/internal/input"
	"github.com/verte-zerg/seqtrain/internal/model"
	"github.com/verte-zerg/seqtrain/internal/text"
	"github.com/verte-zerg/seqtrain/internal/trainer"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg := model.Config{
		TickRate:   60,
		ConfirmKey: input.KeyReturn,
		ResetKey:   input.KeyBackspace,
	}
	m := NewModel(cfg, text.DisplayText{Practice: "go\n"}, nil, nil, nil)
	t.Cleanup(func() {
		_ = m.Close()
	})
	return m
}

func press(m *Model, msg tea.KeyMsg) {
	m.Update(msg)
	m.Update(tickMsg{})
}

func TestModelRecordsAndScores(t *testing.T) {
	m := newTestModel(t)

	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tickMsg{})
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	tr := m.session.Trainer()
	if tr.Mode() != trainer.ModePracticing {
		t.Fatalf("expected practicing, got %v", tr.Mode())
	}
	if got := m.feedback.String(); got != "A key (a)\ngo\na\n" {
		t.Fatalf("unexpected feedback %q", got)
	}
	if !m.hasLast || m.lastAcc != 1 {
		t.Fatalf("expected a perfect last attempt, got acc=%v has=%v", m.lastAcc, m.hasLast)
	}

	footer := m.renderFooter()
	for _, want := range []string{"Mode practicing", "Sequence 1", "Next a", "Last 100.0%", "All-time 100.0%"} {
		if !strings.Contains(footer, want) {
			t.Fatalf("footer missing %q: %s", want, footer)
		}
	}
}

func TestModelBackspaceResets(t *testing.T) {
	m := newTestModel(t)

	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	press(m, tea.KeyMsg{Type: tea.KeyBackspace})

	if n := len(m.session.Trainer().Sequence()); n != 0 {
		t.Fatalf("expected empty sequence after reset, got %d", n)
	}
}

func TestModelRepeatedKeyOnNextTick(t *testing.T) {
	m := newTestModel(t)
	a := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}

	press(m, a)
	press(m, a)
	if n := len(m.session.Trainer().Sequence()); n != 1 {
		t.Fatalf("expected the repeat to wait for a released tick, got %d", n)
	}

	m.Update(tickMsg{})
	if n := len(m.session.Trainer().Sequence()); n != 2 {
		t.Fatalf("expected both presses recorded, got %d", n)
	}
	if len(m.pending) != 0 {
		t.Fatalf("expected no pending keys, got %v", m.pending)
	}
}

func TestModelQuitKeys(t *testing.T) {
	m := newTestModel(t)
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("expected quit command for %v", msg)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("expected quit message for %v", msg)
		}
	}
}

func TestKeysForMsg(t *testing.T) {
	got := keysForMsg(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a1")})
	if len(got) != 2 || got[0] != input.KeyA || got[1] != input.Key1 {
		t.Fatalf("unexpected keys %v", got)
	}
	if got := keysForMsg(tea.KeyMsg{Type: tea.KeyEnter}); len(got) != 1 || got[0] != input.KeyReturn {
		t.Fatalf("unexpected enter mapping %v", got)
	}
	if got := keysForMsg(tea.KeyMsg{Type: tea.KeyF5}); got != nil {
		t.Fatalf("expected unmapped key, got %v", got)
	}
}

func TestViewWrapsAfterResize(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})

	view := m.View()
	if !strings.Contains(view, "Mode recording") {
		t.Fatalf("expected footer in view:\n%s", view)
	}
	if m.viewport.Width != 28 || m.viewport.Height != 9 {
		t.Fatalf("unexpected viewport size %dx%d", m.viewport.Width, m.viewport.Height)
	}
}
