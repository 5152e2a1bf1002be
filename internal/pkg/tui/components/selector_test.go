package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelector_IgnoresKeysWhenBlurred(t *testing.T) {
	s := NewSelector("Add column", []string{"metric:loss", "param:lr"})
	s, cmd := s.Update(key("j"))
	if s.Cursor != 0 || cmd != nil {
		t.Errorf("blurred selector reacted: cursor=%d cmd=%v", s.Cursor, cmd)
	}
}

func TestSelector_NavigateAndSelect(t *testing.T) {
	s := NewSelector("Add column", []string{"metric:loss", "param:lr"})
	s.Focus()

	s, _ = s.Update(key("j"))
	s, _ = s.Update(key("j"))
	if s.Cursor != 1 {
		t.Fatalf("expected cursor clamped at 1, got %d", s.Cursor)
	}

	_, cmd := s.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected a command on enter")
	}
	msg, ok := cmd().(SelectedMsg)
	if !ok {
		t.Fatalf("expected SelectedMsg, got %T", cmd())
	}
	if msg.Value != "param:lr" || msg.Selector != "Add column" {
		t.Errorf("unexpected selection %+v", msg)
	}
}

func TestSelector_Cancel(t *testing.T) {
	s := NewSelector("Remove column", nil)
	s.Focus()

	if _, cmd := s.Update(key("enter")); cmd != nil {
		t.Error("enter on an empty selector must not select")
	}
	_, cmd := s.Update(key("esc"))
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Errorf("expected CancelledMsg")
	}
}
