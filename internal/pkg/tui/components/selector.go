package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emiliopalmerini/runboard/internal/pkg/tui/theme"
)

// SelectedMsg is emitted when the user picks an option with enter.
type SelectedMsg struct {
	Selector string
	Value    string
}

// CancelledMsg is emitted when the user leaves the selector with esc.
type CancelledMsg struct {
	Selector string
}

// Selector is a single-select list. It only reacts to keys while focused.
type Selector struct {
	Label   string
	Options []string
	Cursor  int
	Focused bool
	styles  *theme.Styles
}

func NewSelector(label string, options []string) Selector {
	return Selector{
		Label:   label,
		Options: options,
		styles:  theme.Default(),
	}
}

// Focus sets the selector as focused
func (s *Selector) Focus() {
	s.Focused = true
}

// Blur removes focus from the selector
func (s *Selector) Blur() {
	s.Focused = false
}

// Current returns the option under the cursor.
func (s Selector) Current() (string, bool) {
	if len(s.Options) == 0 {
		return "", false
	}
	return s.Options[s.Cursor], true
}

// Update handles key events for the selector
func (s Selector) Update(msg tea.Msg) (Selector, tea.Cmd) {
	if !s.Focused {
		return s, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch key.String() {
	case "k", "up":
		if s.Cursor > 0 {
			s.Cursor--
		}
	case "j", "down":
		if s.Cursor < len(s.Options)-1 {
			s.Cursor++
		}
	case "enter":
		value, ok := s.Current()
		if !ok {
			return s, nil
		}
		label := s.Label
		return s, func() tea.Msg { return SelectedMsg{Selector: label, Value: value} }
	case "esc":
		label := s.Label
		return s, func() tea.Msg { return CancelledMsg{Selector: label} }
	}
	return s, nil
}

// View renders the selector
func (s Selector) View() string {
	var b strings.Builder

	b.WriteString(s.styles.Subtitle.Render(s.Label))
	b.WriteString("\n\n")

	if len(s.Options) == 0 {
		b.WriteString(s.styles.Muted.Render("  nothing to choose"))
		b.WriteString("\n")
		return b.String()
	}

	for i, opt := range s.Options {
		isCursor := s.Focused && i == s.Cursor

		indicator := " "
		label := s.styles.Muted.Render(opt)
		if isCursor {
			indicator = s.styles.Cursor.Render(">")
			label = s.styles.Cursor.Render(opt)
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", indicator, label))
	}

	return b.String()
}
