package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/runboard/internal/domain"
)

// Styles contains all shared TUI styles
type Styles struct {
	// Text styles
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Interactive elements
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Active   lipgloss.Style
	Inactive lipgloss.Style
	Chip     lipgloss.Style

	// Table
	Header      lipgloss.Style
	GroupHeader lipgloss.Style
	Row         lipgloss.Style
	RowSelected lipgloss.Style

	// Help and hints
	Help    lipgloss.Style
	HelpKey lipgloss.Style

	// Status indicators
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// Default returns the singleton default Styles instance
func Default() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

// Status returns the style of an experiment status.
func (s *Styles) Status(st domain.Status) lipgloss.Style {
	switch {
	case st == domain.StatusSucceeded:
		return s.Success
	case st == domain.StatusFailed:
		return s.Error
	case st == domain.StatusStopped || st == domain.StatusSkipped:
		return s.Muted
	case st.IsRunning():
		return s.Info
	default:
		return s.Body
	}
}

func newStyles() *Styles {
	return &Styles{
		// Text styles
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(White).
			MarginBottom(1),

		Subtitle: lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(Gray400),

		Muted: lipgloss.NewStyle().
			Foreground(Gray500),

		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		// Interactive elements
		Cursor: lipgloss.NewStyle().
			Foreground(BrightPurple).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Foreground(Purple),

		Active: lipgloss.NewStyle().
			Foreground(Black).
			Background(White).
			Bold(true).
			Padding(0, 1),

		Inactive: lipgloss.NewStyle().
			Foreground(Gray500),

		Chip: lipgloss.NewStyle().
			Foreground(White).
			Background(Gray700).
			Padding(0, 1),

		// Table
		Header: lipgloss.NewStyle().
			Foreground(Gray500).
			Bold(true),

		GroupHeader: lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true).
			Align(lipgloss.Center),

		Row: lipgloss.NewStyle().
			Foreground(Gray400),

		RowSelected: lipgloss.NewStyle().
			Foreground(Black).
			Background(White).
			Bold(true),

		// Help and hints
		Help: lipgloss.NewStyle().
			Foreground(Gray500).
			MarginTop(1),

		HelpKey: lipgloss.NewStyle().
			Foreground(Purple).
			Bold(true),

		// Status indicators
		Success: lipgloss.NewStyle().
			Foreground(Success),

		Warning: lipgloss.NewStyle().
			Foreground(Warning),

		Error: lipgloss.NewStyle().
			Foreground(Error),

		Info: lipgloss.NewStyle().
			Foreground(Info),
	}
}
