// Package tui is the terminal dashboard. It hosts the experiments view on
// two screens, all experiments and bookmarked ones.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/runboard/internal/experiments"
	"github.com/emiliopalmerini/runboard/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/runboard/internal/view"
)

// Screen locations. They double as the routes the re-render gate matches.
const (
	LocationExperiments = "#experiments"
	LocationBookmarks   = "#bookmarks"
)

// App is the main dashboard TUI application
type App struct {
	service  *experiments.Service
	pageSize int64
	location string
	screen   *Experiments
	mounts   uint64
	gates    map[string]view.ActiveFunc
	width    int
	height   int
}

// NewApp creates a new dashboard application
func NewApp(service *experiments.Service, pageSize int64) *App {
	a := &App{
		service:  service,
		pageSize: pageSize,
		gates: map[string]view.ActiveFunc{
			LocationExperiments: view.RouteGate(LocationExperiments),
			LocationBookmarks:   view.RouteGate(LocationBookmarks),
		},
	}
	a.mount(LocationExperiments)
	return a
}

// mount replaces the current screen with a fresh view. The previous view
// and its column selection are dropped.
func (a *App) mount(location string) tea.Cmd {
	a.mounts++
	a.location = location
	a.screen = NewExperiments(a.service, location, location == LocationBookmarks, a.pageSize)
	a.screen.mount = a.mounts
	return a.screen.Init()
}

// Location is the currently displayed screen.
func (a *App) Location() string {
	return a.location
}

// Screen returns the mounted experiments view.
func (a *App) Screen() *Experiments {
	return a.screen
}

// active reports whether results addressed to a screen may still be applied.
// A screen remounted at the same location does not take its predecessor's
// results.
func (a *App) active(location string, mount uint64) bool {
	gate, ok := a.gates[location]
	return ok && gate(a.location) && mount == a.screen.mount
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.screen.Init()
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.screen.Capturing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "1":
				if a.location != LocationExperiments {
					return a, a.mount(LocationExperiments)
				}
				return a, nil
			case "2":
				if a.location != LocationBookmarks {
					return a, a.mount(LocationBookmarks)
				}
				return a, nil
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case pageLoadedMsg:
		if !a.active(msg.location, msg.mount) {
			return a, nil
		}

	case actionDoneMsg:
		if !a.active(msg.location, msg.mount) {
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.screen, cmd = a.screen.Update(msg)
	return a, cmd
}

// View implements tea.Model
func (a *App) View() string {
	sep := lipgloss.NewStyle().
		Foreground(theme.Gray700).
		Render("────────────────────────────────────────────────────────────────")

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), sep, "", a.screen.View())
}

func (a *App) renderHeader() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.White).
		Render("RUNBOARD")

	tagline := lipgloss.NewStyle().
		Foreground(theme.Gray600).
		Render("Experiment Tracking")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", tagline)
}

func (a *App) renderNav() string {
	items := []NavItem{
		{Key: "1", Label: "Experiments", Active: a.location == LocationExperiments},
		{Key: "2", Label: "Bookmarks", Active: a.location == LocationBookmarks},
	}
	return NewNavBar(items).View()
}
