package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/experiments"
	"github.com/emiliopalmerini/runboard/internal/pkg/tui/components"
	"github.com/emiliopalmerini/runboard/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/runboard/internal/query"
	"github.com/emiliopalmerini/runboard/internal/view"
)

const (
	pickerAdd    = "Add column"
	pickerRemove = "Remove column"
)

type mode int

const (
	modeList mode = iota
	modeFilter
	modePicker
	modeConfirm
)

// pageLoadedMsg carries a fetched page to the screen mounted at location.
// mount tells apart two screens mounted at the same location in turn.
type pageLoadedMsg struct {
	location string
	mount    uint64
	page     *experiments.Page
	err      error
}

type actionDoneMsg struct {
	location string
	mount    uint64
	status   string
	err      error
}

// Experiments is one mounted experiments view. Its column selection lives
// as long as the screen and starts empty.
type Experiments struct {
	service   *experiments.Service
	location  string
	mount     uint64
	bookmarks bool
	pageSize  int64

	sel     view.Selection
	page    *experiments.Page
	offset  int64
	query   string
	sortIdx int

	mode    mode
	filter  textinput.Model
	picker  components.Selector
	confirm func() tea.Cmd
	prompt  string

	cursor  int
	loading bool
	err     error
	status  string
	now     func() time.Time
	styles  *theme.Styles
	help    components.HelpBar
}

// NewExperiments mounts a view. location identifies the screen for the
// re-render gate.
func NewExperiments(service *experiments.Service, location string, bookmarks bool, pageSize int64) *Experiments {
	ti := textinput.New()
	ti.Placeholder = "status:running, metric.loss:<0.3"
	ti.Prompt = "/ "
	ti.CharLimit = 256
	ti.Cursor.SetMode(cursor.CursorStatic)

	return &Experiments{
		service:   service,
		location:  location,
		bookmarks: bookmarks,
		pageSize:  pageSize,
		sortIdx:   max(slices.Index(query.SortOptions, query.DefaultSort), 0),
		filter:    ti,
		loading:   true,
		now:       time.Now,
		styles:    theme.Default(),
		help: components.NewHelpBar(
			components.KeyBinding{Key: "j/k", Desc: "move"},
			components.KeyBinding{Key: "n/p", Desc: "page"},
			components.KeyBinding{Key: "/", Desc: "filter"},
			components.KeyBinding{Key: "o", Desc: "sort"},
			components.KeyBinding{Key: "c/x", Desc: "add/remove column"},
			components.KeyBinding{Key: "b", Desc: "bookmark"},
			components.KeyBinding{Key: "s", Desc: "stop"},
			components.KeyBinding{Key: "d", Desc: "delete"},
			components.KeyBinding{Key: "r", Desc: "refresh"},
		),
	}
}

// Location is where the view is mounted.
func (e *Experiments) Location() string {
	return e.location
}

// Selection returns the current column selection.
func (e *Experiments) Selection() view.Selection {
	return e.sel
}

// Capturing reports whether the view consumes every key, as while typing a
// filter, so the app must not act on global shortcuts.
func (e *Experiments) Capturing() bool {
	return e.mode != modeList
}

func (e *Experiments) Init() tea.Cmd {
	return e.load()
}

func (e *Experiments) load() tea.Cmd {
	params := experiments.FetchParams{
		Offset:    e.offset,
		Limit:     e.pageSize,
		Query:     e.query,
		Sort:      query.SortOptions[e.sortIdx],
		Bookmarks: e.bookmarks,
	}
	location, mount := e.location, e.mount
	return func() tea.Msg {
		page, err := e.service.Fetch(context.Background(), params)
		return pageLoadedMsg{location: location, mount: mount, page: page, err: err}
	}
}

func (e *Experiments) action(status string, fn func(ctx context.Context) error) tea.Cmd {
	location, mount := e.location, e.mount
	return func() tea.Msg {
		return actionDoneMsg{location: location, mount: mount, status: status, err: fn(context.Background())}
	}
}

func (e *Experiments) current() *domain.Experiment {
	if e.page == nil || e.cursor >= len(e.page.Experiments) {
		return nil
	}
	return e.page.Experiments[e.cursor]
}

func (e *Experiments) Update(msg tea.Msg) (*Experiments, tea.Cmd) {
	switch msg := msg.(type) {
	case pageLoadedMsg:
		e.loading = false
		e.err = msg.err
		if msg.err == nil {
			e.page = msg.page
			e.offset = msg.page.Offset
			e.cursor = min(e.cursor, max(len(msg.page.Experiments)-1, 0))
		}
		return e, nil

	case actionDoneMsg:
		if msg.err != nil {
			e.err = msg.err
			return e, nil
		}
		e.err = nil
		e.status = msg.status
		e.loading = true
		return e, e.load()

	case components.SelectedMsg:
		e.mode = modeList
		e.picker.Blur()
		return e, e.applyPick(msg)

	case components.CancelledMsg:
		e.mode = modeList
		e.picker.Blur()
		return e, nil

	case tea.KeyMsg:
		switch e.mode {
		case modeFilter:
			return e.updateFilter(msg)
		case modePicker:
			var cmd tea.Cmd
			e.picker, cmd = e.picker.Update(msg)
			return e, cmd
		case modeConfirm:
			return e.updateConfirm(msg)
		}
		return e.updateList(msg)
	}
	return e, nil
}

func (e *Experiments) updateList(msg tea.KeyMsg) (*Experiments, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if e.page != nil && e.cursor < len(e.page.Experiments)-1 {
			e.cursor++
		}
	case "k", "up":
		if e.cursor > 0 {
			e.cursor--
		}
	case "n", "pgdown":
		if e.page != nil && e.page.HasNext() {
			e.offset = e.page.NextOffset()
			e.cursor = 0
			e.loading = true
			return e, e.load()
		}
	case "p", "pgup":
		if e.page != nil && e.page.HasPrev() {
			e.offset = e.page.PrevOffset()
			e.cursor = 0
			e.loading = true
			return e, e.load()
		}
	case "r":
		e.loading = true
		e.err = nil
		return e, e.load()
	case "/":
		e.mode = modeFilter
		e.filter.SetValue(e.query)
		e.filter.CursorEnd()
		return e, e.filter.Focus()
	case "o":
		e.sortIdx = (e.sortIdx + 1) % len(query.SortOptions)
		e.offset = 0
		e.loading = true
		return e, e.load()
	case "c":
		var exps []*domain.Experiment
		if e.page != nil {
			exps = e.page.Experiments
		}
		e.openPicker(pickerAdd, view.Candidates(exps, e.sel.Selected))
	case "x":
		e.openPicker(pickerRemove, e.sel.Selected)
	case "b":
		if exp := e.current(); exp != nil {
			name, bookmarked := exp.UniqueName, !exp.IsBookmarked
			status := "bookmarked " + name
			if !bookmarked {
				status = "removed bookmark of " + name
			}
			return e, e.action(status, func(ctx context.Context) error {
				return e.service.Bookmark(ctx, name, bookmarked)
			})
		}
	case "s":
		if exp := e.current(); exp != nil && !exp.Status.IsDone() {
			name := exp.UniqueName
			e.ask("Stop "+name+"?", func() tea.Cmd {
				return e.action("stopped "+name, func(ctx context.Context) error {
					_, err := e.service.Stop(ctx, name)
					return err
				})
			})
		}
	case "d":
		if exp := e.current(); exp != nil {
			name := exp.UniqueName
			e.ask("Delete "+name+"?", func() tea.Cmd {
				return e.action("deleted "+name, func(ctx context.Context) error {
					return e.service.Delete(ctx, name)
				})
			})
		}
	}
	return e, nil
}

func (e *Experiments) updateFilter(msg tea.KeyMsg) (*Experiments, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		e.mode = modeList
		e.filter.Blur()
		e.query = strings.TrimSpace(e.filter.Value())
		e.offset = 0
		e.cursor = 0
		e.loading = true
		return e, e.load()
	case tea.KeyEsc:
		e.mode = modeList
		e.filter.Blur()
		return e, nil
	}
	var cmd tea.Cmd
	e.filter, cmd = e.filter.Update(msg)
	return e, cmd
}

func (e *Experiments) updateConfirm(msg tea.KeyMsg) (*Experiments, tea.Cmd) {
	confirm := e.confirm
	e.mode = modeList
	e.confirm = nil
	e.prompt = ""
	if msg.String() == "y" && confirm != nil {
		return e, confirm()
	}
	return e, nil
}

func (e *Experiments) ask(prompt string, confirm func() tea.Cmd) {
	e.mode = modeConfirm
	e.prompt = prompt
	e.confirm = confirm
}

func (e *Experiments) openPicker(label string, options []string) {
	e.picker = components.NewSelector(label, options)
	e.picker.Focus()
	e.mode = modePicker
}

// applyPick turns a picker choice into a selection transition. The table is
// re-laid out from the page already loaded, so no fetch is needed.
func (e *Experiments) applyPick(msg components.SelectedMsg) tea.Cmd {
	kind, name, ok := view.ParseToken(msg.Value)
	if !ok {
		return nil
	}
	switch msg.Selector {
	case pickerAdd:
		e.sel = e.sel.AddColumn(msg.Value)
		e.service.ColumnChanged(context.Background(), kind, "add")
	case pickerRemove:
		e.sel = e.sel.RemoveColumn(kind, name)
		e.service.ColumnChanged(context.Background(), kind, "remove")
	}
	return nil
}

func (e *Experiments) title() string {
	if e.bookmarks {
		return "Bookmarked experiments"
	}
	return "Experiments"
}

func (e *Experiments) View() string {
	s := e.styles
	parts := []string{s.Title.Render(e.title())}

	filterLine := s.Muted.Render("filter: ") + s.Body.Render(orDash(e.query)) +
		s.Muted.Render("   sort: ") + s.Body.Render(query.SortOptions[e.sortIdx])
	if e.mode == modeFilter {
		filterLine = e.filter.View()
	}
	parts = append(parts, filterLine)

	if chips := e.chips(); chips != "" {
		parts = append(parts, chips)
	}
	parts = append(parts, "")

	switch {
	case e.err != nil:
		parts = append(parts, s.Error.Render(fmt.Sprintf("Error: %v", e.err)))
	case e.loading && e.page == nil:
		parts = append(parts, s.Muted.Render("Loading experiments..."))
	case e.page == nil || e.page.Count == 0:
		parts = append(parts, e.empty())
	default:
		t := view.BuildTable(e.page.Experiments, e.sel, nil)
		parts = append(parts, renderTable(t, e.cursor, e.now(), s))
		start := e.page.Offset + 1
		end := e.page.Offset + int64(len(e.page.Experiments))
		parts = append(parts, "", s.Muted.Render(fmt.Sprintf("Showing %d-%d of %d", start, end, e.page.Count)))
	}

	switch e.mode {
	case modePicker:
		parts = append(parts, "", e.picker.View())
	case modeConfirm:
		parts = append(parts, "", s.Warning.Render(e.prompt+" (y/n)"))
	}
	if e.status != "" && e.mode == modeList {
		parts = append(parts, s.Success.Render(e.status))
	}
	parts = append(parts, e.help.View())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (e *Experiments) chips() string {
	var chips []string
	for _, name := range e.sel.Params {
		chips = append(chips, e.styles.Chip.Render(view.Token(view.KindParam, name)))
	}
	for _, name := range e.sel.Metrics {
		chips = append(chips, e.styles.Chip.Render(view.Token(view.KindMetric, name)))
	}
	return strings.Join(chips, " ")
}

func (e *Experiments) empty() string {
	if e.bookmarks {
		return e.styles.Muted.Render("You don't have any bookmarked experiment!")
	}
	return e.styles.Muted.Render("You don't have any experiment! Start one with: runboard experiment create --help")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
