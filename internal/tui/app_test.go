package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/emiliopalmerini/runboard/internal/adapters/otel"
	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/experiments"
	"github.com/emiliopalmerini/runboard/internal/pkg/tui/components"
	"github.com/emiliopalmerini/runboard/internal/ports"
)

func fixtures() []*domain.Experiment {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []*domain.Experiment{
		{
			UniqueName:   "ada.mnist.1",
			Name:         "baseline",
			User:         "ada",
			Project:      "mnist",
			Status:       domain.StatusRunning,
			LastMetric:   map[string]float64{"loss": 0.25, "acc": 0.91},
			Declarations: map[string]any{"lr": 0.01},
			CreatedAt:    created,
		},
		{
			UniqueName:   "ada.mnist.2",
			Name:         "wide",
			User:         "ada",
			Project:      "mnist",
			Status:       domain.StatusSucceeded,
			LastMetric:   map[string]float64{"loss": 0.2},
			Declarations: map[string]any{"width": 512},
			CreatedAt:    created.Add(time.Hour),
		},
	}
}

type fakeStore struct {
	exps       []*domain.Experiment
	lastList   ports.ListOptions
	bookmarked map[string]bool
	updated    []string
	deleted    []string
}

func newRepo(f *fakeStore) *experiments.MockRepository {
	f.bookmarked = map[string]bool{}
	find := func(name string) *domain.Experiment {
		for _, e := range f.exps {
			if e.UniqueName == name {
				return e
			}
		}
		return nil
	}
	return &experiments.MockRepository{
		ListFunc: func(_ context.Context, opts ports.ListOptions) ([]*domain.Experiment, error) {
			f.lastList = opts
			return f.exps, nil
		},
		CountFunc: func(context.Context, ports.ListOptions) (int64, error) {
			return int64(len(f.exps)), nil
		},
		GetByUniqueNameFunc: func(_ context.Context, name string) (*domain.Experiment, error) {
			return find(name), nil
		},
		UpdateFunc: func(_ context.Context, e *domain.Experiment) error {
			f.updated = append(f.updated, e.UniqueName)
			return nil
		},
		DeleteFunc: func(_ context.Context, name string) error {
			f.deleted = append(f.deleted, name)
			return nil
		},
		SetBookmarkedFunc: func(_ context.Context, name string, b bool) error {
			f.bookmarked[name] = b
			return nil
		},
	}
}

func newTestApp(t *testing.T) (*App, *fakeStore) {
	t.Helper()
	store := &fakeStore{exps: fixtures()}
	svc := experiments.NewService(newRepo(store), otel.NewNoOpExporter(), zaptest.NewLogger(t).Sugar())
	return NewApp(svc, 20), store
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and feeds the resulting message back into the app, until
// a message the app does not react to comes back.
func drain(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		switch msg.(type) {
		case pageLoadedMsg, actionDoneMsg, components.SelectedMsg, components.CancelledMsg:
		default:
			return
		}
		_, cmd = a.Update(msg)
	}
}

func send(t *testing.T, a *App, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := a.Update(key(k))
		drain(t, a, cmd)
	}
}

func TestApp_InitLoadsExperiments(t *testing.T) {
	a, _ := newTestApp(t)
	drain(t, a, a.Init())

	s := a.Screen()
	require.NotNil(t, s.page)
	assert.Len(t, s.page.Experiments, 2)
	assert.False(t, s.loading)
	assert.Contains(t, a.View(), "baseline")
	assert.Contains(t, a.View(), "RUNBOARD")
}

func TestApp_AddAndRemoveColumns(t *testing.T) {
	a, _ := newTestApp(t)
	drain(t, a, a.Init())

	send(t, a, "c")
	s := a.Screen()
	require.Equal(t, modePicker, s.mode)
	assert.Equal(t, []string{"metric:acc", "metric:loss", "param:lr", "param:width"}, s.picker.Options)

	send(t, a, "j", "enter")
	assert.Equal(t, modeList, s.mode)
	assert.Equal(t, []string{"metric:loss"}, s.Selection().Selected)
	assert.Equal(t, []string{"loss"}, s.Selection().Metrics)
	assert.Contains(t, a.View(), "Metrics")

	send(t, a, "c")
	assert.Equal(t, []string{"metric:acc", "param:lr", "param:width"}, s.picker.Options)
	send(t, a, "esc")
	assert.Equal(t, modeList, s.mode)

	send(t, a, "x", "enter")
	assert.Empty(t, s.Selection().Selected)
	assert.Empty(t, s.Selection().Metrics)
}

func TestApp_SwitchingScreensDropsSelection(t *testing.T) {
	a, store := newTestApp(t)
	drain(t, a, a.Init())
	send(t, a, "c", "enter")
	require.Len(t, a.Screen().Selection().Selected, 1)

	send(t, a, "2")
	assert.Equal(t, LocationBookmarks, a.Location())
	assert.Empty(t, a.Screen().Selection().Selected)
	assert.True(t, store.lastList.BookmarkedOnly)

	send(t, a, "1")
	assert.Equal(t, LocationExperiments, a.Location())
	assert.Empty(t, a.Screen().Selection().Selected)
}

func TestApp_GateDropsResultsForInactiveScreen(t *testing.T) {
	a, _ := newTestApp(t)
	stale := a.Init()

	send(t, a, "2")
	bookmarks := a.Screen()
	bookmarks.page = nil

	_, cmd := a.Update(stale())
	assert.Nil(t, cmd)
	assert.Nil(t, bookmarks.page)
}

func TestApp_GateDropsResultsForRemountedScreen(t *testing.T) {
	a, _ := newTestApp(t)
	drain(t, a, a.Init())

	first := a.Screen()
	staleLoad := first.load()
	staleAction := first.action("stopped ada.mnist.1", func(context.Context) error { return nil })

	send(t, a, "2", "1")
	remounted := a.Screen()
	require.NotSame(t, first, remounted)
	require.Equal(t, LocationExperiments, a.Location())
	remounted.page = nil

	_, cmd := a.Update(staleLoad())
	assert.Nil(t, cmd)
	assert.Nil(t, remounted.page)

	_, cmd = a.Update(staleAction())
	assert.Nil(t, cmd)
	assert.Empty(t, remounted.status)
}

func TestApp_FilterAndSort(t *testing.T) {
	a, store := newTestApp(t)
	drain(t, a, a.Init())

	send(t, a, "/")
	require.True(t, a.Screen().Capturing())
	// "1" is typed into the filter instead of switching screens.
	send(t, a, "s", "t", "a", "t", "u", "s", ":", "r", "u", "n", "n", "i", "n", "g", "1")
	assert.Equal(t, LocationExperiments, a.Location())
	send(t, a, "enter")

	s := a.Screen()
	assert.Equal(t, "status:running1", s.query)
	assert.False(t, s.Capturing())
	assert.Contains(t, s.err.Error(), "invalid")

	send(t, a, "/")
	s.filter.SetValue("status:running")
	send(t, a, "enter")
	require.NoError(t, s.err)
	assert.False(t, store.lastList.Query.IsEmpty())

	send(t, a, "o")
	assert.Equal(t, "created_at", s.page.Sort)
}

func TestApp_RowActions(t *testing.T) {
	a, store := newTestApp(t)
	drain(t, a, a.Init())

	send(t, a, "b")
	assert.True(t, store.bookmarked["ada.mnist.1"])

	send(t, a, "s")
	assert.Equal(t, modeConfirm, a.Screen().mode)
	send(t, a, "n")
	assert.Empty(t, store.updated)

	send(t, a, "s", "y")
	assert.Equal(t, []string{"ada.mnist.1"}, store.updated)
	assert.Equal(t, "stopped ada.mnist.1", a.Screen().status)

	// The second experiment is done and cannot be stopped.
	send(t, a, "j", "s")
	assert.Equal(t, modeList, a.Screen().mode)

	send(t, a, "d", "y")
	assert.Equal(t, []string{"ada.mnist.2"}, store.deleted)
}

func TestApp_Quit(t *testing.T) {
	a, _ := newTestApp(t)
	_, cmd := a.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
