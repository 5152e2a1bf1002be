package view

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Lifecycle(t *testing.T) {
	s := NewStore(time.Minute)

	id := s.Mount()
	require.NotEmpty(t, id)
	assert.Equal(t, 1, s.Len())

	sel, err := s.Get(id)
	require.NoError(t, err)
	assert.Empty(t, sel.Selected)

	sel, err = s.Update(id, func(sel Selection) Selection { return sel.AddColumn("metric:acc") })
	require.NoError(t, err)
	assert.Equal(t, []string{"acc"}, sel.Metrics)

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, sel, got)

	s.Unmount(id)
	_, err = s.Get(id)
	assert.ErrorIs(t, err, ErrUnknownView)
	_, err = s.Update(id, func(sel Selection) Selection { return sel })
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestStore_ViewsAreIndependent(t *testing.T) {
	s := NewStore(time.Minute)
	a, b := s.Mount(), s.Mount()
	require.NotEqual(t, a, b)

	_, err := s.Update(a, func(sel Selection) Selection { return sel.AddColumn("param:lr") })
	require.NoError(t, err)

	sel, err := s.Get(b)
	require.NoError(t, err)
	assert.Empty(t, sel.Selected)
}

func TestStore_Sweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(10 * time.Minute)
	s.now = func() time.Time { return now }

	stale := s.Mount()
	now = now.Add(5 * time.Minute)
	fresh := s.Mount()

	now = now.Add(6 * time.Minute)
	assert.Equal(t, 1, s.Sweep())

	_, err := s.Get(stale)
	assert.ErrorIs(t, err, ErrUnknownView)
	_, err = s.Get(fresh)
	assert.NoError(t, err)
}

func TestStore_SweepDisabled(t *testing.T) {
	s := NewStore(0)
	s.Mount()
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestStore_ConcurrentUpdates(t *testing.T) {
	s := NewStore(time.Minute)
	id := s.Mount()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update(id, func(sel Selection) Selection { return sel.AddColumn("metric:acc") })
		}()
	}
	wg.Wait()

	sel, err := s.Get(id)
	require.NoError(t, err)
	assert.Len(t, sel.Selected, 50)
}

func TestStore_RunStopsWithContext(t *testing.T) {
	s := NewStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
