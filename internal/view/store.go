package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownView = errors.New("unknown or expired view")

type entry struct {
	sel     Selection
	touched time.Time
}

// Store keeps the Selection of every mounted view for hosts, like the web
// server, that cannot hold it in process memory of their own. Views that are
// not touched for ttl are swept.
type Store struct {
	mu    sync.Mutex
	views map[string]*entry
	ttl   time.Duration
	now   func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		views: make(map[string]*entry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Mount creates an empty selection and returns its view id.
func (s *Store) Mount() string {
	id := uuid.New().String()
	s.mu.Lock()
	s.views[id] = &entry{sel: project(nil), touched: s.now()}
	s.mu.Unlock()
	return id
}

// Unmount discards the view's state. Unknown ids are ignored.
func (s *Store) Unmount(id string) {
	s.mu.Lock()
	delete(s.views, id)
	s.mu.Unlock()
}

func (s *Store) Get(id string) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.views[id]
	if !ok {
		return Selection{}, ErrUnknownView
	}
	e.touched = s.now()
	return e.sel, nil
}

// Update applies fn to the view's selection and stores the result.
func (s *Store) Update(id string, fn func(Selection) Selection) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.views[id]
	if !ok {
		return Selection{}, ErrUnknownView
	}
	e.sel = fn(e.sel)
	e.touched = s.now()
	return e.sel, nil
}

// Len returns the number of mounted views.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// Sweep removes views idle for longer than the ttl and returns how many went.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.views {
		if e.touched.Before(cutoff) {
			delete(s.views, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}
