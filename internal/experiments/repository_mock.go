package experiments

import (
	"context"

	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/ports"
)

// MockRepository is a mock implementation of ports.ExperimentRepository for testing.
type MockRepository struct {
	CreateFunc          func(ctx context.Context, e *domain.Experiment) error
	GetByUniqueNameFunc func(ctx context.Context, uniqueName string) (*domain.Experiment, error)
	ListFunc            func(ctx context.Context, opts ports.ListOptions) ([]*domain.Experiment, error)
	CountFunc           func(ctx context.Context, opts ports.ListOptions) (int64, error)
	UpdateFunc          func(ctx context.Context, e *domain.Experiment) error
	DeleteFunc          func(ctx context.Context, uniqueName string) error
	SetBookmarkedFunc   func(ctx context.Context, uniqueName string, bookmarked bool) error
}

func (m *MockRepository) Create(ctx context.Context, e *domain.Experiment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, e)
	}
	e.Sequence = 1
	e.UniqueName = domain.UniqueName(e.User, e.Project, e.Sequence)
	return nil
}

func (m *MockRepository) GetByUniqueName(ctx context.Context, uniqueName string) (*domain.Experiment, error) {
	if m.GetByUniqueNameFunc != nil {
		return m.GetByUniqueNameFunc(ctx, uniqueName)
	}
	return nil, nil
}

func (m *MockRepository) List(ctx context.Context, opts ports.ListOptions) ([]*domain.Experiment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, opts)
	}
	return nil, nil
}

func (m *MockRepository) Count(ctx context.Context, opts ports.ListOptions) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx, opts)
	}
	return 0, nil
}

func (m *MockRepository) Update(ctx context.Context, e *domain.Experiment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, e)
	}
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, uniqueName string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, uniqueName)
	}
	return nil
}

func (m *MockRepository) SetBookmarked(ctx context.Context, uniqueName string, bookmarked bool) error {
	if m.SetBookmarkedFunc != nil {
		return m.SetBookmarkedFunc(ctx, uniqueName, bookmarked)
	}
	return nil
}
