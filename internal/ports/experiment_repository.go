package ports

import (
	"context"

	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/query"
)

// ListOptions selects one page of experiments.
type ListOptions struct {
	Offset         int64
	Limit          int64
	Query          query.Query
	Sort           query.Sort
	BookmarkedOnly bool
}

type ExperimentRepository interface {
	// Create assigns the next sequence number of the experiment's project and
	// derives its unique name.
	Create(ctx context.Context, experiment *domain.Experiment) error
	// GetByUniqueName returns nil, nil when no experiment has that name.
	GetByUniqueName(ctx context.Context, uniqueName string) (*domain.Experiment, error)
	List(ctx context.Context, opts ListOptions) ([]*domain.Experiment, error)
	// Count ignores Offset and Limit.
	Count(ctx context.Context, opts ListOptions) (int64, error)
	Update(ctx context.Context, experiment *domain.Experiment) error
	Delete(ctx context.Context, uniqueName string) error
	SetBookmarked(ctx context.Context, uniqueName string, bookmarked bool) error
}
