// Package experiments holds the application service behind every experiment
// action of the dashboard, the TUI and the CLI.
package experiments

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/ports"
	"github.com/emiliopalmerini/runboard/internal/query"
)

const (
	DefaultPageSize int64 = 20
	MaxPageSize     int64 = 200
)

// Action names reported to the metrics exporter.
const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionStop       = "stop"
	ActionBookmark   = "bookmark"
	ActionUnbookmark = "unbookmark"
)

type Service struct {
	repo    ports.ExperimentRepository
	metrics ports.MetricsExporter
	log     *zap.SugaredLogger
	now     func() time.Time
}

func NewService(repo ports.ExperimentRepository, metrics ports.MetricsExporter, log *zap.SugaredLogger) *Service {
	return &Service{
		repo:    repo,
		metrics: metrics,
		log:     log.Named("experiments"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FetchParams selects one page of the experiments table.
type FetchParams struct {
	Offset    int64
	Limit     int64
	Query     string
	Sort      string
	Bookmarks bool
	// User restricts the page to one user's experiments when set.
	User string
}

// Page is one page of experiments plus the total matching count.
type Page struct {
	Experiments []*domain.Experiment
	Count       int64
	Offset      int64
	Limit       int64
	Query       string
	Sort        string
}

// HasPrev reports whether a previous page exists.
func (p *Page) HasPrev() bool {
	return p.Offset > 0
}

// HasNext reports whether a following page exists.
func (p *Page) HasNext() bool {
	return p.Offset+p.Limit < p.Count
}

// PrevOffset is the offset of the previous page, clamped at zero.
func (p *Page) PrevOffset() int64 {
	return max(p.Offset-p.Limit, 0)
}

func (p *Page) NextOffset() int64 {
	return p.Offset + p.Limit
}

// Fetch loads one page. Invalid query or sort strings return errors wrapping
// query.ErrInvalidQuery or query.ErrInvalidSort.
func (s *Service) Fetch(ctx context.Context, p FetchParams) (*Page, error) {
	q, err := query.Parse(p.Query)
	if err != nil {
		return nil, err
	}
	sort, err := query.ParseSort(p.Sort)
	if err != nil {
		return nil, err
	}

	if p.User != "" {
		q.Conditions = append(q.Conditions, query.Condition{
			Field:  query.FieldUser,
			Op:     query.OpEq,
			Values: []string{p.User},
		})
	}

	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset := max(p.Offset, 0)

	opts := ports.ListOptions{
		Offset:         offset,
		Limit:          limit,
		Query:          q,
		Sort:           sort,
		BookmarkedOnly: p.Bookmarks,
	}

	start := s.now()
	exps, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	count, err := s.repo.Count(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to count experiments: %w", err)
	}
	s.metrics.RecordFetch(ctx, s.now().Sub(start), len(exps))

	return &Page{
		Experiments: exps,
		Count:       count,
		Offset:      offset,
		Limit:       limit,
		Query:       p.Query,
		Sort:        sort.String(),
	}, nil
}

// Get returns domain.ErrExperimentNotFound for unknown names.
func (s *Service) Get(ctx context.Context, uniqueName string) (*domain.Experiment, error) {
	exp, err := s.repo.GetByUniqueName(ctx, uniqueName)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrExperimentNotFound, uniqueName)
	}
	return exp, nil
}

// CreateParams describes a new experiment.
type CreateParams struct {
	User         string             `json:"user"`
	Project      string             `json:"project"`
	Name         string             `json:"name"`
	Description  *string            `json:"description,omitempty"`
	Status       domain.Status      `json:"status,omitempty"`
	LastMetric   map[string]float64 `json:"last_metric,omitempty"`
	Declarations map[string]any     `json:"declarations,omitempty"`
}

func (s *Service) Create(ctx context.Context, p CreateParams) (*domain.Experiment, error) {
	now := s.now()
	exp := &domain.Experiment{
		User:         p.User,
		Project:      p.Project,
		Name:         p.Name,
		Description:  p.Description,
		LastMetric:   p.LastMetric,
		Declarations: p.Declarations,
		Status:       domain.StatusCreated,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if p.Status != "" {
		exp.Status = p.Status
	}
	if err := exp.Validate(); err != nil {
		return nil, err
	}
	exp.SetStatus(exp.Status, now)

	if err := s.repo.Create(ctx, exp); err != nil {
		return nil, err
	}
	s.metrics.RecordAction(ctx, ActionCreate)
	s.log.Infow("experiment created", "experiment", exp.UniqueName, "status", exp.Status)
	return exp, nil
}

// UpdateParams changes an experiment. Nil fields are left untouched. Metric
// and declaration maps are merged into the stored ones.
type UpdateParams struct {
	Name         *string            `json:"name,omitempty"`
	Description  *string            `json:"description,omitempty"`
	Status       *domain.Status     `json:"status,omitempty"`
	LastMetric   map[string]float64 `json:"last_metric,omitempty"`
	Declarations map[string]any     `json:"declarations,omitempty"`
}

func (s *Service) Update(ctx context.Context, uniqueName string, p UpdateParams) (*domain.Experiment, error) {
	exp, err := s.Get(ctx, uniqueName)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if p.Name != nil && *p.Name != "" {
		exp.Name = *p.Name
	}
	if p.Description != nil {
		exp.Description = p.Description
	}
	if p.Status != nil {
		if !p.Status.IsValid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *p.Status)
		}
		exp.SetStatus(*p.Status, now)
	}
	if len(p.LastMetric) > 0 {
		if exp.LastMetric == nil {
			exp.LastMetric = make(map[string]float64, len(p.LastMetric))
		}
		for k, v := range p.LastMetric {
			exp.LastMetric[k] = v
		}
	}
	if len(p.Declarations) > 0 {
		if exp.Declarations == nil {
			exp.Declarations = make(map[string]any, len(p.Declarations))
		}
		for k, v := range p.Declarations {
			exp.Declarations[k] = v
		}
	}
	exp.UpdatedAt = now

	if err := s.repo.Update(ctx, exp); err != nil {
		return nil, err
	}
	s.metrics.RecordAction(ctx, ActionUpdate)
	s.log.Debugw("experiment updated", "experiment", uniqueName)
	return exp, nil
}

func (s *Service) Delete(ctx context.Context, uniqueName string) error {
	if err := s.repo.Delete(ctx, uniqueName); err != nil {
		return err
	}
	s.metrics.RecordAction(ctx, ActionDelete)
	s.log.Infow("experiment deleted", "experiment", uniqueName)
	return nil
}

// Stop returns an error wrapping domain.ErrAlreadyDone when the experiment
// already reached a terminal status.
func (s *Service) Stop(ctx context.Context, uniqueName string) (*domain.Experiment, error) {
	exp, err := s.Get(ctx, uniqueName)
	if err != nil {
		return nil, err
	}
	if err := exp.Stop(s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, exp); err != nil {
		return nil, err
	}
	s.metrics.RecordAction(ctx, ActionStop)
	s.log.Infow("experiment stopped", "experiment", uniqueName)
	return exp, nil
}

func (s *Service) Bookmark(ctx context.Context, uniqueName string, bookmarked bool) error {
	if err := s.repo.SetBookmarked(ctx, uniqueName, bookmarked); err != nil {
		return err
	}
	action := ActionBookmark
	if !bookmarked {
		action = ActionUnbookmark
	}
	s.metrics.RecordAction(ctx, action)
	return nil
}

// ColumnChanged reports a column added to or removed from a view.
func (s *Service) ColumnChanged(ctx context.Context, kind, op string) {
	s.metrics.RecordColumnChange(ctx, kind, op)
}
