package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/ports"
	"github.com/emiliopalmerini/runboard/internal/util"
)

const maxRetries = 2

const experimentColumns = `id, unique_name, name, user_name, project, sequence, description, status,
	last_metric, declarations, is_bookmarked, created_at, updated_at, started_at, finished_at`

type ExperimentRepository struct {
	db *sql.DB
}

func NewExperimentRepository(db *sql.DB) *ExperimentRepository {
	return &ExperimentRepository{db: db}
}

func (r *ExperimentRepository) Create(ctx context.Context, e *domain.Experiment) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Status == "" {
		e.Status = domain.StatusCreated
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}

	metrics, params, err := encodeMaps(e)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM experiments WHERE user_name = ? AND project = ?`,
		e.User, e.Project,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("failed to allocate sequence: %w", err)
	}
	e.Sequence = seq
	e.UniqueName = domain.UniqueName(e.User, e.Project, seq)
	if e.Name == "" {
		e.Name = e.UniqueName
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO experiments (`+experimentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UniqueName, e.Name, e.User, e.Project, e.Sequence,
		util.NullStringPtr(e.Description), string(e.Status), metrics, params,
		util.BoolToInt64(e.IsBookmarked),
		util.FormatTime(e.CreatedAt), util.FormatTime(e.UpdatedAt),
		util.NullTime(e.StartedAt), util.NullTime(e.FinishedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", domain.ErrExperimentExists, e.UniqueName)
		}
		return fmt.Errorf("failed to create experiment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit experiment: %w", err)
	}
	return nil
}

func (r *ExperimentRepository) GetByUniqueName(ctx context.Context, uniqueName string) (*domain.Experiment, error) {
	exp, err := WithRetry(ctx, maxRetries, func() (*domain.Experiment, error) {
		row := r.db.QueryRowContext(ctx,
			`SELECT `+experimentColumns+` FROM experiments WHERE unique_name = ?`, uniqueName)
		return scanExperiment(row)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	return exp, nil
}

func (r *ExperimentRepository) List(ctx context.Context, opts ports.ListOptions) ([]*domain.Experiment, error) {
	where, args := filter(opts)
	stmt := `SELECT ` + experimentColumns + ` FROM experiments WHERE ` + where +
		` ORDER BY ` + opts.Sort.OrderBy()
	if opts.Limit > 0 {
		stmt += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Offset)
	}

	return WithRetry(ctx, maxRetries, func() ([]*domain.Experiment, error) {
		rows, err := r.db.QueryContext(ctx, stmt, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to list experiments: %w", err)
		}
		defer rows.Close()

		var experiments []*domain.Experiment
		for rows.Next() {
			exp, err := scanExperiment(rows)
			if err != nil {
				return nil, fmt.Errorf("failed to scan experiment: %w", err)
			}
			experiments = append(experiments, exp)
		}
		return experiments, rows.Err()
	})
}

func (r *ExperimentRepository) Count(ctx context.Context, opts ports.ListOptions) (int64, error) {
	where, args := filter(opts)
	return WithRetry(ctx, maxRetries, func() (int64, error) {
		var n int64
		err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM experiments WHERE `+where, args...).Scan(&n)
		if err != nil {
			return 0, fmt.Errorf("failed to count experiments: %w", err)
		}
		return n, nil
	})
}

func (r *ExperimentRepository) Update(ctx context.Context, e *domain.Experiment) error {
	metrics, params, err := encodeMaps(e)
	if err != nil {
		return err
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `UPDATE experiments SET
			name = ?, description = ?, status = ?, last_metric = ?, declarations = ?,
			is_bookmarked = ?, updated_at = ?, started_at = ?, finished_at = ?
		WHERE unique_name = ?`,
		e.Name, util.NullStringPtr(e.Description), string(e.Status), metrics, params,
		util.BoolToInt64(e.IsBookmarked), util.FormatTime(e.UpdatedAt),
		util.NullTime(e.StartedAt), util.NullTime(e.FinishedAt),
		e.UniqueName,
	)
	if err != nil {
		return fmt.Errorf("failed to update experiment: %w", err)
	}
	return requireAffected(res, e.UniqueName)
}

func (r *ExperimentRepository) Delete(ctx context.Context, uniqueName string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM experiments WHERE unique_name = ?`, uniqueName)
	if err != nil {
		return fmt.Errorf("failed to delete experiment: %w", err)
	}
	return requireAffected(res, uniqueName)
}

func (r *ExperimentRepository) SetBookmarked(ctx context.Context, uniqueName string, bookmarked bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE experiments SET is_bookmarked = ? WHERE unique_name = ?`,
		util.BoolToInt64(bookmarked), uniqueName)
	if err != nil {
		return fmt.Errorf("failed to bookmark experiment: %w", err)
	}
	return requireAffected(res, uniqueName)
}

func filter(opts ports.ListOptions) (string, []any) {
	where, args := opts.Query.Where()
	if opts.BookmarkedOnly {
		where = "is_bookmarked = 1 AND " + where
	}
	return where, args
}

func requireAffected(res sql.Result, uniqueName string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrExperimentNotFound, uniqueName)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExperiment(s scanner) (*domain.Experiment, error) {
	var (
		e                     domain.Experiment
		status                string
		description           sql.NullString
		metrics, params       sql.NullString
		bookmarked            int64
		createdAt, updatedAt  string
		startedAt, finishedAt sql.NullString
	)
	err := s.Scan(&e.ID, &e.UniqueName, &e.Name, &e.User, &e.Project, &e.Sequence,
		&description, &status, &metrics, &params, &bookmarked,
		&createdAt, &updatedAt, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	e.Status = domain.Status(status)
	e.Description = util.NullStringToPtr(description)
	e.IsBookmarked = bookmarked == 1
	e.CreatedAt = util.ParseTimeSQLite(createdAt)
	e.UpdatedAt = util.ParseTimeSQLite(updatedAt)
	e.StartedAt = util.NullTimeToPtr(startedAt)
	e.FinishedAt = util.NullTimeToPtr(finishedAt)

	if metrics.Valid && metrics.String != "" {
		if err := json.Unmarshal([]byte(metrics.String), &e.LastMetric); err != nil {
			return nil, fmt.Errorf("failed to decode last_metric of %s: %w", e.UniqueName, err)
		}
	}
	if params.Valid && params.String != "" {
		if err := json.Unmarshal([]byte(params.String), &e.Declarations); err != nil {
			return nil, fmt.Errorf("failed to decode declarations of %s: %w", e.UniqueName, err)
		}
	}
	return &e, nil
}

func encodeMaps(e *domain.Experiment) (metrics, params sql.NullString, err error) {
	if e.LastMetric != nil {
		b, err := json.Marshal(e.LastMetric)
		if err != nil {
			return metrics, params, fmt.Errorf("failed to encode last_metric: %w", err)
		}
		metrics = sql.NullString{String: string(b), Valid: true}
	}
	if e.Declarations != nil {
		b, err := json.Marshal(e.Declarations)
		if err != nil {
			return metrics, params, fmt.Errorf("failed to encode declarations: %w", err)
		}
		params = sql.NullString{String: string(b), Valid: true}
	}
	return metrics, params, nil
}
