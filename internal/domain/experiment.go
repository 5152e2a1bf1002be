package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrExperimentNotFound = errors.New("experiment not found")
	ErrExperimentExists   = errors.New("experiment already exists")
	ErrAlreadyDone        = errors.New("experiment is already done")
	ErrInvalidStatus      = errors.New("invalid experiment status")
	ErrInvalidExperiment  = errors.New("invalid experiment")
)

// Experiment is a single tracked run. LastMetric holds the most recent value
// reported for each metric and Declarations the parameters it was started with.
type Experiment struct {
	ID           string
	UniqueName   string
	Name         string
	User         string
	Project      string
	Sequence     int64
	Description  *string
	Status       Status
	LastMetric   map[string]float64
	Declarations map[string]any
	IsBookmarked bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// UniqueName builds the "<user>.<project>.<sequence>" identifier used in URLs
// and by every row action.
func UniqueName(user, project string, sequence int64) string {
	return fmt.Sprintf("%s.%s.%d", user, project, sequence)
}

// Validate checks the fields a new experiment needs. User and project become
// dot separated parts of the unique name, so they may not contain dots.
func (e *Experiment) Validate() error {
	if e.User == "" || e.Project == "" {
		return fmt.Errorf("%w: user and project are required", ErrInvalidExperiment)
	}
	if strings.ContainsAny(e.User, ". /") || strings.ContainsAny(e.Project, ". /") {
		return fmt.Errorf("%w: user and project may not contain dots, spaces or slashes", ErrInvalidExperiment)
	}
	if e.Status != "" && !e.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, e.Status)
	}
	return nil
}

// Stop marks a running experiment as stopped.
func (e *Experiment) Stop(now time.Time) error {
	if e.Status.IsDone() {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyDone, e.UniqueName, e.Status)
	}
	e.SetStatus(StatusStopped, now)
	return nil
}

// SetStatus moves the experiment to status and keeps the start and finish
// timestamps in step with it.
func (e *Experiment) SetStatus(status Status, now time.Time) {
	e.Status = status
	e.UpdatedAt = now
	if status == StatusRunning && e.StartedAt == nil {
		t := now
		e.StartedAt = &t
	}
	if status.IsDone() && e.FinishedAt == nil {
		t := now
		e.FinishedAt = &t
	}
}

// Duration returns how long the experiment ran, or has been running.
// It is zero for experiments that never started.
func (e *Experiment) Duration(now time.Time) time.Duration {
	if e.StartedAt == nil {
		return 0
	}
	end := now
	if e.FinishedAt != nil {
		end = *e.FinishedAt
	}
	return end.Sub(*e.StartedAt)
}

// MetricNames returns the metric keys in sorted order.
func (e *Experiment) MetricNames() []string {
	names := make([]string, 0, len(e.LastMetric))
	for k := range e.LastMetric {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ParamNames returns the declaration keys in sorted order.
func (e *Experiment) ParamNames() []string {
	names := make([]string, 0, len(e.Declarations))
	for k := range e.Declarations {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
