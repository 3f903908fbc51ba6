// Package work implements the work-management operations over the entity store:
// project, sprint and task mutations, time logging, risks and change requests,
// and the composed project and sprint read views.
package work

import (
	"context"
	"log/slog"
	"time"

	"sprintdesk/internal/models"
	"sprintdesk/internal/store"
)

// Service centralizes validation, defaults and view composition for work items.
type Service struct {
	store  store.WorkStore
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger sets the logger used for mutation events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocation sets the calendar used to bucket burndown days.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service over a work store.
func New(st store.WorkStore, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: slog.Default(),
		loc:    time.UTC,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// requireProject loads a project or reports it missing.
func requireProject(ctx context.Context, q store.Queries, projectID int64) (*models.Project, error) {
	if projectID <= 0 {
		return nil, notFoundErrorf("project %d not found", projectID)
	}
	project, err := q.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, notFoundErrorf("project %d not found", projectID)
	}
	return project, nil
}

func requireSprint(ctx context.Context, q store.Queries, projectID, sprintID int64) (*models.SprintCycle, error) {
	sprint, err := q.GetSprint(ctx, projectID, sprintID)
	if err != nil {
		return nil, err
	}
	if sprint == nil {
		return nil, notFoundErrorf("sprint %d not found", sprintID)
	}
	return sprint, nil
}

func requireTask(ctx context.Context, q store.Queries, projectID, taskID int64) (*models.SprintTask, error) {
	task, err := q.GetTask(ctx, projectID, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, notFoundErrorf("task %d not found", taskID)
	}
	return task, nil
}

// checkSprintRef validates that a referenced sprint belongs to the project.
func checkSprintRef(ctx context.Context, q store.Queries, projectID int64, sprintID *int64) error {
	if sprintID == nil {
		return nil
	}
	sprint, err := q.GetSprint(ctx, projectID, *sprintID)
	if err != nil {
		return err
	}
	if sprint == nil {
		return validationErrorf("sprint %d does not belong to project %d", *sprintID, projectID)
	}
	return nil
}

// checkTaskRef validates that a referenced task belongs to the project.
func checkTaskRef(ctx context.Context, q store.Queries, projectID int64, taskID *int64) error {
	if taskID == nil {
		return nil
	}
	task, err := q.GetTask(ctx, projectID, *taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return validationErrorf("task %d does not belong to project %d", *taskID, projectID)
	}
	return nil
}
