package work

import (
	"context"
	"fmt"

	"sprintdesk/internal/api"
	"sprintdesk/internal/models"
)

// CreateSprint validates and stores a sprint, returning its snapshot.
func (s *Service) CreateSprint(ctx context.Context, projectID int64, req api.SprintCreateRequest, actorID *int64) (api.SprintSnapshotView, error) {
	var resp api.SprintSnapshotView

	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return resp, err
	}

	name, err := requiredText("name", req.Name)
	if err != nil {
		return resp, err
	}

	status := models.DefaultSprintStatus
	if req.Status != nil {
		status, err = models.ParseSprintStatus(*req.Status)
		if err != nil {
			return resp, validation(err)
		}
	}

	if err := checkNonNegative("velocityTarget", req.VelocityTarget); err != nil {
		return resp, err
	}
	start, end := s.calendarDay(req.StartDate), s.calendarDay(req.EndDate)
	if err := checkDateRange(start, end); err != nil {
		return resp, err
	}

	now := s.clock()
	sprint := &models.SprintCycle{
		ProjectID:   projectID,
		Name:        name,
		Goal:        valueOrEmpty(req.Goal),
		Status:      status,
		StartDate:   start,
		EndDate:     end,
		CreatedByID: positiveID(actorID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.VelocityTarget != nil {
		sprint.VelocityTarget = *req.VelocityTarget
	}

	if err := s.store.CreateSprint(ctx, sprint); err != nil {
		return resp, fmt.Errorf("create sprint: %w", err)
	}
	s.logger.Debug("sprint created", "project_id", projectID, "sprint_id", sprint.ID)

	return s.sprintView(ctx, *sprint)
}

// UpdateSprint applies a partial update to a sprint, returning its snapshot.
func (s *Service) UpdateSprint(ctx context.Context, projectID, sprintID int64, req api.SprintUpdateRequest) (api.SprintSnapshotView, error) {
	var resp api.SprintSnapshotView

	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return resp, err
	}
	sprint, err := requireSprint(ctx, s.store, projectID, sprintID)
	if err != nil {
		return resp, err
	}

	if req.Name.Set {
		sprint.Name, err = requiredText("name", req.Name.Value)
		if err != nil {
			return resp, err
		}
	}
	if req.Goal.Set {
		sprint.Goal = valueOrEmpty(req.Goal.Ptr())
	}
	if req.Status.Set {
		sprint.Status, err = models.ParseSprintStatus(req.Status.Value)
		if err != nil {
			return resp, validation(err)
		}
	}
	if req.StartDate.Set {
		sprint.StartDate = s.calendarDay(req.StartDate.Ptr())
	}
	if req.EndDate.Set {
		sprint.EndDate = s.calendarDay(req.EndDate.Ptr())
	}
	if err := checkDateRange(sprint.StartDate, sprint.EndDate); err != nil {
		return resp, err
	}
	if req.VelocityTarget.Set {
		if err := checkNonNegative("velocityTarget", req.VelocityTarget.Ptr()); err != nil {
			return resp, err
		}
		sprint.VelocityTarget = req.VelocityTarget.Value
	}

	sprint.UpdatedAt = s.clock()
	if err := s.store.UpdateSprint(ctx, sprint); err != nil {
		return resp, fmt.Errorf("update sprint: %w", err)
	}
	s.logger.Debug("sprint updated", "project_id", projectID, "sprint_id", sprintID)

	return s.sprintView(ctx, *sprint)
}

// GetSprintSnapshot returns one sprint with its kanban, timeline, burndown and metrics.
func (s *Service) GetSprintSnapshot(ctx context.Context, projectID, sprintID int64) (api.SprintSnapshotView, error) {
	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return api.SprintSnapshotView{}, err
	}
	sprint, err := requireSprint(ctx, s.store, projectID, sprintID)
	if err != nil {
		return api.SprintSnapshotView{}, err
	}
	return s.sprintView(ctx, *sprint)
}

func (s *Service) sprintView(ctx context.Context, sprint models.SprintCycle) (api.SprintSnapshotView, error) {
	snapshot, err := s.sprintSnapshot(ctx, s.store, sprint)
	if err != nil {
		return api.SprintSnapshotView{}, err
	}
	return api.NewSprintSnapshotView(snapshot), nil
}
