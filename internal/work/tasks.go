package work

import (
	"context"
	"fmt"

	"sprintdesk/internal/analytics"
	"sprintdesk/internal/api"
	"sprintdesk/internal/models"
	"sprintdesk/internal/store"
)

// CreateSprintTask validates and stores a task with its dependency edges in one unit of work.
func (s *Service) CreateSprintTask(ctx context.Context, projectID int64, req api.TaskCreateRequest, actorID *int64) (api.TaskView, error) {
	var resp api.TaskView

	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return resp, err
	}

	title, err := requiredText("title", req.Title)
	if err != nil {
		return resp, err
	}

	status := models.DefaultTaskStatus
	if req.Status != nil {
		status, err = models.ParseTaskStatus(*req.Status)
		if err != nil {
			return resp, validation(err)
		}
	}

	priority := models.DefaultTaskPriority
	if req.Priority != nil {
		priority, err = models.ParseTaskPriority(*req.Priority)
		if err != nil {
			return resp, validation(err)
		}
	}

	if err := checkNonNegative("storyPoints", req.StoryPoints); err != nil {
		return resp, err
	}

	now := s.clock()
	task := &models.SprintTask{
		ProjectID:     projectID,
		SprintID:      req.SprintID,
		Title:         title,
		Description:   valueOrEmpty(req.Description),
		Status:        status,
		Priority:      priority,
		StoryPoints:   req.StoryPoints,
		AssigneeID:    req.AssigneeID,
		ReporterID:    positiveID(req.ReporterID, actorID),
		DueDate:       s.instant(req.DueDate),
		StartedAt:     s.instant(req.StartedAt),
		CompletedAt:   s.instant(req.CompletedAt),
		BlockedReason: valueOrEmpty(req.BlockedReason),
		Metadata:      req.Metadata,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == models.TaskDone && task.CompletedAt == nil {
		task.CompletedAt = &now
	}

	err = s.store.WithTx(ctx, func(q store.Queries) error {
		if err := checkSprintRef(ctx, q, projectID, task.SprintID); err != nil {
			return err
		}
		if req.Sequence != nil {
			task.Sequence = *req.Sequence
		} else {
			next, err := q.NextTaskSequence(ctx, projectID)
			if err != nil {
				return fmt.Errorf("next task sequence: %w", err)
			}
			task.Sequence = next
		}
		if err := q.CreateTask(ctx, task); err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return addDependencies(ctx, q, projectID, task.ID, req.Dependencies)
	})
	if err != nil {
		return resp, err
	}
	s.logger.Debug("task created", "project_id", projectID, "task_id", task.ID)

	return s.taskView(ctx, *task)
}

// UpdateSprintTask applies a partial update to a task. A present dependencies field
// replaces the task's full outgoing edge set in the same unit of work.
func (s *Service) UpdateSprintTask(ctx context.Context, projectID, taskID int64, req api.TaskUpdateRequest) (api.TaskView, error) {
	var resp api.TaskView

	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return resp, err
	}

	var task *models.SprintTask
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		task, err = requireTask(ctx, q, projectID, taskID)
		if err != nil {
			return err
		}
		if err := s.applyTaskUpdate(ctx, q, task, req); err != nil {
			return err
		}
		if err := q.UpdateTask(ctx, task); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if req.Dependencies.Set {
			return replaceDependencies(ctx, q, projectID, task.ID, req.Dependencies.Value)
		}
		return nil
	})
	if err != nil {
		return resp, err
	}
	s.logger.Debug("task updated", "project_id", projectID, "task_id", taskID)

	return s.taskView(ctx, *task)
}

func (s *Service) applyTaskUpdate(ctx context.Context, q store.Queries, task *models.SprintTask, req api.TaskUpdateRequest) error {
	var err error
	if req.Title.Set {
		if task.Title, err = requiredText("title", req.Title.Value); err != nil {
			return err
		}
	}
	if req.Description.Set {
		task.Description = valueOrEmpty(req.Description.Ptr())
	}
	if req.SprintID.Set {
		sprintID := req.SprintID.Ptr()
		if err := checkSprintRef(ctx, q, task.ProjectID, sprintID); err != nil {
			return err
		}
		task.SprintID = sprintID
	}
	if req.Status.Set {
		if task.Status, err = models.ParseTaskStatus(req.Status.Value); err != nil {
			return validation(err)
		}
	}
	if req.Priority.Set {
		if task.Priority, err = models.ParseTaskPriority(req.Priority.Value); err != nil {
			return validation(err)
		}
	}
	if req.StoryPoints.Set {
		points := req.StoryPoints.Ptr()
		if err := checkNonNegative("storyPoints", points); err != nil {
			return err
		}
		task.StoryPoints = points
	}
	if req.Sequence.Set {
		if !req.Sequence.Valid {
			return validationErrorf("sequence cannot be null")
		}
		task.Sequence = req.Sequence.Value
	}
	if req.AssigneeID.Set {
		task.AssigneeID = req.AssigneeID.Ptr()
	}
	if req.ReporterID.Set {
		task.ReporterID = req.ReporterID.Ptr()
	}
	if req.DueDate.Set {
		task.DueDate = s.instant(req.DueDate.Ptr())
	}
	if req.StartedAt.Set {
		task.StartedAt = s.instant(req.StartedAt.Ptr())
	}
	if req.CompletedAt.Set {
		task.CompletedAt = s.instant(req.CompletedAt.Ptr())
	}
	if req.BlockedReason.Set {
		task.BlockedReason = valueOrEmpty(req.BlockedReason.Ptr())
	}
	if req.Metadata.Set {
		task.Metadata = req.Metadata.Value
	}

	now := s.clock()
	if task.Status == models.TaskDone && task.CompletedAt == nil {
		if req.CompletedAt.Set {
			return validationErrorf("completedAt cannot be null while status is done")
		}
		if req.Status.Set {
			task.CompletedAt = &now
		}
	}
	task.UpdatedAt = now
	return nil
}

// GetSprintTask returns one task hydrated with its dependency edges and logged time.
func (s *Service) GetSprintTask(ctx context.Context, projectID, taskID int64) (api.TaskView, error) {
	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return api.TaskView{}, err
	}
	task, err := requireTask(ctx, s.store, projectID, taskID)
	if err != nil {
		return api.TaskView{}, err
	}
	return s.taskView(ctx, *task)
}

func (s *Service) taskView(ctx context.Context, task models.SprintTask) (api.TaskView, error) {
	detail, err := hydrateTask(ctx, s.store, task)
	if err != nil {
		return api.TaskView{}, err
	}
	return api.NewTaskView(detail), nil
}

// addDependencies adds edges from taskID to every candidate that resolves inside the project.
// Self references, non-positive ids, duplicates and foreign ids are dropped silently.
func addDependencies(ctx context.Context, q store.Queries, projectID, taskID int64, candidates []int64) error {
	resolved, err := resolveDependencies(ctx, q, projectID, taskID, candidates)
	if err != nil || len(resolved) == 0 {
		return err
	}
	if err := q.AddDependencies(ctx, taskID, resolved); err != nil {
		return fmt.Errorf("add dependencies: %w", err)
	}
	return nil
}

// replaceDependencies swaps taskID's outgoing edges for the resolved candidates.
func replaceDependencies(ctx context.Context, q store.Queries, projectID, taskID int64, candidates []int64) error {
	resolved, err := resolveDependencies(ctx, q, projectID, taskID, candidates)
	if err != nil {
		return err
	}
	if err := q.ReplaceDependencies(ctx, taskID, resolved); err != nil {
		return fmt.Errorf("replace dependencies: %w", err)
	}
	return nil
}

func resolveDependencies(ctx context.Context, q store.Queries, projectID, taskID int64, candidates []int64) ([]int64, error) {
	ids := analytics.SanitizeDependencyIDs(taskID, candidates)
	if len(ids) == 0 {
		return nil, nil
	}
	resolved, err := q.ProjectTaskIDs(ctx, projectID, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve dependencies: %w", err)
	}
	return resolved, nil
}
