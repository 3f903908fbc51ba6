package work

import (
	"context"
	"fmt"
	"math"
	"time"

	"sprintdesk/internal/analytics"
	"sprintdesk/internal/api"
	"sprintdesk/internal/models"
	"sprintdesk/internal/store"
)

// LogTaskTime records a time entry and returns it with the refreshed task.
// The entry write and the task reload share one unit of work.
func (s *Service) LogTaskTime(ctx context.Context, projectID, taskID int64, req api.TimeLogRequest, actorID *int64) (api.TimeLogResult, error) {
	var resp api.TimeLogResult

	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return resp, err
	}

	userID := positiveID(req.UserID, actorID)
	if userID == nil {
		return resp, validationErrorf("userId is required")
	}
	startedAt, endedAt := s.instant(req.StartedAt), s.instant(req.EndedAt)
	minutes, err := resolveMinutes(req.MinutesSpent, startedAt, endedAt)
	if err != nil {
		return resp, err
	}
	if err := checkNonNegative("hourlyRate", req.HourlyRate); err != nil {
		return resp, err
	}

	entry := &models.TimeEntry{
		TaskID:       taskID,
		UserID:       *userID,
		MinutesSpent: minutes,
		Billable:     req.Billable,
		StartedAt:    startedAt,
		EndedAt:      endedAt,
		Notes:        valueOrEmpty(req.Notes),
		CreatedAt:    s.clock(),
	}
	if req.HourlyRate != nil {
		entry.HourlyRate = analytics.Round2(*req.HourlyRate)
	}

	err = s.store.WithTx(ctx, func(q store.Queries) error {
		if _, err := requireTask(ctx, q, projectID, taskID); err != nil {
			return err
		}
		if err := q.CreateTimeEntry(ctx, entry); err != nil {
			return fmt.Errorf("create time entry: %w", err)
		}
		task, err := requireTask(ctx, q, projectID, taskID)
		if err != nil {
			return err
		}
		detail, err := hydrateTask(ctx, q, *task)
		if err != nil {
			return err
		}
		resp = api.TimeLogResult{Entry: api.NewTimeEntryView(*entry), Task: api.NewTaskView(detail)}
		return nil
	})
	if err != nil {
		return api.TimeLogResult{}, err
	}
	s.logger.Debug("time logged", "project_id", projectID, "task_id", taskID, "entry_id", entry.ID, "minutes", minutes)
	return resp, nil
}

// resolveMinutes takes minutesSpent when given, otherwise derives it from startedAt and endedAt.
func resolveMinutes(minutesSpent *int, startedAt, endedAt *time.Time) (int, error) {
	if minutesSpent != nil {
		minutes := *minutesSpent
		if minutes < models.MinMinutesSpent || minutes > models.MaxMinutesSpent {
			return 0, validationErrorf("minutesSpent must be between %d and %d", models.MinMinutesSpent, models.MaxMinutesSpent)
		}
		return minutes, nil
	}
	if startedAt != nil && endedAt != nil {
		elapsed := endedAt.Sub(*startedAt)
		if elapsed > 0 {
			minutes := int(math.Round(elapsed.Minutes()))
			if minutes >= models.MinMinutesSpent && minutes <= models.MaxMinutesSpent {
				return minutes, nil
			}
			return 0, validationErrorf("derived duration of %d minutes is outside %d-%d", minutes, models.MinMinutesSpent, models.MaxMinutesSpent)
		}
	}
	return 0, validationErrorf("minutesSpent or a positive startedAt/endedAt range is required")
}
