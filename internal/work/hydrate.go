package work

import (
	"context"
	"fmt"

	"sprintdesk/internal/analytics"
	"sprintdesk/internal/models"
	"sprintdesk/internal/store"
)

// hydrateTasks attaches dependency edges and time entries to tasks.
func hydrateTasks(ctx context.Context, q store.Queries, tasks []models.SprintTask) ([]analytics.TaskDetail, error) {
	if len(tasks) == 0 {
		return []analytics.TaskDetail{}, nil
	}
	ids := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}

	edges, err := q.ListDependencies(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	entries, err := q.ListTimeEntries(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	return analytics.HydrateTasks(tasks, analytics.BuildDependencyGraph(edges), entries), nil
}

func hydrateTask(ctx context.Context, q store.Queries, task models.SprintTask) (analytics.TaskDetail, error) {
	details, err := hydrateTasks(ctx, q, []models.SprintTask{task})
	if err != nil {
		return analytics.TaskDetail{}, err
	}
	return details[0], nil
}

// sprintSnapshot loads one sprint's tasks, risks and change requests and composes its views.
func (s *Service) sprintSnapshot(ctx context.Context, q store.Queries, sprint models.SprintCycle) (analytics.SprintSnapshot, error) {
	tasks, err := q.ListTasks(ctx, store.TaskFilter{ProjectID: sprint.ProjectID, SprintID: &sprint.ID})
	if err != nil {
		return analytics.SprintSnapshot{}, fmt.Errorf("list sprint tasks: %w", err)
	}
	details, err := hydrateTasks(ctx, q, tasks)
	if err != nil {
		return analytics.SprintSnapshot{}, err
	}
	risks, err := q.ListRisks(ctx, sprint.ProjectID, &sprint.ID)
	if err != nil {
		return analytics.SprintSnapshot{}, fmt.Errorf("list sprint risks: %w", err)
	}
	changes, err := q.ListChangeRequests(ctx, sprint.ProjectID, &sprint.ID)
	if err != nil {
		return analytics.SprintSnapshot{}, fmt.Errorf("list sprint change requests: %w", err)
	}

	return analytics.BuildSprintSnapshot(analytics.SnapshotInput{
		Sprint:         sprint,
		Tasks:          details,
		Risks:          risks,
		ChangeRequests: changes,
		Location:       s.loc,
	}), nil
}
