package work

import (
	"context"
	"fmt"

	"sprintdesk/internal/analytics"
	"sprintdesk/internal/api"
	"sprintdesk/internal/models"
	"sprintdesk/internal/store"
)

// GetProjectOverview composes every sprint snapshot, the ordered backlog, and the
// project's risks and change requests. Each collection is loaded once and grouped in memory.
func (s *Service) GetProjectOverview(ctx context.Context, projectID int64) (api.ProjectOverview, error) {
	var resp api.ProjectOverview

	project, err := requireProject(ctx, s.store, projectID)
	if err != nil {
		return resp, err
	}

	sprints, err := s.store.ListSprints(ctx, projectID)
	if err != nil {
		return resp, fmt.Errorf("list sprints: %w", err)
	}
	tasks, err := s.store.ListTasks(ctx, store.TaskFilter{ProjectID: projectID})
	if err != nil {
		return resp, fmt.Errorf("list tasks: %w", err)
	}
	details, err := hydrateTasks(ctx, s.store, tasks)
	if err != nil {
		return resp, err
	}
	risks, err := s.store.ListRisks(ctx, projectID, nil)
	if err != nil {
		return resp, fmt.Errorf("list risks: %w", err)
	}
	changes, err := s.store.ListChangeRequests(ctx, projectID, nil)
	if err != nil {
		return resp, fmt.Errorf("list change requests: %w", err)
	}

	tasksBySprint := make(map[int64][]analytics.TaskDetail, len(sprints))
	backlogTasks := []models.SprintTask{}
	detailByID := make(map[int64]analytics.TaskDetail, len(details))
	for _, detail := range details {
		if detail.Task.SprintID == nil {
			backlogTasks = append(backlogTasks, detail.Task)
			detailByID[detail.Task.ID] = detail
			continue
		}
		tasksBySprint[*detail.Task.SprintID] = append(tasksBySprint[*detail.Task.SprintID], detail)
	}
	risksBySprint := make(map[int64][]models.SprintRisk)
	for _, risk := range risks {
		if risk.SprintID != nil {
			risksBySprint[*risk.SprintID] = append(risksBySprint[*risk.SprintID], risk)
		}
	}
	changesBySprint := make(map[int64][]models.ChangeRequest)
	for _, cr := range changes {
		if cr.SprintID != nil {
			changesBySprint[*cr.SprintID] = append(changesBySprint[*cr.SprintID], cr)
		}
	}

	resp.Project = api.NewProjectView(*project)
	resp.Sprints = make([]api.SprintSnapshotView, 0, len(sprints))
	for _, sprint := range sprints {
		snapshot := analytics.BuildSprintSnapshot(analytics.SnapshotInput{
			Sprint:         sprint,
			Tasks:          tasksBySprint[sprint.ID],
			Risks:          risksBySprint[sprint.ID],
			ChangeRequests: changesBySprint[sprint.ID],
			Location:       s.loc,
		})
		resp.Sprints = append(resp.Sprints, api.NewSprintSnapshotView(snapshot))
		if sprint.Status == models.SprintActive {
			resp.Summary.ActiveSprints++
		}
	}

	store.SortBacklog(backlogTasks)
	backlog := make([]analytics.TaskDetail, 0, len(backlogTasks))
	for _, task := range backlogTasks {
		backlog = append(backlog, detailByID[task.ID])
	}
	resp.Backlog = api.MapAll(backlog, api.NewTaskView)
	resp.BacklogSummary = summarizeBacklog(backlog)

	resp.Risks = api.MapAll(risks, api.NewRiskView)
	resp.RiskSummary = analytics.SummarizeRisks(risks)
	resp.ChangeRequests = api.MapAll(changes, api.NewChangeRequestView)

	resp.Summary.TotalSprints = len(sprints)
	resp.Summary.TotalTasks = len(tasks)
	resp.Summary.OpenRisks = resp.RiskSummary.Open
	resp.Summary.BacklogReady = resp.BacklogSummary.ReadyTasks
	for _, cr := range changes {
		if cr.Status == models.ChangePendingApproval {
			resp.Summary.PendingApprovals++
		}
	}
	return resp, nil
}

func summarizeBacklog(backlog []analytics.TaskDetail) api.BacklogSummary {
	summary := api.BacklogSummary{TotalTasks: len(backlog)}
	var points float64
	var entries []models.TimeEntry
	for _, detail := range backlog {
		points += detail.Task.Points()
		switch detail.Task.Status {
		case models.TaskReady:
			summary.ReadyTasks++
		case models.TaskBlocked:
			summary.BlockedTasks++
		}
		entries = append(entries, detail.TimeEntries...)
	}
	summary.TotalStoryPoints = analytics.Round2(points)
	summary.TimeSummary = analytics.SummarizeTime(entries)
	return summary
}
