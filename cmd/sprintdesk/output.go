package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sprintdesk/internal/analytics"
	"sprintdesk/internal/api"
	"sprintdesk/internal/format"
	"sprintdesk/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeLines(lines []string) error {
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatProjectLine(project api.ProjectView) string {
	line := fmt.Sprintf("#%d %s", project.ID, project.Name)
	if project.Description != "" {
		line += " - " + project.Description
	}
	return line
}

func formatTaskLine(task api.TaskView) string {
	marker := "○"
	if task.Status == models.TaskDone {
		marker = "●"
	}
	line := fmt.Sprintf("%s #%d [%s] [%s] %s", marker, task.ID, task.Priority, task.StatusLabel, task.Title)
	if task.StoryPoints != nil {
		line += fmt.Sprintf(" (%s pts)", formatNumber(*task.StoryPoints))
	}
	return line
}

func taskDetailLines(task api.TaskView) []string {
	lines := []string{
		fmt.Sprintf("id: %d", task.ID),
		fmt.Sprintf("title: %s", task.Title),
		fmt.Sprintf("status: %s", task.Status),
		fmt.Sprintf("priority: %s", task.Priority),
		fmt.Sprintf("sequence: %d", task.Sequence),
		fmt.Sprintf("sprint: %s", formatOptionalID(task.SprintID)),
		fmt.Sprintf("created_at: %s", formatTime(task.CreatedAt)),
		fmt.Sprintf("updated_at: %s", formatTime(task.UpdatedAt)),
	}

	if task.StoryPoints != nil {
		lines = append(lines, fmt.Sprintf("story_points: %s", formatNumber(*task.StoryPoints)))
	}
	if task.AssigneeID != nil {
		lines = append(lines, fmt.Sprintf("assignee: %d", *task.AssigneeID))
	}
	if task.DueDate != nil {
		lines = append(lines, fmt.Sprintf("due: %s", formatTime(*task.DueDate)))
	}
	if task.CompletedAt != nil {
		lines = append(lines, fmt.Sprintf("completed_at: %s", formatTime(*task.CompletedAt)))
	}
	if task.BlockedReason != "" {
		lines = append(lines, fmt.Sprintf("blocked_reason: %s", task.BlockedReason))
	}
	if task.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", task.Description))
	}
	if len(task.Dependencies) > 0 {
		lines = append(lines, fmt.Sprintf("depends_on: %s", joinIDs(task.Dependencies)))
	}
	if len(task.Dependents) > 0 {
		lines = append(lines, fmt.Sprintf("blocks: %s", joinIDs(task.Dependents)))
	}
	lines = append(lines, fmt.Sprintf("time: %s", formatTimeSummary(task.TimeSummary)))
	return lines
}

func writeTaskDetail(task api.TaskView) error {
	return writeLines(taskDetailLines(task))
}

func sprintSummaryLines(sprint api.SprintSnapshotView) []string {
	m := sprint.Metrics
	lines := []string{
		fmt.Sprintf("sprint #%d %s [%s]", sprint.ID, sprint.Name, sprint.Status),
	}
	if sprint.Goal != "" {
		lines = append(lines, fmt.Sprintf("goal: %s", sprint.Goal))
	}
	if sprint.StartDate != nil && sprint.EndDate != nil {
		lines = append(lines, fmt.Sprintf("dates: %s .. %s", sprint.StartDate.Format(api.DateLayout), sprint.EndDate.Format(api.DateLayout)))
	}
	lines = append(lines,
		fmt.Sprintf("tasks: %d/%d done", m.CompletedTasks, m.TotalTasks),
		fmt.Sprintf("points: %s/%s done", formatNumber(m.CompletedStoryPoints), formatNumber(m.TotalStoryPoints)),
		fmt.Sprintf("open risks: %d, pending change requests: %d", m.OpenRisks, m.PendingChangeRequests),
		fmt.Sprintf("time: %s", formatTimeSummary(m.TimeSummary)),
	)
	if sprint.Burndown != nil {
		lines = append(lines, "burndown:")
		for _, entry := range sprint.Burndown.Entries {
			lines = append(lines, fmt.Sprintf("  %s remaining %s ideal %s", entry.Date, formatNumber(entry.RemainingPoints), formatNumber(entry.IdealRemaining)))
		}
	}
	return lines
}

func formatRiskLine(risk api.RiskView) string {
	return fmt.Sprintf("#%d [%s/%s] severity %s p=%s %s", risk.ID, risk.Status, risk.Impact,
		formatNumber(risk.SeverityScore), formatNumber(risk.Probability), risk.Title)
}

func formatRiskSummary(summary analytics.RiskSummary) string {
	return fmt.Sprintf("risks: %d total, %d open, avg severity %s, max %s", summary.Total, summary.Open,
		formatNumber(summary.AverageSeverity), formatNumber(summary.HighestSeverity))
}

func formatChangeRequestLine(cr api.ChangeRequestView) string {
	line := fmt.Sprintf("#%d [%s] %s", cr.ID, cr.Status, cr.Title)
	if cr.ApprovedByID != nil {
		line += fmt.Sprintf(" (decided by %d)", *cr.ApprovedByID)
	}
	return line
}

func overviewLines(overview api.ProjectOverview) []string {
	s := overview.Summary
	lines := []string{
		formatProjectLine(overview.Project),
		fmt.Sprintf("sprints: %d (%d active)", s.TotalSprints, s.ActiveSprints),
		fmt.Sprintf("tasks: %d, backlog ready: %d", s.TotalTasks, s.BacklogReady),
		fmt.Sprintf("open risks: %d, pending approvals: %d", s.OpenRisks, s.PendingApprovals),
	}
	for _, sprint := range overview.Sprints {
		lines = append(lines, fmt.Sprintf("  sprint #%d %s [%s] %d/%d tasks done", sprint.ID, sprint.Name, sprint.Status,
			sprint.Metrics.CompletedTasks, sprint.Metrics.TotalTasks))
	}
	b := overview.BacklogSummary
	lines = append(lines, fmt.Sprintf("backlog: %d tasks, %s pts, %d blocked", b.TotalTasks, formatNumber(b.TotalStoryPoints), b.BlockedTasks))
	for _, task := range overview.Backlog {
		lines = append(lines, "  "+formatTaskLine(task))
	}
	return lines
}

func formatTimeSummary(summary analytics.TimeSummary) string {
	return fmt.Sprintf("%sh logged (%sh billable, %s billed)", formatNumber(summary.TotalHours),
		formatNumber(summary.BillableHours), formatNumber(summary.BillableAmount))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatOptionalID(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ", ")
}
