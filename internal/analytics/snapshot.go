// Package analytics derives kanban, timeline, burndown and time views from stored work items.
package analytics

import (
	"sort"
	"time"

	"sprintdesk/internal/models"
)

// TaskDetail is a task with its resolved dependency edges and logged time.
type TaskDetail struct {
	Task        models.SprintTask
	DependsOn   []int64
	Dependents  []int64
	TimeEntries []models.TimeEntry
	TimeSummary TimeSummary
}

// KanbanColumn groups the tasks sharing one status.
type KanbanColumn struct {
	Status      models.TaskStatus
	Label       string
	Tasks       []TaskDetail
	StoryPoints float64
}

// TimelineEntry positions one task on the sprint timeline.
type TimelineEntry struct {
	TaskID      int64               `json:"taskId"`
	Title       string              `json:"title"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	AssigneeID  *int64              `json:"assigneeId"`
	StoryPoints *float64            `json:"storyPoints"`
	Start       *time.Time          `json:"start"`
	End         *time.Time          `json:"end"`
	DependsOn   []int64             `json:"dependsOn"`
}

// SprintMetrics summarizes progress, risk and time for one sprint.
type SprintMetrics struct {
	TotalTasks            int         `json:"totalTasks"`
	CompletedTasks        int         `json:"completedTasks"`
	TotalStoryPoints      float64     `json:"totalStoryPoints"`
	CompletedStoryPoints  float64     `json:"completedStoryPoints"`
	UsesStoryPoints       bool        `json:"usesStoryPoints"`
	OpenRisks             int         `json:"openRisks"`
	PendingChangeRequests int         `json:"pendingChangeRequests"`
	TimeSummary           TimeSummary `json:"timeSummary"`
}

// SnapshotInput is everything needed to derive one sprint's views.
type SnapshotInput struct {
	Sprint         models.SprintCycle
	Tasks          []TaskDetail
	Risks          []models.SprintRisk
	ChangeRequests []models.ChangeRequest
	Location       *time.Location
}

// SprintSnapshot is the composed analytics view of one sprint.
type SprintSnapshot struct {
	Sprint         models.SprintCycle
	Tasks          []TaskDetail
	Kanban         []KanbanColumn
	Timeline       []TimelineEntry
	Burndown       *Burndown
	Metrics        SprintMetrics
	Risks          []models.SprintRisk
	ChangeRequests []models.ChangeRequest
}

// HydrateTasks attaches dependency lookups and time entries to each task.
func HydrateTasks(tasks []models.SprintTask, graph *DependencyGraph, entries []models.TimeEntry) []TaskDetail {
	byTask := make(map[int64][]models.TimeEntry, len(tasks))
	for _, entry := range entries {
		byTask[entry.TaskID] = append(byTask[entry.TaskID], entry)
	}

	out := make([]TaskDetail, 0, len(tasks))
	for _, task := range tasks {
		taskEntries := byTask[task.ID]
		if taskEntries == nil {
			taskEntries = []models.TimeEntry{}
		}
		out = append(out, TaskDetail{
			Task:        task,
			DependsOn:   graph.DependsOn(task.ID),
			Dependents:  graph.Dependents(task.ID),
			TimeEntries: taskEntries,
			TimeSummary: SummarizeTime(taskEntries),
		})
	}
	return out
}

// BuildSprintSnapshot composes kanban, timeline, burndown and metrics for a sprint.
func BuildSprintSnapshot(in SnapshotInput) SprintSnapshot {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}

	tasks := make([]models.SprintTask, 0, len(in.Tasks))
	for _, detail := range in.Tasks {
		tasks = append(tasks, detail.Task)
	}

	snapshot := SprintSnapshot{
		Sprint:         in.Sprint,
		Tasks:          in.Tasks,
		Kanban:         BuildKanban(in.Tasks),
		Timeline:       BuildTimeline(in.Sprint, in.Tasks),
		Metrics:        buildMetrics(in),
		Risks:          in.Risks,
		ChangeRequests: in.ChangeRequests,
	}

	if in.Sprint.StartDate != nil && in.Sprint.EndDate != nil {
		if burndown, ok := ProjectBurndown(*in.Sprint.StartDate, *in.Sprint.EndDate, tasks, loc); ok {
			snapshot.Burndown = burndown
		}
	}
	return snapshot
}

// BuildKanban groups tasks into one column per status in the fixed column order.
func BuildKanban(tasks []TaskDetail) []KanbanColumn {
	index := make(map[models.TaskStatus]int, len(models.TaskStatusOrder))
	columns := make([]KanbanColumn, 0, len(models.TaskStatusOrder))
	for i, status := range models.TaskStatusOrder {
		index[status] = i
		columns = append(columns, KanbanColumn{
			Status: status,
			Label:  status.Label(),
			Tasks:  []TaskDetail{},
		})
	}

	for _, detail := range tasks {
		i, ok := index[detail.Task.Status]
		if !ok {
			// Rows written outside the service can carry unknown statuses.
			i = index[models.DefaultTaskStatus]
		}
		columns[i].Tasks = append(columns[i].Tasks, detail)
		columns[i].StoryPoints += detail.Task.Points()
	}

	for i := range columns {
		columns[i].StoryPoints = Round2(columns[i].StoryPoints)
	}
	return columns
}

// BuildTimeline places tasks between their start and end, falling back to the sprint dates.
// Tasks with neither a start nor an end are omitted. Entries without a start sort last.
func BuildTimeline(sprint models.SprintCycle, tasks []TaskDetail) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(tasks))
	for _, detail := range tasks {
		task := detail.Task
		start := firstTime(task.StartedAt, sprint.StartDate)
		end := firstTime(task.DueDate, sprint.EndDate)
		if start == nil && end == nil {
			continue
		}
		entries = append(entries, TimelineEntry{
			TaskID:      task.ID,
			Title:       task.Title,
			Status:      task.Status,
			Priority:    task.Priority,
			AssigneeID:  task.AssigneeID,
			StoryPoints: task.StoryPoints,
			Start:       start,
			End:         end,
			DependsOn:   copyIDs(detail.DependsOn),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.Start == nil && b.Start == nil:
		case a.Start == nil:
			return false
		case b.Start == nil:
			return true
		case !a.Start.Equal(*b.Start):
			return a.Start.Before(*b.Start)
		}
		return a.TaskID < b.TaskID
	})
	return entries
}

func buildMetrics(in SnapshotInput) SprintMetrics {
	metrics := SprintMetrics{TotalTasks: len(in.Tasks)}

	var rawTotal, rawCompleted float64
	var entries []models.TimeEntry
	for _, detail := range in.Tasks {
		points := detail.Task.Points()
		rawTotal += points
		if detail.Task.Status == models.TaskDone {
			metrics.CompletedTasks++
			rawCompleted += points
		}
		entries = append(entries, detail.TimeEntries...)
	}

	metrics.UsesStoryPoints = rawTotal > 0
	if metrics.UsesStoryPoints {
		metrics.TotalStoryPoints = Round2(rawTotal)
		metrics.CompletedStoryPoints = Round2(rawCompleted)
	} else {
		metrics.TotalStoryPoints = float64(metrics.TotalTasks)
		metrics.CompletedStoryPoints = float64(metrics.CompletedTasks)
	}

	for _, risk := range in.Risks {
		if risk.Status.IsOpen() {
			metrics.OpenRisks++
		}
	}
	for _, cr := range in.ChangeRequests {
		if cr.Status == models.ChangePendingApproval {
			metrics.PendingChangeRequests++
		}
	}
	metrics.TimeSummary = SummarizeTime(entries)
	return metrics
}

func firstTime(values ...*time.Time) *time.Time {
	for _, value := range values {
		if value != nil && !value.IsZero() {
			t := *value
			return &t
		}
	}
	return nil
}
