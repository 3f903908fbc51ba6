package api

import (
	"time"

	"sprintdesk/internal/analytics"
	"sprintdesk/internal/models"
)

// TaskCreateRequest defines the payload for creating a task.
type TaskCreateRequest struct {
	Title         string         `json:"title"`
	Description   *string        `json:"description,omitempty"`
	SprintID      *int64         `json:"sprintId,omitempty"`
	Status        *string        `json:"status,omitempty"`
	Priority      *string        `json:"priority,omitempty"`
	StoryPoints   *float64       `json:"storyPoints,omitempty"`
	Sequence      *int           `json:"sequence,omitempty"`
	AssigneeID    *int64         `json:"assigneeId,omitempty"`
	ReporterID    *int64         `json:"reporterId,omitempty"`
	DueDate       *Timestamp     `json:"dueDate,omitempty"`
	StartedAt     *Timestamp     `json:"startedAt,omitempty"`
	CompletedAt   *Timestamp     `json:"completedAt,omitempty"`
	BlockedReason *string        `json:"blockedReason,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	Dependencies  []int64        `json:"dependencies,omitempty"`
}

// TaskUpdateRequest defines the payload for a partial task update.
// Absent fields are left unchanged; nullable fields accept an explicit null.
type TaskUpdateRequest struct {
	Title         Optional[string]         `json:"title,omitzero"`
	Description   Optional[string]         `json:"description,omitzero"`
	SprintID      Optional[int64]          `json:"sprintId,omitzero"`
	Status        Optional[string]         `json:"status,omitzero"`
	Priority      Optional[string]         `json:"priority,omitzero"`
	StoryPoints   Optional[float64]        `json:"storyPoints,omitzero"`
	Sequence      Optional[int]            `json:"sequence,omitzero"`
	AssigneeID    Optional[int64]          `json:"assigneeId,omitzero"`
	ReporterID    Optional[int64]          `json:"reporterId,omitzero"`
	DueDate       Optional[Timestamp]      `json:"dueDate,omitzero"`
	StartedAt     Optional[Timestamp]      `json:"startedAt,omitzero"`
	CompletedAt   Optional[Timestamp]      `json:"completedAt,omitzero"`
	BlockedReason Optional[string]         `json:"blockedReason,omitzero"`
	Metadata      Optional[map[string]any] `json:"metadata,omitzero"`
	Dependencies  Optional[[]int64]        `json:"dependencies,omitzero"`
}

// TimeLogRequest defines the payload for logging time against a task.
type TimeLogRequest struct {
	UserID       *int64     `json:"userId,omitempty"`
	MinutesSpent *int       `json:"minutesSpent,omitempty"`
	StartedAt    *Timestamp `json:"startedAt,omitempty"`
	EndedAt      *Timestamp `json:"endedAt,omitempty"`
	Billable     bool       `json:"billable,omitempty"`
	HourlyRate   *float64   `json:"hourlyRate,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

// TimeEntryView is the wire form of a time entry.
type TimeEntryView struct {
	ID           int64      `json:"id"`
	TaskID       int64      `json:"taskId"`
	UserID       int64      `json:"userId"`
	MinutesSpent int        `json:"minutesSpent"`
	Billable     bool       `json:"billable"`
	HourlyRate   float64    `json:"hourlyRate"`
	StartedAt    *time.Time `json:"startedAt"`
	EndedAt      *time.Time `json:"endedAt"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// TaskView is a task hydrated with its dependency edges and logged time.
type TaskView struct {
	ID            int64                 `json:"id"`
	ProjectID     int64                 `json:"projectId"`
	SprintID      *int64                `json:"sprintId"`
	Title         string                `json:"title"`
	Description   string                `json:"description,omitempty"`
	Status        models.TaskStatus     `json:"status"`
	StatusLabel   string                `json:"statusLabel"`
	Priority      models.TaskPriority   `json:"priority"`
	StoryPoints   *float64              `json:"storyPoints"`
	Sequence      int                   `json:"sequence"`
	AssigneeID    *int64                `json:"assigneeId"`
	ReporterID    *int64                `json:"reporterId"`
	DueDate       *time.Time            `json:"dueDate"`
	StartedAt     *time.Time            `json:"startedAt"`
	CompletedAt   *time.Time            `json:"completedAt"`
	BlockedReason string                `json:"blockedReason,omitempty"`
	Metadata      map[string]any        `json:"metadata"`
	Dependencies  []int64               `json:"dependencies"`
	Dependents    []int64               `json:"dependents"`
	TimeEntries   []TimeEntryView       `json:"timeEntries"`
	TimeSummary   analytics.TimeSummary `json:"timeSummary"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// TimeLogResult is the response from logging time: the new entry and the refreshed task.
type TimeLogResult struct {
	Entry TimeEntryView `json:"entry"`
	Task  TaskView      `json:"task"`
}

// NewTimeEntryView maps a stored time entry to its wire form.
func NewTimeEntryView(entry models.TimeEntry) TimeEntryView {
	return TimeEntryView{
		ID:           entry.ID,
		TaskID:       entry.TaskID,
		UserID:       entry.UserID,
		MinutesSpent: entry.MinutesSpent,
		Billable:     entry.Billable,
		HourlyRate:   entry.HourlyRate,
		StartedAt:    entry.StartedAt,
		EndedAt:      entry.EndedAt,
		Notes:        entry.Notes,
		CreatedAt:    entry.CreatedAt,
	}
}

// NewTaskView maps a hydrated task to its wire form.
func NewTaskView(detail analytics.TaskDetail) TaskView {
	task := detail.Task
	metadata := task.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return TaskView{
		ID:            task.ID,
		ProjectID:     task.ProjectID,
		SprintID:      task.SprintID,
		Title:         task.Title,
		Description:   task.Description,
		Status:        task.Status,
		StatusLabel:   task.Status.Label(),
		Priority:      task.Priority,
		StoryPoints:   task.StoryPoints,
		Sequence:      task.Sequence,
		AssigneeID:    task.AssigneeID,
		ReporterID:    task.ReporterID,
		DueDate:       task.DueDate,
		StartedAt:     task.StartedAt,
		CompletedAt:   task.CompletedAt,
		BlockedReason: task.BlockedReason,
		Metadata:      metadata,
		Dependencies:  nonNilIDs(detail.DependsOn),
		Dependents:    nonNilIDs(detail.Dependents),
		TimeEntries:   MapAll(detail.TimeEntries, NewTimeEntryView),
		TimeSummary:   detail.TimeSummary,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
