package api

import (
	"time"

	"sprintdesk/internal/analytics"
	"sprintdesk/internal/models"
)

// SprintCreateRequest defines the payload for creating a sprint.
type SprintCreateRequest struct {
	Name           string     `json:"name"`
	Goal           *string    `json:"goal,omitempty"`
	Status         *string    `json:"status,omitempty"`
	StartDate      *Timestamp `json:"startDate,omitempty"`
	EndDate        *Timestamp `json:"endDate,omitempty"`
	VelocityTarget *float64   `json:"velocityTarget,omitempty"`
}

// SprintUpdateRequest defines the payload for a partial sprint update.
type SprintUpdateRequest struct {
	Name           Optional[string]    `json:"name,omitzero"`
	Goal           Optional[string]    `json:"goal,omitzero"`
	Status         Optional[string]    `json:"status,omitzero"`
	StartDate      Optional[Timestamp] `json:"startDate,omitzero"`
	EndDate        Optional[Timestamp] `json:"endDate,omitzero"`
	VelocityTarget Optional[float64]   `json:"velocityTarget,omitzero"`
}

// SprintView is the wire form of a sprint without its derived views.
type SprintView struct {
	ID             int64               `json:"id"`
	ProjectID      int64               `json:"projectId"`
	Name           string              `json:"name"`
	Goal           string              `json:"goal,omitempty"`
	Status         models.SprintStatus `json:"status"`
	StartDate      *time.Time          `json:"startDate"`
	EndDate        *time.Time          `json:"endDate"`
	VelocityTarget float64             `json:"velocityTarget"`
	CreatedByID    *int64              `json:"createdById"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// KanbanColumnView is one status column of the sprint board.
type KanbanColumnView struct {
	Status      models.TaskStatus `json:"status"`
	Label       string            `json:"label"`
	StoryPoints float64           `json:"storyPoints"`
	Tasks       []TaskView        `json:"tasks"`
}

// SprintSnapshotView is a sprint with its kanban, timeline, burndown and metrics.
type SprintSnapshotView struct {
	SprintView
	Tasks          []TaskView                `json:"tasks"`
	Kanban         []KanbanColumnView        `json:"kanban"`
	Timeline       []analytics.TimelineEntry `json:"timeline"`
	Burndown       *analytics.Burndown       `json:"burndown"`
	Metrics        analytics.SprintMetrics   `json:"metrics"`
	Risks          []RiskView                `json:"risks"`
	ChangeRequests []ChangeRequestView       `json:"changeRequests"`
}

// NewSprintView maps a stored sprint to its wire form.
func NewSprintView(sprint models.SprintCycle) SprintView {
	return SprintView{
		ID:             sprint.ID,
		ProjectID:      sprint.ProjectID,
		Name:           sprint.Name,
		Goal:           sprint.Goal,
		Status:         sprint.Status,
		StartDate:      sprint.StartDate,
		EndDate:        sprint.EndDate,
		VelocityTarget: sprint.VelocityTarget,
		CreatedByID:    sprint.CreatedByID,
		CreatedAt:      sprint.CreatedAt,
		UpdatedAt:      sprint.UpdatedAt,
	}
}

// NewKanbanColumnView maps a kanban column to its wire form.
func NewKanbanColumnView(column analytics.KanbanColumn) KanbanColumnView {
	return KanbanColumnView{
		Status:      column.Status,
		Label:       column.Label,
		StoryPoints: column.StoryPoints,
		Tasks:       MapAll(column.Tasks, NewTaskView),
	}
}

// NewSprintSnapshotView maps a composed sprint snapshot to its wire form.
func NewSprintSnapshotView(snapshot analytics.SprintSnapshot) SprintSnapshotView {
	timeline := snapshot.Timeline
	if timeline == nil {
		timeline = []analytics.TimelineEntry{}
	}
	return SprintSnapshotView{
		SprintView:     NewSprintView(snapshot.Sprint),
		Tasks:          MapAll(snapshot.Tasks, NewTaskView),
		Kanban:         MapAll(snapshot.Kanban, NewKanbanColumnView),
		Timeline:       timeline,
		Burndown:       snapshot.Burndown,
		Metrics:        snapshot.Metrics,
		Risks:          MapAll(snapshot.Risks, NewRiskView),
		ChangeRequests: MapAll(snapshot.ChangeRequests, NewChangeRequestView),
	}
}
