package api

import (
	"time"

	"sprintdesk/internal/analytics"
	"sprintdesk/internal/models"
)

// ProjectCreateRequest defines the payload for creating a project.
type ProjectCreateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// ProjectView is the wire form of a project.
type ProjectView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// OverviewSummary aggregates counts across every sprint of a project.
type OverviewSummary struct {
	TotalSprints     int `json:"totalSprints"`
	ActiveSprints    int `json:"activeSprints"`
	TotalTasks       int `json:"totalTasks"`
	OpenRisks        int `json:"openRisks"`
	PendingApprovals int `json:"pendingApprovals"`
	BacklogReady     int `json:"backlogReady"`
}

// BacklogSummary aggregates the unassigned tasks of a project.
type BacklogSummary struct {
	TotalTasks       int                   `json:"totalTasks"`
	TotalStoryPoints float64               `json:"totalStoryPoints"`
	ReadyTasks       int                   `json:"readyTasks"`
	BlockedTasks     int                   `json:"blockedTasks"`
	TimeSummary      analytics.TimeSummary `json:"timeSummary"`
}

// ProjectOverview is the response from GET /v1/projects/{id}/overview.
type ProjectOverview struct {
	Project        ProjectView           `json:"project"`
	Summary        OverviewSummary       `json:"summary"`
	Sprints        []SprintSnapshotView  `json:"sprints"`
	Backlog        []TaskView            `json:"backlog"`
	BacklogSummary BacklogSummary        `json:"backlogSummary"`
	Risks          []RiskView            `json:"risks"`
	RiskSummary    analytics.RiskSummary `json:"riskSummary"`
	ChangeRequests []ChangeRequestView   `json:"changeRequests"`
}

// NewProjectView maps a stored project to its wire form.
func NewProjectView(project models.Project) ProjectView {
	return ProjectView{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}
