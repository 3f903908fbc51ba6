package api

import (
	"time"

	"sprintdesk/internal/analytics"
	"sprintdesk/internal/models"
)

// RiskCreateRequest defines the payload for creating a risk.
// Impact and status are coerced leniently; unknown values fall back to medium and open.
type RiskCreateRequest struct {
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	SprintID       *int64     `json:"sprintId,omitempty"`
	TaskID         *int64     `json:"taskId,omitempty"`
	Probability    *float64   `json:"probability,omitempty"`
	SeverityScore  *float64   `json:"severityScore,omitempty"`
	Impact         *string    `json:"impact,omitempty"`
	Status         *string    `json:"status,omitempty"`
	OwnerID        *int64     `json:"ownerId,omitempty"`
	MitigationPlan *string    `json:"mitigationPlan,omitempty"`
	LoggedAt       *Timestamp `json:"loggedAt,omitempty"`
	ReviewAt       *Timestamp `json:"reviewAt,omitempty"`
}

// RiskUpdateRequest defines the payload for a partial risk update.
type RiskUpdateRequest struct {
	Title          Optional[string]    `json:"title,omitzero"`
	Description    Optional[string]    `json:"description,omitzero"`
	SprintID       Optional[int64]     `json:"sprintId,omitzero"`
	TaskID         Optional[int64]     `json:"taskId,omitzero"`
	Probability    Optional[float64]   `json:"probability,omitzero"`
	SeverityScore  Optional[float64]   `json:"severityScore,omitzero"`
	Impact         Optional[string]    `json:"impact,omitzero"`
	Status         Optional[string]    `json:"status,omitzero"`
	OwnerID        Optional[int64]     `json:"ownerId,omitzero"`
	MitigationPlan Optional[string]    `json:"mitigationPlan,omitzero"`
	ReviewAt       Optional[Timestamp] `json:"reviewAt,omitzero"`
}

// RiskView is the wire form of a risk.
type RiskView struct {
	ID             int64             `json:"id"`
	ProjectID      int64             `json:"projectId"`
	SprintID       *int64            `json:"sprintId"`
	TaskID         *int64            `json:"taskId"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Probability    float64           `json:"probability"`
	SeverityScore  float64           `json:"severityScore"`
	Impact         models.RiskImpact `json:"impact"`
	Status         models.RiskStatus `json:"status"`
	OwnerID        *int64            `json:"ownerId"`
	MitigationPlan string            `json:"mitigationPlan,omitempty"`
	LoggedAt       time.Time         `json:"loggedAt"`
	ReviewAt       *time.Time        `json:"reviewAt"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// RiskListResponse is the response from GET /v1/projects/{id}/risks.
type RiskListResponse struct {
	Risks   []RiskView            `json:"risks"`
	Summary analytics.RiskSummary `json:"summary"`
}

// NewRiskView maps a stored risk to its wire form.
func NewRiskView(risk models.SprintRisk) RiskView {
	return RiskView{
		ID:             risk.ID,
		ProjectID:      risk.ProjectID,
		SprintID:       risk.SprintID,
		TaskID:         risk.TaskID,
		Title:          risk.Title,
		Description:    risk.Description,
		Probability:    risk.Probability,
		SeverityScore:  risk.SeverityScore,
		Impact:         risk.Impact,
		Status:         risk.Status,
		OwnerID:        risk.OwnerID,
		MitigationPlan: risk.MitigationPlan,
		LoggedAt:       risk.LoggedAt,
		ReviewAt:       risk.ReviewAt,
		CreatedAt:      risk.CreatedAt,
		UpdatedAt:      risk.UpdatedAt,
	}
}
