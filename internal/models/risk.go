package models

import "time"

// SprintRisk is a tracked project risk, optionally scoped to a sprint or task.
type SprintRisk struct {
	ID             int64
	ProjectID      int64
	SprintID       *int64
	TaskID         *int64
	Title          string
	Description    string
	Probability    float64
	SeverityScore  float64
	Impact         RiskImpact
	Status         RiskStatus
	OwnerID        *int64
	MitigationPlan string
	LoggedAt       time.Time
	ReviewAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ChangeRequest is a scope change that must be approved or rejected.
type ChangeRequest struct {
	ID               int64
	ProjectID        int64
	SprintID         *int64
	Title            string
	Description      string
	Status           ChangeRequestStatus
	RequestedByID    *int64
	ApprovedByID     *int64
	ApprovedAt       *time.Time
	ApprovalMetadata map[string]any
	ESignDocumentURL string
	ESignAuditTrail  any
	ESignAuditDigest string
	DecisionNotes    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
