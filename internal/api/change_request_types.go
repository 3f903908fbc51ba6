package api

import (
	"time"

	"sprintdesk/internal/models"
)

// ChangeRequestCreateRequest defines the payload for opening a change request.
type ChangeRequestCreateRequest struct {
	Title         string  `json:"title"`
	Description   *string `json:"description,omitempty"`
	SprintID      *int64  `json:"sprintId,omitempty"`
	Status        *string `json:"status,omitempty"`
	RequestedByID *int64  `json:"requestedById,omitempty"`
}

// ChangeRequestApproveRequest defines the payload for approving or rejecting a change request.
type ChangeRequestApproveRequest struct {
	ApprovedByID     *int64         `json:"approvedById,omitempty"`
	Status           *string        `json:"status,omitempty"`
	ApprovalMetadata map[string]any `json:"approvalMetadata,omitempty"`
	ESignDocumentURL *string        `json:"eSignDocumentUrl,omitempty"`
	ESignAuditTrail  any            `json:"eSignAuditTrail,omitempty"`
	DecisionNotes    *string        `json:"decisionNotes,omitempty"`
}

// ChangeRequestView is the wire form of a change request.
type ChangeRequestView struct {
	ID               int64                      `json:"id"`
	ProjectID        int64                      `json:"projectId"`
	SprintID         *int64                     `json:"sprintId"`
	Title            string                     `json:"title"`
	Description      string                     `json:"description,omitempty"`
	Status           models.ChangeRequestStatus `json:"status"`
	RequestedByID    *int64                     `json:"requestedById"`
	ApprovedByID     *int64                     `json:"approvedById"`
	ApprovedAt       *time.Time                 `json:"approvedAt"`
	ApprovalMetadata map[string]any             `json:"approvalMetadata"`
	ESignDocumentURL string                     `json:"eSignDocumentUrl,omitempty"`
	ESignAuditTrail  any                        `json:"eSignAuditTrail"`
	ESignAuditDigest string                     `json:"eSignAuditDigest,omitempty"`
	DecisionNotes    string                     `json:"decisionNotes,omitempty"`
	CreatedAt        time.Time                  `json:"createdAt"`
	UpdatedAt        time.Time                  `json:"updatedAt"`
}

// NewChangeRequestView maps a stored change request to its wire form.
func NewChangeRequestView(cr models.ChangeRequest) ChangeRequestView {
	metadata := cr.ApprovalMetadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return ChangeRequestView{
		ID:               cr.ID,
		ProjectID:        cr.ProjectID,
		SprintID:         cr.SprintID,
		Title:            cr.Title,
		Description:      cr.Description,
		Status:           cr.Status,
		RequestedByID:    cr.RequestedByID,
		ApprovedByID:     cr.ApprovedByID,
		ApprovedAt:       cr.ApprovedAt,
		ApprovalMetadata: metadata,
		ESignDocumentURL: cr.ESignDocumentURL,
		ESignAuditTrail:  cr.ESignAuditTrail,
		ESignAuditDigest: cr.ESignAuditDigest,
		DecisionNotes:    cr.DecisionNotes,
		CreatedAt:        cr.CreatedAt,
		UpdatedAt:        cr.UpdatedAt,
	}
}
