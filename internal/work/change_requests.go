package work

import (
	"context"
	"fmt"

	"sprintdesk/internal/api"
	"sprintdesk/internal/models"
	"sprintdesk/internal/store"
)

// CreateChangeRequest validates and stores a change request. The requester defaults to the actor.
func (s *Service) CreateChangeRequest(ctx context.Context, projectID int64, req api.ChangeRequestCreateRequest, actorID *int64) (api.ChangeRequestView, error) {
	var resp api.ChangeRequestView

	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return resp, err
	}

	title, err := requiredText("title", req.Title)
	if err != nil {
		return resp, err
	}

	status := models.DefaultChangeRequestStatus
	if req.Status != nil {
		status, err = models.ParseChangeRequestStatus(*req.Status)
		if err != nil {
			return resp, validation(err)
		}
	}
	if err := checkSprintRef(ctx, s.store, projectID, req.SprintID); err != nil {
		return resp, err
	}

	now := s.clock()
	cr := &models.ChangeRequest{
		ProjectID:        projectID,
		SprintID:         req.SprintID,
		Title:            title,
		Description:      valueOrEmpty(req.Description),
		Status:           status,
		RequestedByID:    positiveID(req.RequestedByID, actorID),
		ApprovalMetadata: map[string]any{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.CreateChangeRequest(ctx, cr); err != nil {
		return resp, fmt.Errorf("create change request: %w", err)
	}
	s.logger.Debug("change request created", "project_id", projectID, "change_request_id", cr.ID)
	return api.NewChangeRequestView(*cr), nil
}

// GetChangeRequest returns one change request.
func (s *Service) GetChangeRequest(ctx context.Context, projectID, id int64) (api.ChangeRequestView, error) {
	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return api.ChangeRequestView{}, err
	}
	cr, err := requireChangeRequest(ctx, s.store, projectID, id)
	if err != nil {
		return api.ChangeRequestView{}, err
	}
	return api.NewChangeRequestView(*cr), nil
}

// ListChangeRequests returns a project's change requests, optionally limited to one sprint.
func (s *Service) ListChangeRequests(ctx context.Context, projectID int64, sprintID *int64) ([]api.ChangeRequestView, error) {
	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return nil, err
	}
	if sprintID != nil {
		if _, err := requireSprint(ctx, s.store, projectID, *sprintID); err != nil {
			return nil, err
		}
	}
	changes, err := s.store.ListChangeRequests(ctx, projectID, sprintID)
	if err != nil {
		return nil, fmt.Errorf("list change requests: %w", err)
	}
	return api.MapAll(changes, api.NewChangeRequestView), nil
}

// ApproveChangeRequest records an approval or rejection decision.
// An already approved request is returned unchanged. The first decision's approver and
// timestamp are kept when a rejected request is later approved.
func (s *Service) ApproveChangeRequest(ctx context.Context, projectID, id int64, req api.ChangeRequestApproveRequest, actorID *int64) (api.ChangeRequestView, error) {
	var resp api.ChangeRequestView

	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return resp, err
	}

	var cr *models.ChangeRequest
	changed := false
	err := s.store.WithTx(ctx, func(q store.Queries) error {
		var err error
		cr, err = requireChangeRequest(ctx, q, projectID, id)
		if err != nil {
			return err
		}
		if cr.Status == models.ChangeApproved {
			return nil
		}

		approverID := positiveID(req.ApprovedByID, actorID)
		if approverID == nil {
			return validationErrorf("approvedById is required")
		}

		next := decisionStatus(req.Status)
		if next != cr.Status && !cr.Status.CanTransitionTo(next) {
			return validationErrorf("cannot move change request from %s to %s", cr.Status, next)
		}

		now := s.clock()
		if cr.ApprovedByID == nil {
			cr.ApprovedByID = approverID
		}
		if cr.ApprovedAt == nil {
			cr.ApprovedAt = &now
		}
		cr.ApprovalMetadata = mergeMetadata(cr.ApprovalMetadata, req.ApprovalMetadata)
		if req.ESignAuditTrail != nil {
			digest, err := auditDigest(req.ESignAuditTrail)
			if err != nil {
				return err
			}
			cr.ESignAuditTrail = req.ESignAuditTrail
			cr.ESignAuditDigest = digest
		}
		if req.ESignDocumentURL != nil {
			cr.ESignDocumentURL = valueOrEmpty(req.ESignDocumentURL)
		}
		if req.DecisionNotes != nil {
			cr.DecisionNotes = valueOrEmpty(req.DecisionNotes)
		}
		cr.Status = next
		cr.UpdatedAt = now

		if err := q.UpdateChangeRequest(ctx, cr); err != nil {
			return fmt.Errorf("update change request: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return resp, err
	}
	if changed {
		s.logger.Debug("change request decided", "project_id", projectID, "change_request_id", id, "status", cr.Status)
	}
	return api.NewChangeRequestView(*cr), nil
}

// decisionStatus returns the requested decision, defaulting to approved for anything else.
func decisionStatus(raw *string) models.ChangeRequestStatus {
	if raw == nil {
		return models.ChangeApproved
	}
	status, err := models.ParseChangeRequestStatus(*raw)
	if err != nil || !status.IsDecision() {
		return models.ChangeApproved
	}
	return status
}

func mergeMetadata(current, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(current)+len(incoming))
	for key, value := range current {
		merged[key] = value
	}
	for key, value := range incoming {
		merged[key] = value
	}
	return merged
}

func requireChangeRequest(ctx context.Context, q store.Queries, projectID, id int64) (*models.ChangeRequest, error) {
	cr, err := q.GetChangeRequest(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if cr == nil {
		return nil, notFoundErrorf("change request %d not found", id)
	}
	return cr, nil
}
