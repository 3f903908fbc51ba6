package work

import (
	"context"
	"fmt"

	"sprintdesk/internal/analytics"
	"sprintdesk/internal/api"
	"sprintdesk/internal/models"
	"sprintdesk/internal/store"
)

// CreateRisk validates and stores a risk. Impact and status are coerced leniently;
// a missing severity is derived from probability and impact.
func (s *Service) CreateRisk(ctx context.Context, projectID int64, req api.RiskCreateRequest) (api.RiskView, error) {
	var resp api.RiskView

	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return resp, err
	}

	title, err := requiredText("title", req.Title)
	if err != nil {
		return resp, err
	}
	if err := checkProbability(req.Probability); err != nil {
		return resp, err
	}
	if err := checkSeverity(req.SeverityScore); err != nil {
		return resp, err
	}
	if err := checkSprintRef(ctx, s.store, projectID, req.SprintID); err != nil {
		return resp, err
	}
	if err := checkTaskRef(ctx, s.store, projectID, req.TaskID); err != nil {
		return resp, err
	}

	now := s.clock()
	risk := &models.SprintRisk{
		ProjectID:      projectID,
		SprintID:       req.SprintID,
		TaskID:         req.TaskID,
		Title:          title,
		Description:    valueOrEmpty(req.Description),
		Impact:         models.CoerceRiskImpact(valueOrEmpty(req.Impact)),
		Status:         models.CoerceRiskStatus(valueOrEmpty(req.Status)),
		OwnerID:        req.OwnerID,
		MitigationPlan: valueOrEmpty(req.MitigationPlan),
		LoggedAt:       now,
		ReviewAt:       s.instant(req.ReviewAt),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Probability != nil {
		risk.Probability = *req.Probability
	}
	if req.LoggedAt != nil {
		risk.LoggedAt = req.LoggedAt.Instant(s.loc)
	}
	if req.SeverityScore != nil {
		risk.SeverityScore = analytics.Round2(*req.SeverityScore)
	} else {
		risk.SeverityScore = analytics.DeriveSeverity(risk.Probability, risk.Impact)
	}

	if err := s.store.CreateRisk(ctx, risk); err != nil {
		return resp, fmt.Errorf("create risk: %w", err)
	}
	s.logger.Debug("risk created", "project_id", projectID, "risk_id", risk.ID)
	return api.NewRiskView(*risk), nil
}

// UpdateRisk applies a partial update to a risk.
func (s *Service) UpdateRisk(ctx context.Context, projectID, riskID int64, req api.RiskUpdateRequest) (api.RiskView, error) {
	var resp api.RiskView

	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return resp, err
	}
	risk, err := requireRisk(ctx, s.store, projectID, riskID)
	if err != nil {
		return resp, err
	}

	if req.Title.Set {
		if risk.Title, err = requiredText("title", req.Title.Value); err != nil {
			return resp, err
		}
	}
	if req.Description.Set {
		risk.Description = valueOrEmpty(req.Description.Ptr())
	}
	if req.SprintID.Set {
		if err := checkSprintRef(ctx, s.store, projectID, req.SprintID.Ptr()); err != nil {
			return resp, err
		}
		risk.SprintID = req.SprintID.Ptr()
	}
	if req.TaskID.Set {
		if err := checkTaskRef(ctx, s.store, projectID, req.TaskID.Ptr()); err != nil {
			return resp, err
		}
		risk.TaskID = req.TaskID.Ptr()
	}
	if req.Probability.Set {
		if err := checkProbability(req.Probability.Ptr()); err != nil {
			return resp, err
		}
		risk.Probability = req.Probability.Value
	}
	if req.SeverityScore.Set {
		if err := checkSeverity(req.SeverityScore.Ptr()); err != nil {
			return resp, err
		}
		risk.SeverityScore = analytics.Round2(req.SeverityScore.Value)
	}
	if req.Impact.Set {
		risk.Impact = models.CoerceRiskImpact(req.Impact.Value)
	}
	if req.Status.Set {
		risk.Status = models.CoerceRiskStatus(req.Status.Value)
	}
	if req.OwnerID.Set {
		risk.OwnerID = req.OwnerID.Ptr()
	}
	if req.MitigationPlan.Set {
		risk.MitigationPlan = valueOrEmpty(req.MitigationPlan.Ptr())
	}
	if req.ReviewAt.Set {
		risk.ReviewAt = s.instant(req.ReviewAt.Ptr())
	}

	risk.UpdatedAt = s.clock()
	if err := s.store.UpdateRisk(ctx, risk); err != nil {
		return resp, fmt.Errorf("update risk: %w", err)
	}
	s.logger.Debug("risk updated", "project_id", projectID, "risk_id", riskID)
	return api.NewRiskView(*risk), nil
}

// GetRisk returns one risk.
func (s *Service) GetRisk(ctx context.Context, projectID, riskID int64) (api.RiskView, error) {
	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return api.RiskView{}, err
	}
	risk, err := requireRisk(ctx, s.store, projectID, riskID)
	if err != nil {
		return api.RiskView{}, err
	}
	return api.NewRiskView(*risk), nil
}

// ListRisks returns a project's risks, optionally limited to one sprint, with their summary.
func (s *Service) ListRisks(ctx context.Context, projectID int64, sprintID *int64) (api.RiskListResponse, error) {
	if _, err := requireProject(ctx, s.store, projectID); err != nil {
		return api.RiskListResponse{}, err
	}
	if sprintID != nil {
		if _, err := requireSprint(ctx, s.store, projectID, *sprintID); err != nil {
			return api.RiskListResponse{}, err
		}
	}
	risks, err := s.store.ListRisks(ctx, projectID, sprintID)
	if err != nil {
		return api.RiskListResponse{}, fmt.Errorf("list risks: %w", err)
	}
	return api.RiskListResponse{
		Risks:   api.MapAll(risks, api.NewRiskView),
		Summary: analytics.SummarizeRisks(risks),
	}, nil
}

func requireRisk(ctx context.Context, q store.Queries, projectID, riskID int64) (*models.SprintRisk, error) {
	risk, err := q.GetRisk(ctx, projectID, riskID)
	if err != nil {
		return nil, err
	}
	if risk == nil {
		return nil, notFoundErrorf("risk %d not found", riskID)
	}
	return risk, nil
}

func checkProbability(value *float64) error {
	if value != nil && (*value < 0 || *value > 1) {
		return validationErrorf("probability must be between 0 and 1")
	}
	return nil
}

func checkSeverity(value *float64) error {
	if value != nil && (*value < 0 || *value > models.MaxSeverity) {
		return validationErrorf("severityScore must be between 0 and %d", models.MaxSeverity)
	}
	return nil
}
