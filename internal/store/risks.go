package store

import (
	"context"
	"database/sql"
	"fmt"

	"sprintdesk/internal/models"
)

const riskColumns = `id, project_id, sprint_id, task_id, title, description, probability, severity_score, impact,
	status, owner_id, mitigation_plan, logged_at, review_at, created_at, updated_at`

// CreateRisk inserts a risk and sets its id.
func (q queries) CreateRisk(ctx context.Context, risk *models.SprintRisk) error {
	if risk == nil {
		return fmt.Errorf("risk is required")
	}
	id, err := q.insertReturningID(ctx, `
		INSERT INTO sprint_risks (
			project_id, sprint_id, task_id, title, description, probability, severity_score, impact,
			status, owner_id, mitigation_plan, logged_at, review_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		risk.ProjectID,
		nullInt64(risk.SprintID),
		nullInt64(risk.TaskID),
		risk.Title,
		nullIfEmpty(risk.Description),
		risk.Probability,
		risk.SeverityScore,
		string(risk.Impact),
		string(risk.Status),
		nullInt64(risk.OwnerID),
		nullIfEmpty(risk.MitigationPlan),
		q.timeArg(risk.LoggedAt),
		q.nullTimeArg(risk.ReviewAt),
		q.timeArg(risk.CreatedAt),
		q.timeArg(risk.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert risk: %w", err)
	}
	risk.ID = id
	return nil
}

// UpdateRisk overwrites the mutable columns of a risk.
func (q queries) UpdateRisk(ctx context.Context, risk *models.SprintRisk) error {
	if risk == nil {
		return fmt.Errorf("risk is required")
	}
	_, err := q.exec(ctx, `
		UPDATE sprint_risks
		SET sprint_id = ?, task_id = ?, title = ?, description = ?, probability = ?, severity_score = ?, impact = ?,
			status = ?, owner_id = ?, mitigation_plan = ?, logged_at = ?, review_at = ?, updated_at = ?
		WHERE id = ? AND project_id = ?`,
		nullInt64(risk.SprintID),
		nullInt64(risk.TaskID),
		risk.Title,
		nullIfEmpty(risk.Description),
		risk.Probability,
		risk.SeverityScore,
		string(risk.Impact),
		string(risk.Status),
		nullInt64(risk.OwnerID),
		nullIfEmpty(risk.MitigationPlan),
		q.timeArg(risk.LoggedAt),
		q.nullTimeArg(risk.ReviewAt),
		q.timeArg(risk.UpdatedAt),
		risk.ID,
		risk.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("update risk: %w", err)
	}
	return nil
}

// GetRisk returns a risk scoped to its project.
func (q queries) GetRisk(ctx context.Context, projectID, riskID int64) (*models.SprintRisk, error) {
	row := q.queryRow(ctx, "SELECT "+riskColumns+" FROM sprint_risks WHERE id = ? AND project_id = ?", riskID, projectID)
	return scanRisk(row)
}

// ListRisks returns a project's risks, optionally limited to one sprint, ordered by id.
func (q queries) ListRisks(ctx context.Context, projectID int64, sprintID *int64) ([]models.SprintRisk, error) {
	query := "SELECT " + riskColumns + " FROM sprint_risks WHERE project_id = ?"
	args := []any{projectID}
	if sprintID != nil {
		query += " AND sprint_id = ?"
		args = append(args, *sprintID)
	}
	query += " ORDER BY id"

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	risks := []models.SprintRisk{}
	for rows.Next() {
		risk, err := scanRisk(rows)
		if err != nil {
			return nil, err
		}
		risks = append(risks, *risk)
	}
	return risks, rows.Err()
}

func scanRisk(scanner rowScanner) (*models.SprintRisk, error) {
	var risk models.SprintRisk
	var sprintID, taskID, ownerID sql.NullInt64
	var description, mitigationPlan sql.NullString
	var loggedAt, reviewAt, createdAt, updatedAt timeColumn
	var impact, status string

	if err := scanner.Scan(
		&risk.ID,
		&risk.ProjectID,
		&sprintID,
		&taskID,
		&risk.Title,
		&description,
		&risk.Probability,
		&risk.SeverityScore,
		&impact,
		&status,
		&ownerID,
		&mitigationPlan,
		&loggedAt,
		&reviewAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	risk.SprintID = int64Ptr(sprintID)
	risk.TaskID = int64Ptr(taskID)
	risk.OwnerID = int64Ptr(ownerID)
	risk.Description = description.String
	risk.MitigationPlan = mitigationPlan.String
	risk.Impact = models.RiskImpact(impact)
	risk.Status = models.RiskStatus(status)
	risk.LoggedAt = loggedAt.Time
	risk.ReviewAt = reviewAt.ptr()
	risk.CreatedAt = createdAt.Time
	risk.UpdatedAt = updatedAt.Time
	return &risk, nil
}
