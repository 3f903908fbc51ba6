package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"sprintdesk/internal/models"
)

const sprintColumns = `id, project_id, name, goal, status, start_date, end_date, velocity_target,
	created_by_id, created_at, updated_at`

// CreateSprint inserts a sprint and sets its id.
func (q queries) CreateSprint(ctx context.Context, sprint *models.SprintCycle) error {
	if sprint == nil {
		return fmt.Errorf("sprint is required")
	}
	id, err := q.insertReturningID(ctx, `
		INSERT INTO sprint_cycles (
			project_id, name, goal, status, start_date, end_date, velocity_target, created_by_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sprint.ProjectID,
		sprint.Name,
		nullIfEmpty(sprint.Goal),
		string(sprint.Status),
		q.nullTimeArg(sprint.StartDate),
		q.nullTimeArg(sprint.EndDate),
		sprint.VelocityTarget,
		nullInt64(sprint.CreatedByID),
		q.timeArg(sprint.CreatedAt),
		q.timeArg(sprint.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert sprint: %w", err)
	}
	sprint.ID = id
	return nil
}

// UpdateSprint overwrites the mutable columns of a sprint.
func (q queries) UpdateSprint(ctx context.Context, sprint *models.SprintCycle) error {
	if sprint == nil {
		return fmt.Errorf("sprint is required")
	}
	_, err := q.exec(ctx, `
		UPDATE sprint_cycles
		SET name = ?, goal = ?, status = ?, start_date = ?, end_date = ?, velocity_target = ?, updated_at = ?
		WHERE id = ? AND project_id = ?`,
		sprint.Name,
		nullIfEmpty(sprint.Goal),
		string(sprint.Status),
		q.nullTimeArg(sprint.StartDate),
		q.nullTimeArg(sprint.EndDate),
		sprint.VelocityTarget,
		q.timeArg(sprint.UpdatedAt),
		sprint.ID,
		sprint.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("update sprint: %w", err)
	}
	return nil
}

// GetSprint returns a sprint scoped to its project.
func (q queries) GetSprint(ctx context.Context, projectID, sprintID int64) (*models.SprintCycle, error) {
	row := q.queryRow(ctx, "SELECT "+sprintColumns+" FROM sprint_cycles WHERE id = ? AND project_id = ?", sprintID, projectID)
	return scanSprint(row)
}

// ListSprints returns a project's sprints ordered by start date, undated sprints last, then id.
func (q queries) ListSprints(ctx context.Context, projectID int64) ([]models.SprintCycle, error) {
	rows, err := q.query(ctx, "SELECT "+sprintColumns+" FROM sprint_cycles WHERE project_id = ?", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sprints := []models.SprintCycle{}
	for rows.Next() {
		sprint, err := scanSprint(rows)
		if err != nil {
			return nil, err
		}
		sprints = append(sprints, *sprint)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(sprints, func(i, j int) bool {
		a, b := sprints[i], sprints[j]
		switch {
		case a.StartDate == nil && b.StartDate == nil:
		case a.StartDate == nil:
			return false
		case b.StartDate == nil:
			return true
		case !a.StartDate.Equal(*b.StartDate):
			return a.StartDate.Before(*b.StartDate)
		}
		return a.ID < b.ID
	})
	return sprints, nil
}

func scanSprint(scanner rowScanner) (*models.SprintCycle, error) {
	var sprint models.SprintCycle
	var goal sql.NullString
	var startDate, endDate, createdAt, updatedAt timeColumn
	var createdByID sql.NullInt64
	var status string

	if err := scanner.Scan(
		&sprint.ID,
		&sprint.ProjectID,
		&sprint.Name,
		&goal,
		&status,
		&startDate,
		&endDate,
		&sprint.VelocityTarget,
		&createdByID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	sprint.Goal = goal.String
	sprint.Status = models.SprintStatus(status)
	sprint.CreatedByID = int64Ptr(createdByID)
	sprint.StartDate = startDate.ptr()
	sprint.EndDate = endDate.ptr()
	sprint.CreatedAt = createdAt.Time
	sprint.UpdatedAt = updatedAt.Time
	return &sprint, nil
}
