package store

import (
	"context"
	"database/sql"
	"fmt"

	"sprintdesk/internal/models"
)

const projectColumns = `id, name, description, created_at, updated_at`

// CreateProject inserts a project and sets its id.
func (q queries) CreateProject(ctx context.Context, project *models.Project) error {
	if project == nil {
		return fmt.Errorf("project is required")
	}
	id, err := q.insertReturningID(ctx, `
		INSERT INTO projects (name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		project.Name,
		nullIfEmpty(project.Description),
		q.timeArg(project.CreatedAt),
		q.timeArg(project.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	project.ID = id
	return nil
}

// GetProject returns a project by id.
func (q queries) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	row := q.queryRow(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	return scanProject(row)
}

// ListProjects returns all projects ordered by id.
func (q queries) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := q.query(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

func scanProject(scanner rowScanner) (*models.Project, error) {
	var project models.Project
	var description sql.NullString
	var createdAt, updatedAt timeColumn

	if err := scanner.Scan(&project.ID, &project.Name, &description, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	project.Description = description.String
	project.CreatedAt = createdAt.Time
	project.UpdatedAt = updatedAt.Time
	return &project, nil
}
