package work

import (
	"context"
	"fmt"

	"sprintdesk/internal/api"
	"sprintdesk/internal/models"
)

// CreateProject validates and stores a new project.
func (s *Service) CreateProject(ctx context.Context, req api.ProjectCreateRequest) (api.ProjectView, error) {
	name, err := requiredText("name", req.Name)
	if err != nil {
		return api.ProjectView{}, err
	}

	now := s.clock()
	project := &models.Project{
		Name:        name,
		Description: valueOrEmpty(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateProject(ctx, project); err != nil {
		return api.ProjectView{}, fmt.Errorf("create project: %w", err)
	}
	s.logger.Debug("project created", "project_id", project.ID)
	return api.NewProjectView(*project), nil
}

// GetProject returns one project.
func (s *Service) GetProject(ctx context.Context, projectID int64) (api.ProjectView, error) {
	project, err := requireProject(ctx, s.store, projectID)
	if err != nil {
		return api.ProjectView{}, err
	}
	return api.NewProjectView(*project), nil
}

// ListProjects returns every project ordered by id.
func (s *Service) ListProjects(ctx context.Context) ([]api.ProjectView, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return api.MapAll(projects, api.NewProjectView), nil
}
