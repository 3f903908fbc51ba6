package store

import (
	"context"

	"sprintdesk/internal/models"
)

// TaskFilter narrows ListTasks. A nil SprintID with Backlog false returns every project task.
type TaskFilter struct {
	ProjectID int64
	SprintID  *int64
	Backlog   bool
}

// Queries is the statement surface shared by the connection pool and open transactions.
// Get methods return (nil, nil) when the row does not exist.
type Queries interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)

	CreateSprint(ctx context.Context, sprint *models.SprintCycle) error
	UpdateSprint(ctx context.Context, sprint *models.SprintCycle) error
	GetSprint(ctx context.Context, projectID, sprintID int64) (*models.SprintCycle, error)
	ListSprints(ctx context.Context, projectID int64) ([]models.SprintCycle, error)

	CreateTask(ctx context.Context, task *models.SprintTask) error
	UpdateTask(ctx context.Context, task *models.SprintTask) error
	GetTask(ctx context.Context, projectID, taskID int64) (*models.SprintTask, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]models.SprintTask, error)
	NextTaskSequence(ctx context.Context, projectID int64) (int, error)

	ProjectTaskIDs(ctx context.Context, projectID int64, ids []int64) ([]int64, error)
	AddDependencies(ctx context.Context, taskID int64, dependsOn []int64) error
	ReplaceDependencies(ctx context.Context, taskID int64, dependsOn []int64) error
	ListDependencies(ctx context.Context, taskIDs []int64) ([]models.Dependency, error)

	CreateTimeEntry(ctx context.Context, entry *models.TimeEntry) error
	ListTimeEntries(ctx context.Context, taskIDs []int64) ([]models.TimeEntry, error)

	CreateRisk(ctx context.Context, risk *models.SprintRisk) error
	UpdateRisk(ctx context.Context, risk *models.SprintRisk) error
	GetRisk(ctx context.Context, projectID, riskID int64) (*models.SprintRisk, error)
	ListRisks(ctx context.Context, projectID int64, sprintID *int64) ([]models.SprintRisk, error)

	CreateChangeRequest(ctx context.Context, cr *models.ChangeRequest) error
	UpdateChangeRequest(ctx context.Context, cr *models.ChangeRequest) error
	GetChangeRequest(ctx context.Context, projectID, id int64) (*models.ChangeRequest, error)
	ListChangeRequests(ctx context.Context, projectID int64, sprintID *int64) ([]models.ChangeRequest, error)
}

// WorkStore abstracts work-management storage backends.
type WorkStore interface {
	Queries
	WithTx(ctx context.Context, fn func(Queries) error) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ WorkStore = (*Store)(nil)
	_ Queries   = queries{}
)
