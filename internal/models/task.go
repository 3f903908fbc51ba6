package models

import "time"

// Project is the ownership root for all work-management entities.
type Project struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SprintCycle is a time-boxed iteration inside a project.
type SprintCycle struct {
	ID             int64
	ProjectID      int64
	Name           string
	Goal           string
	Status         SprintStatus
	StartDate      *time.Time
	EndDate        *time.Time
	VelocityTarget float64
	CreatedByID    *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SprintTask is a unit of work, optionally assigned to a sprint.
type SprintTask struct {
	ID            int64
	ProjectID     int64
	SprintID      *int64
	Title         string
	Description   string
	Status        TaskStatus
	Priority      TaskPriority
	StoryPoints   *float64
	Sequence      int
	AssigneeID    *int64
	ReporterID    *int64
	DueDate       *time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	BlockedReason string
	Metadata      map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Points returns the task's story points, treating missing points as zero.
func (t SprintTask) Points() float64 {
	if t.StoryPoints == nil {
		return 0
	}
	return *t.StoryPoints
}

// Dependency is a directed edge: TaskID depends on DependsOnTaskID.
type Dependency struct {
	TaskID          int64
	DependsOnTaskID int64
}

// TimeEntry is time logged against a task by one user.
type TimeEntry struct {
	ID           int64
	TaskID       int64
	UserID       int64
	MinutesSpent int
	Billable     bool
	HourlyRate   float64
	StartedAt    *time.Time
	EndedAt      *time.Time
	Notes        string
	CreatedAt    time.Time
}
