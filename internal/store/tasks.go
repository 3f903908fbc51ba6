package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"sprintdesk/internal/models"
)

const taskColumns = `id, project_id, sprint_id, title, description, status, priority, story_points, sequence,
	assignee_id, reporter_id, due_date, started_at, completed_at, blocked_reason, metadata, created_at, updated_at`

// CreateTask inserts a task and sets its id.
func (q queries) CreateTask(ctx context.Context, task *models.SprintTask) error {
	if task == nil {
		return fmt.Errorf("task is required")
	}
	metadata, err := encodeJSON(task.Metadata)
	if err != nil {
		return err
	}

	id, err := q.insertReturningID(ctx, `
		INSERT INTO sprint_tasks (
			project_id, sprint_id, title, description, status, priority, story_points, sequence,
			assignee_id, reporter_id, due_date, started_at, completed_at, blocked_reason, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ProjectID,
		nullInt64(task.SprintID),
		task.Title,
		nullIfEmpty(task.Description),
		string(task.Status),
		string(task.Priority),
		nullFloat(task.StoryPoints),
		task.Sequence,
		nullInt64(task.AssigneeID),
		nullInt64(task.ReporterID),
		q.nullTimeArg(task.DueDate),
		q.nullTimeArg(task.StartedAt),
		q.nullTimeArg(task.CompletedAt),
		nullIfEmpty(task.BlockedReason),
		metadata,
		q.timeArg(task.CreatedAt),
		q.timeArg(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	task.ID = id
	return nil
}

// UpdateTask overwrites the mutable columns of a task.
func (q queries) UpdateTask(ctx context.Context, task *models.SprintTask) error {
	if task == nil {
		return fmt.Errorf("task is required")
	}
	metadata, err := encodeJSON(task.Metadata)
	if err != nil {
		return err
	}

	_, err = q.exec(ctx, `
		UPDATE sprint_tasks
		SET sprint_id = ?, title = ?, description = ?, status = ?, priority = ?, story_points = ?, sequence = ?,
			assignee_id = ?, reporter_id = ?, due_date = ?, started_at = ?, completed_at = ?, blocked_reason = ?,
			metadata = ?, updated_at = ?
		WHERE id = ? AND project_id = ?`,
		nullInt64(task.SprintID),
		task.Title,
		nullIfEmpty(task.Description),
		string(task.Status),
		string(task.Priority),
		nullFloat(task.StoryPoints),
		task.Sequence,
		nullInt64(task.AssigneeID),
		nullInt64(task.ReporterID),
		q.nullTimeArg(task.DueDate),
		q.nullTimeArg(task.StartedAt),
		q.nullTimeArg(task.CompletedAt),
		nullIfEmpty(task.BlockedReason),
		metadata,
		q.timeArg(task.UpdatedAt),
		task.ID,
		task.ProjectID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// GetTask returns a task scoped to its project.
func (q queries) GetTask(ctx context.Context, projectID, taskID int64) (*models.SprintTask, error) {
	row := q.queryRow(ctx, "SELECT "+taskColumns+" FROM sprint_tasks WHERE id = ? AND project_id = ?", taskID, projectID)
	return scanTask(row)
}

// ListTasks returns tasks matching the filter.
// Backlog results are ordered priority desc, sequence asc, id asc; everything else by sequence then id.
func (q queries) ListTasks(ctx context.Context, filter TaskFilter) ([]models.SprintTask, error) {
	where := []string{"project_id = ?"}
	args := []any{filter.ProjectID}
	switch {
	case filter.Backlog:
		where = append(where, "sprint_id IS NULL")
	case filter.SprintID != nil:
		where = append(where, "sprint_id = ?")
		args = append(args, *filter.SprintID)
	}

	query := "SELECT " + taskColumns + " FROM sprint_tasks WHERE " + strings.Join(where, " AND ")
	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.SprintTask{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if filter.Backlog {
		SortBacklog(tasks)
	} else {
		sort.SliceStable(tasks, func(i, j int) bool {
			if tasks[i].Sequence != tasks[j].Sequence {
				return tasks[i].Sequence < tasks[j].Sequence
			}
			return tasks[i].ID < tasks[j].ID
		})
	}
	return tasks, nil
}

// SortBacklog orders tasks by priority desc, sequence asc, id asc.
func SortBacklog(tasks []models.SprintTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
			return ra > rb
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.ID < b.ID
	})
}

// NextTaskSequence returns one past the highest sequence used in the project.
func (q queries) NextTaskSequence(ctx context.Context, projectID int64) (int, error) {
	var maxSeq sql.NullInt64
	if err := q.queryRow(ctx, "SELECT MAX(sequence) FROM sprint_tasks WHERE project_id = ?", projectID).Scan(&maxSeq); err != nil {
		return 0, err
	}
	if !maxSeq.Valid {
		return 1, nil
	}
	return int(maxSeq.Int64) + 1, nil
}

func scanTask(scanner rowScanner) (*models.SprintTask, error) {
	var task models.SprintTask
	var sprintID, assigneeID, reporterID sql.NullInt64
	var description, blockedReason, metadata sql.NullString
	var dueDate, startedAt, completedAt, createdAt, updatedAt timeColumn
	var storyPoints sql.NullFloat64
	var status, priority string

	if err := scanner.Scan(
		&task.ID,
		&task.ProjectID,
		&sprintID,
		&task.Title,
		&description,
		&status,
		&priority,
		&storyPoints,
		&task.Sequence,
		&assigneeID,
		&reporterID,
		&dueDate,
		&startedAt,
		&completedAt,
		&blockedReason,
		&metadata,
		&createdAt,
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	task.SprintID = int64Ptr(sprintID)
	task.Description = description.String
	task.Status = models.TaskStatus(status)
	task.Priority = models.TaskPriority(priority)
	task.StoryPoints = float64Ptr(storyPoints)
	task.AssigneeID = int64Ptr(assigneeID)
	task.ReporterID = int64Ptr(reporterID)
	task.BlockedReason = blockedReason.String
	task.DueDate = dueDate.ptr()
	task.StartedAt = startedAt.ptr()
	task.CompletedAt = completedAt.ptr()
	task.CreatedAt = createdAt.Time
	task.UpdatedAt = updatedAt.Time

	var err error
	if task.Metadata, err = decodeJSONMap(metadata); err != nil {
		return nil, err
	}
	return &task, nil
}
