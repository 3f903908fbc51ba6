package store

import (
	"context"
	"fmt"
	"strings"

	"sprintdesk/internal/models"
)

// ProjectTaskIDs returns the subset of ids that name tasks in the project, ascending.
func (q queries) ProjectTaskIDs(ctx context.Context, projectID int64, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	query := fmt.Sprintf("SELECT id FROM sprint_tasks WHERE project_id = ? AND id IN (%s) ORDER BY id", placeholders(len(ids)))
	args := append([]any{projectID}, idArgs(ids)...)

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

// AddDependencies inserts taskID -> dependsOn edges, ignoring pairs that already exist.
func (q queries) AddDependencies(ctx context.Context, taskID int64, dependsOn []int64) error {
	if len(dependsOn) == 0 {
		return nil
	}
	values := make([]string, len(dependsOn))
	args := make([]any, 0, len(dependsOn)*2)
	for i, id := range dependsOn {
		values[i] = "(?, ?)"
		args = append(args, taskID, id)
	}
	query := "INSERT INTO sprint_task_dependencies (task_id, depends_on_task_id) VALUES " +
		strings.Join(values, ",") +
		" ON CONFLICT (task_id, depends_on_task_id) DO NOTHING"
	if _, err := q.exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert dependencies: %w", err)
	}
	return nil
}

// ReplaceDependencies removes every outgoing edge of taskID, then adds dependsOn.
func (q queries) ReplaceDependencies(ctx context.Context, taskID int64, dependsOn []int64) error {
	if _, err := q.exec(ctx, "DELETE FROM sprint_task_dependencies WHERE task_id = ?", taskID); err != nil {
		return fmt.Errorf("clear dependencies: %w", err)
	}
	return q.AddDependencies(ctx, taskID, dependsOn)
}

// ListDependencies returns every edge touching one of the tasks, in either direction.
func (q queries) ListDependencies(ctx context.Context, taskIDs []int64) ([]models.Dependency, error) {
	if len(taskIDs) == 0 {
		return []models.Dependency{}, nil
	}
	marks := placeholders(len(taskIDs))
	query := fmt.Sprintf(`
		SELECT task_id, depends_on_task_id FROM sprint_task_dependencies
		WHERE task_id IN (%s) OR depends_on_task_id IN (%s)
		ORDER BY task_id, depends_on_task_id`, marks, marks)
	args := append(idArgs(taskIDs), idArgs(taskIDs)...)

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deps := []models.Dependency{}
	for rows.Next() {
		var dep models.Dependency
		if err := rows.Scan(&dep.TaskID, &dep.DependsOnTaskID); err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}
	return deps, rows.Err()
}
