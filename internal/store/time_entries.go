package store

import (
	"context"
	"database/sql"
	"fmt"

	"sprintdesk/internal/models"
)

// CreateTimeEntry inserts a time entry and sets its id.
func (q queries) CreateTimeEntry(ctx context.Context, entry *models.TimeEntry) error {
	if entry == nil {
		return fmt.Errorf("time entry is required")
	}
	id, err := q.insertReturningID(ctx, `
		INSERT INTO sprint_task_time_entries (
			task_id, user_id, minutes_spent, billable, hourly_rate, started_at, ended_at, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TaskID,
		entry.UserID,
		entry.MinutesSpent,
		boolInt(entry.Billable),
		entry.HourlyRate,
		q.nullTimeArg(entry.StartedAt),
		q.nullTimeArg(entry.EndedAt),
		nullIfEmpty(entry.Notes),
		q.timeArg(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert time entry: %w", err)
	}
	entry.ID = id
	return nil
}

// ListTimeEntries returns entries logged against the tasks, oldest first.
func (q queries) ListTimeEntries(ctx context.Context, taskIDs []int64) ([]models.TimeEntry, error) {
	if len(taskIDs) == 0 {
		return []models.TimeEntry{}, nil
	}
	query := fmt.Sprintf(`
		SELECT id, task_id, user_id, minutes_spent, billable, hourly_rate, started_at, ended_at, notes, created_at
		FROM sprint_task_time_entries
		WHERE task_id IN (%s)
		ORDER BY id`, placeholders(len(taskIDs)))

	rows, err := q.query(ctx, query, idArgs(taskIDs)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.TimeEntry{}
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

func scanTimeEntry(scanner rowScanner) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	var billable int
	var notes sql.NullString
	var startedAt, endedAt, createdAt timeColumn

	if err := scanner.Scan(
		&entry.ID,
		&entry.TaskID,
		&entry.UserID,
		&entry.MinutesSpent,
		&billable,
		&entry.HourlyRate,
		&startedAt,
		&endedAt,
		&notes,
		&createdAt,
	); err != nil {
		return nil, err
	}

	entry.Billable = billable != 0
	entry.Notes = notes.String
	entry.StartedAt = startedAt.ptr()
	entry.EndedAt = endedAt.ptr()
	entry.CreatedAt = createdAt.Time
	return &entry, nil
}
