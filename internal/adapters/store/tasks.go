package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
)

const taskColumns = `id, title, description, checklist_id, sphere_id, priority, is_completed, created_at, updated_at`

func scanTask(row rowScanner) (*core.Task, error) {
	var t core.Task
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.ChecklistID, &t.SphereID,
		&t.Priority, &t.IsCompleted, scanTime(&t.CreatedAt), scanNullTime(&t.UpdatedAt)); err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]core.Task, error) {
	defer rows.Close()

	tasks := []core.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", classify(err))
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return tasks, nil
}

// ListTasks returns every task, newest first.
func (s *Store) ListTasks(ctx context.Context) ([]core.Task, error) {
	rows, err := s.query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", classify(err))
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksByChecklist returns the tasks of one checklist, oldest first.
func (s *Store) ListTasksByChecklist(ctx context.Context, checklistID int64) ([]core.Task, error) {
	rows, err := s.query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE checklist_id = ?
		ORDER BY created_at ASC, id ASC`, checklistID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks of checklist %d: %w", checklistID, classify(err))
	}
	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("listing tasks of checklist %d: %w", checklistID, err)
	}
	return tasks, nil
}

// GetTask returns the task with the given id.
func (s *Store) GetTask(ctx context.Context, id int64) (*core.Task, error) {
	t, err := scanTask(s.queryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = ?`, id))
	if err != nil {
		return nil, notFoundOr(err, "task", strconv.FormatInt(id, 10))
	}
	return t, nil
}

// CreateTask inserts a task. is_completed takes the column default.
func (s *Store) CreateTask(ctx context.Context, v core.NewTask) (*core.Task, error) {
	t, err := scanTask(s.queryRow(ctx, `
		INSERT INTO tasks (title, description, checklist_id, sphere_id, priority)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+taskColumns, v.Title, v.Description, v.ChecklistID, v.SphereID, v.Priority))
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", classify(err))
	}
	return t, nil
}

// UpdateTask replaces title, description, completion and priority of a task
// and stamps updated_at.
func (s *Store) UpdateTask(ctx context.Context, id *int64, v core.TaskValues) (*core.Task, error) {
	t, err := scanTask(s.queryRow(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, is_completed = ?, priority = ?, updated_at = `+s.dialect.now()+`
		WHERE id = ?
		RETURNING `+taskColumns, v.Title, v.Description, v.IsCompleted, v.Priority, id))
	if err != nil {
		return nil, notFoundOr(err, "task", idString(id))
	}
	return t, nil
}

// DeleteTask removes the task with the given id.
func (s *Store) DeleteTask(ctx context.Context, id *int64) error {
	if _, err := s.exec(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting task %s: %w", idString(id), classify(err))
	}
	return nil
}
