package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kingrea/taskboard/internal/model"
)

const taskColumns = `id, project_id, title, description, status, priority, assignee, due_date, created_at, updated_at`

// CreateTask inserts a task into projectID and returns the stored record.
func (s *Store) CreateTask(ctx context.Context, projectID string, in model.TaskInput) (model.Task, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return model.Task{}, err
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE id = ?`, projectID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("store: create task: %w", err)
	}

	now := s.timestamp()
	task := model.Task{
		ID:          s.newID(),
		ProjectID:   projectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		Assignee:    in.Assignee,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.DueDate != nil {
		due := task.DueDate.UTC()
		task.DueDate = &due
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.ProjectID, task.Title, task.Description, string(task.Status), string(task.Priority),
		nullableString(task.Assignee), nullableTime(task.DueDate), formatTime(task.CreatedAt), formatTime(task.UpdatedAt))
	if err != nil {
		return model.Task{}, fmt.Errorf("store: create task: %w", err)
	}
	return task, nil
}

// GetTask returns one task.
func (s *Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	tasks, err := s.queryTasks(ctx, `WHERE id = ?`, id)
	if err != nil {
		return model.Task{}, err
	}
	if len(tasks) == 0 {
		return model.Task{}, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	return tasks[0], nil
}

// UpdateTask applies a partial update and returns the stored record. The
// owning project never changes.
func (s *Store) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return model.Task{}, err
	}
	current, err := s.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	patch.Apply(&current)
	current.UpdatedAt = s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, assignee = ?, due_date = ?, updated_at = ?
		WHERE id = ?`,
		current.Title, current.Description, string(current.Status), string(current.Priority),
		nullableString(current.Assignee), nullableTime(current.DueDate), formatTime(current.UpdatedAt), id)
	if err != nil {
		return model.Task{}, fmt.Errorf("store: update task: %w", err)
	}
	if err := expectOneRow(res, "task", id); err != nil {
		return model.Task{}, err
	}
	return current, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete task: %w", err)
	}
	return expectOneRow(res, "task", id)
}

func (s *Store) queryTasks(ctx context.Context, clause string, args ...any) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query tasks: %w", err)
	}
	defer rows.Close()
	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: query tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(row scanner) (model.Task, error) {
	var (
		task             model.Task
		status, priority string
		assignee, due    sql.NullString
		created, updated string
	)
	err := row.Scan(&task.ID, &task.ProjectID, &task.Title, &task.Description, &status, &priority,
		&assignee, &due, &created, &updated)
	if err != nil {
		return model.Task{}, fmt.Errorf("store: scan task: %w", err)
	}
	task.Status = model.TaskStatus(status)
	task.Priority = model.TaskPriority(priority)
	task.Assignee = assignee.String
	if due.Valid && due.String != "" {
		parsed, err := parseTime(due.String)
		if err != nil {
			return model.Task{}, err
		}
		task.DueDate = &parsed
	}
	if task.CreatedAt, err = parseTime(created); err != nil {
		return model.Task{}, err
	}
	if task.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Task{}, err
	}
	return task, nil
}
