package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kingrea/taskboard/internal/model"
)

// ListProjects returns every project with its tasks embedded, most recently
// created first. Tasks keep their creation order.
func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, key, description, status, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	index := map[string]int{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		p.Tasks = []model.Task{}
		index[p.ID] = len(projects)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	if len(projects) == 0 {
		return []model.Project{}, nil
	}

	tasks, err := s.queryTasks(ctx, `ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		if i, ok := index[task.ProjectID]; ok {
			projects[i].Tasks = append(projects[i].Tasks, task)
		}
	}
	return projects, nil
}

// GetProject returns one project with its tasks.
func (s *Store) GetProject(ctx context.Context, id string) (model.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, key, description, status, created_at, updated_at
		FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	if err != nil {
		return model.Project{}, err
	}
	tasks, err := s.queryTasks(ctx, `WHERE project_id = ? ORDER BY created_at ASC, rowid ASC`, id)
	if err != nil {
		return model.Project{}, err
	}
	p.Tasks = tasks
	return p, nil
}

// CreateProject inserts a project and returns the stored record.
func (s *Store) CreateProject(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return model.Project{}, err
	}
	now := s.timestamp()
	p := model.Project{
		ID:          s.newID(),
		Name:        in.Name,
		Key:         in.Key,
		Description: in.Description,
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
		Tasks:       []model.Task{},
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, key, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Key, p.Description, string(p.Status), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return model.Project{}, fmt.Errorf("store: create project: %w", err)
	}
	return p, nil
}

// UpdateProject applies a partial update and returns the stored record.
func (s *Store) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (model.Project, error) {
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return model.Project{}, err
	}
	current, err := s.GetProject(ctx, id)
	if err != nil {
		return model.Project{}, err
	}
	patch.Apply(&current)
	current.UpdatedAt = s.timestamp()
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, key = ?, description = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		current.Name, current.Key, current.Description, string(current.Status), formatTime(current.UpdatedAt), id)
	if err != nil {
		return model.Project{}, fmt.Errorf("store: update project: %w", err)
	}
	if err := expectOneRow(res, "project", id); err != nil {
		return model.Project{}, err
	}
	return current, nil
}

// DeleteProject removes a project and every task it owns.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: delete project: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete project tasks: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete project: %w", err)
	}
	if err := expectOneRow(res, "project", id); err != nil {
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (model.Project, error) {
	var (
		p                model.Project
		status           string
		created, updated string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Key, &p.Description, &status, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Project{}, err
		}
		return model.Project{}, fmt.Errorf("store: scan project: %w", err)
	}
	p.Status = model.ProjectStatus(status)
	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return model.Project{}, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

func expectOneRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
	}
	return nil
}
