package board

import (
	"context"
	"fmt"

	"github.com/kingrea/taskboard/internal/model"
)

// Remote is the persistence collaborator the board talks to. Every call is a
// single request/response exchange; success returns the canonical record.
type Remote interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	CreateProject(ctx context.Context, in model.ProjectInput) (model.Project, error)
	UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (model.Project, error)
	DeleteProject(ctx context.Context, id string) error
	CreateTask(ctx context.Context, projectID string, in model.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Mutation is one remote change. Execute performs the remote call and, on
// success, returns the Result that commits the change locally.
type Mutation interface {
	Describe() string
	Execute(ctx context.Context, remote Remote) (Result, error)
}

// Result is a change the store has confirmed.
type Result interface {
	Commit(c Collection) (Collection, error)
	Summary() string
}

// Reload replaces the collection with a fresh listing. The board never issues
// it on its own; it exists for an explicit user refresh and the initial load.
type Reload struct{}

func (Reload) Describe() string { return "load projects" }

// Execute lists every project with its tasks.
func (Reload) Execute(ctx context.Context, remote Remote) (Result, error) {
	projects, err := remote.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return Loaded{Projects: projects}, nil
}

// Loaded carries a full listing.
type Loaded struct {
	Projects []model.Project
}

func (r Loaded) Commit(Collection) (Collection, error) {
	return NewCollection(r.Projects), nil
}

func (r Loaded) Summary() string {
	return fmt.Sprintf("Loaded %d project(s)", len(r.Projects))
}

// CreateProject creates a project.
type CreateProject struct {
	Input model.ProjectInput
}

func (m CreateProject) Describe() string { return "create project" }

// Execute validates the input and creates the project remotely. Invalid input
// never reaches the remote.
func (m CreateProject) Execute(ctx context.Context, remote Remote) (Result, error) {
	in := m.Input
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	project, err := remote.CreateProject(ctx, in)
	if err != nil {
		return nil, err
	}
	return ProjectCreated{Project: project}, nil
}

// ProjectCreated carries the canonical new project.
type ProjectCreated struct {
	Project model.Project
}

func (r ProjectCreated) Commit(c Collection) (Collection, error) {
	return c.ApplyProjectCreation(r.Project), nil
}

func (r ProjectCreated) Summary() string {
	return fmt.Sprintf("Created project %s (%s)", r.Project.Name, r.Project.Key)
}

// UpdateProject patches a project.
type UpdateProject struct {
	ID    string
	Patch model.ProjectPatch
}

func (m UpdateProject) Describe() string { return "update project" }

func (m UpdateProject) Execute(ctx context.Context, remote Remote) (Result, error) {
	patch := m.Patch
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if _, err := remote.UpdateProject(ctx, m.ID, patch); err != nil {
		return nil, err
	}
	return ProjectUpdated{ID: m.ID, Patch: patch}, nil
}

// ProjectUpdated carries a confirmed project patch.
type ProjectUpdated struct {
	ID    string
	Patch model.ProjectPatch
}

func (r ProjectUpdated) Commit(c Collection) (Collection, error) {
	return c.ApplyProjectUpdate(r.ID, r.Patch)
}

func (r ProjectUpdated) Summary() string {
	return fmt.Sprintf("Updated project %s", r.ID)
}

// DeleteProject removes a project and its tasks.
type DeleteProject struct {
	ID string
}

func (m DeleteProject) Describe() string { return "delete project" }

func (m DeleteProject) Execute(ctx context.Context, remote Remote) (Result, error) {
	if err := remote.DeleteProject(ctx, m.ID); err != nil {
		return nil, err
	}
	return ProjectDeleted{ID: m.ID}, nil
}

// ProjectDeleted carries a confirmed project deletion.
type ProjectDeleted struct {
	ID string
}

func (r ProjectDeleted) Commit(c Collection) (Collection, error) {
	return c.ApplyProjectDeletion(r.ID)
}

func (r ProjectDeleted) Summary() string {
	return fmt.Sprintf("Deleted project %s", r.ID)
}

// CreateTask creates a task inside a project.
type CreateTask struct {
	ProjectID string
	Input     model.TaskInput
}

func (m CreateTask) Describe() string { return "create task" }

// Execute validates the input and creates the task remotely. An empty title
// fails here without a network call.
func (m CreateTask) Execute(ctx context.Context, remote Remote) (Result, error) {
	in := m.Input
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if m.ProjectID == "" {
		return nil, fmt.Errorf("%w: project is required", model.ErrValidation)
	}
	task, err := remote.CreateTask(ctx, m.ProjectID, in)
	if err != nil {
		return nil, err
	}
	return TaskCreated{ProjectID: m.ProjectID, Task: task}, nil
}

// TaskCreated carries the canonical new task.
type TaskCreated struct {
	ProjectID string
	Task      model.Task
}

func (r TaskCreated) Commit(c Collection) (Collection, error) {
	return c.ApplyTaskCreation(r.ProjectID, r.Task)
}

func (r TaskCreated) Summary() string {
	return fmt.Sprintf("Created task %q", r.Task.Title)
}

// UpdateTask patches a task. A kanban drop is an UpdateTask with a status-only
// patch.
type UpdateTask struct {
	ID    string
	Patch model.TaskPatch
}

func (m UpdateTask) Describe() string { return "update task" }

func (m UpdateTask) Execute(ctx context.Context, remote Remote) (Result, error) {
	patch := m.Patch
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if _, err := remote.UpdateTask(ctx, m.ID, patch); err != nil {
		return nil, err
	}
	return TaskUpdated{ID: m.ID, Patch: patch}, nil
}

// TaskUpdated carries a confirmed task patch.
type TaskUpdated struct {
	ID    string
	Patch model.TaskPatch
}

func (r TaskUpdated) Commit(c Collection) (Collection, error) {
	return c.ApplyTaskMutation(r.ID, r.Patch)
}

func (r TaskUpdated) Summary() string {
	if r.Patch.Status != nil {
		return fmt.Sprintf("Moved task %s to %s", r.ID, r.Patch.Status.Label())
	}
	return fmt.Sprintf("Updated task %s", r.ID)
}

// DeleteTask removes a task.
type DeleteTask struct {
	ID string
}

func (m DeleteTask) Describe() string { return "delete task" }

func (m DeleteTask) Execute(ctx context.Context, remote Remote) (Result, error) {
	if err := remote.DeleteTask(ctx, m.ID); err != nil {
		return nil, err
	}
	return TaskDeleted{ID: m.ID}, nil
}

// TaskDeleted carries a confirmed task deletion.
type TaskDeleted struct {
	ID string
}

func (r TaskDeleted) Commit(c Collection) (Collection, error) {
	return c.ApplyTaskDeletion(r.ID)
}

func (r TaskDeleted) Summary() string {
	return fmt.Sprintf("Deleted task %s", r.ID)
}
