package board

import (
	"errors"
	"fmt"

	"github.com/kingrea/taskboard/internal/model"
)

var (
	// ErrProjectNotFound is returned when a commit targets a project the
	// collection does not hold.
	ErrProjectNotFound = errors.New("board: project not found")
	// ErrTaskNotFound is returned when a commit targets a task no project owns.
	ErrTaskNotFound = errors.New("board: task not found")
)

// Collection is the ordered list of projects, each embedding its tasks. It is a
// value: every Apply method returns a new Collection and leaves the receiver
// untouched, so earlier renders never observe later commits.
type Collection struct {
	projects []model.Project
}

// NewCollection copies projects into a collection. The caller may keep
// mutating its slice afterwards.
func NewCollection(projects []model.Project) Collection {
	out := make([]model.Project, len(projects))
	for i := range projects {
		out[i] = projects[i].Clone()
	}
	return Collection{projects: out}
}

// Len returns the number of projects.
func (c Collection) Len() int {
	return len(c.projects)
}

// Projects returns the projects in collection order. Task slices are shared
// with the collection and must be treated as read-only.
func (c Collection) Projects() []model.Project {
	out := make([]model.Project, len(c.projects))
	copy(out, c.projects)
	return out
}

// ProjectIDs returns every project id in collection order.
func (c Collection) ProjectIDs() []string {
	ids := make([]string, len(c.projects))
	for i := range c.projects {
		ids[i] = c.projects[i].ID
	}
	return ids
}

// Project looks up a project by id.
func (c Collection) Project(id string) (model.Project, bool) {
	idx := c.projectIndex(id)
	if idx < 0 {
		return model.Project{}, false
	}
	return c.projects[idx], true
}

// Task looks up a task by id together with the project that owns it.
func (c Collection) Task(taskID string) (model.Task, model.Project, bool) {
	pi, ti := c.taskIndex(taskID)
	if pi < 0 {
		return model.Task{}, model.Project{}, false
	}
	return c.projects[pi].Tasks[ti], c.projects[pi], true
}

// TaskOwner returns the project that owns taskID.
func (c Collection) TaskOwner(taskID string) (model.Project, bool) {
	_, owner, ok := c.Task(taskID)
	return owner, ok
}

// TaskCount returns the number of tasks across all projects.
func (c Collection) TaskCount() int {
	n := 0
	for i := range c.projects {
		n += len(c.projects[i].Tasks)
	}
	return n
}

// ApplyTaskMutation patches the task with taskID inside whichever project owns
// it. Tasks of other projects are not touched.
func (c Collection) ApplyTaskMutation(taskID string, patch model.TaskPatch) (Collection, error) {
	pi, ti := c.taskIndex(taskID)
	if pi < 0 {
		return c, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	next := c.shallowCopy()
	owner := next.projects[pi]
	tasks := make([]model.Task, len(owner.Tasks))
	copy(tasks, owner.Tasks)
	updated := tasks[ti].Clone()
	patch.Apply(&updated)
	tasks[ti] = updated
	owner.Tasks = tasks
	next.projects[pi] = owner
	return next, nil
}

// ApplyTaskDeletion removes the task with taskID from its owning project.
func (c Collection) ApplyTaskDeletion(taskID string) (Collection, error) {
	pi, ti := c.taskIndex(taskID)
	if pi < 0 {
		return c, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	next := c.shallowCopy()
	owner := next.projects[pi]
	tasks := make([]model.Task, 0, len(owner.Tasks)-1)
	tasks = append(tasks, owner.Tasks[:ti]...)
	tasks = append(tasks, owner.Tasks[ti+1:]...)
	owner.Tasks = tasks
	next.projects[pi] = owner
	return next, nil
}

// ApplyTaskCreation appends the canonical task returned by the store to the
// project matching projectID.
func (c Collection) ApplyTaskCreation(projectID string, task model.Task) (Collection, error) {
	pi := c.projectIndex(projectID)
	if pi < 0 {
		return c, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	if task.ProjectID == "" {
		task.ProjectID = projectID
	}
	if task.ProjectID != projectID {
		return c, fmt.Errorf("board: task %s belongs to project %s, not %s", task.ID, task.ProjectID, projectID)
	}
	next := c.shallowCopy()
	owner := next.projects[pi]
	tasks := make([]model.Task, 0, len(owner.Tasks)+1)
	tasks = append(tasks, owner.Tasks...)
	tasks = append(tasks, task.Clone())
	owner.Tasks = tasks
	next.projects[pi] = owner
	return next, nil
}

// ApplyProjectCreation puts the canonical project at the top of the
// collection, matching the most-recent-first ordering of the store.
func (c Collection) ApplyProjectCreation(project model.Project) Collection {
	next := Collection{projects: make([]model.Project, 0, len(c.projects)+1)}
	next.projects = append(next.projects, project.Clone())
	for i := range c.projects {
		if c.projects[i].ID == project.ID {
			continue
		}
		next.projects = append(next.projects, c.projects[i])
	}
	return next
}

// ApplyProjectUpdate patches the project fields without touching its tasks.
func (c Collection) ApplyProjectUpdate(projectID string, patch model.ProjectPatch) (Collection, error) {
	pi := c.projectIndex(projectID)
	if pi < 0 {
		return c, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	next := c.shallowCopy()
	project := next.projects[pi]
	patch.Apply(&project)
	next.projects[pi] = project
	return next, nil
}

// ApplyProjectDeletion removes the project and, with it, every task it owns.
func (c Collection) ApplyProjectDeletion(projectID string) (Collection, error) {
	pi := c.projectIndex(projectID)
	if pi < 0 {
		return c, fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
	}
	next := Collection{projects: make([]model.Project, 0, len(c.projects)-1)}
	next.projects = append(next.projects, c.projects[:pi]...)
	next.projects = append(next.projects, c.projects[pi+1:]...)
	return next, nil
}

func (c Collection) shallowCopy() Collection {
	out := make([]model.Project, len(c.projects))
	copy(out, c.projects)
	return Collection{projects: out}
}

func (c Collection) projectIndex(id string) int {
	for i := range c.projects {
		if c.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func (c Collection) taskIndex(taskID string) (int, int) {
	for pi := range c.projects {
		for ti := range c.projects[pi].Tasks {
			if c.projects[pi].Tasks[ti].ID == taskID {
				return pi, ti
			}
		}
	}
	return -1, -1
}
