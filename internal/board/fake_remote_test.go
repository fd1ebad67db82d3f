package board

import (
	"context"
	"fmt"
	"time"

	"github.com/kingrea/taskboard/internal/model"
)

// fakeRemote is an in-memory Remote that records every call it receives.
type fakeRemote struct {
	projects []model.Project
	calls    []string
	failWith error
	seq      int
	now      time.Time
}

func newFakeRemote(projects ...model.Project) *fakeRemote {
	return &fakeRemote{
		projects: NewCollection(projects).Projects(),
		now:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func (f *fakeRemote) record(call string) error {
	f.calls = append(f.calls, call)
	return f.failWith
}

func (f *fakeRemote) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeRemote) ListProjects(ctx context.Context) ([]model.Project, error) {
	if err := f.record("ListProjects"); err != nil {
		return nil, err
	}
	return NewCollection(f.projects).Projects(), nil
}

func (f *fakeRemote) CreateProject(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	if err := f.record("CreateProject"); err != nil {
		return model.Project{}, err
	}
	p := model.Project{ID: f.nextID("p"), Name: in.Name, Key: in.Key, Description: in.Description, Status: in.Status, CreatedAt: f.now, UpdatedAt: f.now}
	f.projects = append([]model.Project{p}, f.projects...)
	return p, nil
}

func (f *fakeRemote) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (model.Project, error) {
	if err := f.record("UpdateProject"); err != nil {
		return model.Project{}, err
	}
	for i := range f.projects {
		if f.projects[i].ID == id {
			patch.Apply(&f.projects[i])
			return f.projects[i], nil
		}
	}
	return model.Project{}, fmt.Errorf("project %s not found", id)
}

func (f *fakeRemote) DeleteProject(ctx context.Context, id string) error {
	return f.record("DeleteProject")
}

func (f *fakeRemote) CreateTask(ctx context.Context, projectID string, in model.TaskInput) (model.Task, error) {
	if err := f.record("CreateTask"); err != nil {
		return model.Task{}, err
	}
	return model.Task{
		ID: f.nextID("t"), ProjectID: projectID, Title: in.Title, Description: in.Description,
		Status: in.Status, Priority: in.Priority, Assignee: in.Assignee, DueDate: in.DueDate,
		CreatedAt: f.now, UpdatedAt: f.now,
	}, nil
}

func (f *fakeRemote) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	if err := f.record("UpdateTask"); err != nil {
		return model.Task{}, err
	}
	return model.Task{ID: id}, nil
}

func (f *fakeRemote) DeleteTask(ctx context.Context, id string) error {
	return f.record("DeleteTask")
}

func sampleProjects() []model.Project {
	return []model.Project{
		{
			ID: "p1", Name: "Alpha", Key: "ALP", Status: model.ProjectActive,
			Tasks: []model.Task{
				{ID: "t1", ProjectID: "p1", Title: "one", Status: model.StatusTodo, Priority: model.PriorityMedium},
				{ID: "t2", ProjectID: "p1", Title: "two", Status: model.StatusInProgress, Priority: model.PriorityHigh},
			},
		},
		{
			ID: "p2", Name: "Beta", Key: "BET", Status: model.ProjectPlanning,
			Tasks: []model.Task{
				{ID: "t3", ProjectID: "p2", Title: "three", Status: model.StatusTodo, Priority: model.PriorityLow},
			},
		},
	}
}
