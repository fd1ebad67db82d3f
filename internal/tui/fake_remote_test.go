package tui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kingrea/taskboard/internal/auth"
	"github.com/kingrea/taskboard/internal/client"
	"github.com/kingrea/taskboard/internal/model"
)

var testNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// fakeRemote is an in-memory API that records every call.
type fakeRemote struct {
	projects []model.Project
	calls    []string
	failWith error
	loginErr error
	seq      int
}

func newFakeRemote(projects ...model.Project) *fakeRemote {
	out := make([]model.Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return &fakeRemote{projects: out}
}

func (f *fakeRemote) record(call string) error {
	f.calls = append(f.calls, call)
	return f.failWith
}

func (f *fakeRemote) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeRemote) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-new-%d", prefix, f.seq)
}

func (f *fakeRemote) Login(ctx context.Context, email, password string) (auth.Session, error) {
	f.calls = append(f.calls, "Login")
	if f.loginErr != nil {
		return auth.Session{}, f.loginErr
	}
	if password != "pw" {
		return auth.Session{}, &client.StatusError{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	return auth.Session{
		Token:     "token",
		ExpiresAt: testNow.Add(auth.DefaultTTL),
		User:      auth.User{ID: "1", Email: email, Name: "Test User"},
	}, nil
}

func (f *fakeRemote) Logout() {
	f.calls = append(f.calls, "Logout")
}

func (f *fakeRemote) ListProjects(ctx context.Context) ([]model.Project, error) {
	if err := f.record("ListProjects"); err != nil {
		return nil, err
	}
	out := make([]model.Project, len(f.projects))
	for i, p := range f.projects {
		out[i] = p.Clone()
	}
	return out, nil
}

func (f *fakeRemote) CreateProject(ctx context.Context, in model.ProjectInput) (model.Project, error) {
	if err := f.record("CreateProject"); err != nil {
		return model.Project{}, err
	}
	p := model.Project{
		ID: f.nextID("p"), Name: in.Name, Key: in.Key, Description: in.Description,
		Status: in.Status, CreatedAt: testNow, UpdatedAt: testNow, Tasks: []model.Task{},
	}
	f.projects = append([]model.Project{p}, f.projects...)
	return p.Clone(), nil
}

func (f *fakeRemote) UpdateProject(ctx context.Context, id string, patch model.ProjectPatch) (model.Project, error) {
	if err := f.record("UpdateProject"); err != nil {
		return model.Project{}, err
	}
	for i := range f.projects {
		if f.projects[i].ID == id {
			patch.Apply(&f.projects[i])
			return f.projects[i].Clone(), nil
		}
	}
	return model.Project{}, &client.StatusError{Status: http.StatusNotFound}
}

func (f *fakeRemote) DeleteProject(ctx context.Context, id string) error {
	if err := f.record("DeleteProject"); err != nil {
		return err
	}
	for i := range f.projects {
		if f.projects[i].ID == id {
			f.projects = append(f.projects[:i:i], f.projects[i+1:]...)
			return nil
		}
	}
	return &client.StatusError{Status: http.StatusNotFound}
}

func (f *fakeRemote) CreateTask(ctx context.Context, projectID string, in model.TaskInput) (model.Task, error) {
	if err := f.record("CreateTask"); err != nil {
		return model.Task{}, err
	}
	for i := range f.projects {
		if f.projects[i].ID != projectID {
			continue
		}
		task := model.Task{
			ID: f.nextID("t"), ProjectID: projectID, Title: in.Title, Description: in.Description,
			Status: in.Status, Priority: in.Priority, Assignee: in.Assignee, DueDate: in.DueDate,
			CreatedAt: testNow, UpdatedAt: testNow,
		}
		f.projects[i].Tasks = append(f.projects[i].Tasks, task)
		return task.Clone(), nil
	}
	return model.Task{}, &client.StatusError{Status: http.StatusNotFound}
}

func (f *fakeRemote) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	if err := f.record("UpdateTask"); err != nil {
		return model.Task{}, err
	}
	for i := range f.projects {
		for j := range f.projects[i].Tasks {
			if f.projects[i].Tasks[j].ID == id {
				patch.Apply(&f.projects[i].Tasks[j])
				return f.projects[i].Tasks[j].Clone(), nil
			}
		}
	}
	return model.Task{}, &client.StatusError{Status: http.StatusNotFound}
}

func (f *fakeRemote) DeleteTask(ctx context.Context, id string) error {
	if err := f.record("DeleteTask"); err != nil {
		return err
	}
	for i := range f.projects {
		tasks := f.projects[i].Tasks
		for j := range tasks {
			if tasks[j].ID == id {
				f.projects[i].Tasks = append(tasks[:j:j], tasks[j+1:]...)
				return nil
			}
		}
	}
	return &client.StatusError{Status: http.StatusNotFound}
}
