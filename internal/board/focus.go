package board

import "github.com/kingrea/taskboard/internal/model"

// FocusState is the page state of the projects screen.
type FocusState int

const (
	NoProjectSelected FocusState = iota
	ProjectSelected
)

func (s FocusState) String() string {
	switch s {
	case ProjectSelected:
		return "project-selected"
	default:
		return "no-project-selected"
	}
}

// Focus remembers which project the detail view shows. It stores the id only;
// the project itself is resolved from the current collection on every render.
type Focus struct {
	projectID string
}

// FocusOn returns a focus already pointing at projectID.
func FocusOn(projectID string) Focus {
	return Focus{projectID: projectID}
}

// State reports the page state.
func (f Focus) State() FocusState {
	if f.projectID == "" {
		return NoProjectSelected
	}
	return ProjectSelected
}

// ProjectID returns the focused id and whether one is set.
func (f Focus) ProjectID() (string, bool) {
	return f.projectID, f.projectID != ""
}

// Select moves to ProjectSelected for id.
func (f Focus) Select(id string) Focus {
	return Focus{projectID: id}
}

// Back moves to NoProjectSelected.
func (f Focus) Back() Focus {
	return Focus{}
}

// Resolve looks the focused project up in c.
func (f Focus) Resolve(c Collection) (model.Project, bool) {
	if f.projectID == "" {
		return model.Project{}, false
	}
	return c.Project(f.projectID)
}

// Reconcile falls back to NoProjectSelected when the focused project is no
// longer part of c, e.g. after it was deleted.
func (f Focus) Reconcile(c Collection) Focus {
	if f.projectID == "" {
		return f
	}
	if _, ok := c.Project(f.projectID); !ok {
		return Focus{}
	}
	return f
}
