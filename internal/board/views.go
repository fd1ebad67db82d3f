package board

import (
	"sort"

	"github.com/kingrea/taskboard/internal/model"
)

// Selection is the set of project ids whose tasks appear on the kanban board.
// It has no effect on the project detail view.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection builds a selection from ids.
func NewSelection(ids ...string) Selection {
	sel := Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		sel.ids[id] = struct{}{}
	}
	return sel
}

// AllProjects selects every project in c, the board's default.
func AllProjects(c Collection) Selection {
	return NewSelection(c.ProjectIDs()...)
}

// Has reports whether id is selected.
func (s Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids sorted for stable output.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Toggle flips id in or out of the selection.
func (s Selection) Toggle(id string) Selection {
	next := s.clone()
	if _, ok := next.ids[id]; ok {
		delete(next.ids, id)
	} else {
		next.ids[id] = struct{}{}
	}
	return next
}

// Add returns a selection that also contains ids.
func (s Selection) Add(ids ...string) Selection {
	next := s.clone()
	for _, id := range ids {
		next.ids[id] = struct{}{}
	}
	return next
}

// ToggleAll clears the selection when every project in c is selected and
// selects every project otherwise.
func (s Selection) ToggleAll(c Collection) Selection {
	if s.CoversAll(c) {
		return NewSelection()
	}
	return AllProjects(c)
}

// CoversAll reports whether every project in c is selected.
func (s Selection) CoversAll(c Collection) bool {
	for _, id := range c.ProjectIDs() {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Prune drops ids that no longer name a project in c.
func (s Selection) Prune(c Collection) Selection {
	next := NewSelection()
	for id := range s.ids {
		if _, ok := c.Project(id); ok {
			next.ids[id] = struct{}{}
		}
	}
	return next
}

func (s Selection) clone() Selection {
	next := Selection{ids: make(map[string]struct{}, len(s.ids)+1)}
	for id := range s.ids {
		next.ids[id] = struct{}{}
	}
	return next
}

// KanbanTask is a task annotated with the name and key of its project.
type KanbanTask struct {
	model.Task
	ProjectName string
	ProjectKey  string
}

// DeriveKanbanTasks flattens the tasks of every selected project, in
// collection order and then task order. It is recomputed on every render so a
// task can only appear while its project is in c and selected.
func DeriveKanbanTasks(c Collection, sel Selection) []KanbanTask {
	var out []KanbanTask
	for _, project := range c.projects {
		if !sel.Has(project.ID) {
			continue
		}
		out = appendAnnotated(out, project)
	}
	return out
}

// DeriveProjectTasks returns the tasks of a single project for the detail
// view, annotated the same way as the kanban view.
func DeriveProjectTasks(c Collection, projectID string) []KanbanTask {
	project, ok := c.Project(projectID)
	if !ok {
		return nil
	}
	return appendAnnotated(nil, project)
}

func appendAnnotated(out []KanbanTask, project model.Project) []KanbanTask {
	for _, task := range project.Tasks {
		out = append(out, KanbanTask{
			Task:        task,
			ProjectName: project.Name,
			ProjectKey:  project.Key,
		})
	}
	return out
}

// Column is one fixed status bucket of the board.
type Column struct {
	Status model.TaskStatus
	Title  string
}

// Columns are the four board columns, left to right.
var Columns = []Column{
	{Status: model.StatusTodo, Title: model.StatusTodo.Label()},
	{Status: model.StatusInProgress, Title: model.StatusInProgress.Label()},
	{Status: model.StatusDone, Title: model.StatusDone.Label()},
	{Status: model.StatusBlocked, Title: model.StatusBlocked.Label()},
}

// ColumnIndex returns the position of status on the board, or -1.
func ColumnIndex(status model.TaskStatus) int {
	for i, col := range Columns {
		if col.Status == status {
			return i
		}
	}
	return -1
}

// GroupByStatus buckets tasks by column. Input order is kept within a bucket;
// the board defines no other ordering.
func GroupByStatus(tasks []KanbanTask) map[model.TaskStatus][]KanbanTask {
	groups := make(map[model.TaskStatus][]KanbanTask, len(Columns))
	for _, task := range tasks {
		groups[task.Status] = append(groups[task.Status], task)
	}
	return groups
}
