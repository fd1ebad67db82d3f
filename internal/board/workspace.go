package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/kingrea/taskboard/internal/model"
)

// ErrBusy is returned by Begin while another mutation is in flight.
var ErrBusy = errors.New("board: a request is already in flight")

// Workspace is the state owned by the client: the collection, the kanban
// selection, the detail focus and the loading flag. It has a single writer;
// the terminal UI only touches it from its update loop.
type Workspace struct {
	Collection Collection
	Selection  Selection
	Focus      Focus
	Loading    bool

	pending Mutation
}

// NewWorkspace seeds a workspace with an initial listing. Every project starts
// selected on the kanban board.
func NewWorkspace(projects []model.Project) *Workspace {
	c := NewCollection(projects)
	return &Workspace{
		Collection: c,
		Selection:  AllProjects(c),
	}
}

// Begin marks m as in flight. It fails with ErrBusy while another mutation has
// not finished, which is what disables the triggering keys.
func (w *Workspace) Begin(m Mutation) error {
	if w.Loading {
		return ErrBusy
	}
	w.Loading = true
	w.pending = m
	return nil
}

// Pending returns the mutation currently in flight.
func (w *Workspace) Pending() Mutation {
	return w.pending
}

// Finish clears the loading flag and commits res when the remote call
// succeeded. When callErr is set, or the commit itself fails, the collection
// is left exactly as it was.
func (w *Workspace) Finish(res Result, callErr error) error {
	w.Loading = false
	w.pending = nil
	if callErr != nil {
		return callErr
	}
	if res == nil {
		return nil
	}
	return w.commit(res)
}

// Run executes m against remote and finishes it in one step. The terminal UI
// splits Begin, Execute and Finish across its update loop; Run is the same
// sequence for synchronous callers.
func (w *Workspace) Run(ctx context.Context, remote Remote, m Mutation) error {
	if err := w.Begin(m); err != nil {
		return err
	}
	res, err := m.Execute(ctx, remote)
	return w.Finish(res, err)
}

// Kanban derives the cross-project board from the current state.
func (w *Workspace) Kanban() []KanbanTask {
	return DeriveKanbanTasks(w.Collection, w.Selection)
}

// FocusedProject resolves the detail view's project from the current
// collection.
func (w *Workspace) FocusedProject() (model.Project, bool) {
	return w.Focus.Resolve(w.Collection)
}

func (w *Workspace) commit(res Result) error {
	before := w.Collection
	next, err := res.Commit(before)
	if err != nil {
		return fmt.Errorf("board: commit %T: %w", res, err)
	}
	w.Collection = next
	for _, id := range next.ProjectIDs() {
		if _, known := before.Project(id); !known {
			w.Selection = w.Selection.Add(id)
		}
	}
	w.Selection = w.Selection.Prune(next)
	if created, ok := res.(ProjectCreated); ok {
		w.Focus = w.Focus.Select(created.Project.ID)
	}
	w.Focus = w.Focus.Reconcile(next)
	return nil
}
