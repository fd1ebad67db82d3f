package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/taskboard/internal/model"
)

func TestDeriveKanbanTasksOrderAndAnnotation(t *testing.T) {
	c := NewCollection(sampleProjects())
	tasks := DeriveKanbanTasks(c, AllProjects(c))
	require.Equal(t, []string{"t1", "t2", "t3"}, taskIDs(tasks))
	assert.Equal(t, "Alpha", tasks[0].ProjectName)
	assert.Equal(t, "ALP", tasks[0].ProjectKey)
	assert.Equal(t, "BET", tasks[2].ProjectKey)
}

func TestDeriveKanbanTasksUnselectedProject(t *testing.T) {
	projects := []model.Project{
		{ID: "p1", Name: "Alpha", Key: "ALP", Tasks: []model.Task{{ID: "a", ProjectID: "p1", Status: model.StatusTodo}}},
		{ID: "p2", Name: "Beta", Key: "BET", Tasks: []model.Task{{ID: "b", ProjectID: "p2", Status: model.StatusTodo}}},
	}
	c := NewCollection(projects)
	tasks := DeriveKanbanTasks(c, NewSelection("p1"))
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].ID)
	assert.Equal(t, "ALP", tasks[0].ProjectKey)
}

func TestSelectionToggleRemovesExactlyOneProject(t *testing.T) {
	c := NewCollection(sampleProjects())
	sel := AllProjects(c)
	toggled := sel.Toggle("p2")
	assert.Equal(t, []string{"t1", "t2"}, taskIDs(DeriveKanbanTasks(c, toggled)))
	assert.True(t, sel.Has("p2"), "toggle must not mutate the original selection")
	assert.Equal(t, []string{"t1", "t2", "t3"}, taskIDs(DeriveKanbanTasks(c, toggled.Toggle("p2"))))
}

func TestSelectionDoesNotAffectProjectView(t *testing.T) {
	c := NewCollection(sampleProjects())
	assert.Len(t, DeriveProjectTasks(c, "p2"), 1)
	assert.Empty(t, DeriveKanbanTasks(c, NewSelection()))
	assert.Len(t, DeriveProjectTasks(c, "p2"), 1)
	assert.Nil(t, DeriveProjectTasks(c, "missing"))
}

func TestSelectionToggleAll(t *testing.T) {
	c := NewCollection(sampleProjects())
	sel := AllProjects(c)
	assert.True(t, sel.CoversAll(c))
	none := sel.ToggleAll(c)
	assert.Equal(t, 0, none.Len())
	all := none.ToggleAll(c)
	assert.Equal(t, []string{"p1", "p2"}, all.IDs())
	partial := NewSelection("p1").ToggleAll(c)
	assert.Equal(t, 2, partial.Len())
}

func TestSelectionPrune(t *testing.T) {
	c := NewCollection(sampleProjects())
	sel := NewSelection("p1", "gone")
	assert.Equal(t, []string{"p1"}, sel.Prune(c).IDs())
}

func TestGroupByStatus(t *testing.T) {
	c := NewCollection(sampleProjects())
	groups := GroupByStatus(DeriveKanbanTasks(c, AllProjects(c)))
	assert.Equal(t, []string{"t1", "t3"}, taskIDs(groups[model.StatusTodo]))
	assert.Equal(t, []string{"t2"}, taskIDs(groups[model.StatusInProgress]))
	assert.Empty(t, groups[model.StatusDone])
}

func TestColumnsAreFixed(t *testing.T) {
	require.Len(t, Columns, 4)
	assert.Equal(t, 0, ColumnIndex(model.StatusTodo))
	assert.Equal(t, 3, ColumnIndex(model.StatusBlocked))
	assert.Equal(t, -1, ColumnIndex("archived"))
}

func TestFocusResolvesLive(t *testing.T) {
	c := NewCollection(sampleProjects())
	focus := Focus{}.Select("p1")
	assert.Equal(t, ProjectSelected, focus.State())

	next, err := c.ApplyTaskMutation("t1", model.StatusPatch(model.StatusDone))
	require.NoError(t, err)
	project, ok := focus.Resolve(next)
	require.True(t, ok)
	assert.Equal(t, model.StatusDone, project.Tasks[0].Status)

	assert.Equal(t, NoProjectSelected, focus.Back().State())
}

func TestFocusReconcileAfterDeletion(t *testing.T) {
	c := NewCollection(sampleProjects())
	focus := FocusOn("p1")
	next, err := c.ApplyProjectDeletion("p1")
	require.NoError(t, err)
	assert.Equal(t, NoProjectSelected, focus.Reconcile(next).State())
	assert.Equal(t, ProjectSelected, FocusOn("p2").Reconcile(next).State())
	assert.Equal(t, "no-project-selected", NoProjectSelected.String())
}
