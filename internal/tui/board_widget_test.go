package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/taskboard/internal/board"
	"github.com/kingrea/taskboard/internal/model"
)

func widgetTasks() []board.KanbanTask {
	mk := func(id string, status model.TaskStatus) board.KanbanTask {
		return board.KanbanTask{
			Task:       model.Task{ID: id, Title: "task " + id, Status: status, Priority: model.PriorityMedium},
			ProjectKey: "ALP",
		}
	}
	return []board.KanbanTask{
		mk("a", model.StatusTodo),
		mk("b", model.StatusTodo),
		mk("c", model.StatusBlocked),
	}
}

func TestBoardCursorClampsToColumns(t *testing.T) {
	b := newTaskBoard()
	tasks := widgetTasks()
	for i := 0; i < 5; i++ {
		b.handleKey(keyDown, tasks)
	}
	if task, ok := b.selected(tasks); !ok || task.ID != "b" {
		t.Fatalf("expected last todo card, got %+v", task)
	}
	for i := 0; i < 10; i++ {
		b.handleKey(keyRight, tasks)
	}
	if task, ok := b.selected(tasks); !ok || task.ID != "c" {
		t.Fatalf("expected blocked card, got %+v", task)
	}
	b.handleKey(tea.KeyMsg{Type: tea.KeyLeft}, tasks)
	if _, ok := b.selected(tasks); ok {
		t.Fatalf("done column is empty")
	}
}

func TestBoardGrabOnEmptyColumnDoesNothing(t *testing.T) {
	b := newTaskBoard()
	b.col = 1
	_, _, handled := b.handleKey(keySpace, widgetTasks())
	if !handled || b.drag.Active() {
		t.Fatalf("nothing to pick up in an empty column")
	}
}

func TestBoardSwallowsKeysWhileDragging(t *testing.T) {
	b := newTaskBoard()
	tasks := widgetTasks()
	b.handleKey(keySpace, tasks)
	_, drop, handled := b.handleKey(runes("d"), tasks)
	if !handled || drop {
		t.Fatalf("keys must be swallowed during a drag")
	}
	req, drop, _ := b.handleKey(keyEnter, tasks)
	if !drop || req.TaskID != "a" || req.Status != model.StatusTodo {
		t.Fatalf("drop on the origin column still yields one request, got %+v", req)
	}
}

func TestBoardHitTesting(t *testing.T) {
	b := newTaskBoard()
	b.layout(2, 10, 120)
	tasks := widgetTasks()

	cases := []struct {
		name         string
		x, y         int
		col, row     int
		expectInside bool
	}{
		{"left of board", 1, 12, 0, -1, false},
		{"above board", 5, 9, 0, -1, false},
		{"column title", 5, 11, 0, -1, true},
		{"first card", 5, 12, 0, 0, true},
		{"second card", 5, 12 + cardHeight, 0, 1, true},
		{"below cards", 5, 12 + 2*cardHeight, 0, -1, true},
		{"bottom border", 5, 10 + boardHeight(board.GroupByStatus(tasks)) - 1, 0, -1, true},
		{"below board", 5, 10 + boardHeight(board.GroupByStatus(tasks)), 0, -1, false},
		{"status line under blocked", 2 + 3*b.colOuter + 1, 10 + boardHeight(board.GroupByStatus(tasks)) + 2, 0, -1, false},
		{"blocked card", 2 + 3*b.colOuter + 1, 13, 3, 0, true},
		{"right of board", 2 + 4*b.colOuter, 12, 0, -1, false},
	}
	for _, tc := range cases {
		col, row, inside := b.hit(tc.x, tc.y, tasks)
		if inside != tc.expectInside || (inside && (col != tc.col || row != tc.row)) {
			t.Errorf("%s: got col=%d row=%d inside=%v", tc.name, col, row, inside)
		}
	}
}

func TestBoardHeightMatchesRenderedView(t *testing.T) {
	b := newTaskBoard()
	b.layout(0, 0, 100)
	tasks := widgetTasks()
	out := b.view(boardView{tasks: tasks, now: testNow})
	if got, want := lipgloss.Height(out), boardHeight(board.GroupByStatus(tasks)); got != want {
		t.Fatalf("rendered height %d, hit area %d", got, want)
	}
}

func TestBoardViewMarksDropTarget(t *testing.T) {
	b := newTaskBoard()
	b.layout(0, 0, 100)
	tasks := widgetTasks()
	b.handleKey(keySpace, tasks)
	b.handleKey(keyRight, tasks)
	out := b.view(boardView{tasks: tasks, focused: true, showProject: true, now: testNow})
	for _, col := range board.Columns {
		if !strings.Contains(out, col.Title) {
			t.Fatalf("missing column %q", col.Title)
		}
	}
	if !strings.Contains(out, "╔") {
		t.Fatalf("hovered column should use the double border:\n%s", out)
	}
	if !strings.Contains(out, "ALP · Medium") {
		t.Fatalf("cards should carry the project key:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("kanban", 10); got != "kanban" {
		t.Fatalf("short strings are kept, got %q", got)
	}
	if got := truncate("kanban board", 6); got != "kanba…" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("x", 0); got != "" {
		t.Fatalf("got %q", got)
	}
}
