package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/kingrea/taskboard/internal/board"
	"github.com/kingrea/taskboard/internal/model"
)

const (
	cardLines  = 3
	cardHeight = cardLines + 2
	// column border plus title line
	columnHeaderHeight = 2
	minColumnWidth     = 22
)

// taskBoard renders tasks as four status columns and turns key and mouse
// gestures into drop requests. It never holds tasks; callers pass the derived
// view on every call so the board always reflects the current collection.
type taskBoard struct {
	col  int
	row  int
	drag board.Drag

	// Screen position of the board's top-left cell and the outer width of a
	// column, recorded when the board is laid out.
	originX  int
	originY  int
	colOuter int
}

func newTaskBoard() *taskBoard {
	return &taskBoard{colOuter: minColumnWidth}
}

func (b *taskBoard) column(tasks []board.KanbanTask, idx int) []board.KanbanTask {
	if idx < 0 || idx >= len(board.Columns) {
		return nil
	}
	return board.GroupByStatus(tasks)[board.Columns[idx].Status]
}

func (b *taskBoard) clamp(tasks []board.KanbanTask) {
	b.col = clampInt(b.col, 0, len(board.Columns)-1)
	b.row = clampInt(b.row, 0, len(b.column(tasks, b.col))-1)
}

// selected returns the card under the cursor.
func (b *taskBoard) selected(tasks []board.KanbanTask) (board.KanbanTask, bool) {
	b.clamp(tasks)
	cards := b.column(tasks, b.col)
	if len(cards) == 0 {
		return board.KanbanTask{}, false
	}
	return cards[b.row], true
}

// handleKey moves the cursor or drives a keyboard drag. It reports whether
// the key was consumed and, when a card was dropped on a column, the request
// to send.
func (b *taskBoard) handleKey(msg tea.KeyMsg, tasks []board.KanbanTask) (req board.DropRequest, drop bool, handled bool) {
	if b.drag.Active() {
		over, _ := b.drag.Over()
		idx := board.ColumnIndex(over)
		switch {
		case matches(msg, keys.Left):
			if idx > 0 {
				b.drag.Enter(board.Columns[idx-1].Status)
			}
			return req, false, true
		case matches(msg, keys.Right):
			if idx < len(board.Columns)-1 {
				b.drag.Enter(board.Columns[idx+1].Status)
			}
			return req, false, true
		case matches(msg, keys.Grab), matches(msg, keys.Open):
			if idx < 0 {
				b.drag.DropOutside()
				return req, false, true
			}
			req, drop = b.drag.Drop(over)
			if drop {
				b.col, b.row = idx, 0
			}
			return req, drop, true
		case matches(msg, keys.Back):
			b.drag.DropOutside()
			return req, false, true
		}
		// Every other key is swallowed while a card is held.
		return req, false, true
	}

	switch {
	case matches(msg, keys.Up):
		b.row--
	case matches(msg, keys.Down):
		b.row++
	case matches(msg, keys.Left):
		b.col--
	case matches(msg, keys.Right):
		b.col++
	case matches(msg, keys.Grab):
		task, ok := b.selected(tasks)
		if !ok {
			return req, false, true
		}
		b.drag.Start(task.ID)
		b.drag.Enter(task.Status)
		return req, false, true
	default:
		return req, false, false
	}
	b.clamp(tasks)
	return req, false, true
}

// handleMouse maps a press on a card to the start of a drag, motion to the
// column highlight and release to a drop on the column under the pointer.
func (b *taskBoard) handleMouse(msg tea.MouseMsg, tasks []board.KanbanTask) (board.DropRequest, bool) {
	col, row, inside := b.hit(msg.X, msg.Y, tasks)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside || row < 0 {
			return board.DropRequest{}, false
		}
		b.col, b.row = col, row
		task, ok := b.selected(tasks)
		if !ok {
			return board.DropRequest{}, false
		}
		b.drag.Start(task.ID)
		b.drag.Enter(task.Status)
	case tea.MouseActionMotion:
		if !b.drag.Active() {
			return board.DropRequest{}, false
		}
		if inside {
			b.drag.Enter(board.Columns[col].Status)
		} else {
			b.drag.Leave()
		}
	case tea.MouseActionRelease:
		if !b.drag.Active() {
			return board.DropRequest{}, false
		}
		if !inside {
			b.drag.DropOutside()
			return board.DropRequest{}, false
		}
		req, ok := b.drag.Drop(board.Columns[col].Status)
		if ok {
			b.col, b.row = col, 0
		}
		return req, ok
	}
	return board.DropRequest{}, false
}

// hit resolves a screen cell to a column and, when it lies on a card, the
// card's row. row is -1 for cells inside a column but off every card.
func (b *taskBoard) hit(x, y int, tasks []board.KanbanTask) (col, row int, inside bool) {
	if b.colOuter <= 0 {
		return 0, -1, false
	}
	relX, relY := x-b.originX, y-b.originY
	if relX < 0 || relY < 0 {
		return 0, -1, false
	}
	col = relX / b.colOuter
	if col >= len(board.Columns) || relY >= boardHeight(board.GroupByStatus(tasks)) {
		return 0, -1, false
	}
	row = -1
	if offset := relY - columnHeaderHeight; offset >= 0 {
		if idx := offset / cardHeight; idx < len(b.column(tasks, col)) {
			row = idx
		}
	}
	return col, row, true
}

// columnContentHeight is the height of every column's body: its title plus
// room for the tallest stack of cards.
func columnContentHeight(groups map[model.TaskStatus][]board.KanbanTask) int {
	tallest := 1
	for _, col := range board.Columns {
		tallest = max(tallest, len(groups[col.Status]))
	}
	return 1 + tallest*cardHeight
}

// boardHeight is the number of screen rows the rendered board occupies,
// column borders included.
func boardHeight(groups map[model.TaskStatus][]board.KanbanTask) int {
	return columnContentHeight(groups) + 2
}

// layout sizes the columns for width and records where the board is drawn.
func (b *taskBoard) layout(x, y, width int) {
	b.originX, b.originY = x, y
	b.colOuter = max(minColumnWidth, width/len(board.Columns))
}

type boardView struct {
	tasks       []board.KanbanTask
	focused     bool
	showProject bool
	now         time.Time
}

func (b *taskBoard) view(v boardView) string {
	b.clamp(v.tasks)
	groups := board.GroupByStatus(v.tasks)
	height := columnContentHeight(groups)
	inner := b.colOuter - 2
	cardWidth := inner - 4

	rendered := make([]string, 0, len(board.Columns))
	for idx, col := range board.Columns {
		cards := groups[col.Status]
		parts := []string{titleStyle.Render(fmt.Sprintf("%s (%d)", col.Title, len(cards)))}
		for row, task := range cards {
			style := cardStyle
			switch {
			case b.drag.Active() && b.drag.TaskID() == task.ID:
				style = draggedCardStyle
			case v.focused && idx == b.col && row == b.row:
				style = cursorCardStyle
			}
			parts = append(parts, style.Width(cardWidth).Render(cardBody(task, cardWidth-2, v)))
		}
		if len(cards) == 0 {
			parts = append(parts, mutedStyle.Render("(empty)"))
		}
		style := columnStyle
		if b.drag.Highlighted(col.Status) {
			style = dropTargetStyle
		}
		rendered = append(rendered, style.Width(inner).Height(height).Render(strings.Join(parts, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func cardBody(task board.KanbanTask, width int, v boardView) string {
	title := truncate(task.Title, width)
	meta := priorityBadge(task.Priority)
	if v.showProject {
		meta = truncate(task.ProjectKey, model.MaxKeyLength) + " · " + meta
	}
	var extra []string
	if task.Assignee != "" {
		extra = append(extra, "@"+task.Assignee)
	}
	due := ""
	if task.DueDate != nil {
		due = "due " + humanize.RelTime(*task.DueDate, v.now, "ago", "from now")
	}
	line := truncate(strings.Join(extra, " "), width)
	if due != "" {
		dueText := truncate(due, max(0, width-lipgloss.Width(line)-1))
		if task.Status != model.StatusDone && task.DueDate.Before(v.now) {
			dueText = errorStyle.Render(dueText)
		} else {
			dueText = mutedStyle.Render(dueText)
		}
		if line != "" {
			line += " "
		}
		line += dueText
	}
	if line == "" {
		line = mutedStyle.Render("unassigned")
	}
	return strings.Join([]string{title, meta, line}, "\n")
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
