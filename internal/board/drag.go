package board

import "github.com/kingrea/taskboard/internal/model"

// DropRequest is the single status change produced by dropping a card on a
// column.
type DropRequest struct {
	TaskID string
	Status model.TaskStatus
}

// Mutation converts the drop into the task update sent to the store.
func (r DropRequest) Mutation() UpdateTask {
	return UpdateTask{ID: r.TaskID, Patch: model.StatusPatch(r.Status)}
}

// Drag tracks one drag gesture over the board. Only the task id travels with
// the gesture; card fields are read from the collection when needed.
type Drag struct {
	taskID string
	over   model.TaskStatus
}

// Start picks up the card for taskID.
func (d *Drag) Start(taskID string) {
	d.taskID = taskID
	d.over = ""
}

// Active reports whether a card is being dragged.
func (d *Drag) Active() bool {
	return d.taskID != ""
}

// TaskID returns the id of the dragged card.
func (d *Drag) TaskID() string {
	return d.taskID
}

// Enter highlights column while a card hovers it.
func (d *Drag) Enter(column model.TaskStatus) {
	if !d.Active() || ColumnIndex(column) < 0 {
		return
	}
	d.over = column
}

// Leave clears the highlight when the pointer leaves a column.
func (d *Drag) Leave() {
	d.over = ""
}

// Over returns the highlighted column, if any.
func (d *Drag) Over() (model.TaskStatus, bool) {
	return d.over, d.over != ""
}

// Highlighted reports whether column should render as a drop target.
func (d *Drag) Highlighted(column model.TaskStatus) bool {
	return d.over != "" && d.over == column
}

// Drop ends the gesture on column and returns the status change to request.
// It reports false when nothing was being dragged or column is not a board
// column.
func (d *Drag) Drop(column model.TaskStatus) (DropRequest, bool) {
	taskID := d.taskID
	d.reset()
	if taskID == "" || ColumnIndex(column) < 0 {
		return DropRequest{}, false
	}
	return DropRequest{TaskID: taskID, Status: column}, true
}

// DropOutside ends the gesture away from every column. Nothing is requested.
func (d *Drag) DropOutside() {
	d.reset()
}

func (d *Drag) reset() {
	d.taskID = ""
	d.over = ""
}
