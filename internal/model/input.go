package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxKeyLength bounds the short uppercase project code.
const MaxKeyLength = 5

// DueDateLayout is the date format accepted from forms.
const DueDateLayout = "2006-01-02"

// ErrValidation marks input rejected before it reaches the store.
var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ProjectInput carries the fields needed to create a project.
type ProjectInput struct {
	Name        string        `json:"name"`
	Key         string        `json:"key"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
}

// Normalize trims fields, uppercases the key and fills in the default status.
func (in *ProjectInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Key = strings.ToUpper(strings.TrimSpace(in.Key))
	in.Description = strings.TrimSpace(in.Description)
	in.Status = ProjectStatus(strings.ToLower(strings.TrimSpace(string(in.Status))))
	if in.Status == "" {
		in.Status = ProjectActive
	}
}

// Validate enforces the required fields of a new project.
func (in ProjectInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name is required")
	}
	if err := validateKey(in.Key); err != nil {
		return err
	}
	if !in.Status.Valid() {
		return invalid("unknown project status %q", in.Status)
	}
	return nil
}

func validateKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return invalid("key is required")
	}
	if len([]rune(key)) > MaxKeyLength {
		return invalid("key must be at most %d characters", MaxKeyLength)
	}
	return nil
}

// TaskInput carries the fields needed to create a task.
type TaskInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Assignee    string       `json:"assignee,omitempty"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
}

// Normalize trims fields and fills in the default status and priority.
func (in *TaskInput) Normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Assignee = strings.TrimSpace(in.Assignee)
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
}

// Validate enforces the required fields of a new task.
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title is required")
	}
	if !in.Status.Valid() {
		return invalid("unknown task status %q", in.Status)
	}
	if !in.Priority.Valid() {
		return invalid("unknown task priority %q", in.Priority)
	}
	return nil
}

// ProjectPatch is a partial project update. Nil fields are left alone.
type ProjectPatch struct {
	Name        *string        `json:"name,omitempty"`
	Key         *string        `json:"key,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ProjectPatch) IsEmpty() bool {
	return p.Name == nil && p.Key == nil && p.Description == nil && p.Status == nil
}

// Normalize canonicalizes the provided fields.
func (p *ProjectPatch) Normalize() {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.Key != nil {
		key := strings.ToUpper(strings.TrimSpace(*p.Key))
		p.Key = &key
	}
	if p.Status != nil {
		status := ProjectStatus(strings.ToLower(strings.TrimSpace(string(*p.Status))))
		p.Status = &status
	}
}

// Validate rejects patches that would break a project's required fields.
func (p ProjectPatch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name cannot be empty")
	}
	if p.Key != nil {
		if err := validateKey(*p.Key); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("unknown project status %q", *p.Status)
	}
	return nil
}

// Apply writes the patch onto project.
func (p ProjectPatch) Apply(project *Project) {
	if project == nil {
		return
	}
	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.Key != nil {
		project.Key = *p.Key
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.Status != nil {
		project.Status = *p.Status
	}
}

// TaskPatch is a partial task update. Nil fields are left alone; the Clear
// flags null out the optional fields.
type TaskPatch struct {
	Title         *string       `json:"title,omitempty"`
	Description   *string       `json:"description,omitempty"`
	Status        *TaskStatus   `json:"status,omitempty"`
	Priority      *TaskPriority `json:"priority,omitempty"`
	Assignee      *string       `json:"assignee,omitempty"`
	DueDate       *time.Time    `json:"dueDate,omitempty"`
	ClearAssignee bool          `json:"clearAssignee,omitempty"`
	ClearDueDate  bool          `json:"clearDueDate,omitempty"`
}

// StatusPatch builds the patch produced by a kanban drop.
func StatusPatch(status TaskStatus) TaskPatch {
	return TaskPatch{Status: &status}
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.Assignee == nil && p.DueDate == nil && !p.ClearAssignee && !p.ClearDueDate
}

// Normalize canonicalizes the provided fields.
func (p *TaskPatch) Normalize() {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}
	if p.Assignee != nil {
		assignee := strings.TrimSpace(*p.Assignee)
		p.Assignee = &assignee
	}
}

// Validate rejects patches that would break a task's required fields.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return invalid("title cannot be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("unknown task status %q", *p.Status)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid("unknown task priority %q", *p.Priority)
	}
	return nil
}

// Apply writes the patch onto task. It never touches ID or ProjectID.
func (p TaskPatch) Apply(task *Task) {
	if task == nil {
		return
	}
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.ClearAssignee {
		task.Assignee = ""
	} else if p.Assignee != nil {
		task.Assignee = *p.Assignee
	}
	if p.ClearDueDate {
		task.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		task.DueDate = &due
	}
}

// ParseDueDate parses a form date. An empty string means no due date.
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	due, err := time.Parse(DueDateLayout, value)
	if err != nil {
		return nil, invalid("due date must look like %s", DueDateLayout)
	}
	return &due, nil
}
