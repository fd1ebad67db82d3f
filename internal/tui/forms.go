package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/taskboard/internal/board"
	"github.com/kingrea/taskboard/internal/model"
)

type fieldKind int

const (
	textField fieldKind = iota
	choiceField
)

type formField struct {
	label   string
	kind    fieldKind
	input   textinput.Model
	choices []string
	names   []string
	choice  int
}

func newTextField(label, placeholder, value string, limit int) formField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.Prompt = ""
	// A blinking cursor schedules timer commands on every keystroke.
	ti.Cursor.SetMode(cursor.CursorStatic)
	ti.SetValue(value)
	return formField{label: label, kind: textField, input: ti}
}

// newChoiceField builds a field cycled with ←/→. names are the display
// labels for choices.
func newChoiceField(label string, choices, names []string, selected string) formField {
	f := formField{label: label, kind: choiceField, choices: choices, names: names}
	for i, c := range choices {
		if c == selected {
			f.choice = i
		}
	}
	return f
}

func (f formField) value() string {
	if f.kind == choiceField {
		if len(f.choices) == 0 {
			return ""
		}
		return f.choices[f.choice]
	}
	return f.input.Value()
}

type formResult int

const (
	formEditing formResult = iota
	formSubmitted
	formCancelled
)

// form is a vertical list of fields. Enter on the last field or ctrl+s
// submits; esc cancels.
type form struct {
	title  string
	fields []formField
	focus  int
	err    string
}

func (f *form) init() {
	f.focus = 0
	if len(f.fields) > 0 && f.fields[0].kind == textField {
		f.fields[0].input.Focus()
	}
}

func (f *form) move(delta int) {
	if len(f.fields) == 0 {
		return
	}
	if f.fields[f.focus].kind == textField {
		f.fields[f.focus].input.Blur()
	}
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	if f.fields[f.focus].kind == textField {
		f.fields[f.focus].input.Focus()
	}
}

func (f *form) update(msg tea.KeyMsg) formResult {
	switch msg.String() {
	case "esc":
		return formCancelled
	case "ctrl+s":
		return formSubmitted
	case "enter":
		if f.focus == len(f.fields)-1 {
			return formSubmitted
		}
		f.move(1)
		return formEditing
	case "tab", "down":
		f.move(1)
		return formEditing
	case "shift+tab", "up":
		f.move(-1)
		return formEditing
	}
	if len(f.fields) == 0 {
		return formEditing
	}
	field := &f.fields[f.focus]
	if field.kind == choiceField {
		n := len(field.choices)
		if n == 0 {
			return formEditing
		}
		switch msg.String() {
		case "left", "h":
			field.choice = (field.choice + n - 1) % n
		case "right", "l", " ":
			field.choice = (field.choice + 1) % n
		}
		return formEditing
	}
	field.input, _ = field.input.Update(msg)
	f.err = ""
	return formEditing
}

// setText replaces a text field's value.
func (f *form) setText(idx int, value string) {
	if idx >= 0 && idx < len(f.fields) && f.fields[idx].kind == textField {
		f.fields[idx].input.SetValue(value)
	}
}

func (f *form) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title))
	b.WriteString("\n\n")
	for i, field := range f.fields {
		marker := "  "
		label := mutedStyle.Render(fmt.Sprintf("%-12s", field.label))
		if i == f.focus {
			marker = titleStyle.Render("› ")
			label = titleStyle.Render(fmt.Sprintf("%-12s", field.label))
		}
		var value string
		if field.kind == choiceField {
			name := ""
			if len(field.names) > 0 {
				name = field.names[field.choice]
			}
			value = fmt.Sprintf("‹ %s ›", name)
		} else {
			value = field.input.View()
		}
		fmt.Fprintf(&b, "%s%s %s\n", marker, label, value)
	}
	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("tab/↑/↓ move · ←/→ choose · enter next/save · ctrl+s save · esc cancel"))
	return panelStyle.Render(b.String())
}

const (
	projectName = iota
	projectKey
	projectDescription
	projectStatus
)

// projectForm creates a project or, when editing is set, patches one.
type projectForm struct {
	form
	editing string
}

func newProjectForm(existing *model.Project) *projectForm {
	var (
		name, key, desc string
		status          = string(model.ProjectActive)
		title           = "New project"
		editing         string
	)
	if existing != nil {
		name, key, desc = existing.Name, existing.Key, existing.Description
		status = string(existing.Status)
		title = "Edit " + existing.Name
		editing = existing.ID
	}
	statuses := make([]string, len(model.ProjectStatuses))
	names := make([]string, len(model.ProjectStatuses))
	for i, s := range model.ProjectStatuses {
		statuses[i], names[i] = string(s), s.Label()
	}
	f := &projectForm{
		form: form{
			title: title,
			fields: []formField{
				newTextField("Name", "Website relaunch", name, 120),
				newTextField("Key", "WEB", key, model.MaxKeyLength),
				newTextField("Description", "optional, markdown", desc, 2000),
				newChoiceField("Status", statuses, names, status),
			},
		},
		editing: editing,
	}
	f.init()
	return f
}

// mutation validates the fields. Invalid input yields an error and no
// mutation, so nothing is sent.
func (f *projectForm) mutation() (board.Mutation, error) {
	if f.editing != "" {
		name := f.fields[projectName].value()
		key := f.fields[projectKey].value()
		desc := strings.TrimSpace(f.fields[projectDescription].value())
		status := model.ProjectStatus(f.fields[projectStatus].value())
		patch := model.ProjectPatch{Name: &name, Key: &key, Description: &desc, Status: &status}
		patch.Normalize()
		if err := patch.Validate(); err != nil {
			return nil, err
		}
		return board.UpdateProject{ID: f.editing, Patch: patch}, nil
	}
	in := model.ProjectInput{
		Name:        f.fields[projectName].value(),
		Key:         f.fields[projectKey].value(),
		Description: f.fields[projectDescription].value(),
		Status:      model.ProjectStatus(f.fields[projectStatus].value()),
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return board.CreateProject{Input: in}, nil
}

const (
	taskTitle = iota
	taskDescription
	taskPriority
	taskStatus
	taskAssignee
	taskDueDate
	taskProject
)

// taskForm creates a task in a fixed project, in a project picked in the form
// (kanban), or patches an existing task.
type taskForm struct {
	form
	projectID string
	editing   string
}

func newTaskForm(projects []model.Project, projectID string, existing *model.Task) *taskForm {
	var (
		title, desc, assignee, due string
		priority                   = string(model.PriorityMedium)
		status                     = string(model.StatusTodo)
		heading                    = "New task"
		editing                    string
	)
	if existing != nil {
		title, desc, assignee = existing.Title, existing.Description, existing.Assignee
		priority, status = string(existing.Priority), string(existing.Status)
		if existing.DueDate != nil {
			due = existing.DueDate.Format(model.DueDateLayout)
		}
		heading = "Edit task"
		editing = existing.ID
		projectID = existing.ProjectID
	}
	priorities := make([]string, len(model.TaskPriorities))
	priorityNames := make([]string, len(model.TaskPriorities))
	for i, p := range model.TaskPriorities {
		priorities[i], priorityNames[i] = string(p), p.Label()
	}
	statuses := make([]string, len(model.TaskStatuses))
	statusNames := make([]string, len(model.TaskStatuses))
	for i, s := range model.TaskStatuses {
		statuses[i], statusNames[i] = string(s), s.Label()
	}
	fields := []formField{
		newTextField("Title", "Write release notes", title, 200),
		newTextField("Description", "optional", desc, 2000),
		newChoiceField("Priority", priorities, priorityNames, priority),
		newChoiceField("Status", statuses, statusNames, status),
		newTextField("Assignee", "optional", assignee, 80),
		newTextField("Due date", model.DueDateLayout, due, len(model.DueDateLayout)),
	}
	if projectID == "" {
		ids := make([]string, len(projects))
		names := make([]string, len(projects))
		for i, p := range projects {
			ids[i], names[i] = p.ID, fmt.Sprintf("%s (%s)", p.Name, p.Key)
		}
		// The first project is the default owner.
		fields = append(fields, newChoiceField("Project", ids, names, ""))
	}
	f := &taskForm{
		form:      form{title: heading, fields: fields},
		projectID: projectID,
		editing:   editing,
	}
	f.init()
	return f
}

func (f *taskForm) owner() string {
	if f.projectID != "" {
		return f.projectID
	}
	if len(f.fields) > taskProject {
		return f.fields[taskProject].value()
	}
	return ""
}

func (f *taskForm) mutation() (board.Mutation, error) {
	due, err := model.ParseDueDate(f.fields[taskDueDate].value())
	if err != nil {
		return nil, err
	}
	priority := model.TaskPriority(f.fields[taskPriority].value())
	status := model.TaskStatus(f.fields[taskStatus].value())
	if f.editing != "" {
		title := f.fields[taskTitle].value()
		desc := strings.TrimSpace(f.fields[taskDescription].value())
		assignee := strings.TrimSpace(f.fields[taskAssignee].value())
		patch := model.TaskPatch{Title: &title, Description: &desc, Priority: &priority, Status: &status}
		if assignee == "" {
			patch.ClearAssignee = true
		} else {
			patch.Assignee = &assignee
		}
		if due == nil {
			patch.ClearDueDate = true
		} else {
			patch.DueDate = due
		}
		patch.Normalize()
		if err := patch.Validate(); err != nil {
			return nil, err
		}
		return board.UpdateTask{ID: f.editing, Patch: patch}, nil
	}
	in := model.TaskInput{
		Title:       f.fields[taskTitle].value(),
		Description: f.fields[taskDescription].value(),
		Priority:    priority,
		Status:      status,
		Assignee:    f.fields[taskAssignee].value(),
		DueDate:     due,
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	owner := f.owner()
	if owner == "" {
		return nil, fmt.Errorf("%w: project is required", model.ErrValidation)
	}
	return board.CreateTask{ProjectID: owner, Input: in}, nil
}
