package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Quit      key.Binding
	Switch    key.Binding
	Back      key.Binding
	Open      key.Binding
	Reload    key.Binding
	New       key.Binding
	Edit      key.Binding
	Delete    key.Binding
	Status    key.Binding
	DeleteAll key.Binding
	Grab      key.Binding
	Left      key.Binding
	Right     key.Binding
	Up        key.Binding
	Down      key.Binding
	Filter    key.Binding
	ToggleAll key.Binding
	Confirm   key.Binding
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Switch:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "projects/kanban")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	New:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Status:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle status")),
	DeleteAll: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "delete project")),
	Grab:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "drag/drop")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "column")),
	Right:     key.NewBinding(key.WithKeys("right", "l")),
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "card")),
	Down:      key.NewBinding(key.WithKeys("down", "j")),
	Filter:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter projects")),
	ToggleAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select/deselect all")),
	Confirm:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Open, k.New, k.Edit, k.Status, k.Delete, k.Reload, k.Switch, k.Quit}
}

func (k keyMap) detailHelp() []key.Binding {
	return []key.Binding{k.Up, k.Left, k.Grab, k.New, k.Edit, k.Delete, k.Status, k.DeleteAll, k.Back, k.Quit}
}

func (k keyMap) kanbanHelp() []key.Binding {
	return []key.Binding{k.Up, k.Left, k.Grab, k.New, k.Edit, k.Delete, k.Filter, k.Reload, k.Switch, k.Quit}
}

func (k keyMap) filterHelp() []key.Binding {
	return []key.Binding{k.Up, k.Grab, k.ToggleAll, k.Back}
}

func matches(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}
