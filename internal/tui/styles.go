package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/taskboard/internal/model"
)

var (
	accent    = lipgloss.Color("#5B8DEF")
	muted     = lipgloss.Color("#888888")
	subtle    = lipgloss.Color("#444444")
	danger    = lipgloss.Color("#FF6B6B")
	highlight = lipgloss.Color("#F4BF75")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(danger).
			MarginBottom(1)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			MarginTop(1)
	mutedStyle = lipgloss.NewStyle().Foreground(muted)
	errorStyle = lipgloss.NewStyle().Foreground(danger)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1)
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1)
	dropTargetStyle = columnStyle.
			BorderForeground(highlight).
			BorderStyle(lipgloss.DoubleBorder())
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(subtle).
			Padding(0, 1)
	cursorCardStyle = cardStyle.BorderForeground(accent).Bold(true)
	draggedCardStyle = cardStyle.
				BorderForeground(highlight).
				BorderStyle(lipgloss.ThickBorder()).
				Faint(true)
)

var priorityColors = map[model.TaskPriority]lipgloss.Color{
	model.PriorityLow:      lipgloss.Color("#6A9955"),
	model.PriorityMedium:   lipgloss.Color("#5B8DEF"),
	model.PriorityHigh:     lipgloss.Color("#F4BF75"),
	model.PriorityCritical: lipgloss.Color("#FF6B6B"),
}

var projectStatusColors = map[model.ProjectStatus]lipgloss.Color{
	model.ProjectActive:   lipgloss.Color("#6A9955"),
	model.ProjectPlanning: lipgloss.Color("#5B8DEF"),
	model.ProjectArchived: lipgloss.Color("#888888"),
}

func priorityBadge(p model.TaskPriority) string {
	return lipgloss.NewStyle().Foreground(priorityColors[p]).Render(p.Label())
}

func projectStatusBadge(s model.ProjectStatus) string {
	return lipgloss.NewStyle().Foreground(projectStatusColors[s]).Render(s.Label())
}
