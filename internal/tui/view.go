package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/taskboard/internal/board"
	"github.com/kingrea/taskboard/internal/logbook"
	"github.com/kingrea/taskboard/internal/model"
)

const logPanelLines = 6

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	header := a.renderHeader(width)
	top := lipgloss.Height(header)

	var content string
	var bindings []key.Binding
	switch a.state {
	case stateLogin:
		content = a.login.view()
	case stateProjectForm:
		content = a.projectForm.view()
	case stateTaskForm:
		content = a.taskForm.view()
	case stateConfirm:
		content = panelStyle.Render(fmt.Sprintf("%s\n%s", a.confirm.prompt, hintStyle.Render("y confirm · n/esc cancel")))
	case stateKanban:
		content = a.renderKanban(width, top)
		if a.filterFocus {
			bindings = keys.filterHelp()
		} else {
			bindings = keys.kanbanHelp()
		}
	case stateProjects:
		if project, ok := a.ws.FocusedProject(); ok {
			content = a.renderDetail(project, width, top)
			bindings = keys.detailHelp()
		} else {
			content = a.renderProjectList()
			bindings = keys.listHelp()
		}
	}

	parts := []string{header, content, a.renderStatusLine()}
	if len(bindings) > 0 {
		parts = append(parts, a.help.ShortHelpView(bindings))
	}
	if panel := a.renderLogPanel(width); panel != "" {
		parts = append(parts, panel)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a *App) renderHeader(width int) string {
	title := "▦ TASKBOARD"
	switch a.state {
	case stateKanban:
		title += " · Kanban"
	case stateProjects:
		title += " · Projects"
	}
	if a.user.Name != "" {
		title += mutedStyle.Render("  signed in as " + a.user.Name)
	}
	return headerStyle.MaxWidth(width).Render(title)
}

func (a *App) renderStatusLine() string {
	if a.busy() {
		label := "Signing in..."
		if pending := a.ws.Pending(); pending != nil {
			label = "Working: " + pending.Describe() + "..."
		}
		return fmt.Sprintf("%s %s", a.spinner.View(), label)
	}
	if a.status == "Request failed" || strings.HasPrefix(a.status, "Session expired") {
		return errorStyle.Render(a.status)
	}
	return mutedStyle.Render(a.status)
}

func (a *App) renderProjectList() string {
	if a.ws.Collection.Len() == 0 {
		if a.ws.Loading {
			return panelStyle.Render("Loading projects...")
		}
		return panelStyle.Render("No projects yet. Press n to create one.")
	}
	return a.projects.View()
}

func (a *App) renderDetail(project model.Project, width, top int) string {
	head := fmt.Sprintf("%s %s  %s",
		titleStyle.Render(project.Name),
		mutedStyle.Render("("+project.Key+")"),
		projectStatusBadge(project.Status))
	lines := []string{head}
	if desc := a.renderMarkdown(project.Description, width-4); desc != "" {
		lines = append(lines, desc)
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("%d task(s)", len(project.Tasks))))
	info := panelStyle.Width(max(20, width-2)).Render(strings.Join(lines, "\n"))

	tasks := board.DeriveProjectTasks(a.ws.Collection, project.ID)
	a.detailBoard.layout(0, top+lipgloss.Height(info), width)
	grid := a.detailBoard.view(boardView{tasks: tasks, focused: true, now: a.clock()})
	return lipgloss.JoinVertical(lipgloss.Left, info, grid)
}

func (a *App) renderKanban(width, top int) string {
	tasks := a.ws.Kanban()
	toggle := "Select all"
	if a.ws.Selection.CoversAll(a.ws.Collection) {
		toggle = "Deselect all"
	}
	var chips []string
	for i, p := range a.ws.Collection.Projects() {
		box := "[ ]"
		if a.ws.Selection.Has(p.ID) {
			box = "[x]"
		}
		chip := fmt.Sprintf("%s %s (%s)", box, p.Name, p.Key)
		if a.filterFocus && i == a.filterCursor {
			chip = titleStyle.Render(chip)
		}
		chips = append(chips, chip)
	}
	if len(chips) == 0 {
		chips = append(chips, mutedStyle.Render("no projects"))
	}
	summary := fmt.Sprintf("%d task(s) selected · a: %s", len(tasks), toggle)
	filterStyle := panelStyle
	if a.filterFocus {
		filterStyle = filterStyle.BorderForeground(accent)
	}
	filter := filterStyle.Width(max(20, width-2)).Render(
		lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(summary), strings.Join(chips, "  ")))

	a.kanbanBoard.layout(0, top+lipgloss.Height(filter), width)
	grid := a.kanbanBoard.view(boardView{tasks: tasks, focused: !a.filterFocus, showProject: true, now: a.clock()})
	return lipgloss.JoinVertical(lipgloss.Left, filter, grid)
}

// renderMarkdown renders a description with glamour, falling back to the raw
// text when rendering fails.
func (a *App) renderMarkdown(text string, width int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	width = max(20, width)
	if a.markdown == nil || a.markdownWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		a.markdown, a.markdownWidth = r, width
	}
	out, err := a.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (a *App) renderLogPanel(width int) string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(logPanelLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := titleStyle.Render(fmt.Sprintf("ACTIVITY · %s · %d entries", fileName, total))
	styled := make([]string, len(lines))
	for i, line := range lines {
		switch logbook.LevelOf(line) {
		case logbook.LevelError:
			styled[i] = errorStyle.Render(line)
		case logbook.LevelWarn:
			styled[i] = lipgloss.NewStyle().Foreground(highlight).Render(line)
		default:
			styled[i] = mutedStyle.Render(line)
		}
	}
	return panelStyle.MaxWidth(width).Render(fmt.Sprintf("%s\n%s", head, strings.Join(styled, "\n")))
}
