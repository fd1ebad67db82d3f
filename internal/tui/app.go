// Package tui is the terminal client. It follows The Elm Architecture as
// bubbletea implements it: every remote call runs as a command and its result
// comes back as a message, so the workspace is only written from Update.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/kingrea/taskboard/internal/auth"
	"github.com/kingrea/taskboard/internal/board"
	"github.com/kingrea/taskboard/internal/client"
	"github.com/kingrea/taskboard/internal/logbook"
	"github.com/kingrea/taskboard/internal/logging"
	"github.com/kingrea/taskboard/internal/model"
)

// appState represents which screen is active.
type appState int

const (
	stateLogin       appState = iota
	stateProjects             // project list, or the focused project's detail
	stateKanban               // cross-project board
	stateProjectForm          // create or edit a project
	stateTaskForm             // create or edit a task
	stateConfirm              // confirm a deletion
)

const defaultTimeout = 10 * time.Second

// Remote is what the UI needs from the API: the board's persistence calls
// plus sign-in.
type Remote interface {
	board.Remote
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Logout()
}

var _ Remote = (*client.Client)(nil)

// Option customizes App construction for tests and alternate runtimes.
type Option func(*App)

// WithLogbook sets the activity log shown in the log panel.
func WithLogbook(lb *logbook.Logbook) Option {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithWatcher refreshes the log panel whenever the activity log changes on
// disk. The caller starts and stops the watcher.
func WithWatcher(w *logbook.Watcher) Option {
	return func(a *App) {
		a.watcher = w
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.logger = logging.OrNop(l)
	}
}

// WithFocus opens the projects screen on projectID once the collection is
// loaded. An unknown id falls back to the project list.
func WithFocus(projectID string) Option {
	return func(a *App) {
		if projectID != "" {
			a.ws.Focus = board.FocusOn(projectID)
		}
	}
}

// WithEmail prefills the sign-in form.
func WithEmail(email string) Option {
	return func(a *App) {
		a.email = email
	}
}

// WithTimeout bounds every remote call.
func WithTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithClock overrides the time source used for relative dates.
func WithClock(clock func() time.Time) Option {
	return func(a *App) {
		if clock != nil {
			a.clock = clock
		}
	}
}

type mutationFinishedMsg struct {
	mutation board.Mutation
	result   board.Result
	err      error
}

type logChangedMsg struct{}

type confirmPrompt struct {
	prompt   string
	mutation board.Mutation
}

// App is the main application model.
type App struct {
	state    appState
	returnTo appState

	remote  Remote
	ws      *board.Workspace
	logbook *logbook.Logbook
	watcher *logbook.Watcher
	logger  *zap.Logger
	timeout time.Duration
	clock   func() time.Time
	email   string
	user    auth.User

	login       *loginForm
	projectForm *projectForm
	taskForm    *taskForm
	confirm     *confirmPrompt

	projects     list.Model
	detailBoard  *taskBoard
	kanbanBoard  *taskBoard
	filterFocus  bool
	filterCursor int
	spinner      spinner.Model
	help         help.Model

	markdown      *glamour.TermRenderer
	markdownWidth int

	status string
	width  int
	height int
}

// projectItem implements list.Item for the project list.
type projectItem struct {
	project model.Project
	now     time.Time
}

func (i projectItem) Title() string {
	return fmt.Sprintf("%s (%s)", i.project.Name, i.project.Key)
}

func (i projectItem) Description() string {
	return fmt.Sprintf("%s · %d task(s) · created %s",
		i.project.Status.Label(), len(i.project.Tasks), humanize.RelTime(i.project.CreatedAt, i.now, "ago", "from now"))
}

func (i projectItem) FilterValue() string { return i.project.Name }

// NewApp creates the UI around remote. It starts on the sign-in screen.
func NewApp(remote Remote, opts ...Option) *App {
	projects := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	projects.Title = "Projects"
	projects.SetShowStatusBar(false)
	projects.SetFilteringEnabled(false)
	projects.SetShowHelp(false)
	projects.DisableQuitKeybindings()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = titleStyle

	a := &App{
		state:       stateLogin,
		remote:      remote,
		ws:          board.NewWorkspace(nil),
		logger:      zap.NewNop(),
		timeout:     defaultTimeout,
		clock:       time.Now,
		projects:    projects,
		detailBoard: newTaskBoard(),
		kanbanBoard: newTaskBoard(),
		spinner:     spin,
		help:        help.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.login = newLoginForm(a.email)
	return a
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.waitForLog()
}

func (a *App) waitForLog() tea.Cmd {
	if a.watcher == nil {
		return nil
	}
	changes := a.watcher.Changes()
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return logChangedMsg{}
	}
}

func (a *App) busy() bool {
	return a.ws.Loading || (a.login != nil && a.login.pending)
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.projects.SetSize(max(20, msg.Width-4), max(6, msg.Height-14))
		return a, nil

	case spinner.TickMsg:
		if !a.busy() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case logChangedMsg:
		return a, a.waitForLog()

	case loginFinishedMsg:
		return a, a.finishLogin(msg)

	case mutationFinishedMsg:
		a.finishMutation(msg)
		return a, nil

	case tea.MouseMsg:
		return a, a.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.handleKey(msg)
	}
	return a, nil
}

// dispatch starts m unless another mutation is in flight. The remote call runs
// off the update loop; its outcome returns as a mutationFinishedMsg.
func (a *App) dispatch(m board.Mutation) tea.Cmd {
	if err := a.ws.Begin(m); err != nil {
		a.status = "Busy: waiting for the server"
		return nil
	}
	a.status = ""
	remote, timeout := a.remote, a.timeout
	call := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := m.Execute(ctx, remote)
		return mutationFinishedMsg{mutation: m, result: res, err: err}
	}
	a.logger.Debug("mutation started", zap.String("mutation", m.Describe()))
	return tea.Batch(call, a.spinner.Tick)
}

func (a *App) finishMutation(msg mutationFinishedMsg) {
	err := a.ws.Finish(msg.result, msg.err)
	a.syncProjectList()
	if err != nil {
		a.logger.Warn("mutation failed", zap.String("mutation", msg.mutation.Describe()), zap.Error(err))
		a.logError("Failed to %s: %v", msg.mutation.Describe(), err)
		if errors.Is(err, client.ErrUnauthorized) {
			a.remote.Logout()
			a.status = "Session expired, sign in again"
			a.state = stateLogin
			a.login = newLoginForm(a.user.Email)
			return
		}
		a.status = "Request failed"
		return
	}
	if msg.result == nil {
		return
	}
	a.status = msg.result.Summary()
	a.logInfo("%s", msg.result.Summary())
	a.logger.Debug("mutation committed", zap.String("mutation", msg.mutation.Describe()))
}

func (a *App) reload() tea.Cmd {
	return a.dispatch(board.Reload{})
}

// syncProjectList rebuilds the list items from the collection and keeps the
// highlight on the focused project.
func (a *App) syncProjectList() {
	now := a.clock()
	projects := a.ws.Collection.Projects()
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectItem{project: p, now: now}
	}
	a.projects.SetItems(items)
	if id, ok := a.ws.Focus.ProjectID(); ok {
		for i, p := range projects {
			if p.ID == id {
				a.projects.Select(i)
			}
		}
	}
	if a.filterCursor >= len(projects) {
		a.filterCursor = max(0, len(projects)-1)
	}
}

func (a *App) highlightedProject() (model.Project, bool) {
	item, ok := a.projects.SelectedItem().(projectItem)
	if !ok {
		return model.Project{}, false
	}
	return a.ws.Collection.Project(item.project.ID)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch a.state {
	case stateLogin:
		switch a.login.update(msg) {
		case formSubmitted:
			return a.submitLogin()
		case formCancelled:
			a.login.err = ""
		}
		return nil
	case stateProjectForm:
		return a.updateProjectForm(msg)
	case stateTaskForm:
		return a.updateTaskForm(msg)
	case stateConfirm:
		return a.updateConfirm(msg)
	case stateKanban:
		return a.updateKanban(msg)
	case stateProjects:
		if project, ok := a.ws.FocusedProject(); ok {
			return a.updateDetail(msg, project)
		}
		return a.updateProjectList(msg)
	}
	return nil
}

func (a *App) updateProjectList(msg tea.KeyMsg) tea.Cmd {
	switch {
	case matches(msg, keys.Quit):
		return tea.Quit
	case matches(msg, keys.Switch):
		a.state = stateKanban
	case matches(msg, keys.Reload):
		return a.reload()
	case matches(msg, keys.New):
		a.openProjectForm(nil)
	case matches(msg, keys.Open):
		if p, ok := a.highlightedProject(); ok {
			a.openProject(p.ID)
		}
	case matches(msg, keys.Edit):
		if p, ok := a.highlightedProject(); ok {
			a.openProjectForm(&p)
		}
	case matches(msg, keys.Status):
		if p, ok := a.highlightedProject(); ok {
			return a.cycleProjectStatus(p)
		}
	case matches(msg, keys.Delete):
		if p, ok := a.highlightedProject(); ok {
			a.askConfirm(fmt.Sprintf("Delete project %s (%s) and its %d task(s)?", p.Name, p.Key, len(p.Tasks)),
				board.DeleteProject{ID: p.ID})
		}
	default:
		var cmd tea.Cmd
		a.projects, cmd = a.projects.Update(msg)
		return cmd
	}
	return nil
}

func (a *App) openProject(id string) {
	a.ws.Focus = a.ws.Focus.Select(id)
	a.detailBoard = newTaskBoard()
}

func (a *App) updateDetail(msg tea.KeyMsg, project model.Project) tea.Cmd {
	tasks := board.DeriveProjectTasks(a.ws.Collection, project.ID)
	if a.detailBoard.drag.Active() {
		return a.boardKey(a.detailBoard, msg, tasks)
	}
	switch {
	case matches(msg, keys.Quit):
		return tea.Quit
	case matches(msg, keys.Back):
		a.ws.Focus = a.ws.Focus.Back()
	case matches(msg, keys.Switch):
		a.state = stateKanban
	case matches(msg, keys.Reload):
		return a.reload()
	case matches(msg, keys.New):
		a.openTaskForm(project.ID, nil)
	case matches(msg, keys.Edit):
		if task, ok := a.detailBoard.selected(tasks); ok {
			a.openTaskForm(project.ID, &task.Task)
		}
	case matches(msg, keys.Delete):
		if task, ok := a.detailBoard.selected(tasks); ok {
			a.askConfirm(fmt.Sprintf("Delete task %q?", task.Title), board.DeleteTask{ID: task.ID})
		}
	case matches(msg, keys.Status):
		return a.cycleProjectStatus(project)
	case matches(msg, keys.DeleteAll):
		a.askConfirm(fmt.Sprintf("Delete project %s (%s) and its %d task(s)?", project.Name, project.Key, len(project.Tasks)),
			board.DeleteProject{ID: project.ID})
	default:
		return a.boardKey(a.detailBoard, msg, tasks)
	}
	return nil
}

func (a *App) updateKanban(msg tea.KeyMsg) tea.Cmd {
	if a.filterFocus {
		return a.updateFilter(msg)
	}
	tasks := a.ws.Kanban()
	if a.kanbanBoard.drag.Active() {
		return a.boardKey(a.kanbanBoard, msg, tasks)
	}
	switch {
	case matches(msg, keys.Quit):
		return tea.Quit
	case matches(msg, keys.Switch), matches(msg, keys.Back):
		a.state = stateProjects
	case matches(msg, keys.Reload):
		return a.reload()
	case matches(msg, keys.Filter):
		a.filterFocus = true
	case matches(msg, keys.ToggleAll):
		a.ws.Selection = a.ws.Selection.ToggleAll(a.ws.Collection)
	case matches(msg, keys.New):
		if a.ws.Collection.Len() == 0 {
			a.status = "Create a project first"
			return nil
		}
		a.openTaskForm("", nil)
	case matches(msg, keys.Edit):
		if task, ok := a.kanbanBoard.selected(tasks); ok {
			a.openTaskForm(task.ProjectID, &task.Task)
		}
	case matches(msg, keys.Delete):
		if task, ok := a.kanbanBoard.selected(tasks); ok {
			a.askConfirm(fmt.Sprintf("Delete task %q from %s?", task.Title, task.ProjectKey), board.DeleteTask{ID: task.ID})
		}
	default:
		return a.boardKey(a.kanbanBoard, msg, tasks)
	}
	return nil
}

func (a *App) updateFilter(msg tea.KeyMsg) tea.Cmd {
	ids := a.ws.Collection.ProjectIDs()
	switch {
	case matches(msg, keys.Quit):
		return tea.Quit
	case matches(msg, keys.Back), matches(msg, keys.Filter):
		a.filterFocus = false
	case matches(msg, keys.Up), matches(msg, keys.Left):
		a.filterCursor = clampInt(a.filterCursor-1, 0, len(ids)-1)
	case matches(msg, keys.Down), matches(msg, keys.Right):
		a.filterCursor = clampInt(a.filterCursor+1, 0, len(ids)-1)
	case matches(msg, keys.Grab), matches(msg, keys.Open):
		if a.filterCursor < len(ids) {
			a.ws.Selection = a.ws.Selection.Toggle(ids[a.filterCursor])
		}
	case matches(msg, keys.ToggleAll):
		a.ws.Selection = a.ws.Selection.ToggleAll(a.ws.Collection)
	}
	return nil
}

// boardKey forwards a key to a board and sends the resulting drop, if any.
func (a *App) boardKey(b *taskBoard, msg tea.KeyMsg, tasks []board.KanbanTask) tea.Cmd {
	req, drop, _ := b.handleKey(msg, tasks)
	if !drop {
		return nil
	}
	return a.dispatch(req.Mutation())
}

func (a *App) activeBoard() (*taskBoard, []board.KanbanTask, bool) {
	switch a.state {
	case stateKanban:
		if a.filterFocus {
			return nil, nil, false
		}
		return a.kanbanBoard, a.ws.Kanban(), true
	case stateProjects:
		if project, ok := a.ws.FocusedProject(); ok {
			return a.detailBoard, board.DeriveProjectTasks(a.ws.Collection, project.ID), true
		}
	}
	return nil, nil, false
}

func (a *App) handleMouse(msg tea.MouseMsg) tea.Cmd {
	b, tasks, ok := a.activeBoard()
	if !ok {
		return nil
	}
	req, drop := b.handleMouse(msg, tasks)
	if !drop {
		return nil
	}
	return a.dispatch(req.Mutation())
}

func (a *App) cycleProjectStatus(p model.Project) tea.Cmd {
	next := model.ProjectStatuses[0]
	for i, s := range model.ProjectStatuses {
		if s == p.Status {
			next = model.ProjectStatuses[(i+1)%len(model.ProjectStatuses)]
		}
	}
	return a.dispatch(board.UpdateProject{ID: p.ID, Patch: model.ProjectPatch{Status: &next}})
}

func (a *App) askConfirm(prompt string, m board.Mutation) {
	a.returnTo = a.state
	a.confirm = &confirmPrompt{prompt: prompt, mutation: m}
	a.state = stateConfirm
}

func (a *App) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case matches(msg, keys.Confirm):
		m := a.confirm.mutation
		a.confirm = nil
		a.state = a.returnTo
		return a.dispatch(m)
	case msg.String() == "n", matches(msg, keys.Back):
		a.confirm = nil
		a.state = a.returnTo
		a.status = "Cancelled"
	}
	return nil
}

func (a *App) openProjectForm(existing *model.Project) {
	a.returnTo = a.state
	a.projectForm = newProjectForm(existing)
	a.state = stateProjectForm
}

func (a *App) openTaskForm(projectID string, existing *model.Task) {
	a.returnTo = a.state
	a.taskForm = newTaskForm(a.ws.Collection.Projects(), projectID, existing)
	a.state = stateTaskForm
}

// submitForm validates through build and dispatches the mutation. Invalid
// input keeps the form open with the error and sends nothing.
func (a *App) submitForm(f *form, build func() (board.Mutation, error)) (tea.Cmd, bool) {
	m, err := build()
	if err != nil {
		f.err = err.Error()
		return nil, false
	}
	cmd := a.dispatch(m)
	if cmd == nil {
		f.err = "A request is already in flight"
		return nil, false
	}
	return cmd, true
}

func (a *App) updateProjectForm(msg tea.KeyMsg) tea.Cmd {
	switch a.projectForm.update(msg) {
	case formCancelled:
		a.projectForm = nil
		a.state = a.returnTo
	case formSubmitted:
		cmd, ok := a.submitForm(&a.projectForm.form, a.projectForm.mutation)
		if ok {
			a.projectForm = nil
			a.state = a.returnTo
		}
		return cmd
	}
	return nil
}

func (a *App) updateTaskForm(msg tea.KeyMsg) tea.Cmd {
	switch a.taskForm.update(msg) {
	case formCancelled:
		a.taskForm = nil
		a.state = a.returnTo
	case formSubmitted:
		cmd, ok := a.submitForm(&a.taskForm.form, a.taskForm.mutation)
		if ok {
			a.taskForm = nil
			a.state = a.returnTo
		}
		return cmd
	}
	return nil
}
