package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kingrea/taskboard/internal/auth"
	"github.com/kingrea/taskboard/internal/board"
	"github.com/kingrea/taskboard/internal/client"
)

type loginFinishedMsg struct {
	session auth.Session
	err     error
}

// loginForm gates the rest of the UI behind the single allowed account.
type loginForm struct {
	form
	pending bool
}

func newLoginForm(email string) *loginForm {
	password := newTextField("Password", "", "", 256)
	password.input.EchoMode = textinput.EchoPassword
	password.input.EchoCharacter = '•'
	f := &loginForm{form: form{
		title: "Sign in",
		fields: []formField{
			newTextField("Email", "you@example.com", email, 256),
			password,
		},
	}}
	f.init()
	if strings.TrimSpace(email) != "" {
		f.move(1)
	}
	return f
}

func (f *loginForm) credentials() (string, string, error) {
	email := strings.TrimSpace(f.fields[0].value())
	password := f.fields[1].value()
	if email == "" || password == "" {
		return "", "", errors.New("email and password are required")
	}
	return email, password, nil
}

func (a *App) submitLogin() tea.Cmd {
	if a.login.pending {
		return nil
	}
	email, password, err := a.login.credentials()
	if err != nil {
		a.login.err = err.Error()
		return nil
	}
	a.login.pending = true
	a.login.err = ""
	remote, timeout := a.remote, a.timeout
	call := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		session, err := remote.Login(ctx, email, password)
		return loginFinishedMsg{session: session, err: err}
	}
	return tea.Batch(call, a.spinner.Tick)
}

func (a *App) finishLogin(msg loginFinishedMsg) tea.Cmd {
	a.login.pending = false
	if msg.err != nil {
		if errors.Is(msg.err, client.ErrUnauthorized) {
			a.login.err = "Invalid email or password"
			a.logWarn("Sign-in rejected")
		} else {
			a.login.err = "Sign-in failed: server unreachable"
			a.logError("Sign-in failed: %v", msg.err)
		}
		a.login.setText(1, "")
		return nil
	}
	a.user = msg.session.User
	a.logger.Info("signed in", zap.String("email", msg.session.User.Email))
	a.logInfo("Signed in as %s", msg.session.User.Name)
	a.state = stateProjects
	a.login = nil
	return a.dispatch(board.Reload{})
}
