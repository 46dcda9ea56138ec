// Package tui is the interactive terminal front end.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"todoapp/internal/app"
	"todoapp/internal/notify"
	"todoapp/internal/tui/styles"
	"todoapp/internal/tui/views"
)

// View identifies the screen currently shown.
type View int

const (
	ViewAuth View = iota
	ViewTasks
)

// Model is the root model. It shows the auth form while no session is
// active and the task list otherwise.
type Model struct {
	app    *app.App
	status *notify.Latest
	styles *styles.Styles

	currentView View
	authView    *views.AuthView
	taskList    *views.TaskListView
	width       int
	height      int
}

// New creates the root model over a.
func New(a *app.App) *Model {
	m := &Model{
		app:    a,
		status: &notify.Latest{},
		styles: styles.NewStyles(),
	}
	m.authView = views.NewAuthView(a.Accounts, m.status)
	m.sync()
	return m
}

// CurrentView returns the screen currently shown.
func (m *Model) CurrentView() View { return m.currentView }

// Status returns the latest notice shown in the status bar.
func (m *Model) Status() *notify.Latest { return m.status }

// Tasks returns the task list view, nil while logged out.
func (m *Model) Tasks() *views.TaskListView { return m.taskList }

// Auth returns the auth form view.
func (m *Model) Auth() *views.AuthView { return m.authView }

// sync picks the view matching the session state. A fresh task list is
// built on every login so that cursor and filters start over.
func (m *Model) sync() tea.Cmd {
	_, loggedIn := m.app.Accounts.Session()
	switch {
	case loggedIn && m.currentView != ViewTasks, loggedIn && m.taskList == nil:
		m.currentView = ViewTasks
		m.taskList = views.NewTaskListView(m.app.Tasks, m.app.Accounts, m.status)
		m.taskList.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		return m.taskList.Init()
	case !loggedIn:
		m.currentView = ViewAuth
		m.taskList = nil
		return textinput.Blink
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return m.authView.Init()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Both views keep their size since either can be shown next
		m.authView.Update(msg)
		if m.taskList != nil {
			m.taskList.Update(msg)
		}
		return m, nil

	case views.SessionChanged:
		return m, m.sync()

	case tea.KeyMsg:
		// A new key press dismisses the previous notice
		m.status.Clear()
	}

	var cmd tea.Cmd
	switch m.currentView {
	case ViewTasks:
		_, cmd = m.taskList.Update(msg)
	default:
		_, cmd = m.authView.Update(msg)
	}
	return m, cmd
}

func (m *Model) View() string {
	var body string
	switch m.currentView {
	case ViewTasks:
		body = m.taskList.View()
	default:
		body = m.authView.View()
	}
	return body + "\n" + m.renderStatus()
}

func (m *Model) renderStatus() string {
	kind, msg := m.status.Get()
	switch kind {
	case notify.KindSuccess:
		return m.styles.StatusOK.Render(msg)
	case notify.KindFailure:
		return m.styles.StatusError.Render("✗ " + msg)
	}
	return ""
}

// Run starts the program on the terminal and blocks until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
