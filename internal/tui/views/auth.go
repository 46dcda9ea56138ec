package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todoapp/internal/auth"
	"todoapp/internal/notify"
	"todoapp/internal/tui/keys"
	"todoapp/internal/tui/styles"
)

// AuthMode selects between the login and the registration form.
type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeRegister
)

// SessionChanged is sent after a login, a registration or a logout.
type SessionChanged struct{}

func sessionChanged() tea.Msg { return SessionChanged{} }

// AuthView is shown while no session is active.
type AuthView struct {
	accounts *auth.Store
	status   notify.Sink
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	mode     AuthMode
	focusIdx int // index into fields(); len(fields()) is the submit button
	name     textinput.Model
	email    textinput.Model
	password textinput.Model
}

// NewAuthView creates the login form.
func NewAuthView(accounts *auth.Store, status notify.Sink) *AuthView {
	name := textinput.New()
	name.Placeholder = "Your name"
	name.CharLimit = 100

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 200

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 200
	password.EchoMode = textinput.EchoPassword

	v := &AuthView{
		accounts: accounts,
		status:   status,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		name:     name,
		email:    email,
		password: password,
	}
	v.updateFocus()
	return v
}

// Mode returns the form currently shown.
func (v *AuthView) Mode() AuthMode { return v.mode }

// Init initializes the view
func (v *AuthView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *AuthView) fields() []*textinput.Model {
	if v.mode == ModeRegister {
		return []*textinput.Model{&v.name, &v.email, &v.password}
	}
	return []*textinput.Model{&v.email, &v.password}
}

// Update handles messages
func (v *AuthView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		return v.updateKey(msg)
	}
	return v, nil
}

func (v *AuthView) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := v.fields()

	switch {
	case key.Matches(msg, v.keys.Interrupt):
		return v, tea.Quit

	case key.Matches(msg, v.keys.SwitchMode):
		if v.mode == ModeLogin {
			v.mode = ModeRegister
		} else {
			v.mode = ModeLogin
		}
		v.focusIdx = 0
		v.updateFocus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Tab), msg.Type == tea.KeyDown:
		v.focusIdx = (v.focusIdx + 1) % (len(fields) + 1)
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab), msg.Type == tea.KeyUp:
		v.focusIdx = (v.focusIdx + len(fields)) % (len(fields) + 1)
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.submit()

	case key.Matches(msg, v.keys.Enter):
		// Enter on the last field or the button submits
		if v.focusIdx >= len(fields)-1 {
			return v, v.submit()
		}
		v.focusIdx++
		v.updateFocus()
		return v, nil
	}

	if v.focusIdx < len(fields) {
		var cmd tea.Cmd
		*fields[v.focusIdx], cmd = fields[v.focusIdx].Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *AuthView) updateFocus() {
	v.name.Blur()
	v.email.Blur()
	v.password.Blur()

	fields := v.fields()
	if v.focusIdx < len(fields) {
		fields[v.focusIdx].Focus()
	}
}

// submit logs in or registers with the form values. Failures are
// reported to the status sink and leave the form as typed.
func (v *AuthView) submit() tea.Cmd {
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()

	var (
		sess auth.Session
		err  error
	)
	if v.mode == ModeRegister {
		name := strings.TrimSpace(v.name.Value())
		if err = auth.ValidateRegistration(email, password, name); err == nil {
			sess, err = v.accounts.Register(email, password, name)
		}
	} else {
		if err = auth.ValidateLogin(email, password); err == nil {
			sess, err = v.accounts.Login(email, password)
		}
	}
	if err != nil {
		v.status.Failure(err)
		return nil
	}

	v.status.Success("Welcome, " + sess.Name)
	v.mode = ModeLogin
	v.name.Reset()
	v.email.Reset()
	v.password.Reset()
	v.focusIdx = 0
	v.updateFocus()
	return sessionChanged
}

// View renders the view
func (v *AuthView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)
	fields := v.fields()

	formTitle := "Log in"
	button := " Log in "
	switchHint := "Ctrl+R: create account"
	labels := []string{"Email:", "Password:"}
	if v.mode == ModeRegister {
		formTitle = "Create account"
		button = " Register "
		switchHint = "Ctrl+R: log in"
		labels = []string{"Name:", "Email:", "Password:"}
	}

	rows := []string{s.Title.Render("todoapp"), s.TitleMuted.Render(formTitle), ""}
	for i, f := range fields {
		style := s.Input
		if i == v.focusIdx {
			style = s.InputFocused
		}
		rows = append(rows, labels[i], style.Width(inputWidth).Render(f.View()), "")
	}

	btnStyle := s.Button
	if v.focusIdx == len(fields) {
		btnStyle = s.ButtonFocused
	}
	rows = append(rows,
		btnStyle.Render(button),
		"",
		s.TitleMuted.Render("Tab: next • ↵: submit • "+switchHint+" • Ctrl+C: quit"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, max(v.height-2, 0),
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
