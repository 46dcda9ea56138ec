package tui_test

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapp/internal/config"
	"todoapp/internal/notify"
	"todoapp/internal/storage/memory"
	"todoapp/internal/tasks"
	"todoapp/internal/testutil"
	"todoapp/internal/tui"
	"todoapp/internal/tui/views"
)

func press(m *tui.Model, k tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	return cmd
}

func typeText(m *tui.Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// follow delivers the message of cmd when it reports a session change.
func follow(t *testing.T, m *tui.Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, views.SessionChanged{}, msg)
	m.Update(msg)
}

func newModel(t *testing.T) (*tui.Model, *memory.Store) {
	t.Helper()
	kv := memory.New()
	a := testutil.NewApp(t, &config.Config{Backend: config.BackendMemory}, kv, nil)
	m := tui.New(a)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, kv
}

func register(t *testing.T, m *tui.Model) {
	t.Helper()
	press(m, tea.KeyCtrlR)
	require.Equal(t, views.ModeRegister, m.Auth().Mode())
	typeText(m, "Alice")
	press(m, tea.KeyTab)
	typeText(m, "alice@example.com")
	press(m, tea.KeyTab)
	typeText(m, "s3cret")
	follow(t, m, press(m, tea.KeyEnter))
}

func TestModel_RegisterAndManageTasks(t *testing.T) {
	m, _ := newModel(t)
	assert.Equal(t, tui.ViewAuth, m.CurrentView())
	assert.Contains(t, m.View(), "Log in")

	register(t, m)
	require.Equal(t, tui.ViewTasks, m.CurrentView())
	kind, msg := m.Status().Get()
	assert.Equal(t, notify.KindSuccess, kind)
	assert.Equal(t, "Welcome, Alice", msg)
	assert.Contains(t, m.View(), "No tasks")

	// New task with a non-default priority
	typeText(m, "n")
	require.True(t, m.Tasks().Editing())
	typeText(m, "Buy milk")
	press(m, tea.KeyTab)
	typeText(m, "2 liters")
	press(m, tea.KeyTab)
	press(m, tea.KeyRight)
	press(m, tea.KeyCtrlS)
	require.False(t, m.Tasks().Editing())

	visible := m.Tasks().Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Buy milk", visible[0].Title)
	assert.Equal(t, "2 liters", visible[0].Description)
	assert.Equal(t, tasks.PriorityLow, visible[0].Priority)
	assert.Equal(t, tasks.CategoryPersonal, visible[0].Category)
	assert.Contains(t, m.View(), "Buy milk")

	// Toggle, then filter by status
	press(m, tea.KeySpace)
	assert.True(t, m.Tasks().Visible()[0].Completed)

	typeText(m, "s")
	assert.Equal(t, tasks.StatusPending, m.Tasks().Filter().Status)
	assert.Empty(t, m.Tasks().Visible())
	assert.Contains(t, m.View(), "No tasks match the filter")

	typeText(m, "s")
	assert.Equal(t, tasks.StatusCompleted, m.Tasks().Filter().Status)
	assert.Len(t, m.Tasks().Visible(), 1)

	typeText(m, "c")
	assert.Equal(t, tasks.CategoryWork, m.Tasks().Filter().Category)
	assert.Empty(t, m.Tasks().Visible())

	typeText(m, "0")
	assert.True(t, m.Tasks().Filter().IsZero())
	assert.Len(t, m.Tasks().Visible(), 1)

	// Delete needs confirmation
	typeText(m, "d")
	assert.Contains(t, m.View(), "Delete task?")
	typeText(m, "n")
	assert.Len(t, m.Tasks().Visible(), 1)
	typeText(m, "d")
	typeText(m, "y")
	assert.Empty(t, m.Tasks().Visible())
	_, msg = m.Status().Get()
	assert.Equal(t, "Deleted: Buy milk", msg)
}

func TestModel_EditTask(t *testing.T) {
	m, _ := newModel(t)
	register(t, m)

	typeText(m, "n")
	typeText(m, "Gym")
	press(m, tea.KeyCtrlS)

	press(m, tea.KeyEnter)
	require.True(t, m.Tasks().Editing())
	typeText(m, " day")
	for i := 0; i < 3; i++ {
		press(m, tea.KeyTab)
	}
	press(m, tea.KeyRight)
	press(m, tea.KeyCtrlS)

	got := m.Tasks().Visible()[0]
	assert.Equal(t, "Gym day", got.Title)
	assert.Equal(t, tasks.CategoryHealth, got.Category)
	assert.Equal(t, tasks.PriorityMedium, got.Priority)
}

func TestModel_EmptyTitleKeepsFormOpen(t *testing.T) {
	m, _ := newModel(t)
	register(t, m)

	typeText(m, "n")
	press(m, tea.KeyCtrlS)

	assert.True(t, m.Tasks().Editing())
	kind, msg := m.Status().Get()
	assert.Equal(t, notify.KindFailure, kind)
	assert.Contains(t, msg, "title required")
	assert.Empty(t, m.Tasks().Visible())

	press(m, tea.KeyEsc)
	assert.False(t, m.Tasks().Editing())
}

func TestModel_LogoutAndFailedLogin(t *testing.T) {
	m, _ := newModel(t)
	register(t, m)

	follow(t, m, func() tea.Cmd {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")})
		return cmd
	}())
	require.Equal(t, tui.ViewAuth, m.CurrentView())
	assert.Nil(t, m.Tasks())
	assert.Equal(t, views.ModeLogin, m.Auth().Mode())

	typeText(m, "alice@example.com")
	press(m, tea.KeyTab)
	typeText(m, "wrong")
	assert.Nil(t, press(m, tea.KeyEnter))

	assert.Equal(t, tui.ViewAuth, m.CurrentView())
	kind, msg := m.Status().Get()
	assert.Equal(t, notify.KindFailure, kind)
	assert.Equal(t, "invalid email or password", msg)
	assert.True(t, strings.Contains(m.View(), "invalid email or password"))
}

func TestModel_StartsOnTasksWithSession(t *testing.T) {
	kv := memory.New()
	first := testutil.NewApp(t, &config.Config{}, kv, nil)
	_, err := first.Accounts.Register("alice@example.com", "s3cret", "Alice")
	require.NoError(t, err)
	_, err = first.Tasks.Add(tasks.Draft{Title: "persisted"})
	require.NoError(t, err)

	second := testutil.NewApp(t, &config.Config{}, kv, nil)
	m := tui.New(second)

	assert.Equal(t, tui.ViewTasks, m.CurrentView())
	require.Len(t, m.Tasks().Visible(), 1)
	assert.Equal(t, "persisted", m.Tasks().Visible()[0].Title)
}
