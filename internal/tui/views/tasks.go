package views

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todoapp/internal/auth"
	"todoapp/internal/notify"
	"todoapp/internal/tasks"
	"todoapp/internal/tui/keys"
	"todoapp/internal/tui/styles"
)

// Edit form fields, in tab order.
const (
	fieldTitle = iota
	fieldDesc
	fieldPriority
	fieldCategory
	fieldSave
	fieldCount
)

var statusCycle = []tasks.Status{tasks.StatusAll, tasks.StatusPending, tasks.StatusCompleted}

// TaskListView shows the session's tasks.
type TaskListView struct {
	tasks    *tasks.Store
	accounts *auth.Store
	status   notify.Sink
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	// List state; visible holds indexes into list that pass the filter
	list    []tasks.Task
	visible []int
	filter  tasks.Filter
	cursor  int
	scrollY int

	// Task creation/editing
	editing      bool
	editingID    string // empty for a new task
	editTitle    textinput.Model
	editDesc     textarea.Model
	editPriority tasks.Priority
	editCategory tasks.Category
	editFocusIdx int

	// Delete confirmation
	confirmingDelete bool
	deleteTarget     tasks.Task

	// Help popup
	showHelpPopup bool
}

// NewTaskListView creates a new task list view
func NewTaskListView(ts *tasks.Store, accounts *auth.Store, status notify.Sink) *TaskListView {
	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description (optional)"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	v := &TaskListView{
		tasks:     ts,
		accounts:  accounts,
		status:    status,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		filter:    tasks.Filter{Status: tasks.StatusAll},
		editTitle: editTitle,
		editDesc:  editDesc,
	}
	v.refresh()
	return v
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return nil
}

// Filter returns the active filter.
func (v *TaskListView) Filter() tasks.Filter { return v.filter }

// Visible returns the tasks that pass the filter, in list order.
func (v *TaskListView) Visible() []tasks.Task {
	out := make([]tasks.Task, len(v.visible))
	for i, idx := range v.visible {
		out[i] = v.list[idx]
	}
	return out
}

// Editing reports whether the task form is open.
func (v *TaskListView) Editing() bool { return v.editing }

// refresh re-reads the store and reapplies the filter.
func (v *TaskListView) refresh() {
	v.list = v.tasks.List()
	v.visible = v.visible[:0]
	for i, t := range v.list {
		if v.filter.Match(t) {
			v.visible = append(v.visible, i)
		}
	}
	if v.cursor >= len(v.visible) {
		v.cursor = max(0, len(v.visible)-1)
	}
	v.ensureVisible()
}

func (v *TaskListView) selected() (tasks.Task, bool) {
	if len(v.visible) == 0 {
		return tasks.Task{}, false
	}
	return v.list[v.visible[v.cursor]], true
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.editDesc.SetWidth(clamp(styles.ContentWidth(v.width)-10, 20, 50))
		v.ensureVisible()
		return v, nil

	case tea.KeyMsg:
		// Any key closes the help popup
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.visible)-1 {
			v.cursor++
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok {
			v.startEditTask(t)
			return v, textinput.Blink
		}

	case key.Matches(msg, v.keys.Toggle):
		if t, ok := v.selected(); ok {
			v.toggle(t)
		}

	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTarget = t
		}

	case key.Matches(msg, v.keys.Status):
		i := slices.Index(statusCycle, v.filter.Status)
		v.filter.Status = statusCycle[(i+1)%len(statusCycle)]
		v.cursor = 0
		v.refresh()

	case key.Matches(msg, v.keys.Category):
		v.filter.Category = nextOf(tasks.Categories(), v.filter.Category)
		v.cursor = 0
		v.refresh()

	case key.Matches(msg, v.keys.Priority):
		v.filter.Priority = nextOf(tasks.Priorities(), v.filter.Priority)
		v.cursor = 0
		v.refresh()

	case key.Matches(msg, v.keys.Clear):
		v.filter = tasks.Filter{Status: tasks.StatusAll}
		v.cursor = 0
		v.refresh()

	case key.Matches(msg, v.keys.Logout):
		if err := v.accounts.Logout(); err != nil {
			v.status.Failure(err)
			return v, nil
		}
		v.status.Success("Logged out")
		return v, sessionChanged

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
	}
	return v, nil
}

// nextOf cycles through "" (any) followed by opts.
func nextOf[T comparable](opts []T, cur T) T {
	var zero T
	if cur == zero {
		return opts[0]
	}
	i := slices.Index(opts, cur)
	if i < 0 || i == len(opts)-1 {
		return zero
	}
	return opts[i+1]
}

// stepOf moves through opts by dir, wrapping around.
func stepOf[T comparable](opts []T, cur T, dir int) T {
	i := slices.Index(opts, cur)
	if i < 0 {
		return opts[0]
	}
	return opts[(i+dir+len(opts))%len(opts)]
}

func (v *TaskListView) toggle(t tasks.Task) {
	if err := v.tasks.Toggle(t.ID); err != nil {
		v.status.Failure(err)
		return
	}
	if t.Completed {
		v.status.Success("Marked pending: " + t.Title)
	} else {
		v.status.Success("Completed: " + t.Title)
	}
	v.refresh()
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if err := v.tasks.Delete(v.deleteTarget.ID); err != nil {
			v.status.Failure(err)
			return v, nil
		}
		v.status.Success("Deleted: " + v.deleteTarget.Title)
		v.refresh()
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Interrupt):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		v.saveTask()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % fieldCount
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.ShiftTab):
		v.editFocusIdx = (v.editFocusIdx + fieldCount - 1) % fieldCount
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Left), key.Matches(msg, v.keys.Right):
		dir := 1
		if key.Matches(msg, v.keys.Left) {
			dir = -1
		}
		switch v.editFocusIdx {
		case fieldPriority:
			v.editPriority = stepOf(tasks.Priorities(), v.editPriority, dir)
			return v, nil
		case fieldCategory:
			v.editCategory = stepOf(tasks.Categories(), v.editCategory, dir)
			return v, nil
		}

	case key.Matches(msg, v.keys.Enter):
		switch v.editFocusIdx {
		case fieldSave:
			v.saveTask()
			return v, nil
		case fieldDesc:
			// newline in the textarea
		default:
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case fieldTitle:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case fieldDesc:
		v.editDesc, cmd = v.editDesc.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingID = ""
	v.editFocusIdx = fieldTitle
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editPriority = tasks.DefaultPriority
	v.editCategory = tasks.DefaultCategory
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(t tasks.Task) {
	v.editing = true
	v.editingID = t.ID
	v.editFocusIdx = fieldTitle
	v.editTitle.SetValue(t.Title)
	v.editTitle.CursorEnd()
	v.editDesc.SetValue(t.Description)
	v.editPriority = t.Priority
	v.editCategory = t.Category
	v.updateEditFocus()
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()

	switch v.editFocusIdx {
	case fieldTitle:
		v.editTitle.Focus()
	case fieldDesc:
		v.editDesc.Focus()
	}
}

// saveTask validates the form and writes it. On a validation error the
// form stays open.
func (v *TaskListView) saveTask() {
	d := tasks.Draft{
		Title:       strings.TrimSpace(v.editTitle.Value()),
		Description: strings.TrimSpace(v.editDesc.Value()),
		Priority:    v.editPriority,
		Category:    v.editCategory,
	}
	if err := tasks.ValidateDraft(d); err != nil {
		v.status.Failure(err)
		return
	}

	if v.editingID == "" {
		if _, err := v.tasks.Add(d); err != nil {
			v.status.Failure(err)
			return
		}
		v.status.Success("Added: " + d.Title)
	} else {
		p := tasks.Patch{
			Title:       &d.Title,
			Description: &d.Description,
			Priority:    &d.Priority,
			Category:    &d.Category,
		}
		if err := v.tasks.Update(v.editingID, p); err != nil {
			v.status.Failure(err)
			return
		}
		v.status.Success("Updated: " + d.Title)
	}

	v.editing = false
	v.refresh()
	if v.editingID == "" {
		v.cursor = max(0, len(v.visible)-1)
		v.ensureVisible()
	}
}

func (v *TaskListView) visibleItems() int {
	// Each task item is 2 lines + 1 margin
	return max((v.height-12)/3, 1)
}

func (v *TaskListView) ensureVisible() {
	n := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+n {
		v.scrollY = v.cursor - n + 1
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.editing {
		return v.renderEditForm()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles

	who := ""
	if sess, ok := v.accounts.Session(); ok {
		who = sess.Name
	}
	title := lipgloss.JoinHorizontal(lipgloss.Left,
		s.Title.Render("todoapp"), "  ", s.TitleMuted.Render(who),
	)

	st := tasks.Summarize(v.list)
	stats := fmt.Sprintf("%s total  %s pending  %s completed",
		s.Stat.Render(fmt.Sprint(st.Total)),
		s.Stat.Render(fmt.Sprint(st.Pending)),
		s.Stat.Render(fmt.Sprint(st.Completed)),
	)

	category, priority := tasks.Any, tasks.Any
	if v.filter.Category != "" {
		category = string(v.filter.Category)
	}
	if v.filter.Priority != "" {
		priority = string(v.filter.Priority)
	}
	filters := s.FilterBar.Render(fmt.Sprintf("status: %s  category: %s  priority: %s",
		v.filter.Status, category, priority))

	return lipgloss.JoinVertical(lipgloss.Left, title, stats, filters)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if len(v.visible) == 0 {
		if len(v.list) == 0 {
			return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
		}
		return s.TitleMuted.Render("No tasks match the filter. Press '0' to clear it.")
	}

	var items []string
	end := min(v.scrollY+v.visibleItems(), len(v.visible))
	for i := v.scrollY; i < end; i++ {
		items = append(items, v.renderTaskItem(v.list[v.visible[i]], i == v.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(t tasks.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)

	mark := "[ ]"
	title := t.Title
	if t.Completed {
		mark = "[x]"
		title = s.Completed.Render(title)
	}
	titleLine := mark + " " + title

	meta := styles.PriorityStyle(t.Priority).Render(string(t.Priority)) +
		s.TitleMuted.Render(" • "+string(t.Category))
	if desc := strings.Join(strings.Fields(t.Description), " "); desc != "" {
		meta += s.TitleMuted.Render(" • " + desc)
	}

	itemStyle := s.ListItem
	if selected {
		itemStyle = s.ListSelected
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		itemStyle.Width(width).Render(titleLine),
		itemStyle.Width(width).Render("    "+meta),
	) + "\n"
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	formTitle := "New Task"
	if v.editingID != "" {
		formTitle = "Edit Task"
	}

	fieldStyle := func(idx int) lipgloss.Style {
		if v.editFocusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if v.editFocusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Title:",
		fieldStyle(fieldTitle).Width(inputWidth).Render(v.editTitle.View()),
		"",
		"Description:",
		fieldStyle(fieldDesc).Render(v.editDesc.View()),
		"",
		"Priority:",
		fieldStyle(fieldPriority).Width(inputWidth).Render("← "+string(v.editPriority)+" →"),
		"",
		"Category:",
		fieldStyle(fieldCategory).Width(inputWidth).Render("← "+string(v.editCategory)+" →"),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←→: choose • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, max(v.height-2, 0),
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("Delete task?"),
		"",
		v.deleteTarget.Title,
		"",
		s.TitleMuted.Render("y: delete • n: cancel"),
	)
	centered := lipgloss.Place(contentWidth, max(v.height-2, 0),
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}

	return s.Help.Render(
		fmt.Sprintf("%s new • %s edit • %s done • %s del • %s/%s/%s filter • %s logout • %s quit",
			s.HelpKey.Render("n"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("space"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("s"),
			s.HelpKey.Render("c"),
			s.HelpKey.Render("p"),
			s.HelpKey.Render("L"),
			s.HelpKey.Render("q"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var rows []string
	for _, b := range []key.Binding{
		v.keys.New, v.keys.Edit, v.keys.Toggle, v.keys.Delete,
		v.keys.Status, v.keys.Category, v.keys.Priority, v.keys.Clear,
		v.keys.Logout, v.keys.Quit,
	} {
		h := b.Help()
		rows = append(rows, fmt.Sprintf("%-16s %s", s.HelpKey.Render(h.Key), s.HelpDesc.Render(h.Desc)))
	}
	rows = append(rows, "", s.TitleMuted.Render("Press any key to close"))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, max(v.height-2, 0),
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
