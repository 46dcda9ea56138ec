// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todoapp/internal/auth"
	"todoapp/internal/tasks"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}  ({PRIORITY}, {CATEGORY})\n", followed by the
// description indented under the title when present.
func FormatTask(w io.Writer, num int, task tasks.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s  (%s, %s)\n", num, mark, normalizeTitle(task.Title), task.Priority, task.Category)
	if desc := normalizeDescription(task.Description); desc != "" {
		fmt.Fprintf(w, "          %s\n", desc)
	}
}

// FormatTaskDetail formats every field of a task, one per line.
func FormatTaskDetail(w io.Writer, task tasks.Task) {
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	if task.Description != "" {
		fmt.Fprintf(w, "description: %s\n", normalizeDescription(task.Description))
	}
	fmt.Fprintf(w, "completed:   %t\n", task.Completed)
	fmt.Fprintf(w, "priority:    %s\n", task.Priority)
	fmt.Fprintf(w, "category:    %s\n", task.Category)
	fmt.Fprintf(w, "created:     %s\n", task.CreatedAt.Format("2006-01-02 15:04"))
}

// FormatStats formats task counts.
func FormatStats(w io.Writer, st tasks.Stats) {
	fmt.Fprintf(w, "total:     %d\n", st.Total)
	fmt.Fprintf(w, "pending:   %d\n", st.Pending)
	fmt.Fprintf(w, "completed: %d\n", st.Completed)
}

// FormatSession formats the active identity.
func FormatSession(w io.Writer, sess auth.Session) {
	fmt.Fprintf(w, "%s <%s>\n", sess.Name, sess.Email)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func normalizeDescription(desc string) string {
	return strings.Join(strings.Fields(desc), " ")
}
