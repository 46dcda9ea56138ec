// Package mirror pushes local tasks to a remote task service.
// Remote calls never import a vendor SDK here; see mirror/googletasks.
package mirror

import (
	"context"
	"fmt"
	"strings"

	"todoapp/internal/tasks"
)

// Task is the remote representation of a local task.
type Task struct {
	Title     string
	Notes     string
	Completed bool
}

// Remote is a task service that can hold named lists.
type Remote interface {
	// EnsureList returns the id of the list with the given title
	// (case-insensitive, trimmed), creating it if absent.
	EnsureList(ctx context.Context, title string) (string, error)

	// ListTitles returns the titles of every task in the list,
	// completed ones included.
	ListTitles(ctx context.Context, listID string) ([]string, error)

	// Insert creates a task in the list.
	Insert(ctx context.Context, listID string, t Task) error
}

// Result summarizes a push.
type Result struct {
	Pushed  int
	Skipped int
}

// DefaultListTitle is the list used when none is configured.
func DefaultListTitle(accountName string) string {
	return "todoapp: " + accountName
}

// FromTask converts a local task.
func FromTask(t tasks.Task) Task {
	notes := fmt.Sprintf("priority: %s\ncategory: %s", t.Priority, t.Category)
	if d := strings.TrimSpace(t.Description); d != "" {
		notes = d + "\n\n" + notes
	}
	return Task{
		Title:     t.Title,
		Notes:     notes,
		Completed: t.Completed,
	}
}

// Push inserts every task whose title is not already in the remote list.
// It stops at the first failed insert; Result counts what was done.
func Push(ctx context.Context, r Remote, listTitle string, ts []tasks.Task) (Result, error) {
	var res Result

	listID, err := r.EnsureList(ctx, listTitle)
	if err != nil {
		return res, err
	}

	titles, err := r.ListTitles(ctx, listID)
	if err != nil {
		return res, err
	}
	present := make(map[string]bool, len(titles))
	for _, title := range titles {
		present[title] = true
	}

	for _, t := range ts {
		if present[t.Title] {
			res.Skipped++
			continue
		}
		if err := r.Insert(ctx, listID, FromTask(t)); err != nil {
			return res, fmt.Errorf("push %q: %w", t.Title, err)
		}
		present[t.Title] = true
		res.Pushed++
	}
	return res, nil
}
