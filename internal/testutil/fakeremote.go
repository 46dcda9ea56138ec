// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"todoapp/internal/mirror"
)

// ErrAmbiguous is returned when multiple lists share a title.
var ErrAmbiguous = errors.New("ambiguous list name")

// FakeList is a list held by FakeRemote.
type FakeList struct {
	ID    string
	Title string
	Tasks []mirror.Task
}

// FakeRemote is an in-memory implementation of mirror.Remote for testing.
type FakeRemote struct {
	mu    sync.RWMutex
	lists []*FakeList

	// Error injection for testing
	EnsureListErr error
	ListTitlesErr error
	InsertErr     error
	// InsertFailAfter makes Insert fail once this many inserts succeeded (0 disables).
	InsertFailAfter int

	inserts int
}

// NewFakeRemote creates an empty FakeRemote.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{}
}

// AddList adds a list with pre-existing tasks.
func (f *FakeRemote) AddList(id, title string, ts ...mirror.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, &FakeList{ID: id, Title: title, Tasks: ts})
}

// List returns the list with the given title, or nil.
func (f *FakeRemote) List(title string) *FakeList {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.lists {
		if l.Title == title {
			return l
		}
	}
	return nil
}

// EnsureList implements mirror.Remote.
func (f *FakeRemote) EnsureList(ctx context.Context, title string) (string, error) {
	if f.EnsureListErr != nil {
		return "", f.EnsureListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	want := strings.ToLower(strings.TrimSpace(title))
	var matches []*FakeList
	for _, l := range f.lists {
		if strings.ToLower(strings.TrimSpace(l.Title)) == want {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		l := &FakeList{ID: fmt.Sprintf("list-%d", len(f.lists)+1), Title: strings.TrimSpace(title)}
		f.lists = append(f.lists, l)
		return l.ID, nil
	case 1:
		return matches[0].ID, nil
	default:
		return "", ErrAmbiguous
	}
}

// ListTitles implements mirror.Remote.
func (f *FakeRemote) ListTitles(ctx context.Context, listID string) ([]string, error) {
	if f.ListTitlesErr != nil {
		return nil, f.ListTitlesErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	l := f.byID(listID)
	if l == nil {
		return nil, errors.New("not found")
	}
	titles := make([]string, len(l.Tasks))
	for i, t := range l.Tasks {
		titles[i] = t.Title
	}
	return titles, nil
}

// Insert implements mirror.Remote.
func (f *FakeRemote) Insert(ctx context.Context, listID string, t mirror.Task) error {
	if f.InsertErr != nil {
		return f.InsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.InsertFailAfter > 0 && f.inserts >= f.InsertFailAfter {
		return errors.New("rate limited")
	}
	l := f.byID(listID)
	if l == nil {
		return errors.New("not found")
	}
	l.Tasks = append(l.Tasks, t)
	f.inserts++
	return nil
}

func (f *FakeRemote) byID(id string) *FakeList {
	for _, l := range f.lists {
		if l.ID == id {
			return l
		}
	}
	return nil
}
