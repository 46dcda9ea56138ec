package tasks

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"todoapp/internal/auth"
	"todoapp/internal/storage"
)

// SessionSource reports the active session and its transitions.
// *auth.Store implements it.
type SessionSource interface {
	Session() (auth.Session, bool)
	Subscribe(fn func(*auth.Session)) (cancel func())
}

// Store is the in-memory view of the active session's tasks.
// Durable storage is the source of truth; the view is rebuilt from it
// whenever the session changes.
type Store struct {
	mu     sync.Mutex
	kv     storage.Store
	log    *slog.Logger
	now    func() time.Time
	newID  func() string
	owner  string // account id of the active session, "" if none
	tasks  []Task
	cancel func()
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for reloads and persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDFunc overrides task id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New creates a Store bound to sessions. It loads the tasks of the
// current session, if any, and follows every later session change.
func New(kv storage.Store, sessions SessionSource, opts ...Option) (*Store, error) {
	s := &Store{
		kv:    kv,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	var owner string
	if sess, ok := sessions.Session(); ok {
		owner = sess.ID
	}
	if err := s.reload(owner); err != nil {
		return nil, err
	}

	s.cancel = sessions.Subscribe(func(sess *auth.Session) {
		owner := ""
		if sess != nil {
			owner = sess.ID
		}
		if err := s.reload(owner); err != nil {
			s.log.Error("reload tasks", "account", owner, "err", err)
		}
	})
	return s, nil
}

// Close stops following session changes.
func (s *Store) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Reload rebuilds the view from durable storage for the current owner.
func (s *Store) Reload() error {
	s.mu.Lock()
	owner := s.owner
	s.mu.Unlock()
	return s.reload(owner)
}

func (s *Store) reload(owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Discard first so a failed read never leaves another account's tasks visible.
	s.owner = owner
	s.tasks = nil
	if owner == "" {
		s.log.Debug("tasks cleared")
		return nil
	}

	var loaded []Task
	if _, err := storage.GetJSON(s.kv, storage.TasksKey(owner), &loaded); err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	s.tasks = loaded
	s.log.Debug("tasks loaded", "account", owner, "count", len(loaded))
	return nil
}

// List returns a copy of the active session's tasks in insertion order.
func (s *Store) List() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Get looks a task up by id in the active session's tasks.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// Add creates a task for the active session. Without a session it
// does nothing and returns the zero Task.
func (s *Store) Add(d Draft) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == "" {
		return Task{}, nil
	}

	t := Task{
		ID:          s.newID(),
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		Priority:    d.Priority,
		Category:    d.Category,
		CreatedAt:   NewTimestamp(s.now()),
		UserID:      s.owner,
	}
	if t.Priority == "" {
		t.Priority = DefaultPriority
	}
	if t.Category == "" {
		t.Category = DefaultCategory
	}

	next := append(slices.Clone(s.tasks), t)
	if err := s.save(next); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Update merges p into the task with the given id. Unknown ids are ignored.
func (s *Store) Update(id string, p Patch) error {
	return s.mutate(id, func(next []Task, i int) []Task {
		next[i] = p.apply(next[i])
		return next
	})
}

// Toggle flips the completion flag of the task with the given id.
func (s *Store) Toggle(id string) error {
	return s.mutate(id, func(next []Task, i int) []Task {
		next[i].Completed = !next[i].Completed
		return next
	})
}

// Delete removes the task with the given id.
func (s *Store) Delete(id string) error {
	return s.mutate(id, func(next []Task, i int) []Task {
		return slices.Delete(next, i, i+1)
	})
}

// mutate applies fn to a copy of the list and persists the result.
// It is a no-op without a session or when id is unknown.
func (s *Store) mutate(id string, fn func(next []Task, i int) []Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == "" {
		return nil
	}
	i := s.index(id)
	if i < 0 {
		return nil
	}
	return s.save(fn(slices.Clone(s.tasks), i))
}

// save writes the full list and, once durable, swaps it in. Caller holds s.mu.
func (s *Store) save(next []Task) error {
	if next == nil {
		next = []Task{}
	}
	if err := storage.SetJSON(s.kv, storage.TasksKey(s.owner), next); err != nil {
		return err
	}
	s.tasks = next
	return nil
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}
