// Package app wires storage and the state containers into one object
// that is built once at startup and passed to every front end.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"todoapp/internal/auth"
	"todoapp/internal/config"
	"todoapp/internal/mirror"
	"todoapp/internal/storage"
	"todoapp/internal/storage/memory"
	"todoapp/internal/storage/sqlite"
	"todoapp/internal/tasks"
)

// RemoteFactory creates the remote mirror on demand.
type RemoteFactory func(ctx context.Context, cfg *config.Config) (mirror.Remote, error)

// App is the application state.
type App struct {
	Config   *config.Config
	Log      *slog.Logger
	Store    storage.Store
	Accounts *auth.Store
	Tasks    *tasks.Store
	Remote   RemoteFactory

	closer io.Closer
}

type options struct {
	auth   []auth.Option
	tasks  []tasks.Option
	remote RemoteFactory
	closer io.Closer
}

// Option configures New.
type Option func(*options)

// WithAuthOptions passes options to the credential store.
func WithAuthOptions(opts ...auth.Option) Option {
	return func(o *options) { o.auth = append(o.auth, opts...) }
}

// WithTaskOptions passes options to the task store.
func WithTaskOptions(opts ...tasks.Option) Option {
	return func(o *options) { o.tasks = append(o.tasks, opts...) }
}

// WithRemote sets the remote mirror factory.
func WithRemote(f RemoteFactory) Option {
	return func(o *options) { o.remote = f }
}

// WithCloser registers a resource released by Close.
func WithCloser(c io.Closer) Option {
	return func(o *options) { o.closer = c }
}

// New builds the application over kv: it restores the persisted session
// and loads that session's tasks.
func New(cfg *config.Config, log *slog.Logger, kv storage.Store, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	accounts := auth.New(kv, append([]auth.Option{auth.WithLogger(log)}, o.auth...)...)
	if err := accounts.Load(); err != nil {
		return nil, err
	}

	ts, err := tasks.New(kv, accounts, append([]tasks.Option{tasks.WithLogger(log)}, o.tasks...)...)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Log:      log,
		Store:    kv,
		Accounts: accounts,
		Tasks:    ts,
		Remote:   o.remote,
		closer:   o.closer,
	}, nil
}

// Open builds the application on the backend selected by cfg.
func Open(cfg *config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		log.Debug("using in-memory storage")
		return New(cfg, log, memory.New(), opts...)
	case config.BackendSQLite, "":
		path := cfg.DatabasePath()
		log.Debug("opening database", "path", path)
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		a, err := New(cfg, log, db, append(opts, WithCloser(db))...)
		if err != nil {
			db.Close()
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}

// Close releases the task store subscription and the storage backend.
func (a *App) Close() error {
	a.Tasks.Close()
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
