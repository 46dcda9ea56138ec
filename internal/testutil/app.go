package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"todoapp/internal/app"
	"todoapp/internal/auth"
	"todoapp/internal/config"
	"todoapp/internal/mirror"
	"todoapp/internal/storage"
)

// NewApp builds an App over kv with cheap password hashing and, if
// remote is non-nil, a remote factory returning it.
func NewApp(t *testing.T, cfg *config.Config, kv storage.Store, remote mirror.Remote) *app.App {
	t.Helper()
	a, err := app.New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), kv, AppOptions(remote)...)
	if err != nil {
		t.Fatalf("failed to build app: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// AppOptions are the options NewApp uses.
func AppOptions(remote mirror.Remote) []app.Option {
	opts := []app.Option{app.WithAuthOptions(auth.WithHashCost(bcrypt.MinCost))}
	if remote != nil {
		opts = append(opts, app.WithRemote(func(ctx context.Context, cfg *config.Config) (mirror.Remote, error) {
			return remote, nil
		}))
	}
	return opts
}
