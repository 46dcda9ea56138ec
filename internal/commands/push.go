package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoapp/internal/app"
	"todoapp/internal/config"
	"todoapp/internal/exitcode"
	"todoapp/internal/mirror"
	"todoapp/internal/notify"
)

func init() {
	Register(&PushCmd{})
}

// PushCmd copies the session's tasks to a Google Tasks list.
type PushCmd struct {
	listName string
}

func (c *PushCmd) Name() string      { return "push" }
func (c *PushCmd) Aliases() []string { return nil }
func (c *PushCmd) Synopsis() string  { return "Copy tasks to Google Tasks" }
func (c *PushCmd) Usage() string     { return "todoapp push [common flags] [--list <list-name>]" }
func (c *PushCmd) NeedsStore() bool  { return true }
func (c *PushCmd) NeedsAuth() bool   { return true }

func (c *PushCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *PushCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	n := notify.NewWriter(out, errOut, cfg.Quiet)

	sess, ok := a.Accounts.Session()
	if !ok {
		return fail(n, ErrNotLoggedIn)
	}

	if a.Remote == nil {
		n.Failure(fmt.Errorf("remote error: no remote configured"))
		return exitcode.RemoteError
	}
	remote, err := a.Remote(ctx, cfg)
	if err != nil {
		// Check if it's an auth error
		if strings.Contains(err.Error(), "token") || strings.Contains(err.Error(), "oauth") {
			n.Failure(fmt.Errorf("not linked (run: todoapp link): %w", err))
			return exitcode.AuthError
		}
		n.Failure(fmt.Errorf("remote error: %w", err))
		return exitcode.RemoteError
	}

	title := strings.TrimSpace(c.listName)
	if title == "" {
		title = cfg.PushList
	}
	if title == "" {
		title = mirror.DefaultListTitle(sess.Name)
	}

	res, err := mirror.Push(ctx, remote, title, a.Tasks.List())
	if err != nil {
		n.Failure(fmt.Errorf("remote error: %w (pushed %d before failing)", err, res.Pushed))
		return exitcode.RemoteError
	}
	n.Success(fmt.Sprintf("pushed %d tasks to %q (%d already present)", res.Pushed, title, res.Skipped))
	return exitcode.Success
}
