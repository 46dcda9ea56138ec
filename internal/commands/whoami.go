package commands

import (
	"context"
	"flag"
	"io"

	"todoapp/internal/app"
	"todoapp/internal/config"
	"todoapp/internal/exitcode"
	"todoapp/internal/notify"
	"todoapp/internal/output"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the active session.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the logged-in account" }
func (c *WhoamiCmd) Usage() string     { return "todoapp whoami [common flags]" }
func (c *WhoamiCmd) NeedsStore() bool  { return true }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	sess, ok := a.Accounts.Session()
	if !ok {
		return fail(notify.NewWriter(out, errOut, cfg.Quiet), ErrNotLoggedIn)
	}
	output.FormatSession(out, sess)
	return exitcode.Success
}
