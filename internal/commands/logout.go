package commands

import (
	"context"
	"flag"
	"io"

	"todoapp/internal/app"
	"todoapp/internal/config"
	"todoapp/internal/exitcode"
	"todoapp/internal/notify"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "End the current session" }
func (c *LogoutCmd) Usage() string     { return "todoapp logout [common flags]" }
func (c *LogoutCmd) NeedsStore() bool  { return true }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	n := notify.NewWriter(out, errOut, cfg.Quiet)

	if _, ok := a.Accounts.Session(); !ok {
		n.Success("not logged in")
		return exitcode.Success
	}
	if err := a.Accounts.Logout(); err != nil {
		return fail(n, err)
	}
	n.Success("ok")
	return exitcode.Success
}
