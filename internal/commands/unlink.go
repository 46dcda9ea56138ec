package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"

	"todoapp/internal/app"
	"todoapp/internal/config"
	"todoapp/internal/exitcode"
	"todoapp/internal/notify"
)

func init() {
	Register(&UnlinkCmd{})
}

// UnlinkCmd removes the stored Google token.
type UnlinkCmd struct{}

func (c *UnlinkCmd) Name() string      { return "unlink" }
func (c *UnlinkCmd) Aliases() []string { return nil }
func (c *UnlinkCmd) Synopsis() string  { return "Remove the stored Google token" }
func (c *UnlinkCmd) Usage() string     { return "todoapp unlink [common flags]" }
func (c *UnlinkCmd) NeedsStore() bool  { return false }
func (c *UnlinkCmd) NeedsAuth() bool   { return false }

func (c *UnlinkCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UnlinkCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	n := notify.NewWriter(out, errOut, cfg.Quiet)

	err := cfg.RemoveToken()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		n.Success("not linked")
	case err != nil:
		n.Failure(fmt.Errorf("failed to remove token: %w", err))
		return exitcode.AuthError
	default:
		n.Success("ok")
	}
	return exitcode.Success
}
