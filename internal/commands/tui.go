package commands

import (
	"context"
	"flag"
	"io"

	"todoapp/internal/app"
	"todoapp/internal/config"
	"todoapp/internal/exitcode"
	"todoapp/internal/notify"
	"todoapp/internal/tui"
)

func init() {
	Register(&TuiCmd{})
}

// TuiCmd starts the interactive terminal interface.
type TuiCmd struct{}

func (c *TuiCmd) Name() string      { return "tui" }
func (c *TuiCmd) Aliases() []string { return []string{"ui"} }
func (c *TuiCmd) Synopsis() string  { return "Open the interactive terminal interface" }
func (c *TuiCmd) Usage() string     { return "todoapp tui [common flags]" }
func (c *TuiCmd) NeedsStore() bool  { return true }
func (c *TuiCmd) NeedsAuth() bool   { return false }

func (c *TuiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TuiCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if err := tui.Run(ctx, a); err != nil {
		notify.NewWriter(out, errOut, cfg.Quiet).Failure(err)
		return exitcode.UserError
	}
	return exitcode.Success
}
