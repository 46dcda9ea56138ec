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
	Register(&ShowCmd{})
}

// ShowCmd prints every field of one task.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show a task in detail" }
func (c *ShowCmd) Usage() string     { return "todoapp show [common flags] <ref>" }
func (c *ShowCmd) NeedsStore() bool  { return true }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	task, err := resolveTask(a.Tasks, args)
	if err != nil {
		return fail(notify.NewWriter(out, errOut, cfg.Quiet), err)
	}
	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
