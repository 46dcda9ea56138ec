package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todoapp/internal/app"
	"todoapp/internal/config"
	"todoapp/internal/exitcode"
	"todoapp/internal/notify"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "todoapp rm [common flags] <ref>" }
func (c *RmCmd) NeedsStore() bool  { return true }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	n := notify.NewWriter(out, errOut, cfg.Quiet)

	task, err := resolveTask(a.Tasks, args)
	if err != nil {
		return fail(n, err)
	}

	if err := a.Tasks.Delete(task.ID); err != nil {
		return fail(n, err)
	}
	n.Success(fmt.Sprintf("deleted: %s", task.Title))
	return exitcode.Success
}
