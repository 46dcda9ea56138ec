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
	Register(&ToggleCmd{})
}

// ToggleCmd flips a task between pending and completed.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "done" }
func (c *ToggleCmd) Aliases() []string { return []string{"toggle", "undone"} }
func (c *ToggleCmd) Synopsis() string  { return "Toggle a task between pending and completed" }
func (c *ToggleCmd) Usage() string     { return "todoapp done [common flags] <ref>" }
func (c *ToggleCmd) NeedsStore() bool  { return true }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	n := notify.NewWriter(out, errOut, cfg.Quiet)

	task, err := resolveTask(a.Tasks, args)
	if err != nil {
		return fail(n, err)
	}

	if err := a.Tasks.Toggle(task.ID); err != nil {
		return fail(n, err)
	}

	state := "completed"
	if task.Completed {
		state = "pending"
	}
	n.Success(fmt.Sprintf("%s: %s", state, task.Title))
	return exitcode.Success
}
