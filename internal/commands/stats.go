package commands

import (
	"context"
	"flag"
	"io"

	"todoapp/internal/app"
	"todoapp/internal/config"
	"todoapp/internal/exitcode"
	"todoapp/internal/output"
	"todoapp/internal/tasks"
)

func init() {
	Register(&StatsCmd{})
}

// StatsCmd prints task counts.
type StatsCmd struct{}

func (c *StatsCmd) Name() string      { return "stats" }
func (c *StatsCmd) Aliases() []string { return nil }
func (c *StatsCmd) Synopsis() string  { return "Count total, pending and completed tasks" }
func (c *StatsCmd) Usage() string     { return "todoapp stats [common flags]" }
func (c *StatsCmd) NeedsStore() bool  { return true }
func (c *StatsCmd) NeedsAuth() bool   { return true }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	output.FormatStats(out, tasks.Summarize(a.Tasks.List()))
	return exitcode.Success
}
