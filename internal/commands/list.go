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
	"todoapp/internal/tasks"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	status   string
	category string
	priority string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "todoapp list [common flags] [--status todas|pendentes|concluidas] [--category <c>] [--priority <p>]"
}
func (c *ListCmd) NeedsStore() bool { return true }
func (c *ListCmd) NeedsAuth() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.category, "c", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
}

// Run prints matching tasks numbered by their position in the unfiltered
// list, so the numbers can be passed to done, edit and rm.
func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	n := notify.NewWriter(out, errOut, cfg.Quiet)

	filter, err := tasks.ParseFilter(c.status, c.category, c.priority)
	if err != nil {
		return fail(n, err)
	}

	shown := 0
	for i, t := range a.Tasks.List() {
		if !filter.Match(t) {
			continue
		}
		output.FormatTask(out, i+1, t)
		shown++
	}

	if shown == 0 {
		n.Success("no tasks found")
	}
	return exitcode.Success
}
