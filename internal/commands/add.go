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
	"todoapp/internal/notify"
	"todoapp/internal/tasks"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	desc     string
	priority string
	category string
	done     bool
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create", "new"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "todoapp add [common flags] [--desc <text>] [--priority <p>] [--category <c>] [--done] <title...>"
}
func (c *AddCmd) NeedsStore() bool { return true }
func (c *AddCmd) NeedsAuth() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.desc, "desc", "", "")
	fs.StringVar(&c.desc, "d", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.priority, "p", "", "")
	fs.StringVar(&c.category, "category", "", "")
	fs.StringVar(&c.category, "c", "", "")
	fs.BoolVar(&c.done, "done", false, "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	n := notify.NewWriter(out, errOut, cfg.Quiet)

	draft, err := c.draft(args)
	if err != nil {
		return fail(n, err)
	}

	task, err := a.Tasks.Add(draft)
	if err != nil {
		return fail(n, err)
	}
	n.Success(fmt.Sprintf("added %d: %s", len(a.Tasks.List()), task.Title))
	return exitcode.Success
}

// draft builds and validates the new task from flags and the title words.
func (c *AddCmd) draft(args []string) (tasks.Draft, error) {
	d := tasks.Draft{
		Title:       strings.TrimSpace(strings.Join(args, " ")),
		Description: strings.TrimSpace(c.desc),
		Completed:   c.done,
	}
	if err := tasks.ValidateTitle(d.Title); err != nil {
		return tasks.Draft{}, err
	}
	if c.priority != "" {
		p, err := tasks.ParsePriority(c.priority)
		if err != nil {
			return tasks.Draft{}, err
		}
		d.Priority = p
	}
	if c.category != "" {
		cat, err := tasks.ParseCategory(c.category)
		if err != nil {
			return tasks.Draft{}, err
		}
		d.Category = cat
	}
	return d, tasks.ValidateDraft(d)
}
