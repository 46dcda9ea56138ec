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
	Register(&EditCmd{})
}

// optString is a string flag that remembers whether it was given,
// so that "--desc ''" can clear a field.
type optString struct {
	value string
	set   bool
}

func (o *optString) String() string { return o.value }

func (o *optString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

// EditCmd implements the edit command.
type EditCmd struct {
	title    optString
	desc     optString
	priority optString
	category optString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "todoapp edit [common flags] [--title <t>] [--desc <text>] [--priority <p>] [--category <c>] <ref>"
}
func (c *EditCmd) NeedsStore() bool { return true }
func (c *EditCmd) NeedsAuth() bool  { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.desc, "desc", "")
	fs.Var(&c.desc, "d", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.priority, "p", "")
	fs.Var(&c.category, "category", "")
	fs.Var(&c.category, "c", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	n := notify.NewWriter(out, errOut, cfg.Quiet)

	task, err := resolveTask(a.Tasks, args)
	if err != nil {
		return fail(n, err)
	}

	patch, err := c.patch()
	if err != nil {
		return fail(n, err)
	}

	if err := a.Tasks.Update(task.ID, patch); err != nil {
		return fail(n, err)
	}
	n.Success("ok")
	return exitcode.Success
}

// patch validates the given flags and turns them into a Patch.
func (c *EditCmd) patch() (tasks.Patch, error) {
	var p tasks.Patch
	if !c.title.set && !c.desc.set && !c.priority.set && !c.category.set {
		return p, fmt.Errorf("%w: nothing to change", tasks.ErrValidation)
	}

	if c.title.set {
		title := strings.TrimSpace(c.title.value)
		if err := tasks.ValidateTitle(title); err != nil {
			return p, err
		}
		p.Title = &title
	}
	if c.desc.set {
		desc := strings.TrimSpace(c.desc.value)
		p.Description = &desc
	}
	if c.priority.set {
		pr, err := tasks.ParsePriority(c.priority.value)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	if c.category.set {
		cat, err := tasks.ParseCategory(c.category.value)
		if err != nil {
			return p, err
		}
		p.Category = &cat
	}
	return p, nil
}
