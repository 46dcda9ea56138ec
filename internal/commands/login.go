package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todoapp/internal/app"
	"todoapp/internal/auth"
	"todoapp/internal/config"
	"todoapp/internal/exitcode"
	"todoapp/internal/notify"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return []string{"signin"} }
func (c *LoginCmd) Synopsis() string  { return "Log in to an account" }
func (c *LoginCmd) Usage() string {
	return "todoapp login [common flags] --email <email> --password <password>"
}
func (c *LoginCmd) NeedsStore() bool { return true }
func (c *LoginCmd) NeedsAuth() bool  { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	n := notify.NewWriter(out, errOut, cfg.Quiet)

	email := strings.TrimSpace(c.email)
	if err := auth.ValidateLogin(email, c.password); err != nil {
		return fail(n, err)
	}

	sess, err := a.Accounts.Login(email, c.password)
	if err != nil {
		return fail(n, err)
	}
	n.Success(fmt.Sprintf("logged in as %s", sess.Name))
	return exitcode.Success
}

// RegisterCmd creates an account and logs into it.
type RegisterCmd struct {
	email    string
	password string
	name     string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and log in" }
func (c *RegisterCmd) Usage() string {
	return "todoapp register [common flags] --email <email> --password <password> --name <name>"
}
func (c *RegisterCmd) NeedsStore() bool { return true }
func (c *RegisterCmd) NeedsAuth() bool  { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.StringVar(&c.name, "name", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	n := notify.NewWriter(out, errOut, cfg.Quiet)

	email := strings.TrimSpace(c.email)
	name := strings.TrimSpace(c.name)
	if err := auth.ValidateRegistration(email, c.password, name); err != nil {
		return fail(n, err)
	}

	sess, err := a.Accounts.Register(email, c.password, name)
	if err != nil {
		return fail(n, err)
	}
	n.Success(fmt.Sprintf("registered %s", sess.Email))
	return exitcode.Success
}
