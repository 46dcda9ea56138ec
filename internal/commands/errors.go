package commands

import (
	"errors"

	"todoapp/internal/auth"
	"todoapp/internal/exitcode"
	"todoapp/internal/notify"
	"todoapp/internal/tasks"
)

// ErrNotLoggedIn is reported by commands that need a session when none is active.
var ErrNotLoggedIn = errors.New("not logged in (run: todoapp login)")

// fail reports err and returns the exit code for its class.
// Errors not recognized here come from the storage backend.
func fail(n notify.Sink, err error) int {
	n.Failure(err)
	return codeFor(err)
}

func codeFor(err error) int {
	switch {
	case errors.Is(err, tasks.ErrValidation),
		errors.Is(err, auth.ErrMissingField),
		errors.Is(err, auth.ErrInvalidField),
		errors.Is(err, auth.ErrDuplicateEmail),
		errors.Is(err, ErrTaskRef):
		return exitcode.UserError
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, ErrNotLoggedIn):
		return exitcode.AuthError
	default:
		return exitcode.StorageError
	}
}
