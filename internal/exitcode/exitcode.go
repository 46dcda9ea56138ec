// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, validation, unknown task).
	UserError = 1

	// AuthError indicates a missing session, bad credentials or a missing OAuth link.
	AuthError = 2

	// StorageError indicates the local store could not be read or written.
	StorageError = 3

	// RemoteError indicates a Google Tasks API or network error.
	RemoteError = 4
)
