// Package notify reports the outcome of user actions.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Sink receives success and failure notices from presentation code.
type Sink interface {
	Success(msg string)
	Failure(err error)
}

// Writer prints notices the way the CLI does: successes to Out unless
// Quiet, failures to ErrOut prefixed with "error: ".
type Writer struct {
	Out    io.Writer
	ErrOut io.Writer
	Quiet  bool
}

// NewWriter creates a Writer.
func NewWriter(out, errOut io.Writer, quiet bool) *Writer {
	return &Writer{Out: out, ErrOut: errOut, Quiet: quiet}
}

func (w *Writer) Success(msg string) {
	if w.Quiet {
		return
	}
	fmt.Fprintln(w.Out, msg)
}

func (w *Writer) Failure(err error) {
	fmt.Fprintf(w.ErrOut, "error: %v\n", err)
}

// Kind tells a success notice from a failure.
type Kind int

const (
	KindNone Kind = iota
	KindSuccess
	KindFailure
)

// Latest keeps only the most recent notice, for status bars.
type Latest struct {
	mu   sync.Mutex
	kind Kind
	msg  string
}

func (l *Latest) Success(msg string) {
	l.set(KindSuccess, msg)
}

func (l *Latest) Failure(err error) {
	l.set(KindFailure, err.Error())
}

// Get returns the latest notice.
func (l *Latest) Get() (Kind, string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.kind, l.msg
}

// Clear forgets the latest notice.
func (l *Latest) Clear() {
	l.set(KindNone, "")
}

func (l *Latest) set(k Kind, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.kind = k
	l.msg = msg
}
