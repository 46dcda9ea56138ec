package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"todoapp/internal/tasks"
)

// ErrTaskRef is wrapped by every task reference error.
var ErrTaskRef = errors.New("task reference")

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = fmt.Errorf("%w required", ErrTaskRef)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based position in the unfiltered list, 0 if ID is set
	ID  string // task id or unique id prefix
}

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. No args → error: task reference required
// 2. All digits → position in the unfiltered list
// 3. Anything else → task id, or a unique prefix of one
// Extra args are rejected.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("%w: unexpected argument: %s", ErrTaskRef, args[1])
	}

	ref := strings.TrimSpace(args[0])
	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil || num < 1 {
			return TaskRef{}, fmt.Errorf("%w: invalid task number: %s", ErrTaskRef, ref)
		}
		return TaskRef{Num: num}, nil
	}
	return TaskRef{ID: ref}, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Resolve finds the task ref points at in list.
func (ref TaskRef) Resolve(list []tasks.Task) (tasks.Task, error) {
	if ref.ID == "" {
		if ref.Num < 1 || ref.Num > len(list) {
			return tasks.Task{}, fmt.Errorf("%w: task number out of range: %d", ErrTaskRef, ref.Num)
		}
		return list[ref.Num-1], nil
	}

	var match []tasks.Task
	for _, t := range list {
		if t.ID == ref.ID {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref.ID) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		return tasks.Task{}, fmt.Errorf("%w: task not found: %s", ErrTaskRef, ref.ID)
	case 1:
		return match[0], nil
	default:
		return tasks.Task{}, fmt.Errorf("%w: ambiguous task id: %s", ErrTaskRef, ref.ID)
	}
}

// resolveTask parses args and resolves them against the session's tasks.
func resolveTask(ts *tasks.Store, args []string) (tasks.Task, error) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return tasks.Task{}, err
	}
	return ref.Resolve(ts.List())
}
