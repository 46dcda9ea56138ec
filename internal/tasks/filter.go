package tasks

import (
	"fmt"
	"strings"
)

// Any matches every value in a filter dimension.
const Any = "todas"

// Status selects tasks by completion.
type Status string

const (
	StatusAll       Status = Any
	StatusPending   Status = "pendentes"
	StatusCompleted Status = "concluidas"
)

// Filter selects tasks by status, category and priority.
// Empty Category or Priority match everything.
type Filter struct {
	Status   Status
	Category Category
	Priority Priority
}

// ParseFilter builds a Filter from user input. Empty strings and "todas"
// leave the dimension unfiltered.
func ParseFilter(status, category, priority string) (Filter, error) {
	var f Filter

	switch s := Status(strings.ToLower(strings.TrimSpace(status))); s {
	case "", StatusAll:
		f.Status = StatusAll
	case StatusPending, StatusCompleted:
		f.Status = s
	default:
		return Filter{}, fmt.Errorf("%w: unknown status: %q", ErrValidation, status)
	}

	if !isAny(category) {
		c, err := ParseCategory(category)
		if err != nil {
			return Filter{}, err
		}
		f.Category = c
	}

	if !isAny(priority) {
		p, err := ParsePriority(priority)
		if err != nil {
			return Filter{}, err
		}
		f.Priority = p
	}

	return f, nil
}

func isAny(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "" || s == Any
}

// Match reports whether t passes every dimension of f.
func (f Filter) Match(t Task) bool {
	switch f.Status {
	case StatusPending:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// IsZero reports whether f matches everything.
func (f Filter) IsZero() bool {
	return (f.Status == "" || f.Status == StatusAll) && f.Category == "" && f.Priority == ""
}

// Stats counts tasks by completion.
type Stats struct {
	Total     int
	Completed int
	Pending   int
}

// Summarize computes Stats over ts.
func Summarize(ts []Task) Stats {
	var st Stats
	for _, t := range ts {
		st.Total++
		if t.Completed {
			st.Completed++
		}
	}
	st.Pending = st.Total - st.Completed
	return st
}
