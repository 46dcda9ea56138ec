// Package tasks holds the per-account task list of the active session.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation is returned by the validation helpers for bad input.
// Stores do not validate; callers run these before mutating.
var ErrValidation = errors.New("validation error")

// Priority of a task.
type Priority string

const (
	PriorityHigh   Priority = "alta"
	PriorityMedium Priority = "media"
	PriorityLow    Priority = "baixa"
)

// Category of a task.
type Category string

const (
	CategoryWork     Category = "trabalho"
	CategoryPersonal Category = "pessoal"
	CategoryHealth   Category = "saude"
	CategoryStudies  Category = "estudos"
)

// Defaults applied by Add when a draft leaves the field empty.
const (
	DefaultPriority = PriorityMedium
	DefaultCategory = CategoryPersonal
)

// Priorities returns all priorities, highest first.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{CategoryWork, CategoryPersonal, CategoryHealth, CategoryStudies}
}

// Task is a single to-do item owned by an account.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	Priority    Priority  `json:"priority"`
	Category    Category  `json:"category"`
	CreatedAt   Timestamp `json:"createdAt"`
	UserID      string    `json:"userId"`
}

// Timestamp is an RFC 3339 instant that encodes back to the exact text it
// was decoded from, so records written elsewhere keep their precision.
type Timestamp struct {
	time.Time
	raw string
}

// NewTimestamp returns t in UTC, encoded with nanosecond precision.
func NewTimestamp(t time.Time) Timestamp {
	t = t.UTC()
	return Timestamp{Time: t, raw: t.Format(time.RFC3339Nano)}
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.raw != "" {
		return json.Marshal(ts.raw)
	}
	return json.Marshal(ts.Time.UTC().Format(time.RFC3339Nano))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return fmt.Errorf("createdAt: %w", err)
	}
	ts.Time, ts.raw = t, raw
	return nil
}

// Draft carries the caller-supplied fields of a new task.
type Draft struct {
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	Category    Category
}

// Patch lists the fields to change on an existing task. Nil fields are kept.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
	Category    *Category
}

func (p Patch) apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	return t
}

// ParsePriority parses a priority name (case-insensitive, trimmed).
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range Priorities() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown priority: %q", ErrValidation, s)
}

// ParseCategory parses a category name (case-insensitive, trimmed).
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category: %q", ErrValidation, s)
}

// ValidateTitle rejects titles that are empty after trimming.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title required", ErrValidation)
	}
	return nil
}

// ValidateDraft checks a draft before it is passed to Add.
func ValidateDraft(d Draft) error {
	if err := ValidateTitle(d.Title); err != nil {
		return err
	}
	if d.Priority != "" {
		if _, err := ParsePriority(string(d.Priority)); err != nil {
			return err
		}
	}
	if d.Category != "" {
		if _, err := ParseCategory(string(d.Category)); err != nil {
			return err
		}
	}
	return nil
}
