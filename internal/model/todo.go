package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidStatus is returned when a status string is neither pending nor completed.
var ErrInvalidStatus = errors.New("invalid status")

// ErrInvalidFilter is returned when a filter string is not all, pending or completed.
var ErrInvalidFilter = errors.New("invalid filter")

// Status is the lifecycle state of a todo.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ParseStatus parses s case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Opposite returns the status a toggle moves to.
func (s Status) Opposite() Status {
	if s == StatusCompleted {
		return StatusPending
	}
	return StatusCompleted
}

// Todo is a single entry owned by the todo service. Clients only hold the
// copy returned by the last fetch.
type Todo struct {
	ID     int64  `json:"id"`
	Body   string `json:"body"`
	Status Status `json:"status"`
}

func (t Todo) Done() bool { return t.Status == StatusCompleted }

// Filter restricts a list view to a set of statuses.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

// Filters lists every filter in tab order.
var Filters = []Filter{FilterAll, FilterPending, FilterCompleted}

// ParseFilter parses s case-insensitively. An empty string means all.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterPending:
		return FilterPending, nil
	case FilterCompleted:
		return FilterCompleted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

// Statuses returns the status set a list query uses for this filter.
func (f Filter) Statuses() []Status {
	switch f {
	case FilterPending:
		return []Status{StatusPending}
	case FilterCompleted:
		return []Status{StatusCompleted}
	default:
		return []Status{StatusPending, StatusCompleted}
	}
}

// Allows reports whether a todo with status s belongs in this filter.
func (f Filter) Allows(s Status) bool {
	for _, st := range f.Statuses() {
		if st == s {
			return true
		}
	}
	return false
}

// Title is the tab label.
func (f Filter) Title() string {
	switch f {
	case FilterPending:
		return "Pending"
	case FilterCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// Stats counts completed and pending todos.
func Stats(todos []Todo) (done, pending int) {
	for _, t := range todos {
		if t.Done() {
			done++
		} else {
			pending++
		}
	}
	return
}
