// Package service defines the remote todo service contract shared by the
// stores, the HTTP server and the HTTP client.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
)

var (
	ErrNotFound      = errors.New("todo not found")
	ErrEmptyBody     = errors.New("todo body is empty")
	ErrBodyTooLong   = errors.New("todo body is too long")
	ErrInvalidStatus = model.ErrInvalidStatus
	ErrUnauthorized  = errors.New("unauthorized")
)

// MaxBodyLength bounds a todo body in runes.
const MaxBodyLength = 200

// TodoService is the four-operation contract of the todo backend.
// Every call either succeeds with a result or fails; none are retried.
type TodoService interface {
	// ListTodos returns todos whose status is in statuses, ordered by id.
	// An empty set returns no todos.
	ListTodos(ctx context.Context, statuses []model.Status) ([]model.Todo, error)
	CreateTodo(ctx context.Context, body string) (model.Todo, error)
	UpdateStatus(ctx context.Context, id int64, status model.Status) (model.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
}

// NormalizeBody trims body and checks it is non-empty and not too long.
func NormalizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrEmptyBody
	}
	if n := len([]rune(body)); n > MaxBodyLength {
		return "", fmt.Errorf("%w: %d runes, max %d", ErrBodyTooLong, n, MaxBodyLength)
	}
	return body, nil
}

// ValidateStatuses rejects unknown statuses and drops duplicates.
func ValidateStatuses(statuses []model.Status) ([]model.Status, error) {
	out := make([]model.Status, 0, len(statuses))
	seen := make(map[model.Status]bool, len(statuses))
	for _, s := range statuses {
		if !s.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out, nil
}
