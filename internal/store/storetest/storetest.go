// Package storetest holds behavior tests every service.TodoService
// implementation must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/service"
)

var all = []model.Status{model.StatusPending, model.StatusCompleted}

// Run exercises a fresh store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) service.TodoService) {
	t.Run("CreateAssignsIncreasingIDs", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		a, err := s.CreateTodo(ctx, "Buy milk")
		require.NoError(t, err)
		b, err := s.CreateTodo(ctx, "  Walk dog  ")
		require.NoError(t, err)

		assert.Greater(t, b.ID, a.ID)
		assert.Equal(t, "Buy milk", a.Body)
		assert.Equal(t, "Walk dog", b.Body)
		assert.Equal(t, model.StatusPending, a.Status)
	})

	t.Run("CreateRejectsEmptyBody", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CreateTodo(context.Background(), "   ")
		require.ErrorIs(t, err, service.ErrEmptyBody)

		todos, err := s.ListTodos(context.Background(), all)
		require.NoError(t, err)
		assert.Empty(t, todos)
	})

	t.Run("ListFiltersByStatusInIDOrder", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		ids := seed(t, s, "one", "two", "three")
		_, err := s.UpdateStatus(ctx, ids[1], model.StatusCompleted)
		require.NoError(t, err)

		got, err := s.ListTodos(ctx, all)
		require.NoError(t, err)
		assert.Equal(t, ids, idsOf(got))

		got, err = s.ListTodos(ctx, []model.Status{model.StatusPending})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[0], ids[2]}, idsOf(got))

		got, err = s.ListTodos(ctx, []model.Status{model.StatusCompleted})
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[1]}, idsOf(got))
		for _, td := range got {
			assert.Equal(t, model.StatusCompleted, td.Status)
		}
	})

	t.Run("ListEmptyStatusSet", func(t *testing.T) {
		s := newStore(t)
		seed(t, s, "one")
		got, err := s.ListTodos(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ListRejectsUnknownStatus", func(t *testing.T) {
		s := newStore(t)
		_, err := s.ListTodos(context.Background(), []model.Status{"archived"})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})

	t.Run("ToggleTwiceRoundTrips", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		ids := seed(t, s, "Buy milk")

		td, err := s.UpdateStatus(ctx, ids[0], model.StatusPending.Opposite())
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, td.Status)
		assert.Equal(t, ids[0], td.ID)

		td, err = s.UpdateStatus(ctx, ids[0], td.Status.Opposite())
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, td.Status)
		assert.Equal(t, "Buy milk", td.Body)
	})

	t.Run("UpdateUnknownID", func(t *testing.T) {
		s := newStore(t)
		_, err := s.UpdateStatus(context.Background(), 999, model.StatusCompleted)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("UpdateRejectsInvalidStatus", func(t *testing.T) {
		s := newStore(t)
		ids := seed(t, s, "one")
		_, err := s.UpdateStatus(context.Background(), ids[0], "archived")
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})

	t.Run("DeleteRemovesExactlyOne", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		ids := seed(t, s, "one", "two", "three")

		require.NoError(t, s.DeleteTodo(ctx, ids[1]))

		got, err := s.ListTodos(ctx, all)
		require.NoError(t, err)
		assert.Equal(t, []int64{ids[0], ids[2]}, idsOf(got))

		assert.ErrorIs(t, s.DeleteTodo(ctx, ids[1]), service.ErrNotFound)
	})

	t.Run("IDsAreNotReused", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		ids := seed(t, s, "one", "two")
		require.NoError(t, s.DeleteTodo(ctx, ids[1]))

		td, err := s.CreateTodo(ctx, "three")
		require.NoError(t, err)
		assert.Greater(t, td.ID, ids[1])
	})

	t.Run("CanceledContext", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.CreateTodo(ctx, "late")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func seed(t *testing.T, s service.TodoService, bodies ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(bodies))
	for _, b := range bodies {
		td, err := s.CreateTodo(context.Background(), b)
		require.NoError(t, err)
		ids = append(ids, td.ID)
	}
	return ids
}

func idsOf(todos []model.Todo) []int64 {
	out := make([]int64, 0, len(todos))
	for _, td := range todos {
		out = append(out, td.ID)
	}
	return out
}
