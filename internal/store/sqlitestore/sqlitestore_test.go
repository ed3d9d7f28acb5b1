package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/service"
	"github.com/Makepad-fr/tada/internal/store/storetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tada.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) service.TodoService {
		return openTemp(t)
	})
}

func TestReopenKeepsDataAndSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tada.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.CreateTodo(context.Background(), "Buy milk")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var version int
	require.NoError(t, s.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version))
	assert.Equal(t, migrations[len(migrations)-1].Version, version)

	got, err := s.ListTodos(context.Background(), model.FilterAll.Statuses())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Buy milk", got[0].Body)
}

func TestStatusCheckConstraint(t *testing.T) {
	s := openTemp(t)
	_, err := s.db.Exec(`INSERT INTO todos (body, status, created_at, updated_at) VALUES ('x', 'archived', 0, 0)`)
	assert.Error(t, err)
}
