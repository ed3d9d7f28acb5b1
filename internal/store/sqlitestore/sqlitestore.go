// Package sqlitestore persists todos in a SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/service"
)

// Store implements service.TodoService.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ service.TodoService = (*Store)(nil)

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("path", path).Msg("database initialized")
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListTodos(ctx context.Context, statuses []model.Status) ([]model.Todo, error) {
	statuses, err := service.ValidateStatuses(statuses)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return []model.Todo{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := make([]any, len(statuses))
	for i, st := range statuses {
		args[i] = string(st)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, body, status FROM todos WHERE status IN (`+placeholders+`) ORDER BY id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	out := []model.Todo{}
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.Body, &t.Status); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return out, nil
}

func (s *Store) CreateTodo(ctx context.Context, body string) (model.Todo, error) {
	body, err := service.NormalizeBody(body)
	if err != nil {
		return model.Todo{}, err
	}
	now := s.now().UnixMilli()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (body, status, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		body, string(model.StatusPending), now, now,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Todo{}, fmt.Errorf("last insert id: %w", err)
	}
	return model.Todo{ID: id, Body: body, Status: model.StatusPending}, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status model.Status) (model.Todo, error) {
	if !status.Valid() {
		return model.Todo{}, fmt.Errorf("%w: %q", service.ErrInvalidStatus, status)
	}
	var t model.Todo
	err := s.db.QueryRowContext(ctx,
		`UPDATE todos SET status = ?, updated_at = ? WHERE id = ? RETURNING id, body, status`,
		string(status), s.now().UnixMilli(), id,
	).Scan(&t.ID, &t.Body, &t.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, fmt.Errorf("update %d: %w", id, service.ErrNotFound)
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return t, nil
}

func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %d: %w", id, service.ErrNotFound)
	}
	return nil
}
