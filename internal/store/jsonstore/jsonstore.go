package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/service"
)

// JSON-backed storage. Single file, human-readable, portable.
// Every operation reloads the file so hand edits are picked up; the mutex
// serializes load-modify-save within one process.

// DefaultFileName is used when Open is given a directory.
const DefaultFileName = "todos.json"

type record struct {
	ID        int64        `json:"id"`
	Body      string       `json:"body"`
	Status    model.Status `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (r record) todo() model.Todo {
	return model.Todo{ID: r.ID, Body: r.Body, Status: r.Status}
}

type document struct {
	NextID int64    `json:"next_id"`
	Todos  []record `json:"todos"`
}

// Store implements service.TodoService on top of a JSON file.
type Store struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

var _ service.TodoService = (*Store)(nil)

// Open returns a store backed by path. If path is a directory the store
// uses DefaultFileName inside it. The file is created on first write.
func Open(path string) (*Store, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		path = wd
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	return &Store{path: path, now: time.Now}, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) load() (*document, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &document{NextID: 1}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	// keep ids unique even if next_id was edited by hand
	for _, r := range doc.Todos {
		if r.ID >= doc.NextID {
			doc.NextID = r.ID + 1
		}
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	return &doc, nil
}

func (s *Store) save(doc *document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (s *Store) ListTodos(ctx context.Context, statuses []model.Status) ([]model.Todo, error) {
	statuses, err := service.ValidateStatuses(statuses)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]model.Todo, 0, len(doc.Todos))
	for _, r := range doc.Todos {
		if slices.Contains(statuses, r.Status) {
			out = append(out, r.todo())
		}
	}
	slices.SortFunc(out, func(a, b model.Todo) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out, nil
}

func (s *Store) CreateTodo(ctx context.Context, body string) (model.Todo, error) {
	body, err := service.NormalizeBody(body)
	if err != nil {
		return model.Todo{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.Todo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return model.Todo{}, err
	}
	now := s.now().UTC()
	r := record{ID: doc.NextID, Body: body, Status: model.StatusPending, CreatedAt: now, UpdatedAt: now}
	doc.NextID++
	doc.Todos = append(doc.Todos, r)
	if err := s.save(doc); err != nil {
		return model.Todo{}, err
	}
	return r.todo(), nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status model.Status) (model.Todo, error) {
	if !status.Valid() {
		return model.Todo{}, fmt.Errorf("%w: %q", service.ErrInvalidStatus, status)
	}
	if err := ctx.Err(); err != nil {
		return model.Todo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return model.Todo{}, err
	}
	i := slices.IndexFunc(doc.Todos, func(r record) bool { return r.ID == id })
	if i < 0 {
		return model.Todo{}, fmt.Errorf("update %d: %w", id, service.ErrNotFound)
	}
	doc.Todos[i].Status = status
	doc.Todos[i].UpdatedAt = s.now().UTC()
	if err := s.save(doc); err != nil {
		return model.Todo{}, err
	}
	return doc.Todos[i].todo(), nil
}

func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(doc.Todos, func(r record) bool { return r.ID == id })
	if i < 0 {
		return fmt.Errorf("delete %d: %w", id, service.ErrNotFound)
	}
	doc.Todos = slices.Delete(doc.Todos, i, i+1)
	return s.save(doc)
}
