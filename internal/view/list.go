// Package view holds the client-side state of the todo list: the selected
// filter, the last accepted fetch, and the in-flight flag that keeps one
// mutation at a time. It renders nothing; callers get a reconcile.Transition
// every time the rendered set changes.
package view

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Makepad-fr/tada/internal/log"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/reconcile"
	"github.com/Makepad-fr/tada/internal/service"
)

var (
	// ErrBusy is returned when an action is dispatched while another
	// mutation is still in flight. No service call is made.
	ErrBusy = errors.New("another change is in flight")
	// ErrUnknownTodo is returned for an id that is not currently rendered.
	ErrUnknownTodo = errors.New("todo is not in the current list")
	// ErrStale is returned when a fetch was superseded by a newer one
	// before its result arrived.
	ErrStale = errors.New("fetch superseded by a newer one")
)

// Transition is the diff between two rendered sets, keyed by todo id.
type Transition = reconcile.Transition[int64]

// Ticket identifies one issued fetch. Only the most recently issued ticket
// may replace the rendered set.
type Ticket struct {
	Seq      uint64
	Filter   model.Filter
	Statuses []model.Status
}

// ListView is safe for concurrent use.
type ListView struct {
	svc service.TodoService

	mu       sync.Mutex
	filter   model.Filter
	todos    []model.Todo
	inFlight bool
	seq      uint64
	loaded   bool
}

// New returns a view over svc showing filter. Nothing is fetched until
// Refresh or BeginFetch is called.
func New(svc service.TodoService, filter model.Filter) *ListView {
	return &ListView{svc: svc, filter: filter}
}

// Filter returns the current filter.
func (v *ListView) Filter() model.Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// Todos returns a copy of the rendered set.
func (v *ListView) Todos() []model.Todo {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.todos)
}

// Loaded reports whether any fetch has been accepted yet.
func (v *ListView) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// InFlight reports whether a mutation is pending.
func (v *ListView) InFlight() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inFlight
}

// Lookup returns the rendered todo with id.
func (v *ListView) Lookup(id int64) (model.Todo, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := slices.IndexFunc(v.todos, func(t model.Todo) bool { return t.ID == id })
	if i < 0 {
		return model.Todo{}, false
	}
	return v.todos[i], true
}

// SelectFilter switches the filter without fetching. Callers follow up
// with BeginFetch; any fetch issued for the old filter becomes stale.
func (v *ListView) SelectFilter(f model.Filter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if f != v.filter {
		v.filter = f
		// invalidate fetches already on the wire for the old filter
		v.seq++
	}
}

// BeginFetch issues a ticket for the current filter.
func (v *ListView) BeginFetch() Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	return Ticket{Seq: v.seq, Filter: v.filter, Statuses: v.filter.Statuses()}
}

// Current reports whether t is still the latest ticket for the current filter.
func (v *ListView) Current(t Ticket) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return t.Seq == v.seq && t.Filter == v.filter
}

// ApplyFetch replaces the rendered set with todos if t is still the latest
// ticket. It returns the transition and whether the result was accepted.
func (v *ListView) ApplyFetch(t Ticket, todos []model.Todo) (Transition, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if t.Seq != v.seq || t.Filter != v.filter {
		log.Debug().
			Uint64("seq", t.Seq).
			Uint64("latest", v.seq).
			Msg("discarding stale fetch")
		return Transition{}, false
	}
	tr := reconcile.DiffBy(v.todos, todos, func(td model.Todo) int64 { return td.ID })
	v.todos = slices.Clone(todos)
	v.loaded = true
	return tr, true
}

// BeginMutation sets the in-flight flag. It returns false, leaving the flag
// alone, when a mutation is already pending.
func (v *ListView) BeginMutation() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.inFlight {
		return false
	}
	v.inFlight = true
	return true
}

// EndMutation clears the in-flight flag.
func (v *ListView) EndMutation() {
	v.mu.Lock()
	v.inFlight = false
	v.mu.Unlock()
}

// Fetch runs the query for t. It does not touch the rendered set; pass
// the result to ApplyFetch.
func (v *ListView) Fetch(ctx context.Context, t Ticket) ([]model.Todo, error) {
	var todos []model.Todo
	err := guard(func() error {
		var err error
		todos, err = v.svc.ListTodos(ctx, t.Statuses)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

// Refresh fetches the current filter and replaces the rendered set.
// On error the rendered set is left unchanged.
func (v *ListView) Refresh(ctx context.Context) (Transition, error) {
	t := v.BeginFetch()
	todos, err := v.Fetch(ctx, t)
	if err != nil {
		return Transition{}, err
	}
	tr, ok := v.ApplyFetch(t, todos)
	if !ok {
		return Transition{}, ErrStale
	}
	return tr, nil
}

// SetFilter switches the filter and refreshes.
func (v *ListView) SetFilter(ctx context.Context, f model.Filter) (Transition, error) {
	v.SelectFilter(f)
	return v.Refresh(ctx)
}

// Op is a change to one rendered todo.
type Op int

const (
	OpToggle Op = iota
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpToggle:
		return "toggle"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Start claims the in-flight flag for op on id and returns the call that
// performs it. The call must be run exactly once; it releases the flag when
// it returns and does not refresh. Start fails with ErrUnknownTodo for an id
// that is not rendered and ErrBusy while another mutation is pending.
func (v *ListView) Start(op Op, id int64) (func(context.Context) error, error) {
	td, ok := v.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", op, id, ErrUnknownTodo)
	}

	var call func(context.Context) error
	switch op {
	case OpToggle:
		next := td.Status.Opposite()
		call = func(ctx context.Context) error {
			if _, err := v.svc.UpdateStatus(ctx, id, next); err != nil {
				return fmt.Errorf("update status of %d: %w", id, err)
			}
			return nil
		}
	case OpDelete:
		call = func(ctx context.Context) error {
			if err := v.svc.DeleteTodo(ctx, id); err != nil {
				return fmt.Errorf("delete %d: %w", id, err)
			}
			return nil
		}
	default:
		return nil, fmt.Errorf("unknown %s", op)
	}

	if !v.BeginMutation() {
		return nil, ErrBusy
	}
	return func(ctx context.Context) error {
		defer v.EndMutation()
		return guard(func() error { return call(ctx) })
	}, nil
}

// Toggle flips the status of a rendered todo, then refreshes.
func (v *ListView) Toggle(ctx context.Context, id int64) (Transition, error) {
	return v.perform(ctx, OpToggle, id)
}

// Delete removes a rendered todo, then refreshes.
func (v *ListView) Delete(ctx context.Context, id int64) (Transition, error) {
	return v.perform(ctx, OpDelete, id)
}

// Submit creates a todo from an already validated body. It does not
// refresh.
func (v *ListView) Submit(ctx context.Context, body string) (model.Todo, error) {
	var created model.Todo
	err := guard(func() error {
		var err error
		created, err = v.svc.CreateTodo(ctx, body)
		return err
	})
	if err != nil {
		return model.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return created, nil
}

// Create submits the form's body, then refreshes. The form has its own
// submitting flag; creation does not wait on the list's in-flight flag.
func (v *ListView) Create(ctx context.Context, form *Form, body string) (model.Todo, Transition, error) {
	body, err := form.Begin(body)
	if err != nil {
		return model.Todo{}, Transition{}, err
	}
	defer form.End()

	created, err := v.Submit(ctx, body)
	if err != nil {
		return model.Todo{}, Transition{}, err
	}
	form.Reset()

	tr, err := v.Refresh(ctx)
	return created, tr, err
}

func (v *ListView) perform(ctx context.Context, op Op, id int64) (Transition, error) {
	run, err := v.Start(op, id)
	if err != nil {
		return Transition{}, err
	}
	if err := run(ctx); err != nil {
		return Transition{}, err
	}
	return v.Refresh(ctx)
}

// guard turns a panic in fn into an error so a failing call can never
// leave the in-flight flag set.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			log.Error().Err(err).Msg("recovered from panic in todo action")
		}
	}()
	return fn()
}
