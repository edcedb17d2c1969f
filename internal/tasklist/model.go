// Package tasklist is the task list view-model: the single owner of the
// displayed task set, its filter and sort, and the derived statistics.
package tasklist

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"taskdeck/internal/client"
	"taskdeck/internal/models"
)

var (
	// ErrBusy is returned when a mutation on the same task is still in flight.
	ErrBusy = errors.New("task is busy")
	// ErrClosed is returned by operations started after Close.
	ErrClosed = errors.New("task list closed")
	// ErrUnknownTask is returned for ids that are not in the collection.
	ErrUnknownTask = errors.New("unknown task")
)

// API is the subset of the REST client the view-model calls.
type API interface {
	ListTodos(ctx context.Context) ([]models.Todo, error)
	CreateTodo(ctx context.Context, in models.TodoInput) (*models.Todo, error)
	UpdateTodo(ctx context.Context, id string, in models.TodoInput) (*models.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

// Model is safe for concurrent use. Network calls run without the lock held;
// their completions are reconciled in arrival order.
type Model struct {
	api      API
	notifier Notifier

	mu       sync.Mutex
	order    []string // display order before sorting, newest insert first
	tasks    map[string]models.Todo
	busy     map[string]struct{}
	filter   Filter
	sortKey  SortKey
	stats    models.Statistics
	loadGen  uint64
	closed   bool
	onChange func()
}

// New builds an empty view-model. notifier may be nil.
func New(api API, notifier Notifier) *Model {
	return &Model{
		api:      api,
		notifier: notifier,
		tasks:    make(map[string]models.Todo),
		busy:     make(map[string]struct{}),
		filter:   Filter{Bucket: BucketAll},
		sortKey:  SortCreatedAt,
	}
}

// OnChange sets the listener fired after every collection, filter or busy
// change. It is called without the lock held.
func (m *Model) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// update runs fn under the lock unless the model is closed, recomputes
// statistics when fn reports a change and then fires the listener.
func (m *Model) update(fn func() bool) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	changed := fn()
	if changed {
		m.stats = models.ComputeStatistics(m.listLocked())
	}
	listener := m.onChange
	m.mu.Unlock()

	if changed && listener != nil {
		listener()
	}
	return true
}

func (m *Model) notify(op string, err error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed || m.notifier == nil {
		return
	}
	m.notifier.Notify(Notification{Op: op, Err: err})
}

func (m *Model) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// ===== collection helpers; callers hold mu =====

func (m *Model) listLocked() []models.Todo {
	out := make([]models.Todo, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.tasks[id])
	}
	return out
}

func (m *Model) replaceAllLocked(todos []models.Todo) {
	m.order = m.order[:0]
	m.tasks = make(map[string]models.Todo, len(todos))
	for _, t := range todos {
		if t.ID == "" {
			continue
		}
		if _, dup := m.tasks[t.ID]; !dup {
			m.order = append(m.order, t.ID)
		}
		m.tasks[t.ID] = t
	}
}

func (m *Model) prependLocked(t models.Todo) {
	if _, ok := m.tasks[t.ID]; !ok {
		m.order = append([]string{t.ID}, m.order...)
	}
	m.tasks[t.ID] = t
}

func (m *Model) removeLocked(id string) {
	if _, ok := m.tasks[id]; !ok {
		return
	}
	delete(m.tasks, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// ===== reads =====

// Visible returns the filtered and sorted tasks.
func (m *Model) Visible() []models.Todo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Todo, 0, len(m.order))
	for _, id := range m.order {
		if t := m.tasks[id]; m.filter.Matches(t) {
			out = append(out, t)
		}
	}
	sortTasks(out, m.sortKey)
	return out
}

// Stats is the statistics of the whole collection, ignoring the filter.
func (m *Model) Stats() models.Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Get returns the task with id.
func (m *Model) Get(id string) (models.Todo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	return t, ok
}

// Len counts the collection, ignoring the filter.
func (m *Model) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// Busy reports whether a mutation on id is in flight.
func (m *Model) Busy(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.busy[id]
	return ok
}

// Filter returns the current filter.
func (m *Model) Filter() Filter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

// SortKey returns the current sort order.
func (m *Model) SortKey() SortKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortKey
}

// ===== display settings =====

// SetFilter changes the displayed subset; an empty bucket means all.
func (m *Model) SetFilter(f Filter) {
	if f.Bucket == "" {
		f.Bucket = BucketAll
	}
	m.update(func() bool {
		m.filter = f
		return true
	})
}

// SetSort changes the displayed order; an empty key means created_at.
func (m *Model) SetSort(key SortKey) {
	if key == "" {
		key = SortCreatedAt
	}
	m.update(func() bool {
		m.sortKey = key
		return true
	})
}

// ===== lifecycle =====

// Load replaces the collection with a full fetch. On failure the collection
// is emptied. A response for a load superseded by a newer one is dropped.
func (m *Model) Load(ctx context.Context) error {
	return m.load(ctx, false)
}

// load is Load; quiet skips the failure notification when the caller has
// already reported the problem that caused the reload.
func (m *Model) load(ctx context.Context, quiet bool) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.loadGen++
	gen := m.loadGen
	m.mu.Unlock()

	todos, err := m.api.ListTodos(ctx)

	stale := false
	applied := m.update(func() bool {
		if gen != m.loadGen {
			stale = true
			return false
		}
		if err != nil {
			m.replaceAllLocked(nil)
		} else {
			m.replaceAllLocked(todos)
		}
		return true
	})
	if !applied || stale {
		return nil
	}
	if err != nil {
		log.Printf("[tasklist][load][err] %v", err)
		if !quiet {
			m.notify("load", err)
		}
		return err
	}
	return nil
}

// Close discards the collection. Responses that arrive later are ignored.
func (m *Model) Close() {
	m.mu.Lock()
	m.closed = true
	m.loadGen++
	m.order = nil
	m.tasks = make(map[string]models.Todo)
	m.busy = make(map[string]struct{})
	m.stats = models.Statistics{}
	m.mu.Unlock()
}

// ===== reconciliation =====

// Reconcile applies a confirmed mutation result. Created or Updated tasks
// that are not well formed are not trusted and trigger a reload.
func (m *Model) Reconcile(ctx context.Context, r Result) error {
	if m.isClosed() {
		return nil
	}
	switch r := r.(type) {
	case Created:
		if !wellFormed(r.Task) {
			return m.Load(ctx)
		}
		m.update(func() bool {
			m.prependLocked(r.Task)
			return true
		})
	case Updated:
		if !wellFormed(r.Task) {
			return m.Load(ctx)
		}
		m.update(func() bool {
			if _, ok := m.tasks[r.Task.ID]; ok {
				m.tasks[r.Task.ID] = r.Task
			}
			return true
		})
	case Deleted:
		m.update(func() bool {
			m.removeLocked(r.ID)
			return true
		})
	case RefreshNeeded, nil:
		return m.Load(ctx)
	}
	return nil
}

func (m *Model) ApplyCreated(ctx context.Context, t models.Todo) error {
	return m.Reconcile(ctx, Created{Task: t})
}

func (m *Model) ApplyUpdated(ctx context.Context, t models.Todo) error {
	return m.Reconcile(ctx, Updated{Task: t})
}

func (m *Model) ApplyDeleted(ctx context.Context, id string) error {
	return m.Reconcile(ctx, Deleted{ID: id})
}

// wellFormed reports whether a task from the service satisfies the task
// rules: id and title present, priority in range, deadline set.
func wellFormed(t models.Todo) bool {
	return t.ID != "" &&
		strings.TrimSpace(t.Title) != "" &&
		models.ValidPriority(t.Priority) &&
		!t.Deadline.IsZero()
}

// resultFor maps an API answer to a Result. Malformed answers become
// RefreshNeeded.
func resultFor(t *models.Todo, err error, wrap func(models.Todo) Result) (Result, error) {
	switch {
	case err == nil && t != nil && wellFormed(*t):
		return wrap(*t), nil
	case err == nil, errors.Is(err, client.ErrMalformedResponse):
		return RefreshNeeded{}, nil
	default:
		return nil, err
	}
}

// ===== busy flags =====

func (m *Model) acquire(id string) (models.Todo, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return models.Todo{}, ErrClosed
	}
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return models.Todo{}, ErrUnknownTask
	}
	if _, busy := m.busy[id]; busy {
		m.mu.Unlock()
		return models.Todo{}, ErrBusy
	}
	m.busy[id] = struct{}{}
	listener := m.onChange
	m.mu.Unlock()

	if listener != nil {
		listener()
	}
	return t, nil
}

func (m *Model) releaseLocked(id string) {
	delete(m.busy, id)
}
