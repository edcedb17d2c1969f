package tasklist

import (
	"context"
	"errors"
	"sync"
	"time"

	"taskdeck/internal/models"
)

type fakeAPI struct {
	mu sync.Mutex

	todos     []models.Todo
	listErr   error
	listCalls int

	createFn func(models.TodoInput) (*models.Todo, error)
	updateFn func(string, models.TodoInput) (*models.Todo, error)
	deleteFn func(string) error

	updates []models.TodoInput
}

func (f *fakeAPI) ListTodos(ctx context.Context) ([]models.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Todo, len(f.todos))
	copy(out, f.todos)
	return out, nil
}

func (f *fakeAPI) CreateTodo(ctx context.Context, in models.TodoInput) (*models.Todo, error) {
	if f.createFn == nil {
		return nil, errors.New("create not stubbed")
	}
	return f.createFn(in)
}

func (f *fakeAPI) UpdateTodo(ctx context.Context, id string, in models.TodoInput) (*models.Todo, error) {
	f.mu.Lock()
	f.updates = append(f.updates, in)
	fn := f.updateFn
	f.mu.Unlock()
	if fn == nil {
		return nil, errors.New("update not stubbed")
	}
	return fn(id, in)
}

func (f *fakeAPI) DeleteTodo(ctx context.Context, id string) error {
	if f.deleteFn == nil {
		return nil
	}
	return f.deleteFn(id)
}

func (f *fakeAPI) loads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notes)
}

var base = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func todo(id string, priority int, completed bool, deadlineDays, createdDays int) models.Todo {
	return models.Todo{
		ID:          id,
		Title:       "task " + id,
		Priority:    priority,
		Deadline:    base.AddDate(0, 0, deadlineDays),
		IsCompleted: completed,
		CreatedAt:   base.AddDate(0, 0, createdDays),
	}
}

// fixture has distinct priority, deadline and created_at values.
func fixture() []models.Todo {
	return []models.Todo{
		todo("a", 3, false, 10, -4),
		todo("b", 9, true, 2, -1),
		todo("c", 5, false, 7, -3),
		todo("d", 8, false, 1, -2),
	}
}

func ids(tasks []models.Todo) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func loaded(api *fakeAPI, notes *recorder) *Model {
	m := New(api, notes)
	if err := m.Load(context.Background()); err != nil {
		panic(err)
	}
	return m
}
