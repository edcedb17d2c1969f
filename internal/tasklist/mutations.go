package tasklist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"taskdeck/internal/client"
	"taskdeck/internal/models"
)

func wrapCreated(t models.Todo) Result { return Created{Task: t} }
func wrapUpdated(t models.Todo) Result { return Updated{Task: t} }

var errIllFormed = fmt.Errorf("%w: task breaks the task rules", client.ErrMalformedResponse)

// settle reconciles a mutation result. A reload caused by a malformed answer
// is reported once, so a failing reload stays silent.
func (m *Model) settle(ctx context.Context, op string, res Result) error {
	if _, ok := res.(RefreshNeeded); ok {
		if m.isClosed() {
			return nil
		}
		m.notify(op, errIllFormed)
		return m.load(ctx, true)
	}
	return m.Reconcile(ctx, res)
}

// Create submits a new task and prepends the confirmed copy.
func (m *Model) Create(ctx context.Context, d Draft) (*models.Todo, error) {
	in, err := d.Input()
	if err != nil {
		m.notify("create", err)
		return nil, err
	}
	if m.isClosed() {
		return nil, ErrClosed
	}

	t, err := m.api.CreateTodo(ctx, in)
	res, err := resultFor(t, err, wrapCreated)
	if err != nil {
		log.Printf("[tasklist][create][err] %v", err)
		m.notify("create", err)
		return nil, err
	}
	if err := m.settle(ctx, "create", res); err != nil {
		return nil, err
	}
	if _, ok := res.(Created); !ok {
		return nil, nil
	}
	return t, nil
}

// Save submits an edited task and replaces the local copy with the answer.
func (m *Model) Save(ctx context.Context, id string, d Draft) (*models.Todo, error) {
	in, err := d.Input()
	if err != nil {
		m.notify("update", err)
		return nil, err
	}
	if _, err := m.acquire(id); err != nil {
		if errors.Is(err, ErrUnknownTask) {
			m.notify("update", err)
		}
		return nil, err
	}

	t, err := m.api.UpdateTodo(ctx, id, in)
	m.update(func() bool {
		m.releaseLocked(id)
		return true
	})
	res, err := resultFor(t, err, wrapUpdated)
	if err != nil {
		log.Printf("[tasklist][update][err] id=%s: %v", id, err)
		m.notify("update", err)
		return nil, err
	}
	if err := m.settle(ctx, "update", res); err != nil {
		return nil, err
	}
	if _, ok := res.(Updated); !ok {
		return nil, nil
	}
	return t, nil
}

// Toggle flips the completion flag locally, then confirms it with the
// service. A rejected update restores the previous flag.
func (m *Model) Toggle(ctx context.Context, id string) error {
	current, err := m.acquire(id)
	if err != nil {
		if errors.Is(err, ErrUnknownTask) {
			m.notify("update", err)
		}
		return err
	}

	change := newCompletionChange(id, current.IsCompleted)
	var in models.TodoInput
	applied := m.update(func() bool {
		t := m.tasks[id]
		t.IsCompleted = !change.prev
		m.tasks[id] = t
		in = models.TodoInput{
			Title:       t.Title,
			Description: t.Description,
			Deadline:    t.Deadline.UTC().Format(time.RFC3339),
			Priority:    t.Priority,
			IsCompleted: t.IsCompleted,
		}
		return true
	})
	if !applied {
		return ErrClosed
	}

	t, err := m.api.UpdateTodo(ctx, id, in)
	res, err := resultFor(t, err, wrapUpdated)

	m.update(func() bool {
		m.releaseLocked(id)
		if _, ok := res.(Updated); ok {
			return change.confirm() == nil
		}
		if change.revert() != nil {
			return false
		}
		if t, ok := m.tasks[id]; ok {
			t.IsCompleted = change.prev
			m.tasks[id] = t
		}
		return true
	})

	if err != nil {
		log.Printf("[tasklist][toggle][err] id=%s: %v", id, err)
		m.notify("update", err)
		return err
	}
	return m.settle(ctx, "update", res)
}

// Delete removes a task on the service, then locally.
func (m *Model) Delete(ctx context.Context, id string) error {
	if _, err := m.acquire(id); err != nil {
		if errors.Is(err, ErrUnknownTask) {
			m.notify("delete", err)
		}
		return err
	}

	err := m.api.DeleteTodo(ctx, id)
	m.update(func() bool {
		m.releaseLocked(id)
		return true
	})
	if err != nil {
		log.Printf("[tasklist][delete][err] id=%s: %v", id, err)
		m.notify("delete", err)
		return err
	}
	return m.Reconcile(ctx, Deleted{ID: id})
}
