package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/models"
)

func newTodoServer(t *testing.T) (*testServer, string) {
	ts := newTestServer()
	h := NewTodoHandler(newStubTodos(), nil)
	g := ts.protected(nil).Group("/todos")
	g.GET("", h.GetAll)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return ts, ts.token(t, 1)
}

func TestTodoHandler_RequiresAuth(t *testing.T) {
	ts, _ := newTodoServer(t)
	w := ts.do(t, http.MethodGet, "/todos", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTodoHandler_CRUD(t *testing.T) {
	ts, tok := newTodoServer(t)

	w := ts.do(t, http.MethodGet, "/todos", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = ts.do(t, http.MethodPost, "/todos", tok, map[string]any{
		"title": "Write report", "description": "", "deadline": "2026-02-01T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, "todo-1", created["id"])
	assert.Equal(t, float64(models.DefaultPriority), created["priority"])
	assert.Equal(t, false, created["is_completed"])
	assert.Contains(t, created, "created_at")
	assert.NotContains(t, created, "user_id")

	w = ts.do(t, http.MethodGet, "/todos/todo-1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPut, "/todos/todo-1", tok, map[string]any{
		"title": "Write report", "deadline": "2026-02-01T10:00:00Z", "priority": 9, "is_completed": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.Todo](t, w)
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, 9, updated.Priority)

	w = ts.do(t, http.MethodDelete, "/todos/todo-1", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Todo deleted"}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/todos/todo-1", tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "todo not found", decode[map[string]string](t, w)["error"])
}

func TestTodoHandler_Validation(t *testing.T) {
	ts, tok := newTodoServer(t)

	w := ts.do(t, http.MethodPost, "/todos", tok, map[string]any{"title": "x", "deadline": "2026-02-01T10:00:00Z", "priority": 11})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "priority is out of range", decode[map[string]string](t, w)["error"])

	w = ts.do(t, http.MethodPost, "/todos", tok, map[string]any{"deadline": "2026-02-01T10:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title is required", decode[map[string]string](t, w)["error"])

	w = ts.do(t, http.MethodPost, "/todos", tok, map[string]any{"title": "x", "deadline": "soon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/todos", tok, "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request body", decode[map[string]string](t, w)["error"])
}

func TestTodoHandler_OtherUsersTodo(t *testing.T) {
	ts, tok := newTodoServer(t)
	w := ts.do(t, http.MethodPost, "/todos", tok, map[string]any{"title": "mine", "deadline": "2026-02-01T10:00:00Z"})
	require.Equal(t, http.StatusCreated, w.Code)

	other := ts.token(t, 2)
	w = ts.do(t, http.MethodDelete, "/todos/todo-1", other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
