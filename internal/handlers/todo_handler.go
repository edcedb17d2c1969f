package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/middleware"
	"taskdeck/internal/models"
	"taskdeck/internal/services"
)

type TodoHandler struct {
	service  services.TodoService
	notifier *services.TodoNotifier
}

// NewTodoHandler wires todo endpoints; notifier may be nil.
func NewTodoHandler(service services.TodoService, notifier *services.TodoNotifier) *TodoHandler {
	return &TodoHandler{service: service, notifier: notifier}
}

func (h *TodoHandler) fail(c *gin.Context, op, id string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTodo):
		log.Printf("[todo][%s][400] id=%s: %v", op, id, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		log.Printf("[todo][%s][404] id=%s", op, id)
		c.JSON(http.StatusNotFound, gin.H{"error": "todo not found"})
	default:
		log.Printf("[todo][%s][err] id=%s: %v", op, id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + op + " todo"})
	}
}

// @Summary  List todos
// @Tags     Todos
// @Produce  json
// @Security BearerAuth
// @Success  200  {array}  models.Todo
// @Router   /todos [get]
func (h *TodoHandler) GetAll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	todos, err := h.service.GetAll(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "list", "", err)
		return
	}
	log.Printf("[todo][list][ok] userID=%d count=%d", userID, len(todos))
	c.JSON(http.StatusOK, todos)
}

// @Summary  Create todo
// @Tags     Todos
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body  body      models.TodoInput  true  "Todo"
// @Success  201   {object}  models.Todo
// @Failure  400   {object}  map[string]string
// @Router   /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var in models.TodoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Printf("[todo][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err, "")})
		return
	}

	todo, err := h.service.Create(c.Request.Context(), userID, in)
	if err != nil {
		h.fail(c, "create", "", err)
		return
	}
	middleware.TrackTodoOperation("create")
	log.Printf("[todo][create][ok] id=%s userID=%d title=%q", todo.ID, userID, todo.Title)
	c.JSON(http.StatusCreated, todo)

	h.notifier.Notify(c.Request.Context(), "📌 New task", todo)
}

// @Summary  Get todo
// @Tags     Todos
// @Produce  json
// @Security BearerAuth
// @Param    id   path      string  true  "Todo ID"
// @Success  200  {object}  models.Todo
// @Failure  404  {object}  map[string]string
// @Router   /todos/{id} [get]
func (h *TodoHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	todo, err := h.service.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, "get", id, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// @Summary  Update todo
// @Tags     Todos
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id    path      string            true  "Todo ID"
// @Param    body  body      models.TodoInput  true  "Todo"
// @Success  200   {object}  models.Todo
// @Failure  400   {object}  map[string]string
// @Failure  404   {object}  map[string]string
// @Router   /todos/{id} [put]
func (h *TodoHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	var in models.TodoInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Printf("[todo][update][bind][err] id=%s: %v", id, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err, "")})
		return
	}

	todo, err := h.service.Update(c.Request.Context(), userID, id, in)
	if err != nil {
		h.fail(c, "update", id, err)
		return
	}
	middleware.TrackTodoOperation("update")
	log.Printf("[todo][update][ok] id=%s completed=%v", id, todo.IsCompleted)
	c.JSON(http.StatusOK, todo)

	prefix := "✏️ Task updated"
	if todo.IsCompleted {
		prefix = "✅ Task completed"
	}
	h.notifier.Notify(c.Request.Context(), prefix, todo)
}

// @Summary  Delete todo
// @Tags     Todos
// @Produce  json
// @Security BearerAuth
// @Param    id   path      string  true  "Todo ID"
// @Success  200  {object}  map[string]string
// @Failure  404  {object}  map[string]string
// @Router   /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	deleted, err := h.service.Delete(c.Request.Context(), userID, id)
	if err != nil {
		h.fail(c, "delete", id, err)
		return
	}
	middleware.TrackTodoOperation("delete")
	log.Printf("[todo][delete][ok] id=%s", id)
	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted"})

	h.notifier.NotifyDeleted(c.Request.Context(), deleted)
}
