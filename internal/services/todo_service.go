// internal/services/todo_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskdeck/internal/models"
	"taskdeck/internal/repositories"
)

// ErrInvalidTodo wraps every input problem the handler should answer with 400.
var ErrInvalidTodo = errors.New("invalid todo")

// TodoService defines the todo business logic. Every call is scoped to the
// owning user.
type TodoService interface {
	Create(ctx context.Context, userID int64, in models.TodoInput) (*models.Todo, error)
	GetByID(ctx context.Context, userID int64, id string) (*models.Todo, error)
	GetAll(ctx context.Context, userID int64) ([]models.Todo, error)
	Update(ctx context.Context, userID int64, id string, in models.TodoInput) (*models.Todo, error)
	// Delete returns the removed todo so callers can notify about it.
	Delete(ctx context.Context, userID int64, id string) (*models.Todo, error)
	Statistics(ctx context.Context, userID int64) (models.Statistics, error)
}

type todoService struct {
	repo  repositories.TodoRepository
	now   func() time.Time
	newID func() string
}

func NewTodoService(repo repositories.TodoRepository) TodoService {
	return &todoService{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

func parseTodoInput(in models.TodoInput) (title string, deadline time.Time, err error) {
	title = strings.TrimSpace(in.Title)
	if title == "" {
		return "", time.Time{}, fmt.Errorf("%w: title is required", ErrInvalidTodo)
	}
	if in.Priority != 0 && !models.ValidPriority(in.Priority) {
		return "", time.Time{}, fmt.Errorf("%w: priority must be between %d and %d",
			ErrInvalidTodo, models.MinPriority, models.MaxPriority)
	}
	deadline, err = time.Parse(time.RFC3339, strings.TrimSpace(in.Deadline))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: invalid deadline (RFC3339)", ErrInvalidTodo)
	}
	return title, deadline.UTC(), nil
}

func (s *todoService) Create(ctx context.Context, userID int64, in models.TodoInput) (*models.Todo, error) {
	title, deadline, err := parseTodoInput(in)
	if err != nil {
		return nil, err
	}
	priority := in.Priority
	if priority == 0 {
		priority = models.DefaultPriority
	}
	now := s.now().UTC()
	todo := &models.Todo{
		ID:          s.newID(),
		UserID:      userID,
		Title:       title,
		Description: in.Description,
		Priority:    priority,
		Deadline:    deadline,
		IsCompleted: in.IsCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Store(ctx, todo); err != nil {
		return nil, fmt.Errorf("store todo: %w", err)
	}
	return todo, nil
}

func (s *todoService) GetByID(ctx context.Context, userID int64, id string) (*models.Todo, error) {
	return s.repo.FindByID(ctx, userID, id)
}

func (s *todoService) GetAll(ctx context.Context, userID int64) ([]models.Todo, error) {
	return s.repo.FindAll(ctx, userID)
}

func (s *todoService) Update(ctx context.Context, userID int64, id string, in models.TodoInput) (*models.Todo, error) {
	title, deadline, err := parseTodoInput(in)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	existing.Title = title
	existing.Description = in.Description
	if in.Priority != 0 {
		existing.Priority = in.Priority
	}
	existing.Deadline = deadline
	existing.IsCompleted = in.IsCompleted
	existing.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *todoService) Delete(ctx context.Context, userID int64, id string) (*models.Todo, error) {
	existing, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *todoService) Statistics(ctx context.Context, userID int64) (models.Statistics, error) {
	return s.repo.Statistics(ctx, userID)
}
