// internal/models/task.go
package models

import (
	"errors"
	"time"
)

const (
	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = 5
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("not found")

// Todo is a user-owned unit of work. The JSON shape is the wire format shared
// by the API and the client.
type Todo struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	Deadline    time.Time  `json:"deadline"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"-"`
	RemindedAt  *time.Time `json:"-"`
}

// Statistics is derived from a todo set and never stored.
type Statistics struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Efficiency float64 `json:"efficiency"`
}

// ComputeStatistics counts todos and completion efficiency in percent.
func ComputeStatistics(todos []Todo) Statistics {
	s := Statistics{Total: len(todos)}
	for _, t := range todos {
		if t.IsCompleted {
			s.Completed++
		}
	}
	if s.Total > 0 {
		s.Efficiency = float64(s.Completed) / float64(s.Total) * 100
	}
	return s
}

// ValidPriority reports whether p is inside the accepted 1..10 range.
func ValidPriority(p int) bool {
	return p >= MinPriority && p <= MaxPriority
}

// TodoInput is the create/update request body.
type TodoInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Deadline    string `json:"deadline" binding:"required"` // RFC3339
	Priority    int    `json:"priority" binding:"omitempty,min=1,max=10"` // 0 means default
	IsCompleted bool   `json:"is_completed"`
}
