package tasklist

import "taskdeck/internal/models"

// Result is what a completed mutation tells the view-model to do. It is one
// of Created, Updated, Deleted or RefreshNeeded.
type Result interface {
	isResult()
}

type Created struct{ Task models.Todo }

type Updated struct{ Task models.Todo }

type Deleted struct{ ID string }

// RefreshNeeded discards local state in favour of a full reload.
type RefreshNeeded struct{}

func (Created) isResult()       {}
func (Updated) isResult()       {}
func (Deleted) isResult()       {}
func (RefreshNeeded) isResult() {}
