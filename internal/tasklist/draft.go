package tasklist

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"taskdeck/internal/models"
)

var ErrInvalidDraft = errors.New("invalid task")

var draftValidator = validator.New()

// Draft is the editable form of a task before it is submitted.
type Draft struct {
	Title       string `validate:"required"`
	Description string
	Priority    int       `validate:"min=1,max=10"`
	Deadline    time.Time `validate:"required"`
	IsCompleted bool
}

// NewDraft returns the create form defaults.
func NewDraft() Draft {
	return Draft{Priority: models.DefaultPriority}
}

// DraftFrom prefills an edit form from an existing task.
func DraftFrom(t models.Todo) Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Deadline:    t.Deadline,
		IsCompleted: t.IsCompleted,
	}
}

func (d Draft) Validate() error {
	d.Title = strings.TrimSpace(d.Title)
	err := draftValidator.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	switch fe := verrs[0]; fe.Field() {
	case "Title":
		return fmt.Errorf("%w: title is required", ErrInvalidDraft)
	case "Priority":
		return fmt.Errorf("%w: priority must be between %d and %d", ErrInvalidDraft, models.MinPriority, models.MaxPriority)
	case "Deadline":
		return fmt.Errorf("%w: deadline is required", ErrInvalidDraft)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDraft, fe.Error())
	}
}

// Input validates the draft and converts it to the request body.
func (d Draft) Input() (models.TodoInput, error) {
	if err := d.Validate(); err != nil {
		return models.TodoInput{}, err
	}
	return models.TodoInput{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Deadline:    d.Deadline.UTC().Format(time.RFC3339),
		Priority:    d.Priority,
		IsCompleted: d.IsCompleted,
	}, nil
}
