package tasklist

import (
	"errors"

	"taskdeck/internal/client"
)

// Notification is a dismissible error message for the user.
type Notification struct {
	Op  string
	Err error
}

func (n Notification) Message() string {
	prefix := "Failed to " + n.Op + " task"
	if n.Op == "load" {
		prefix = "Failed to load tasks"
	}
	var apiErr *client.APIError
	switch {
	case errors.As(n.Err, &apiErr):
		return prefix + ": " + apiErr.Message
	case errors.Is(n.Err, client.ErrMalformedResponse):
		return prefix + ": unexpected response, reloading"
	case n.Err != nil:
		return prefix + ": " + n.Err.Error()
	default:
		return prefix
	}
}

type Notifier interface {
	Notify(Notification)
}

type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }
