package tasklist

import "errors"

// ErrSettled is returned when an optimistic change has already been
// confirmed or reverted.
var ErrSettled = errors.New("optimistic change already settled")

type Phase int

const (
	Pending Phase = iota
	Confirmed
	Reverted
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Reverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// completionChange is a tentative flip of a task's completion flag.
type completionChange struct {
	id    string
	prev  bool
	phase Phase
}

func newCompletionChange(id string, prev bool) *completionChange {
	return &completionChange{id: id, prev: prev, phase: Pending}
}

func (c *completionChange) settle(to Phase) error {
	if c.phase != Pending {
		return ErrSettled
	}
	c.phase = to
	return nil
}

func (c *completionChange) confirm() error { return c.settle(Confirmed) }
func (c *completionChange) revert() error  { return c.settle(Reverted) }
