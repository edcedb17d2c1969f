package tasklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionChangeTransitions(t *testing.T) {
	c := newCompletionChange("a", false)
	assert.Equal(t, Pending, c.phase)

	assert.NoError(t, c.confirm())
	assert.Equal(t, Confirmed, c.phase)
	assert.ErrorIs(t, c.revert(), ErrSettled)
	assert.ErrorIs(t, c.confirm(), ErrSettled)
	assert.Equal(t, Confirmed, c.phase)

	r := newCompletionChange("b", true)
	assert.NoError(t, r.revert())
	assert.ErrorIs(t, r.confirm(), ErrSettled)
	assert.Equal(t, "reverted", r.phase.String())
}
