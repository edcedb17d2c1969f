package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemaining(t *testing.T) {
	deadline := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "1d 1h 1m 1s", Remaining(deadline, deadline.Add(-90061000*time.Millisecond)))
	assert.Equal(t, "0d 0h 0m 0s", Remaining(deadline, deadline))
	assert.Equal(t, "0d 0h 0m 0s", Remaining(deadline, deadline.Add(-999*time.Millisecond)))
	assert.Equal(t, "10d 23h 59m 59s", Remaining(deadline, deadline.Add(-(11*day - time.Second))))
	assert.Equal(t, PastDeadline, Remaining(deadline, deadline.Add(time.Millisecond)))
}

func TestTierAt(t *testing.T) {
	deadline := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		left time.Duration
		want Tier
	}{
		{-time.Second, TierOverdue},
		{0, TierCritical},
		{48 * time.Hour, TierCritical},
		{48*time.Hour + time.Second, TierWarning},
		{7 * day, TierWarning},
		{7*day + time.Second, TierNormal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierAt(deadline, deadline.Add(-tc.left)), "left=%s", tc.left)
	}
}

func TestAt(t *testing.T) {
	deadline := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, State{Text: PastDeadline, Tier: TierOverdue}, At(deadline, deadline.Add(time.Hour)))
	assert.Equal(t, State{Text: "3d 0h 0m 0s", Tier: TierWarning}, At(deadline, deadline.Add(-3*day)))
}
