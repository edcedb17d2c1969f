package countdown

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/models"
)

func TestWatch_TicksUntilCancel(t *testing.T) {
	s := NewScheduler(5 * time.Millisecond)
	var calls atomic.Int32
	s.Watch("a", time.Now().Add(time.Hour), func(st State) {
		calls.Add(1)
		assert.Equal(t, TierCritical, st.Tier)
	})

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	s.Cancel("a")
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
	assert.False(t, s.Watching("a"))
}

func TestWatch_ReplacesPrevious(t *testing.T) {
	s := NewScheduler(5 * time.Millisecond)
	defer s.Stop()

	var old atomic.Int32
	s.Watch("a", time.Now().Add(time.Hour), func(State) { old.Add(1) })
	s.Watch("a", time.Now().Add(time.Hour), func(State) {})
	frozen := old.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frozen, old.Load())
	assert.Equal(t, 1, s.Len())
}

func TestSync(t *testing.T) {
	s := NewScheduler(time.Hour)
	defer s.Stop()

	deadline := time.Now().Add(time.Hour)
	var mu sync.Mutex
	seen := map[string]int{}
	fn := func(id string, st State) {
		mu.Lock()
		seen[id]++
		mu.Unlock()
	}

	s.Sync([]models.Todo{
		{ID: "a", Deadline: deadline},
		{ID: "b", Deadline: deadline, IsCompleted: true},
		{ID: "c", Deadline: deadline},
	}, fn)
	assert.True(t, s.Watching("a"))
	assert.False(t, s.Watching("b"))
	assert.True(t, s.Watching("c"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen["a"] == 1 && seen["c"] == 1
	}, time.Second, time.Millisecond)

	s.Sync([]models.Todo{
		{ID: "a", Deadline: deadline},
		{ID: "c", Deadline: deadline, IsCompleted: true},
	}, fn)
	assert.True(t, s.Watching("a"))
	assert.False(t, s.Watching("c"))
	assert.Equal(t, 1, s.Len())

	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, seen["a"], "unchanged watch is not restarted")
	mu.Unlock()
}

func TestStop(t *testing.T) {
	s := NewScheduler(time.Millisecond)
	for _, id := range []string{"a", "b", "c"} {
		s.Watch(id, time.Now(), func(State) {})
	}
	s.Stop()
	assert.Equal(t, 0, s.Len())
	s.Cancel("missing")
}
