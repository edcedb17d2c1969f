package countdown

import (
	"sync"
	"time"

	"taskdeck/internal/models"
)

const DefaultInterval = time.Second

type watch struct {
	deadline time.Time
	stop     chan struct{}
	done     chan struct{}
}

// Scheduler runs one ticker per watched task. Callbacks run on the task's
// goroutine and must not call Cancel, Sync or Stop.
type Scheduler struct {
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	watches map[string]*watch
}

func NewScheduler(interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		interval: interval,
		now:      time.Now,
		watches:  make(map[string]*watch),
	}
}

// Watch starts ticking id, replacing any previous watch on it. fn is called
// once immediately and then on every tick.
func (s *Scheduler) Watch(id string, deadline time.Time, fn func(State)) {
	w := &watch{deadline: deadline, stop: make(chan struct{}), done: make(chan struct{})}
	s.mu.Lock()
	prev := s.watches[id]
	s.watches[id] = w
	s.mu.Unlock()

	if prev != nil {
		close(prev.stop)
		<-prev.done
	}
	go s.run(w, fn)
}

func (s *Scheduler) run(w *watch, fn func(State)) {
	defer close(w.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	fn(At(w.deadline, s.now()))
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			select {
			case <-w.stop:
				return
			default:
			}
			fn(At(w.deadline, s.now()))
		}
	}
}

// Cancel stops id and waits until its goroutine has exited, so fn is never
// called after Cancel returns.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	w, ok := s.watches[id]
	delete(s.watches, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	close(w.stop)
	<-w.done
}

// Sync watches every incomplete task and cancels completed or missing ones.
// A watch whose deadline is unchanged keeps running.
func (s *Scheduler) Sync(tasks []models.Todo, fn func(id string, st State)) {
	want := make(map[string]models.Todo, len(tasks))
	for _, t := range tasks {
		if !t.IsCompleted {
			want[t.ID] = t
		}
	}

	s.mu.Lock()
	var stale []string
	for id, w := range s.watches {
		t, ok := want[id]
		if !ok || !t.Deadline.Equal(w.deadline) {
			stale = append(stale, id)
			continue
		}
		delete(want, id)
	}
	s.mu.Unlock()

	for _, id := range stale {
		s.Cancel(id)
	}
	for id, t := range want {
		id := id
		s.Watch(id, t.Deadline, func(st State) { fn(id, st) })
	}
}

func (s *Scheduler) Watching(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.watches[id]
	return ok
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watches)
}

// Stop cancels every watch.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.watches))
	for id := range s.watches {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.Cancel(id)
	}
}
