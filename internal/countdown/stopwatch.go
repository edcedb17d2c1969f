package countdown

import (
	"fmt"
	"sync"
	"time"
)

// Stopwatch measures wall time across pauses. The zero value is not usable;
// use NewStopwatch.
type Stopwatch struct {
	now func() time.Time

	mu      sync.Mutex
	running bool
	paused  bool
	started time.Time
	elapsed time.Duration // accumulated before the current run
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{now: time.Now}
}

// Start begins a fresh run if the stopwatch is stopped.
func (w *Stopwatch) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return
	}
	w.running, w.paused = true, false
	w.elapsed = 0
	w.started = w.now()
}

// PauseResume toggles between paused and running.
func (w *Stopwatch) PauseResume() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.paused {
		w.started = w.now()
		w.paused = false
		return
	}
	w.elapsed += w.now().Sub(w.started)
	w.paused = true
}

// Stop halts and resets to zero.
func (w *Stopwatch) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running, w.paused = false, false
	w.elapsed = 0
}

func (w *Stopwatch) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running && !w.paused
}

func (w *Stopwatch) Paused() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paused
}

func (w *Stopwatch) Elapsed() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running && !w.paused {
		return w.elapsed + w.now().Sub(w.started)
	}
	return w.elapsed
}

func (w *Stopwatch) String() string {
	return FormatStopwatch(w.Elapsed())
}

// FormatStopwatch renders d as mm:ss.cc; minutes wrap at one hour.
func FormatStopwatch(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := int64(d / (10 * time.Millisecond))
	return fmt.Sprintf("%02d:%02d.%02d", cs/6000%60, cs/100%60, cs%100)
}
