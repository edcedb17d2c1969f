package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"taskdeck/internal/countdown"
	"taskdeck/internal/models"
	"taskdeck/internal/tasklist"
)

const clearScreen = "\033[H\033[2J"

// cmdWatch redraws the incomplete tasks with live countdowns until ctx ends.
// The list is refetched every -refresh so completions elsewhere drop out.
func (c *CLI) cmdWatch(ctx context.Context, args []string) error {
	fs := c.flags("watch")
	interval := fs.Duration("interval", countdown.DefaultInterval, "countdown tick")
	refresh := fs.Duration("refresh", time.Minute, "list refetch period")
	once := fs.Bool("once", false, "draw a single frame and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := c.model(ctx)
	if err != nil {
		return err
	}
	defer m.Close()
	m.SetSort(tasklist.SortDeadline)

	var (
		mu     sync.Mutex
		states = map[string]countdown.State{}
	)
	sched := countdown.NewScheduler(*interval)
	defer sched.Stop()
	resync := func() {
		sched.Sync(m.Visible(), func(id string, st countdown.State) {
			mu.Lock()
			states[id] = st
			mu.Unlock()
		})
		pruneStates(&mu, states, sched.Watching)
	}
	resync()

	draw := func() {
		mu.Lock()
		defer mu.Unlock()
		var b strings.Builder
		if !*once {
			b.WriteString(clearScreen)
		}
		now := c.now()
		pending := 0
		for _, t := range m.Visible() {
			if t.IsCompleted {
				continue
			}
			pending++
			st, ok := states[t.ID]
			if !ok {
				st = countdown.At(t.Deadline, now)
			}
			fmt.Fprintf(&b, "%s  %s\n", c.theme.byTier[st.Tier](fmt.Sprintf("%-18s", st.Text)), watchTitle(t))
		}
		if pending == 0 {
			b.WriteString("Nothing pending.\n")
		}
		fmt.Fprintf(&b, "%s\n", c.theme.faint(c.theme.stats(m.Stats())))
		fmt.Fprint(c.cfg.Out, b.String())
	}

	draw()
	if *once {
		return nil
	}

	tick := time.NewTicker(*interval)
	defer tick.Stop()
	reload := time.NewTicker(*refresh)
	defer reload.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reload.C:
			if err := m.Load(ctx); err == nil {
				resync()
			}
		case <-tick.C:
			draw()
		}
	}
}

// pruneStates drops the last state of tasks that are no longer watched.
func pruneStates(mu *sync.Mutex, states map[string]countdown.State, watching func(string) bool) {
	mu.Lock()
	defer mu.Unlock()
	for id := range states {
		if !watching(id) {
			delete(states, id)
		}
	}
}

func watchTitle(t models.Todo) string {
	return fmt.Sprintf("%-8s p%-2d %s", shortID(t.ID), t.Priority, truncate(t.Title, 60))
}

// cmdStopwatch: Enter pauses or resumes, "s" stops and resets, "q" quits.
func (c *CLI) cmdStopwatch(ctx context.Context) error {
	sw := countdown.NewStopwatch()
	sw.Start()
	c.printf("stopwatch running: Enter pause/resume, s + Enter stop/reset, q + Enter quit\n")

	lines := make(chan string)
	go func() {
		defer close(lines)
		for {
			line, err := c.in.ReadString('\n')
			if line != "" || err == nil {
				select {
				case lines <- strings.TrimSpace(line):
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				return
			}
		}
	}()

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			c.printf("\n%s\n", sw)
			return nil
		case line, ok := <-lines:
			switch {
			case !ok || line == "q":
				c.printf("\r%s\n", sw)
				return nil
			case line == "s":
				sw.Stop()
				c.printf("\rstopped; Enter to start again\n")
			case !sw.Running() && !sw.Paused():
				sw.Start()
			default:
				sw.PauseResume()
			}
		case <-tick.C:
			status := ""
			if sw.Paused() {
				status = " (paused)"
			}
			c.printf("\r%s%s   ", sw, status)
		}
	}
}
