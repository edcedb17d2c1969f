package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"taskdeck/internal/countdown"
	"taskdeck/internal/models"
)

type theme struct {
	bold    func(a ...interface{}) string
	faint   func(a ...interface{}) string
	ok      func(a ...interface{}) string
	err     func(a ...interface{}) string
	byTier  map[countdown.Tier]func(a ...interface{}) string
	heading func(a ...interface{}) string
}

func newTheme() theme {
	return theme{
		bold:    color.New(color.Bold).SprintFunc(),
		faint:   color.New(color.Faint).SprintFunc(),
		ok:      color.New(color.FgGreen).SprintFunc(),
		err:     color.New(color.FgRed).SprintFunc(),
		heading: color.New(color.FgCyan, color.Bold).SprintFunc(),
		byTier: map[countdown.Tier]func(a ...interface{}) string{
			countdown.TierOverdue:  color.New(color.FgRed, color.Bold).SprintFunc(),
			countdown.TierCritical: color.New(color.FgRed).SprintFunc(),
			countdown.TierWarning:  color.New(color.FgYellow).SprintFunc(),
			countdown.TierNormal:   color.New(color.FgGreen).SprintFunc(),
		},
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

const rowFormat = "%-8s  %3s  %-4s  %-16s  %-18s  %s"

func (th theme) header() string {
	return th.heading(fmt.Sprintf(rowFormat, "ID", "PRI", "DONE", "DEADLINE", "REMAINING", "TITLE"))
}

// row renders one task. Completed tasks show no countdown.
func (th theme) row(t models.Todo, now time.Time) string {
	done, remaining, paint := "[x]", "", th.faint
	if !t.IsCompleted {
		st := countdown.At(t.Deadline, now)
		done, remaining, paint = "[ ]", st.Text, th.byTier[st.Tier]
	}
	line := fmt.Sprintf(rowFormat,
		shortID(t.ID),
		fmt.Sprint(t.Priority),
		done,
		t.Deadline.Local().Format("2006-01-02 15:04"),
		remaining,
		truncate(t.Title, 48),
	)
	return paint(line)
}

func (th theme) stats(s models.Statistics) string {
	return fmt.Sprintf("%d tasks, %d completed, efficiency %.1f%%", s.Total, s.Completed, s.Efficiency)
}

func (th theme) detail(t models.Todo, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", th.bold(t.Title))
	fmt.Fprintf(&b, "  id:        %s\n", t.ID)
	if t.Description != "" {
		fmt.Fprintf(&b, "  about:     %s\n", t.Description)
	}
	fmt.Fprintf(&b, "  priority:  %d\n", t.Priority)
	fmt.Fprintf(&b, "  deadline:  %s\n", t.Deadline.Local().Format(time.RFC1123))
	if t.IsCompleted {
		fmt.Fprintf(&b, "  status:    %s\n", th.ok("completed"))
	} else {
		st := countdown.At(t.Deadline, now)
		fmt.Fprintf(&b, "  remaining: %s\n", th.byTier[st.Tier](st.Text))
	}
	fmt.Fprintf(&b, "  created:   %s\n", t.CreatedAt.Local().Format(time.RFC1123))
	return b.String()
}
