// Package countdown turns deadlines into remaining-time text and urgency
// tiers, and ticks them for the tasks on screen.
package countdown

import (
	"fmt"
	"time"
)

const PastDeadline = "Past deadline"

type Tier string

const (
	TierOverdue  Tier = "overdue"
	TierCritical Tier = "critical" // up to 48h left
	TierWarning  Tier = "warning"  // up to 7 days left
	TierNormal   Tier = "normal"
)

const (
	day          = 24 * time.Hour
	criticalSpan = 2 * day
	warningSpan  = 7 * day
)

// State is what a task row shows for its deadline at one instant.
type State struct {
	Text string
	Tier Tier
}

// Remaining formats deadline-now as "{d}d {h}h {m}m {s}s", truncating to
// whole seconds.
func Remaining(deadline, now time.Time) string {
	delta := deadline.Sub(now)
	if delta < 0 {
		return PastDeadline
	}
	secs := int64(delta / time.Second)
	days := secs / 86400
	hours := secs % 86400 / 3600
	minutes := secs % 3600 / 60
	seconds := secs % 60
	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}

func TierAt(deadline, now time.Time) Tier {
	delta := deadline.Sub(now)
	switch {
	case delta < 0:
		return TierOverdue
	case delta <= criticalSpan:
		return TierCritical
	case delta <= warningSpan:
		return TierWarning
	default:
		return TierNormal
	}
}

func At(deadline, now time.Time) State {
	return State{Text: Remaining(deadline, now), Tier: TierAt(deadline, now)}
}
