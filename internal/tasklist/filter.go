package tasklist

import (
	"fmt"
	"sort"
	"strings"

	"taskdeck/internal/models"
)

// Bucket groups tasks by priority. Buckets do not partition evenly: 5 and 8
// both belong to medium.
type Bucket string

const (
	BucketAll    Bucket = "all"
	BucketHigh   Bucket = "high"   // priority > 8
	BucketMedium Bucket = "medium" // 5 <= priority <= 8
	BucketLow    Bucket = "low"    // priority < 5
)

func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(strings.ToLower(strings.TrimSpace(s))); b {
	case "", BucketAll:
		return BucketAll, nil
	case BucketHigh, BucketMedium, BucketLow:
		return b, nil
	default:
		return "", fmt.Errorf("unknown priority bucket %q", s)
	}
}

func (b Bucket) Matches(priority int) bool {
	switch b {
	case BucketHigh:
		return priority > 8
	case BucketMedium:
		return priority >= 5 && priority <= 8
	case BucketLow:
		return priority < 5
	default:
		return true
	}
}

// Filter selects the displayed subset. The zero value shows everything.
type Filter struct {
	Search string
	Bucket Bucket
}

func (f Filter) Matches(t models.Todo) bool {
	if !f.Bucket.Matches(t.Priority) {
		return false
	}
	term := strings.TrimSpace(f.Search)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), strings.ToLower(term))
}

type SortKey string

const (
	SortCreatedAt SortKey = "created_at" // newest first, default
	SortPriority  SortKey = "priority"   // highest first
	SortDeadline  SortKey = "deadline"   // soonest first
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "", SortCreatedAt, "created", "createdat":
		return SortCreatedAt, nil
	case SortPriority, SortDeadline:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// sortTasks orders tasks in place. Ties keep their collection order.
func sortTasks(tasks []models.Todo, key SortKey) {
	var less func(a, b models.Todo) bool
	switch key {
	case SortPriority:
		less = func(a, b models.Todo) bool { return a.Priority > b.Priority }
	case SortDeadline:
		less = func(a, b models.Todo) bool { return a.Deadline.Before(b.Deadline) }
	default:
		less = func(a, b models.Todo) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[i], tasks[j]) })
}
