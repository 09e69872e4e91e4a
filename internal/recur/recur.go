// Package recur implements the recurrence expansion pass of spec.md §4.7:
// synthesizing pending child instances of a recurring parent task up to a
// configured horizon.
package recur

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/taskwarrior-go/task/internal/date"
	"github.com/taskwarrior-go/task/internal/task"
)

// Existing reports whether a child with parent uuid p and the given mask
// index already exists, so Expand doesn't duplicate work across runs.
type Existing func(parentUUID string, imask int) bool

// Expand synthesizes pending children of a recurring parent task up to
// now + limit*recur, skipping any index that already has a child or whose
// mask slot is already consumed, and honoring an "until" hard stop
// (recovered from original_source/, see SPEC_FULL.md §4 item 8).
func Expand(parent *task.Task, now time.Time, limit int, exists Existing) ([]*task.Task, error) {
	if parent.Status() != task.StatusRecurring {
		return nil, nil
	}
	recurStr := parent.Get("recur")
	dueStr := parent.Get("due")
	if recurStr == "" || dueStr == "" {
		return nil, fmt.Errorf("recur: parent %s has recur without due", parent.UUID())
	}
	d, err := date.ParseDuration(recurStr)
	if err != nil {
		return nil, fmt.Errorf("recur: parsing recur on %s: %w", parent.UUID(), err)
	}
	due, err := epochTime(dueStr)
	if err != nil {
		return nil, fmt.Errorf("recur: parsing due on %s: %w", parent.UUID(), err)
	}

	horizon := now
	for i := 0; i < limit; i++ {
		horizon = d.AddTo(horizon)
	}

	var until time.Time
	hasUntil := false
	if u := parent.Get("until"); u != "" {
		if t, err := epochTime(u); err == nil {
			until = t
			hasUntil = true
		}
	}

	mask := []byte(parent.Get("mask"))
	var children []*task.Task

	for i := 0; ; i++ {
		childDue := nthOccurrence(due, d, i)
		if childDue.After(horizon) {
			break
		}
		if hasUntil && childDue.After(until) {
			break
		}
		mask = ensureMaskLen(mask, i+1)
		if mask[i] != '-' {
			continue
		}
		if exists(parent.UUID(), i) {
			continue
		}
		child := task.FromAttrs(cloneAttrsForChild(parent.Attrs()))
		child.Set("uuid", uuid.NewString())
		child.Set("status", string(task.StatusPending))
		child.Set("due", formatEpoch(childDue))
		child.Set("parent", parent.UUID())
		child.Set("imask", fmt.Sprintf("%d", i))
		mask[i] = '-'
		children = append(children, child)
	}
	parent.Set("mask", string(mask))
	return children, nil
}

func nthOccurrence(due time.Time, d date.Duration, i int) time.Time {
	t := due
	for j := 0; j < i; j++ {
		t = d.AddTo(t)
	}
	return t
}

func ensureMaskLen(mask []byte, n int) []byte {
	for len(mask) < n {
		mask = append(mask, '-')
	}
	return mask
}

func cloneAttrsForChild(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		switch k {
		case "uuid", "status", "due", "parent", "imask", "mask", "entry", "start", "end":
			continue
		default:
			out[k] = v
		}
	}
	return out
}

func epochTime(s string) (time.Time, error) {
	epoch, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(epoch, 0).UTC(), nil
}

func formatEpoch(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
