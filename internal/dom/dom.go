// Package dom implements the read-only attribute namespace resolution
// used inside filter expressions (spec.md §4.4): plain attribute names on
// the current task, id/uuid-qualified cross references resolved through
// the store, rc.<name> configuration lookups, and a small set of fixed
// runtime references.
package dom

import (
	"strconv"
	"strings"

	"github.com/taskwarrior-go/task/internal/task"
)

// TaskLookup resolves an id or uuid to a task, used for the
// "<id>.<attr>" / "<uuid>.<attr>" cross-reference form. A nil return
// means "no such task" — DOM resolution never errors, it just yields
// empty.
type TaskLookup func(ref string) *task.Task

// ConfigLookup resolves "rc.<name>" references.
type ConfigLookup func(name string) (string, bool)

// Runtime is the fixed set of runtime references available without a
// task context, e.g. "now".
type Runtime struct {
	Now func() string // epoch seconds as a string
}

// Resolver ties the three lookup sources together for a single
// evaluation of one expression against one task.
type Resolver struct {
	Current *task.Task
	Lookup  TaskLookup
	Config  ConfigLookup
	Runtime Runtime
	// IsBlocking reports whether some other task depends on the given
	// uuid and is itself still open. The DOM layer cannot compute this
	// from a point lookup alone, so the store supplies it.
	IsBlocking func(uuid string) bool
}

// Resolve returns the string value of a DOM reference, or "" if it
// cannot be resolved — per spec.md §4.4 "a missing attribute resolves to
// the empty value (not an error)".
func (r Resolver) Resolve(ref string) string {
	if ref == "now" && r.Runtime.Now != nil {
		return r.Runtime.Now()
	}
	if strings.HasPrefix(ref, "rc.") {
		if r.Config == nil {
			return ""
		}
		if v, ok := r.Config(strings.TrimPrefix(ref, "rc.")); ok {
			return v
		}
		return ""
	}
	if dot := strings.IndexByte(ref, '.'); dot >= 0 {
		qualifier, attr := ref[:dot], ref[dot+1:]
		if looksLikeReference(qualifier) {
			if r.Lookup == nil {
				return ""
			}
			t := r.Lookup(qualifier)
			if t == nil {
				return ""
			}
			return virtualOrAttr(t, attr, r)
		}
	}
	if r.Current == nil {
		return ""
	}
	return virtualOrAttr(r.Current, ref, r)
}

func looksLikeReference(s string) bool {
	if s == "" {
		return false
	}
	if _, err := strconv.Atoi(s); err == nil {
		return true
	}
	// partial or full uuid: at least 8 hex chars, dashes allowed
	if len(s) >= 8 {
		for _, c := range s {
			if !isHex(c) && c != '-' {
				return false
			}
		}
		return true
	}
	return false
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// virtualOrAttr resolves the numeric id (stored on Task, not in the
// attribute bag) and spec-defined virtual attributes (is_blocked,
// is_blocking) before falling back to the plain attribute bag.
func virtualOrAttr(t *task.Task, attr string, r Resolver) string {
	switch attr {
	case "id":
		return strconv.Itoa(t.Id())
	case "is_blocked":
		if IsBlocked(t, r.Lookup) {
			return "1"
		}
		return "0"
	case "is_blocking":
		if r.IsBlocking != nil && r.IsBlocking(t.UUID()) {
			return "1"
		}
		return "0"
	default:
		return t.Get(attr)
	}
}

// IsBlocked reports whether any dependency of t is still pending,
// waiting, or recurring (spec.md §3 invariant).
func IsBlocked(t *task.Task, lookup TaskLookup) bool {
	if lookup == nil {
		return false
	}
	for _, dep := range t.Depends() {
		d := lookup(dep)
		if d == nil {
			continue
		}
		switch d.Status() {
		case task.StatusPending, task.StatusWaiting, task.StatusRecurring:
			return true
		}
	}
	return false
}

