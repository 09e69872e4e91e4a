package task

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/taskwarrior-go/task/internal/taskerr"
)

// Clock abstracts "now" so validation and default-filling are testable
// without faking the system clock.
type Clock func() time.Time

// ValidationWarning is a non-fatal ordering violation from spec.md §4.9
// ("violations are warnings, not errors").
type ValidationWarning struct {
	Message string
}

// Defaults are the configured fallback values consulted when filling in
// missing attributes at mutation time.
type Defaults struct {
	Project  string
	Priority string
	Due      string
}

// ApplyDefaults fills in uuid/entry unconditionally and project/priority
// from Defaults when absent, plus any UDA defaults from reg. It must run
// before Validate.
func ApplyDefaults(t *Task, clock Clock, d Defaults, reg *Registry) {
	if t.UUID() == "" {
		t.Set("uuid", uuid.NewString())
	}
	if !t.Has("entry") {
		t.Set("entry", strconv.FormatInt(clock().Unix(), 10))
	}
	if !t.Has("project") && d.Project != "" {
		t.Set("project", d.Project)
	}
	if !t.Has("priority") && d.Priority != "" {
		t.Set("priority", d.Priority)
	}
	if !t.Has("due") && d.Due != "" {
		t.Set("due", d.Due)
	}
	if reg == nil {
		return
	}
	for name, def := range reg.UDAs() {
		if def.Default != "" && !t.Has(name) {
			t.Set(name, def.Default)
		}
	}
}

// Validate checks the hard invariants from spec.md §4.9 and returns
// non-nil wrapping taskerr.ErrValidation on the first failure. Warnings
// (ordering violations) are returned separately and never block the
// mutation. depGraph resolves a uuid's current depends list for cycle
// detection; pass nil when validating a task in isolation (e.g. decode).
func Validate(t *Task, depGraph func(uuid string) []string) ([]ValidationWarning, error) {
	if t.Description() == "" {
		return nil, fmt.Errorf("%w: description is required", taskerr.ErrValidation)
	}
	if t.UUID() == "" {
		return nil, fmt.Errorf("%w: uuid is required", taskerr.ErrValidation)
	}
	switch t.Status() {
	case StatusPending, StatusCompleted, StatusDeleted, StatusRecurring, StatusWaiting:
	default:
		return nil, fmt.Errorf("%w: unrecognized status %q", taskerr.ErrValidation, t.Status())
	}
	if t.Status() == StatusRecurring && t.Get("recur") == "" {
		return nil, fmt.Errorf("%w: recurring task requires recur", taskerr.ErrValidation)
	}
	if t.Get("recur") != "" && t.Get("due") == "" {
		return nil, fmt.Errorf("%w: recur requires due", taskerr.ErrValidation)
	}
	switch Priority(t.Get("priority")) {
	case PriorityHigh, PriorityMedium, PriorityLow, PriorityNone:
	default:
		return nil, fmt.Errorf("%w: invalid priority %q", taskerr.ErrValidation, t.Get("priority"))
	}

	for _, dep := range t.Depends() {
		if dep == t.UUID() {
			return nil, fmt.Errorf("%w: task cannot depend on itself", taskerr.ErrValidation)
		}
	}
	if depGraph != nil {
		if err := checkAcyclic(t.UUID(), t.Depends(), depGraph); err != nil {
			return nil, fmt.Errorf("%w: %s", taskerr.ErrValidation, err)
		}
	}

	var warnings []ValidationWarning
	warnIf := func(cond bool, msg string) {
		if cond {
			warnings = append(warnings, ValidationWarning{Message: msg})
		}
	}
	wait, hasWait := epoch(t, "wait")
	due, hasDue := epoch(t, "due")
	entry, hasEntry := epoch(t, "entry")
	start, hasStart := epoch(t, "start")
	end, hasEnd := epoch(t, "end")
	scheduled, hasSched := epoch(t, "scheduled")

	warnIf(hasWait && hasDue && wait > due, "wait after due")
	warnIf(hasEntry && hasStart && entry > start, "entry after start")
	warnIf(hasEntry && hasEnd && entry > end, "entry after end")
	warnIf(hasWait && hasSched && wait > scheduled, "wait after scheduled")
	warnIf(hasSched && hasStart && scheduled > start, "scheduled after start")
	warnIf(hasSched && hasDue && scheduled > due, "scheduled after due")
	warnIf(hasSched && hasEnd && scheduled > end, "scheduled after end")

	return warnings, nil
}

func epoch(t *Task, name string) (int64, bool) {
	v := t.Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// checkAcyclic runs a BFS from uuid's proposed depends set looking for a
// path back to uuid, per DESIGN NOTES "Cyclic graphs are avoided... by
// BFS from the mutated task."
func checkAcyclic(root string, depends []string, resolve func(uuid string) []string) error {
	seen := map[string]bool{root: true}
	queue := append([]string(nil), depends...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == root {
			return fmt.Errorf("dependency cycle detected at %s", root)
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		queue = append(queue, resolve(cur)...)
	}
	return nil
}
