// Package task implements the Task entity: a typed bag of attributes,
// annotations, and tags, plus its on-wire forms (the version-4 bracket
// record and the JSON backlog encoding).
package task

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Status is one of the recognized task lifecycle states (spec.md §3).
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusDeleted   Status = "deleted"
	StatusRecurring Status = "recurring"
	StatusWaiting   Status = "waiting"
)

// Priority is one of H, M, L, or empty.
type Priority string

const (
	PriorityHigh   Priority = "H"
	PriorityMedium Priority = "M"
	PriorityLow    Priority = "L"
	PriorityNone   Priority = ""
)

// Task is a mapping from attribute name to string value, plus an
// in-memory Id (a load-order display convenience, never persisted) and a
// cached urgency score invalidated on every mutation.
//
// Keeping the representation a plain map — rather than a struct with one
// field per built-in attribute — is intentional: user-defined attributes
// are first class, and unknown names round-trip losslessly as opaque
// "UDA orphans" (see SPEC_FULL.md §5 / DESIGN.md).
type Task struct {
	attrs        map[string]string
	id           int
	urgencyValid bool
	urgencyValue float64
}

// New creates an empty task with a freshly generated uuid.
func New() *Task {
	return &Task{attrs: map[string]string{"uuid": uuid.NewString()}}
}

// FromAttrs wraps an existing attribute map without copying it further;
// callers that need isolation should use Clone.
func FromAttrs(attrs map[string]string) *Task {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &Task{attrs: attrs}
}

// Clone returns a deep copy so mutation never aliases the store's copy
// (spec.md §3 "Ownership": callers receive copies).
func (t *Task) Clone() *Task {
	cp := make(map[string]string, len(t.attrs))
	for k, v := range t.attrs {
		cp[k] = v
	}
	return &Task{attrs: cp, id: t.id}
}

// Get returns the attribute value, or "" if absent — DOM resolution
// treats a missing attribute as empty, never an error (spec.md §4.4).
func (t *Task) Get(name string) string { return t.attrs[name] }

// Has reports whether the attribute is present at all (distinct from
// present-but-empty).
func (t *Task) Has(name string) bool {
	_, ok := t.attrs[name]
	return ok
}

// Set assigns an attribute and invalidates the cached urgency (spec.md
// §4.6 "Urgency is cached on the Task; any attribute mutation
// invalidates the cache").
func (t *Task) Set(name, value string) {
	t.attrs[name] = value
	t.urgencyValid = false
}

// Remove deletes an attribute.
func (t *Task) Remove(name string) {
	delete(t.attrs, name)
	t.urgencyValid = false
}

// Attrs exposes the raw attribute map for iteration (e.g. record
// encoding). Callers must not mutate the returned map.
func (t *Task) Attrs() map[string]string { return t.attrs }

func (t *Task) UUID() string        { return t.attrs["uuid"] }
func (t *Task) Description() string { return t.attrs["description"] }
func (t *Task) Status() Status      { return Status(t.attrs["status"]) }
func (t *Task) Priority() Priority  { return Priority(t.attrs["priority"]) }

// Id is the load-order display id; 0 means "no id" (completed/deleted
// tasks, or a task not yet assigned one).
func (t *Task) Id() int      { return t.id }
func (t *Task) SetId(id int) { t.id = id }

// InPendingFile reports whether this task's status places it in the
// pending file rather than the completed file (spec.md §3 invariant).
func (t *Task) InPendingFile() bool {
	switch t.Status() {
	case StatusPending, StatusRecurring, StatusWaiting:
		return true
	default:
		return false
	}
}

// Tags returns the comma-joined tags attribute split into a slice.
func (t *Task) Tags() []string { return splitCSV(t.attrs["tags"]) }

// HasTag reports tag membership.
func (t *Task) HasTag(tag string) bool {
	for _, tg := range t.Tags() {
		if tg == tag {
			return true
		}
	}
	return false
}

// AddTag adds tag if not already present.
func (t *Task) AddTag(tag string) {
	if t.HasTag(tag) {
		return
	}
	tags := t.Tags()
	tags = append(tags, tag)
	t.Set("tags", strings.Join(tags, ","))
}

// RemoveTag removes tag if present.
func (t *Task) RemoveTag(tag string) {
	tags := t.Tags()
	out := tags[:0]
	for _, tg := range tags {
		if tg != tag {
			out = append(out, tg)
		}
	}
	t.Set("tags", strings.Join(out, ","))
}

// Depends returns the dependency uuid list.
func (t *Task) Depends() []string { return splitCSV(t.attrs["depends"]) }

// SetDepends rewrites the full dependency list.
func (t *Task) SetDepends(uuids []string) {
	t.Set("depends", strings.Join(uuids, ","))
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Annotation is a free-text note with the epoch second it was created.
type Annotation struct {
	Entry       int64
	Description string
}

// Annotations returns all annotation_<epoch> attributes, sorted
// numerically by epoch (original_source/src/Task.cpp sorts by the
// numeric key, not lexically, so "annotation_9" sorts before
// "annotation_10").
func (t *Task) Annotations() []Annotation {
	var out []Annotation
	for k, v := range t.attrs {
		const prefix = "annotation_"
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		epoch, err := strconv.ParseInt(k[len(prefix):], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, Annotation{Entry: epoch, Description: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Entry < out[j].Entry })
	return out
}

// AddAnnotation stores a new annotation keyed by its creation epoch. If
// an annotation already exists at that exact second, the epoch is
// nudged forward to keep keys unique.
func (t *Task) AddAnnotation(epoch int64, description string) {
	key := "annotation_" + strconv.FormatInt(epoch, 10)
	for t.Has(key) {
		epoch++
		key = "annotation_" + strconv.FormatInt(epoch, 10)
	}
	t.Set(key, description)
}

// CachedUrgency returns the cached urgency value and whether the cache
// is valid; callers recompute and call SetCachedUrgency on a miss.
func (t *Task) CachedUrgency() (float64, bool) { return t.urgencyValue, t.urgencyValid }

// SetCachedUrgency stores a freshly computed urgency value.
func (t *Task) SetCachedUrgency(v float64) {
	t.urgencyValue = v
	t.urgencyValid = true
}
