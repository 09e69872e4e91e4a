package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskwarrior-go/task/internal/task"
)

func TestResolveCurrentAttribute(t *testing.T) {
	tk := task.New()
	tk.Set("project", "home")
	r := Resolver{Current: tk}
	assert.Equal(t, "home", r.Resolve("project"))
}

func TestResolveMissingIsEmpty(t *testing.T) {
	tk := task.New()
	r := Resolver{Current: tk}
	assert.Equal(t, "", r.Resolve("nonexistent"))
}

func TestResolveCrossReference(t *testing.T) {
	other := task.New()
	other.Set("project", "work")
	r := Resolver{
		Lookup: func(ref string) *task.Task {
			if ref == "5" {
				return other
			}
			return nil
		},
	}
	assert.Equal(t, "work", r.Resolve("5.project"))
}

func TestResolveConfig(t *testing.T) {
	r := Resolver{Config: func(name string) (string, bool) {
		if name == "gc" {
			return "on", true
		}
		return "", false
	}}
	assert.Equal(t, "on", r.Resolve("rc.gc"))
}

func TestIsBlocked(t *testing.T) {
	blocker := task.New()
	blocker.Set("status", "pending")
	blocked := task.New()
	blocked.SetDepends([]string{blocker.UUID()})

	lookup := func(ref string) *task.Task {
		if ref == blocker.UUID() {
			return blocker
		}
		return nil
	}
	assert.True(t, IsBlocked(blocked, lookup))

	blocker.Set("status", "completed")
	assert.False(t, IsBlocked(blocked, lookup))
}
