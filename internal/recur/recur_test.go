package recur

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwarrior-go/task/internal/task"
)

func TestExpandSynthesizesChildren(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -10) // 10 days ago

	parent := task.New()
	parent.Set("status", "recurring")
	parent.Set("description", "weekly review")
	parent.Set("recur", "1w")
	parent.Set("due", strconv.FormatInt(due.Unix(), 10))

	children, err := Expand(parent, now, 2, func(string, int) bool { return false })
	require.NoError(t, err)
	assert.NotEmpty(t, children)
	for _, c := range children {
		assert.Equal(t, task.StatusPending, c.Status())
		assert.Equal(t, parent.UUID(), c.Get("parent"))
	}
}

func TestExpandSkipsExistingChildren(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -10)

	parent := task.New()
	parent.Set("status", "recurring")
	parent.Set("description", "daily")
	parent.Set("recur", "daily")
	parent.Set("due", strconv.FormatInt(due.Unix(), 10))

	children, err := Expand(parent, now, 2, func(string, int) bool { return true })
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestExpandHonorsUntil(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	due := now.AddDate(0, 0, -30)

	parent := task.New()
	parent.Set("status", "recurring")
	parent.Set("description", "daily task with hard stop")
	parent.Set("recur", "daily")
	parent.Set("due", strconv.FormatInt(due.Unix(), 10))
	parent.Set("until", strconv.FormatInt(due.AddDate(0, 0, 2).Unix(), 10))

	children, err := Expand(parent, now, 100, func(string, int) bool { return false })
	require.NoError(t, err)
	assert.LessOrEqual(t, len(children), 3)
}
