package merge

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/taskwarrior-go/task/internal/store"
	"github.com/taskwarrior-go/task/internal/task"
)

func mkTxn(at time.Time, old, new *task.Task) store.Transaction {
	return store.Transaction{Time: at, Old: old, New: new}
}

func TestMergeUpToDateWhenIdentical(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tk := task.New()
	tk.Set("description", "shared")
	local := []store.Transaction{mkTxn(t0, nil, tk)}
	remote := []store.Transaction{mkTxn(t0, nil, tk)}

	result := Merge(local, remote)
	assert.True(t, result.UpToDate)
	if diff := cmp.Diff(local, result.Merged, cmp.AllowUnexported(task.Task{})); diff != "" {
		t.Errorf("unexpected merged log (-local +merged):\n%s", diff)
	}
}

func TestMergeAddsRemoteOnlyTask(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	remoteOnly := task.New()
	remoteOnly.Set("description", "remote task")
	remoteOnly.Set("status", "pending")

	local := []store.Transaction{}
	remote := []store.Transaction{mkTxn(t0, nil, remoteOnly)}

	result := Merge(local, remote)
	assert.False(t, result.UpToDate)
	assert.Len(t, result.ToApply, 1)
	assert.Equal(t, remoteOnly.UUID(), result.ToApply[0].New.UUID())
}

func TestMergeNewerRemoteWinsConflict(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	shared := task.New()
	shared.Set("description", "base")
	shared.Set("status", "pending")

	localMod := shared.Clone()
	localMod.Set("description", "local edit")

	remoteMod := shared.Clone()
	remoteMod.Set("description", "remote edit")

	local := []store.Transaction{mkTxn(base.Add(time.Minute), shared, localMod)}
	remote := []store.Transaction{mkTxn(base.Add(2*time.Minute), shared, remoteMod)}

	result := Merge(local, remote)
	assert.Len(t, result.ToApply, 1)
	assert.Equal(t, "remote edit", result.ToApply[0].New.Description())
}
