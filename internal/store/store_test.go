package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwarrior-go/task/internal/task"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAddCommitReopenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s, err := Open(dir, false, fixedClock(now))
	require.NoError(t, err)

	tk := task.New()
	tk.Set("description", "buy milk")
	tk.Set("status", "pending")
	tk.Set("entry", "1700000000")
	require.NoError(t, s.Add(tk))
	require.NoError(t, s.Commit())
	s.Close()

	s2, err := Open(dir, false, fixedClock(now))
	require.NoError(t, err)
	got, err := s2.GetByUUID(tk.UUID())
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Description())
}

func TestAddDuplicateUUIDConflict(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, false, fixedClock(time.Now()))
	require.NoError(t, err)

	tk := task.New()
	tk.Set("description", "one")
	tk.Set("status", "pending")
	require.NoError(t, s.Add(tk))

	dup := task.New()
	dup.Set("uuid", tk.UUID())
	dup.Set("description", "two")
	dup.Set("status", "pending")
	err = s.Add(dup)
	require.Error(t, err)
}

func TestModifyThenRevert(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, false, fixedClock(time.Now()))
	require.NoError(t, err)

	tk := task.New()
	tk.Set("description", "original")
	tk.Set("status", "pending")
	require.NoError(t, s.Add(tk))
	require.NoError(t, s.Commit())

	modified := tk.Clone()
	modified.Set("description", "changed")
	require.NoError(t, s.Modify(modified))
	require.NoError(t, s.Commit())

	got, err := s.GetByUUID(tk.UUID())
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Description())

	txn, err := s.Revert()
	require.NoError(t, err)
	assert.Equal(t, "changed", txn.New.Description())

	got2, err := s.GetByUUID(tk.UUID())
	require.NoError(t, err)
	assert.Equal(t, "original", got2.Description())
}

func TestRevertIsDurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s, err := Open(dir, false, fixedClock(now))
	require.NoError(t, err)

	tk := task.New()
	tk.Set("description", "original")
	tk.Set("status", "pending")
	require.NoError(t, s.Add(tk))
	require.NoError(t, s.Commit())

	modified := tk.Clone()
	modified.Set("description", "changed")
	require.NoError(t, s.Modify(modified))
	require.NoError(t, s.Commit())

	_, err = s.Revert()
	require.NoError(t, err)
	require.NoError(t, s.Commit())
	s.Close()

	// A fresh process reloading the store must not see the reverted
	// transaction again: Revert has to rewrite undo.data/backlog.data
	// immediately, since Commit's append-only write never touches them
	// once pendingUndo is left empty by a revert.
	s2, err := Open(dir, false, fixedClock(now))
	require.NoError(t, err)
	last, ok := s2.LastUndo()
	require.True(t, ok)
	assert.Nil(t, last.Old, "only the add may remain in the reopened undo log; the reverted modification must not reappear")

	got, err := s2.GetByUUID(tk.UUID())
	require.NoError(t, err)
	assert.Equal(t, "original", got.Description())

	_, err = s2.Revert()
	require.NoError(t, err)
	_, err = s2.Revert()
	assert.Error(t, err, "with the add reverted too nothing is left to revert; the old modification must not be re-applied")
}

func TestGCMovesCompletedOutOfPending(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, false, fixedClock(time.Now()))
	require.NoError(t, err)

	tk := task.New()
	tk.Set("description", "done already")
	tk.Set("status", "completed")
	s.pending = append(s.pending, tk) // simulate a stale placement
	s.GC(time.Now())

	assert.Empty(t, s.pending)
	assert.Len(t, s.completed, 1)
}

func TestPendingFileIDAssignment(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, false, fixedClock(time.Now()))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		tk := task.New()
		tk.Set("description", "task")
		tk.Set("status", "pending")
		require.NoError(t, s.Add(tk))
	}
	require.NoError(t, s.Commit())

	for i, tk := range s.pending {
		assert.Equal(t, i+1, tk.Id())
	}
}
