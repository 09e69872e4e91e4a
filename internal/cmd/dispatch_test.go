package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withDataDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

func runDispatch(t *testing.T, dataDir string, argv ...string) (string, error) {
	t.Helper()
	return runDispatchStdin(t, dataDir, "", argv...)
}

func runDispatchStdin(t *testing.T, dataDir, stdin string, argv ...string) (string, error) {
	t.Helper()
	rcPath := filepath.Join(dataDir, "taskrc")
	require.NoError(t, os.WriteFile(rcPath, []byte("data.location="+dataDir+"\n"), 0o644))
	t.Setenv("TASKRC", rcPath)

	var out bytes.Buffer
	full := append([]string{"task"}, argv...)
	err := Dispatch(full, strings.NewReader(stdin), &out, &out)
	return out.String(), err
}

func TestDispatchAddThenList(t *testing.T) {
	dir := withDataDir(t)

	out, err := runDispatch(t, dir, "add", "buy", "milk", "project:home")
	require.NoError(t, err)
	assert.Contains(t, out, "Created task")

	out, err = runDispatch(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "milk")
}

func TestDispatchDoneRemovesFromPendingList(t *testing.T) {
	dir := withDataDir(t)

	_, err := runDispatch(t, dir, "add", "wash", "car")
	require.NoError(t, err)

	out, err := runDispatch(t, dir, "1", "done")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed")

	out, err = runDispatch(t, dir, "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "wash car")
}

func TestDispatchUndoRestoresTask(t *testing.T) {
	dir := withDataDir(t)

	_, err := runDispatch(t, dir, "add", "feed", "cat")
	require.NoError(t, err)
	_, err = runDispatch(t, dir, "1", "done")
	require.NoError(t, err)

	out, err := runDispatch(t, dir, "undo")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored")

	out, err = runDispatch(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "feed cat")
}
