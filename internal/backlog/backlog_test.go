package backlog

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwarrior-go/task/internal/task"
)

func TestEncodeRoundTripsTagsAndAnnotations(t *testing.T) {
	tk := task.New()
	tk.Set("description", "Buy milk")
	tk.Set("status", "pending")
	tk.Set("entry", "1700000000")
	tk.Set("tags", "home,urgent")
	tk.AddAnnotation(1700000100, "called the store")

	line, err := Encode(tk)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &decoded))

	assert.Equal(t, "Buy milk", decoded["description"])
	tags, ok := decoded["tags"].([]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"home", "urgent"}, tags)

	anns, ok := decoded["annotations"].([]any)
	require.True(t, ok)
	require.Len(t, anns, 1)
	first := anns[0].(map[string]any)
	assert.Equal(t, "called the store", first["description"])
}

func TestReadAllPreservesOrder(t *testing.T) {
	input := `{"uuid":"a"}
{"uuid":"b"}
`
	entries, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0]["uuid"])
	assert.Equal(t, "b", entries[1]["uuid"])
}
