package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwarrior-go/task/internal/task"
)

type fakeConfig struct {
	values map[string]string
}

func (f fakeConfig) GetString(name, def string) string {
	if v, ok := f.values[name]; ok {
		return v
	}
	return def
}
func (f fakeConfig) GetInt(name string, def int) int { return def }
func (f fakeConfig) Keys(prefix string) []string      { return nil }

func TestParseAddCommand(t *testing.T) {
	cfg := fakeConfig{values: map[string]string{}}
	reg := task.NewRegistry(nil)
	result, err := Parse([]string{"task", "add", "buy", "milk", "project:home"}, cfg, reg)
	require.NoError(t, err)
	assert.Equal(t, "add", result.Command.Name)
	assert.NotEmpty(t, result.Mods)
}

func TestParseListWithFilter(t *testing.T) {
	cfg := fakeConfig{values: map[string]string{}}
	reg := task.NewRegistry(nil)
	result, err := Parse([]string{"task", "project:home", "list"}, cfg, reg)
	require.NoError(t, err)
	assert.Equal(t, "list", result.Command.Name)
	assert.NotEmpty(t, result.Postfix)
}

func TestParseDefaultCommandInjected(t *testing.T) {
	cfg := fakeConfig{values: map[string]string{"default.command": "list"}}
	reg := task.NewRegistry(nil)
	result, err := Parse([]string{"task"}, cfg, reg)
	require.NoError(t, err)
	assert.Equal(t, "list", result.Command.Name)
}

func TestParseBareIDInjectsInformation(t *testing.T) {
	cfg := fakeConfig{values: map[string]string{}}
	reg := task.NewRegistry(nil)
	result, err := Parse([]string{"task", "5"}, cfg, reg)
	require.NoError(t, err)
	assert.Equal(t, "information", result.Command.Name)
}

func TestParseTagDesugarsToHastag(t *testing.T) {
	cfg := fakeConfig{values: map[string]string{}}
	reg := task.NewRegistry(nil)
	result, err := Parse([]string{"task", "+home", "list"}, cfg, reg)
	require.NoError(t, err)
	found := false
	for _, tk := range result.Postfix {
		if tk.Lexeme == "_hastag_" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseSetExpandsToIDRange(t *testing.T) {
	cfg := fakeConfig{values: map[string]string{}}
	reg := task.NewRegistry(nil)
	result, err := Parse([]string{"task", "1-3", "list"}, cfg, reg)
	require.NoError(t, err)
	var hasGE, hasLE bool
	for _, tk := range result.Postfix {
		switch tk.Lexeme {
		case ">=":
			hasGE = true
		case "<=":
			hasLE = true
		}
	}
	assert.True(t, hasGE, "expected a >= clause from the expanded range")
	assert.True(t, hasLE, "expected a <= clause from the expanded range")
}

func TestParseTrivialInputFails(t *testing.T) {
	cfg := fakeConfig{values: map[string]string{}}
	reg := task.NewRegistry(nil)
	_, err := Parse([]string{"task", "xyzzy"}, cfg, reg)
	assert.Error(t, err)
}
