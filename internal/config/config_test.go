package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIncludesAndComments(t *testing.T) {
	dir := t.TempDir()
	child := filepath.Join(dir, "child.cfg")
	require.NoError(t, os.WriteFile(child, []byte("data.location="+dir+"\n# nested comment\ngc=on\n"), 0o644))

	parent := filepath.Join(dir, "parent.cfg")
	content := "# top comment\ninclude " + child + "\nlocking=on\n"
	require.NoError(t, os.WriteFile(parent, []byte(content), 0o644))

	c, err := Load(parent)
	require.NoError(t, err)
	assert.Equal(t, dir, c.GetString("data.location", ""))
	assert.True(t, c.GetBool("gc", false))
	assert.True(t, c.GetBool("locking", false))
}

func TestGetIntRealDefaults(t *testing.T) {
	c := New()
	c.Set("abbreviation.minimum", "3")
	c.Set("urgency.age.max", "365.0")
	assert.Equal(t, 3, c.GetInt("abbreviation.minimum", 1))
	assert.Equal(t, 365.0, c.GetReal("urgency.age.max", 1))
	assert.Equal(t, 42, c.GetInt("missing", 42))
}

func TestKeysWithPrefix(t *testing.T) {
	c := New()
	c.Set("urgency.user.project.home.coefficient", "5")
	c.Set("urgency.user.project.work.coefficient", "3")
	c.Set("gc", "on")
	got := c.Keys("urgency.user.project.")
	assert.ElementsMatch(t, []string{"home.coefficient", "work.coefficient"}, got)
}
