package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeV4RoundTrip(t *testing.T) {
	tk := New()
	tk.Set("description", `quoted "value" and \backslash`)
	tk.Set("status", "pending")
	tk.Set("project", "home")

	line := EncodeV4(tk)
	assert.Equal(t, FormatV4, DetectVersion(line))

	decoded, err := DecodeV4(line)
	require.NoError(t, err)
	assert.Equal(t, tk.UUID(), decoded.UUID())
	assert.Equal(t, `quoted "value" and \backslash`, decoded.Get("description"))
	assert.Equal(t, "home", decoded.Get("project"))
}

func TestAnnotationsSortedNumerically(t *testing.T) {
	tk := New()
	tk.Set("description", "x")
	tk.Set("annotation_9", "nine")
	tk.Set("annotation_10", "ten")
	tk.Set("annotation_2", "two")

	anns := tk.Annotations()
	require.Len(t, anns, 3)
	assert.Equal(t, "two", anns[0].Description)
	assert.Equal(t, "nine", anns[1].Description)
	assert.Equal(t, "ten", anns[2].Description)
}

func TestValidateRequiresDescription(t *testing.T) {
	tk := New()
	tk.Set("status", "pending")
	_, err := Validate(tk, nil)
	require.Error(t, err)
}

func TestValidateRejectsSelfDependency(t *testing.T) {
	tk := New()
	tk.Set("description", "x")
	tk.Set("status", "pending")
	tk.SetDepends([]string{tk.UUID()})
	_, err := Validate(tk, nil)
	require.Error(t, err)
}

func TestValidateDetectsCycle(t *testing.T) {
	tk := New()
	tk.Set("description", "x")
	tk.Set("status", "pending")
	tk.SetDepends([]string{"other-uuid"})

	resolve := func(u string) []string {
		if u == "other-uuid" {
			return []string{tk.UUID()}
		}
		return nil
	}
	_, err := Validate(tk, resolve)
	require.Error(t, err)
}

func TestValidateWarnsOnOrdering(t *testing.T) {
	tk := New()
	tk.Set("description", "x")
	tk.Set("status", "pending")
	now := time.Now().Unix()
	tk.Set("entry", "100")
	tk.Set("start", "50")
	_ = now
	warnings, err := Validate(tk, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
}

func TestApplyDefaultsFillsUUIDAndEntry(t *testing.T) {
	tk := FromAttrs(map[string]string{"description": "x"})
	clock := func() time.Time { return time.Unix(1700000000, 0) }
	ApplyDefaults(tk, clock, Defaults{Project: "home"}, NewRegistry(nil))
	assert.NotEmpty(t, tk.UUID())
	assert.Equal(t, "1700000000", tk.Get("entry"))
	assert.Equal(t, "home", tk.Get("project"))
}
