package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shippedRegistry = "../../configs/activity-registry.json"

func TestLoadRegistry_Shipped(t *testing.T) {
	reg, err := LoadRegistry(shippedRegistry)
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	for _, taskType := range []string{
		"submit-scholarship-application",
		"approve-scholarship-application",
		"get-scholarship-application",
		"get-scholarship-statistics",
	} {
		a, ok := reg.Find(taskType)
		require.True(t, ok, taskType)
		assert.Equal(t, "scholarship", a.Category)
		assert.NotEmpty(t, a.InputSchema)
	}

	_, ok := reg.Find("create-application-record")
	assert.False(t, ok)
}

func TestValidate_Problems(t *testing.T) {
	reg := &ActivityRegistry{Activities: []Activity{
		{ID: "a", TaskType: "t", ImplementationStatus: "completed"},
		{ID: "a", TaskType: "t", ImplementationStatus: "shipped", Timeout: "soon"},
		{ID: "b", TaskType: "u", ImplementationStatus: "planned", InputSchema: map[string]interface{}{"type": 42}},
		{DisplayName: "nameless"},
	}}

	err := reg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "duplicate id")
	assert.Contains(t, msg, "duplicate taskType")
	assert.Contains(t, msg, "unknown implementationStatus")
	assert.Contains(t, msg, "timeout")
	assert.Contains(t, msg, "inputSchema")
	assert.Contains(t, msg, "nameless")
}

func TestSave_RoundTrip(t *testing.T) {
	reg, err := LoadRegistry(shippedRegistry)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, reg.Save(path))

	again, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, again.Activities, len(reg.Activities))
	assert.NotEmpty(t, again.LastUpdated)
}
