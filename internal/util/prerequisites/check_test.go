package prerequisites

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTools(t *testing.T) {
	t.Parallel()

	tools := DefaultTools("")
	require.Len(t, tools, 1)
	assert.Equal(t, "gcloud", tools[0].Name)
	assert.True(t, tools[0].Required)

	assert.Equal(t, "/opt/sdk/bin/gcloud", DefaultTools("/opt/sdk/bin/gcloud")[0].Name)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	// Different environments ship different tools.
	var foundTool string
	for _, tool := range []string{"sh", "bash", "ls", "cat"} {
		results := Check([]Tool{{Name: tool}})
		if results.Results[0].Found {
			foundTool = tool
			break
		}
	}
	if foundTool == "" {
		t.Skip("no common tools found in PATH")
	}

	results := Check([]Tool{{Name: foundTool, Required: true, InstallURL: "https://example.com"}})

	require.Len(t, results.Results, 1)
	assert.True(t, results.Results[0].Found)
	assert.NotEmpty(t, results.Results[0].Path)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}

func TestCheck_MissingRequired(t *testing.T) {
	t.Parallel()

	results := Check(DefaultTools("nonexistent-gcloud-xyz123"))

	require.Len(t, results.Missing, 1)
	assert.True(t, results.HasErrors())
	err := results.Error()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent-gcloud-xyz123 (https://cloud.google.com/sdk/docs/install)")
}

func TestCheck_MissingOptional(t *testing.T) {
	t.Parallel()

	results := Check([]Tool{{Name: "nonexistent-tool-xyz123"}})

	assert.Len(t, results.Missing, 1)
	assert.False(t, results.HasErrors())
	assert.NoError(t, results.Error())
}
