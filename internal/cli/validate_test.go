package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValid(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "passing.yaml", passingScenario)

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+path+" (passing)")
}

func TestValidateFailingScenarioIsStillValid(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "failing.yaml", failingScenario)
	_, err := execute(t, "validate", path)
	assert.NoError(t, err)
}

func TestValidateSchemaError(t *testing.T) {
	dir := t.TempDir()
	good := writeScenario(t, dir, "passing.yaml", passingScenario)
	bad := writeScenario(t, dir, "bad.yaml", `
name: bad
object: {a: 1}
steps: [{op: explode}]
`)

	out, err := execute(t, "validate", good, bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ "+good)
	assert.Contains(t, out, "✗ "+bad)
	assert.Contains(t, out, "schema:")
}

func TestValidateCrossFieldError(t *testing.T) {
	path := writeScenario(t, t.TempDir(), "ghost.yaml", `
name: ghost
object: {a: 1}
steps: [{op: on, event: get:a, listener: ghost}]
`)

	out, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, out, `unknown listener "ghost"`)
}

func TestValidateJSON(t *testing.T) {
	dir := t.TempDir()
	good := writeScenario(t, dir, "passing.yaml", passingScenario)
	bad := writeScenario(t, dir, "bad.yaml", "name: bad\n")

	out, err := execute(t, "--format", "json", "validate", good, bad)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Files, 2)
	assert.True(t, resp.Data.Files[0].Valid)
	assert.Equal(t, "passing", resp.Data.Files[0].Name)
	assert.False(t, resp.Data.Files[1].Valid)
	assert.NotEmpty(t, resp.Data.Files[1].Errors)
}
