// File: internal/runner/script_test.go
package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/webtrail-cli/api/schemas"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "steps.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScript(t *testing.T) {
	path := writeScript(t, `{
		"name": "search",
		"steps": [
			{"action": "navigate", "url": "https://example.com"},
			{"action": "input_text", "selector": "#q", "value": "go"},
			{"action": "send_keys", "value": "\r"},
			{"action": "wait", "milliseconds": 500}
		]
	}`)

	script, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "search", script.Name)
	require.Len(t, script.Steps, 4)
	assert.Equal(t, schemas.ActionNavigate, script.Steps[0].Action)
	assert.Equal(t, 500, script.Steps[3].Milliseconds)
}

func TestLoadScriptMissingFile(t *testing.T) {
	_, err := LoadScript(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadScriptMalformedJSON(t *testing.T) {
	path := writeScript(t, `{steps: [}`)
	_, err := LoadScript(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestValidateScript(t *testing.T) {
	testCases := []struct {
		name    string
		script  schemas.Script
		wantErr string
	}{
		{
			name:    "empty script",
			script:  schemas.Script{},
			wantErr: "no steps",
		},
		{
			name: "unknown action",
			script: schemas.Script{Steps: []schemas.Step{
				{Action: "teleport"},
			}},
			wantErr: `unknown action type "teleport"`,
		},
		{
			name: "navigate without url",
			script: schemas.Script{Steps: []schemas.Step{
				{Action: schemas.ActionNavigate},
			}},
			wantErr: "navigate requires a url",
		},
		{
			name: "click without selector",
			script: schemas.Script{Steps: []schemas.Step{
				{Action: schemas.ActionClick},
			}},
			wantErr: "click requires a selector",
		},
		{
			name: "wait without duration",
			script: schemas.Script{Steps: []schemas.Step{
				{Action: schemas.ActionWait},
			}},
			wantErr: "wait requires positive milliseconds",
		},
		{
			name: "valid mixed steps",
			script: schemas.Script{Steps: []schemas.Step{
				{Action: schemas.ActionNavigate, URL: "https://a.test"},
				{Action: schemas.ActionScroll, Direction: "down"},
				{Action: schemas.ActionExtractContent},
				{Action: schemas.ActionScreenshot},
			}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateScript(&tc.script)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestLoadTask(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.txt")
	require.NoError(t, os.WriteFile(path, []byte("Find the cheapest flight\n"), 0o644))

	task, err := LoadTask(path)
	require.NoError(t, err)
	assert.Equal(t, "Find the cheapest flight", task)
}

func TestLoadTaskMissingFileIsFatal(t *testing.T) {
	_, err := LoadTask(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}

func TestLoadTaskEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task.txt")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))
	_, err := LoadTask(path)
	require.Error(t, err)
}
