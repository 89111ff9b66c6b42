// internal/runner/script.go
package runner

import (
	"fmt"
	"os"
	"strings"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/webtrail-cli/api/schemas"
)

var jsonCfg = json.ConfigCompatibleWithStandardLibrary

// LoadScript reads and validates a step script from a JSON file.
func LoadScript(path string) (*schemas.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file %s: %w", path, err)
	}

	var script schemas.Script
	if err := jsonCfg.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script file %s: %w", path, err)
	}
	if err := ValidateScript(&script); err != nil {
		return nil, fmt.Errorf("invalid script %s: %w", path, err)
	}
	return &script, nil
}

// ValidateScript checks every step for a known action type and the fields
// that action requires.
func ValidateScript(script *schemas.Script) error {
	if len(script.Steps) == 0 {
		return fmt.Errorf("script contains no steps")
	}
	for i, step := range script.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func validateStep(step schemas.Step) error {
	if !step.Action.Valid() {
		return fmt.Errorf("unknown action type %q", step.Action)
	}
	switch step.Action {
	case schemas.ActionNavigate:
		if step.URL == "" {
			return fmt.Errorf("navigate requires a url")
		}
	case schemas.ActionClick:
		if step.Selector == "" {
			return fmt.Errorf("click requires a selector")
		}
	case schemas.ActionInputText:
		if step.Selector == "" {
			return fmt.Errorf("input_text requires a selector")
		}
	case schemas.ActionSendKeys:
		if step.Value == "" {
			return fmt.Errorf("send_keys requires a value")
		}
	case schemas.ActionWait:
		if step.Milliseconds <= 0 {
			return fmt.Errorf("wait requires positive milliseconds")
		}
	}
	return nil
}

// LoadTask reads the opaque task description from a file. The content is
// never interpreted; a missing or unreadable path is a fatal configuration
// error for the run.
func LoadTask(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read task file %s: %w", path, err)
	}
	task := strings.TrimSpace(string(data))
	if task == "" {
		return "", fmt.Errorf("task file %s is empty", path)
	}
	return task, nil
}
