package validate

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/roasbeef/agenthooks/internal/hooks"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// settingsSchemaJSON constrains the parts of settings.json that the checks
// below inspect.
//
//go:embed settings.schema.json
var settingsSchemaJSON []byte

// checkedHookEvents are the settings.json hook events whose entries are
// inspected.
var checkedHookEvents = []string{"PreToolUse", "PostToolUse"}

// settingsSchema compiles the embedded schema once.
var settingsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(settingsSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("settings.schema.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	return c.Compile("settings.schema.json")
})

// checkSettings validates settings.json at the root.
func (v *Validator) checkSettings() {
	data, err := os.ReadFile(filepath.Join(v.cfg.Root, hooks.SettingsFilename))
	if err != nil {
		v.errorf("settings.json: %v", err)
		return
	}

	if err := validateSettingsShape(data); err != nil {
		v.errorf("settings.json: %v", err)
		return
	}

	settings, err := hooks.ParseSettings(data)
	if err != nil {
		v.errorf("settings.json: %v", err)
		return
	}

	if !settings.HasHooks() {
		v.warnf("No hooks defined in settings.json")
	} else {
		for _, event := range checkedHookEvents {
			for _, entry := range settings.Hooks[event] {
				if entry.Matcher == "" {
					v.errorf("%s hook missing matcher", event)
				}
				if len(entry.Hooks) == 0 {
					v.errorf("%s hook missing hooks array", event)
				}
				if entry.Description == "" {
					v.warnf("%s hook missing description", event)
				}
			}
		}
	}

	v.okf("settings.json is valid JSON with expected structure")
}

// validateSettingsShape checks data is JSON matching the settings schema.
func validateSettingsShape(data []byte) error {
	schema, err := settingsSchema()
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		// Schema errors are multi-line; keep each finding on one line.
		msg := strings.Join(strings.Fields(err.Error()), " ")
		return fmt.Errorf("unexpected structure: %s", msg)
	}

	return nil
}
