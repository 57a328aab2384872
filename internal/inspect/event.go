// Package inspect holds the command-inspection hooks. Each one looks at the
// shell command of a tool event and decides whether to print an advisory
// line. None of them ever alter the event.
package inspect

import (
	"encoding/json"
	"fmt"
)

// Event is the part of a tool-invocation event the hooks look at.
type Event struct {
	// Command is tool_input.command, or "" when absent.
	Command string

	// Stdout is tool_output.stdout, or "" when absent.
	Stdout string
}

// ParseEvent decodes a raw hook event. Missing fields, or fields of an
// unexpected type, are left empty. Only syntactically invalid JSON is an
// error.
func ParseEvent(raw []byte) (*Event, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}

	event := &Event{}

	root, ok := doc.(map[string]any)
	if !ok {
		return event, nil
	}

	if toolInput, ok := root["tool_input"].(map[string]any); ok {
		event.Command = getStringField(toolInput, "command")
	}
	if toolOutput, ok := root["tool_output"].(map[string]any); ok {
		event.Stdout = getStringField(toolOutput, "stdout")
	}

	return event, nil
}

// getStringField safely gets a string field from a map.
func getStringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
