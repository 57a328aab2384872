// Package hooks manages the agenthooks entries in the assistant's
// settings.json.
package hooks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// SettingsFilename is the name of the settings file inside the assistant's
// configuration directory.
const SettingsFilename = "settings.json"

// ClaudeSettings represents the structure of ~/.claude/settings.json.
type ClaudeSettings struct {
	Hooks map[string][]HookEntry `json:"hooks,omitempty"`

	// rawData keeps every other setting so a save doesn't drop them.
	rawData map[string]any
}

// HookEntry represents a hook configuration in settings.json.
type HookEntry struct {
	Matcher     string        `json:"matcher"`
	Description string        `json:"description,omitempty"`
	Hooks       []HookCommand `json:"hooks"`
}

// HookCommand represents a single hook command.
type HookCommand struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// hookBinaryName identifies agenthooks entries in settings.json.
const hookBinaryName = "agenthooks"

// Subcommand names of the hook filters.
const (
	WarnPushHook       = "warn-push"
	LogPRURLHook       = "log-pr-url"
	SuggestCompactHook = "suggest-compact"
)

// HookDefinitions returns the entries to install, keyed by event, with
// commands invoking binary.
func HookDefinitions(binary string) map[string][]HookEntry {
	command := func(sub string) []HookCommand {
		return []HookCommand{{
			Type:    "command",
			Command: binary + " " + sub,
			Timeout: 10,
		}}
	}

	return map[string][]HookEntry{
		"PreToolUse": {
			{
				Matcher:     "Bash",
				Description: "Remind to review changes before git push",
				Hooks:       command(WarnPushHook),
			},
			{
				Matcher: "Edit|Write",
				Description: "Suggest compaction after sustained " +
					"editing",
				Hooks: command(SuggestCompactHook),
			},
		},
		"PostToolUse": {
			{
				Matcher:     "Bash",
				Description: "Log the URL of a newly created PR",
				Hooks:       command(LogPRURLHook),
			},
		},
	}
}

// NewSettings returns an empty settings document.
func NewSettings() *ClaudeSettings {
	return &ClaudeSettings{
		Hooks:   make(map[string][]HookEntry),
		rawData: make(map[string]any),
	}
}

// ParseSettings decodes a settings.json document. Entries of an
// unexpected shape are skipped.
func ParseSettings(data []byte) (*ClaudeSettings, error) {
	settings := NewSettings()
	if err := json.Unmarshal(data, &settings.rawData); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if settings.rawData == nil {
		settings.rawData = make(map[string]any)
	}

	hooksRaw, ok := settings.rawData["hooks"].(map[string]any)
	if !ok {
		return settings, nil
	}

	for event, entries := range hooksRaw {
		entriesArr, ok := entries.([]any)
		if !ok {
			continue
		}

		var hookEntries []HookEntry
		for _, entryRaw := range entriesArr {
			entryMap, ok := entryRaw.(map[string]any)
			if !ok {
				continue
			}

			entry := HookEntry{
				Matcher:     getStringField(entryMap, "matcher"),
				Description: getStringField(entryMap, "description"),
			}

			if hooksArr, ok := entryMap["hooks"].([]any); ok {
				for _, hookRaw := range hooksArr {
					hookMap, ok := hookRaw.(map[string]any)
					if !ok {
						continue
					}
					entry.Hooks = append(entry.Hooks, HookCommand{
						Type:    getStringField(hookMap, "type"),
						Command: getStringField(hookMap, "command"),
						Timeout: getIntField(hookMap, "timeout"),
					})
				}
			}

			hookEntries = append(hookEntries, entry)
		}
		settings.Hooks[event] = hookEntries
	}

	return settings, nil
}

// HasHooks reports whether the document carries a non-null hooks section.
func (s *ClaudeSettings) HasHooks() bool {
	return s.rawData["hooks"] != nil
}

// LoadSettings loads the settings file in claudeDir. A missing file yields
// empty settings.
func LoadSettings(claudeDir string) (*ClaudeSettings, error) {
	data, err := os.ReadFile(filepath.Join(claudeDir, SettingsFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return NewSettings(), nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	return ParseSettings(data)
}

// RenderSettings encodes settings, merging the hooks back into the
// preserved document.
func RenderSettings(settings *ClaudeSettings) ([]byte, error) {
	if settings.rawData == nil {
		settings.rawData = make(map[string]any)
	}

	hooksRaw := make(map[string]any)
	for event, entries := range settings.Hooks {
		entriesRaw := make([]any, 0, len(entries))
		for _, entry := range entries {
			entryMap := map[string]any{
				"matcher": entry.Matcher,
			}
			if entry.Description != "" {
				entryMap["description"] = entry.Description
			}

			hooksArr := make([]any, 0, len(entry.Hooks))
			for _, hook := range entry.Hooks {
				hookMap := map[string]any{
					"type":    hook.Type,
					"command": hook.Command,
				}
				if hook.Timeout > 0 {
					hookMap["timeout"] = hook.Timeout
				}
				hooksArr = append(hooksArr, hookMap)
			}
			entryMap["hooks"] = hooksArr

			entriesRaw = append(entriesRaw, entryMap)
		}
		hooksRaw[event] = entriesRaw
	}

	if len(hooksRaw) > 0 {
		settings.rawData["hooks"] = hooksRaw
	} else {
		delete(settings.rawData, "hooks")
	}

	data, err := json.MarshalIndent(settings.rawData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}

	return append(data, '\n'), nil
}

// SaveSettings writes settings to claudeDir/settings.json.
func SaveSettings(claudeDir string, settings *ClaudeSettings) error {
	data, err := RenderSettings(settings)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(claudeDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	settingsPath := filepath.Join(claudeDir, SettingsFilename)
	if err := os.WriteFile(settingsPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	return nil
}

// InstallHooks appends the agenthooks entries to settings. Existing
// entries, including ones we installed earlier, are kept as they are.
func InstallHooks(settings *ClaudeSettings, binary string) {
	for event, defs := range HookDefinitions(binary) {
		for _, def := range defs {
			entries := settings.Hooks[event]
			installed := slices.ContainsFunc(
				entries, func(entry HookEntry) bool {
					return ownsSubcommand(entry, def.Hooks[0].Command)
				},
			)
			if !installed {
				settings.Hooks[event] = append(entries, def)
			}
		}
	}
}

// UninstallHooks removes every agenthooks entry from settings.
func UninstallHooks(settings *ClaudeSettings) {
	for event, entries := range settings.Hooks {
		filtered := make([]HookEntry, 0, len(entries))
		for _, entry := range entries {
			if !isAgentHook(entry) {
				filtered = append(filtered, entry)
			}
		}
		if len(filtered) > 0 {
			settings.Hooks[event] = filtered
		} else {
			delete(settings.Hooks, event)
		}
	}
}

// IsInstalled checks whether every agenthooks entry is present.
func IsInstalled(settings *ClaudeSettings) bool {
	for event, defs := range HookDefinitions(hookBinaryName) {
		for _, def := range defs {
			found := slices.ContainsFunc(
				settings.Hooks[event], func(entry HookEntry) bool {
					return ownsSubcommand(entry, def.Hooks[0].Command)
				},
			)
			if !found {
				return false
			}
		}
	}

	return true
}

// GetInstalledHookEvents returns which events have agenthooks entries.
func GetInstalledHookEvents(settings *ClaudeSettings) []string {
	var events []string
	for event, entries := range settings.Hooks {
		if slices.ContainsFunc(entries, isAgentHook) {
			events = append(events, event)
		}
	}
	slices.Sort(events)

	return events
}

// isAgentHook checks if a hook entry runs agenthooks.
func isAgentHook(entry HookEntry) bool {
	for _, hook := range entry.Hooks {
		if strings.Contains(hook.Command, hookBinaryName) {
			return true
		}
	}
	return false
}

// ownsSubcommand checks if entry runs agenthooks with the same subcommand
// as command, wherever the binary lives.
func ownsSubcommand(entry HookEntry, command string) bool {
	sub := command[strings.LastIndex(command, " ")+1:]
	for _, hook := range entry.Hooks {
		if strings.Contains(hook.Command, hookBinaryName) &&
			strings.HasSuffix(hook.Command, " "+sub) {

			return true
		}
	}
	return false
}

// getStringField safely gets a string field from a map.
func getStringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getIntField safely gets an int field from a map. JSON numbers
// unmarshal as float64, so we handle that conversion.
func getIntField(m map[string]any, key string) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return 0
}
