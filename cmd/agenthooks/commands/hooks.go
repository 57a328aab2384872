package commands

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/roasbeef/agenthooks/internal/hooks"
	"github.com/spf13/cobra"
)

// hooksConfig holds the flags shared by the hooks subcommands.
type hooksConfig struct {
	*cliConfig

	// claudeDir is the assistant's configuration directory.
	claudeDir string

	// binary is the command written into settings.json.
	binary string

	// dryRun prints the settings.json diff without writing anything.
	dryRun bool
}

func newHooksCmd(cfg *cliConfig) *cobra.Command {
	hc := &hooksConfig{cliConfig: cfg}

	hooksCmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage the assistant's hook registration",
		Long: `Manage the agenthooks entries in the assistant's settings.json.

Installed hooks:
- PreToolUse Bash: warn-push reminds to review before git push
- PreToolUse Edit|Write: suggest-compact counts edits and suggests compaction
- PostToolUse Bash: log-pr-url reports the URL printed by gh pr create`,
	}
	hooksCmd.PersistentFlags().StringVar(
		&hc.claudeDir, "claude-dir", getClaudeDir(),
		"Assistant configuration directory",
	)

	installCmd := &cobra.Command{
		Use:   "install",
		Short: "Install agenthooks into settings.json",
		Long: `Register the hook subcommands in settings.json and install the
strategic-compact skill.

Existing hooks in settings.json are preserved and agenthooks entries that
are already present are not duplicated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHooksInstall(cmd, hc)
		},
	}
	installCmd.Flags().StringVar(
		&hc.binary, "binary", "",
		"Command to register (default: this executable)",
	)
	installCmd.Flags().BoolVar(
		&hc.dryRun, "dry-run", false,
		"Show the settings.json diff without writing it",
	)

	uninstallCmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove agenthooks from settings.json",
		Long:  `Remove agenthooks entries from settings.json and delete the skill.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHooksUninstall(cmd, hc)
		},
	}
	uninstallCmd.Flags().BoolVar(
		&hc.dryRun, "dry-run", false,
		"Show the settings.json diff without writing it",
	)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Check agenthooks installation status",
		Long:  `Check whether agenthooks is registered and the skill is present.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHooksStatus(cmd, hc)
		},
	}

	hooksCmd.AddCommand(installCmd)
	hooksCmd.AddCommand(uninstallCmd)
	hooksCmd.AddCommand(statusCmd)

	return hooksCmd
}

func runHooksInstall(cmd *cobra.Command, hc *hooksConfig) error {
	binary := hc.binary
	if binary == "" {
		binary = defaultBinary()
	}

	settings, before, err := loadSettingsWithRaw(hc.claudeDir)
	if err != nil {
		return err
	}

	hooks.InstallHooks(settings, binary)

	if hc.dryRun {
		return printSettingsDiff(cmd, hc.claudeDir, before, settings)
	}

	if err := hooks.SaveSettings(hc.claudeDir, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if err := installSkill(hc.claudeDir); err != nil {
		return fmt.Errorf("failed to install skill: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "agenthooks installed successfully!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Installed components:")
	fmt.Fprintf(out, "  - Settings: %s\n", settingsPath(hc.claudeDir))
	fmt.Fprintf(out, "  - Skill: %s\n", skillDir(hc.claudeDir))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Hooks installed:")
	for _, event := range hooks.GetInstalledHookEvents(settings) {
		fmt.Fprintf(out, "  - %s\n", event)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Start a new session to activate the hooks.")

	return nil
}

func runHooksUninstall(cmd *cobra.Command, hc *hooksConfig) error {
	settings, before, err := loadSettingsWithRaw(hc.claudeDir)
	if err != nil {
		return err
	}

	hooks.UninstallHooks(settings)

	if hc.dryRun {
		return printSettingsDiff(cmd, hc.claudeDir, before, settings)
	}

	if err := hooks.SaveSettings(hc.claudeDir, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if err := os.RemoveAll(skillDir(hc.claudeDir)); err != nil {
		log.Warnf("Unable to remove skill: %v", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "agenthooks uninstalled.")
	fmt.Fprintf(out, "  - Updated: %s\n", settingsPath(hc.claudeDir))
	fmt.Fprintf(out, "  - Removed: %s\n", skillDir(hc.claudeDir))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Restart your session for changes to take effect.")

	return nil
}

func runHooksStatus(cmd *cobra.Command, hc *hooksConfig) error {
	settings, err := hooks.LoadSettings(hc.claudeDir)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	skillPath := filepath.Join(
		skillDir(hc.claudeDir), hooks.SkillFilename,
	)
	_, statErr := os.Stat(skillPath)
	skillExists := statErr == nil

	installed := hooks.IsInstalled(settings)
	installedEvents := hooks.GetInstalledHookEvents(settings)

	if hc.outputFormat == "json" {
		return outputJSON(cmd, map[string]any{
			"installed":     installed,
			"skill_exists":  skillExists,
			"hook_events":   installedEvents,
			"settings_path": settingsPath(hc.claudeDir),
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "agenthooks Status")
	fmt.Fprintln(out, "=================")
	fmt.Fprintln(out)

	switch {
	case installed && skillExists:
		fmt.Fprintln(out, "Status: INSTALLED")
	case installed || len(installedEvents) > 0 || skillExists:
		fmt.Fprintln(out, "Status: PARTIAL (run 'agenthooks hooks "+
			"install' to complete)")
	default:
		fmt.Fprintln(out, "Status: NOT INSTALLED")
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Skill: %s\n", skillDir(hc.claudeDir))
	if skillExists {
		fmt.Fprintf(out, "  %s: Present\n", hooks.SkillFilename)
	} else {
		fmt.Fprintf(out, "  %s: Missing\n", hooks.SkillFilename)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Hooks in settings.json:")
	if len(installedEvents) == 0 {
		fmt.Fprintln(out, "  None")
	}
	for _, event := range installedEvents {
		fmt.Fprintf(out, "  - %s\n", event)
	}

	return nil
}

// loadSettingsWithRaw loads settings.json along with its current bytes,
// which are empty when the file doesn't exist yet.
func loadSettingsWithRaw(claudeDir string) (*hooks.ClaudeSettings, []byte,
	error) {

	raw, err := os.ReadFile(settingsPath(claudeDir))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return hooks.NewSettings(), nil, nil

	case err != nil:
		return nil, nil, fmt.Errorf("failed to read settings: %w", err)
	}

	settings, err := hooks.ParseSettings(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return settings, raw, nil
}

// printSettingsDiff writes a unified diff between the current settings.json
// and what saving settings would produce.
func printSettingsDiff(cmd *cobra.Command, claudeDir string, before []byte,
	settings *hooks.ClaudeSettings) error {

	after, err := hooks.RenderSettings(settings)
	if err != nil {
		return err
	}

	if bytes.Equal(before, after) {
		fmt.Fprintln(cmd.OutOrStdout(), "settings.json is up to date")
		return nil
	}

	path := settingsPath(claudeDir)
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("failed to diff settings: %w", err)
	}

	if diff == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "settings.json is up to date")
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), diff)

	return nil
}

// defaultBinary returns the path of the running executable, or the bare
// command name when the executable isn't agenthooks itself, such as under
// go test.
func defaultBinary() string {
	exe, err := os.Executable()
	if err != nil || filepath.Base(exe) != "agenthooks" {
		return "agenthooks"
	}

	return exe
}

// getClaudeDir returns the path to the ~/.claude directory.
func getClaudeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return filepath.Join(home, ".claude")
}

func settingsPath(claudeDir string) string {
	return filepath.Join(claudeDir, hooks.SettingsFilename)
}

func skillDir(claudeDir string) string {
	return filepath.Join(claudeDir, "skills", hooks.SkillName)
}

// installSkill writes the strategic-compact skill document.
func installSkill(claudeDir string) error {
	dir := skillDir(claudeDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(
		filepath.Join(dir, hooks.SkillFilename), []byte(hooks.SkillContent),
		0o644,
	)
}
