package validate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	validSettings = `{
  "model": "opus",
  "hooks": {
    "PreToolUse": [
      {
        "matcher": "Bash",
        "description": "Warn before push",
        "hooks": [{"type": "command", "command": "agenthooks warn-push"}]
      }
    ],
    "PostToolUse": [
      {
        "matcher": "Bash",
        "description": "Log PR URL",
        "hooks": [{"type": "command", "command": "agenthooks log-pr-url", "timeout": 10}]
      }
    ]
  }
}`

	validSkill = "# Strategic Compact\n\nSuggests compacting the " +
		"context at logical phase boundaries.\n\n```bash\n" +
		"agenthooks suggest-compact\n```\n"

	validRule = "# Testing\n\nAlways write the test first.\n"
)

// writeFile writes content to root/rel, creating parent directories.
func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// newValidTree builds a tree that passes every check.
func newValidTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	writeFile(t, root, "settings.json", validSettings)
	writeFile(t, root, "skills/strategic-compact/skill.md", validSkill)
	writeFile(t, root, "rules/testing.md", validRule)
	writeFile(t, root, "PLAN.md", "# Plan\n\nSee "+
		"skills/strategic-compact and rules/testing.\n")

	return root
}

// runValidator runs a Validator over root and captures its streams.
func runValidator(t *testing.T, root string) (Summary, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	summary := New(Config{
		Root:   root,
		Stdout: &stdout,
		Stderr: &stderr,
	}).Run()

	return summary, stdout.String(), stderr.String()
}

// messages returns the finding messages of the given severity.
func messages(summary Summary, severity Severity) []string {
	var msgs []string
	for _, f := range summary.Findings {
		if f.Severity == severity {
			msgs = append(msgs, f.Message)
		}
	}

	return msgs
}

// TestValidTree verifies a conforming tree passes without warnings.
func TestValidTree(t *testing.T) {
	root := newValidTree(t)

	summary, stdout, stderr := runValidator(t, root)

	require.False(t, summary.Failed())
	require.Zero(t, summary.Errors)
	require.Zero(t, summary.Warnings)
	require.Empty(t, stderr)

	require.Contains(t, stdout, "\n[1/5] Validating settings.json\n")
	require.Contains(t, stdout, "\n[5/5] Validating PLAN.md references\n")
	require.Contains(
		t, stdout,
		"  OK:    settings.json is valid JSON with expected structure\n",
	)
	require.Contains(
		t, stdout, "  OK:    skills/strategic-compact/skill.md exists\n",
	)
	require.Contains(t, stdout, "  OK:    rules/testing.md valid\n")
	require.Contains(
		t, stdout, "\n---\nValidation complete: 0 errors, 0 warnings\n",
	)
}

// TestEmptyTree verifies missing structure is reported.
func TestEmptyTree(t *testing.T) {
	summary, stdout, stderr := runValidator(t, t.TempDir())

	require.True(t, summary.Failed())
	require.Equal(t, 3, summary.Errors)
	require.Equal(t, 1, summary.Warnings)

	errs := messages(summary, SeverityError)
	require.Contains(t, errs[0], "settings.json: ")
	require.Equal(t, "skills/ directory not found", errs[1])
	require.Equal(t, "rules/ directory not found", errs[2])
	require.Equal(
		t, []string{"PLAN.md not found"}, messages(summary, SeverityWarn),
	)

	require.Contains(t, stderr, "  ERROR: skills/ directory not found\n")
	require.Contains(t, stderr, "  WARN:  PLAN.md not found\n")
	require.Contains(t, stdout, "Validation complete: 3 errors, 1 warnings")
}

// TestSettingsChecks covers the settings.json findings.
func TestSettingsChecks(t *testing.T) {
	tests := []struct {
		name      string
		settings  string
		wantErrs  []string
		wantWarns []string
		wantOK    bool
	}{
		{
			name:     "valid",
			settings: validSettings,
			wantOK:   true,
		},
		{
			name:      "no hooks",
			settings:  `{"model": "opus"}`,
			wantWarns: []string{"No hooks defined in settings.json"},
			wantOK:    true,
		},
		{
			name:      "null hooks",
			settings:  `{"hooks": null}`,
			wantWarns: []string{"No hooks defined in settings.json"},
			wantOK:    true,
		},
		{
			name: "incomplete entry",
			settings: `{"hooks": {"PreToolUse": [{}], ` +
				`"PostToolUse": [{"matcher": "Bash", "hooks": []}]}}`,
			wantErrs: []string{
				"PreToolUse hook missing matcher",
				"PreToolUse hook missing hooks array",
				"PostToolUse hook missing hooks array",
			},
			wantWarns: []string{
				"PreToolUse hook missing description",
				"PostToolUse hook missing description",
			},
			wantOK: true,
		},
		{
			name: "other events are not inspected",
			settings: `{"hooks": {"Stop": [{"hooks": [` +
				`{"type": "command", "command": "notify"}]}]}}`,
			wantOK: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := newValidTree(t)
			writeFile(t, root, "settings.json", tc.settings)

			summary, _, _ := runValidator(t, root)

			require.Equal(t, tc.wantErrs, messages(summary, SeverityError))
			require.Equal(t, tc.wantWarns, messages(summary, SeverityWarn))

			oks := messages(summary, SeverityOK)
			require.Equal(
				t, tc.wantOK, len(oks) > 0 && oks[0] ==
					"settings.json is valid JSON with expected "+
						"structure",
			)
		})
	}
}

// TestSettingsMalformed verifies unparseable or misshapen settings yield a
// single error and no OK line.
func TestSettingsMalformed(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		wantErr  string
	}{
		{
			name:     "invalid json",
			settings: `{"hooks": `,
			wantErr:  "settings.json: invalid JSON",
		},
		{
			name:     "event not an array",
			settings: `{"hooks": {"PreToolUse": "agenthooks warn-push"}}`,
			wantErr:  "settings.json: unexpected structure",
		},
		{
			name: "matcher not a string",
			settings: `{"hooks": {"PostToolUse": [{"matcher": 3, ` +
				`"hooks": []}]}}`,
			wantErr: "settings.json: unexpected structure",
		},
		{
			name: "negative timeout",
			settings: `{"hooks": {"PreToolUse": [{"matcher": "Bash", ` +
				`"hooks": [{"type": "command", "command": "x", ` +
				`"timeout": -1}]}]}}`,
			wantErr: "settings.json: unexpected structure",
		},
		{
			name:     "top level array",
			settings: `[]`,
			wantErr:  "settings.json: unexpected structure",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := newValidTree(t)
			writeFile(t, root, "settings.json", tc.settings)

			summary, _, stderr := runValidator(t, root)

			errs := messages(summary, SeverityError)
			require.Len(t, errs, 1)
			require.Contains(t, errs[0], tc.wantErr)
			require.NotContains(t, errs[0], "\n")
			require.Contains(t, stderr, "  ERROR: "+tc.wantErr)

			for _, ok := range messages(summary, SeverityOK) {
				require.NotContains(t, ok, "settings.json")
			}
		})
	}
}

// TestSkillChecks covers the skill findings.
func TestSkillChecks(t *testing.T) {
	root := newValidTree(t)
	writeFile(t, root, "skills/empty/notes.txt", "nothing here")
	writeFile(t, root, "skills/short/skill.md", "# Short\n")
	writeFile(t, root, "skills/untitled/skill.md",
		"This skill has plenty of words but never opens with a title.\n")
	writeFile(t, root, "skills/setext/skill.md",
		"Setext Title\n============\n\nA heading in the wrong style "+
			"for this check.\n")
	writeFile(t, root, "skills/frontmatter/skill.md",
		"---\nname: frontmatter\ndescription: Has metadata.\n---\n"+
			"# Front Matter\n\nMetadata is skipped before looking for "+
			"the title.\n")
	writeFile(t, root, "skills/badmeta/skill.md",
		"---\nname: [unclosed\n---\n# Bad Meta\n\nThe metadata block "+
			"here does not parse as YAML at all.\n")
	writeFile(t, root, "skills/README.md", "# Skills\n\nIndex of skills.\n")

	summary, _, _ := runValidator(t, root)

	require.Equal(
		t, []string{"skills/empty/ missing skill.md"},
		messages(summary, SeverityError),
	)

	warns := messages(summary, SeverityWarn)
	require.Len(t, warns, 4)
	require.True(t, strings.HasPrefix(
		warns[0], "skills/badmeta/skill.md has malformed front matter",
	), "warnings: %v", warns)
	require.Equal(t, []string{
		"skills/setext/skill.md missing top-level heading",
		"skills/short/skill.md seems too short",
		"skills/untitled/skill.md missing top-level heading",
	}, warns[1:])

	oks := messages(summary, SeverityOK)
	require.Contains(t, oks, "skills/frontmatter/skill.md exists")
	require.Contains(t, oks, "skills/short/skill.md exists")
	require.NotContains(t, oks, "skills/empty/skill.md exists")
}

// TestRuleChecks covers nested rule files.
func TestRuleChecks(t *testing.T) {
	root := newValidTree(t)
	writeFile(t, root, "rules/lang/go.md",
		"# Go\n\nAlways run gofmt before committing.\n")
	writeFile(t, root, "rules/lang/tiny.md", "tiny")
	writeFile(t, root, "rules/lang/notes.txt", "ignored")

	summary, _, _ := runValidator(t, root)

	require.Zero(t, summary.Errors)
	require.Equal(t, []string{
		"rules/lang/tiny.md seems too short",
		"rules/lang/tiny.md missing top-level heading",
	}, messages(summary, SeverityWarn))

	oks := messages(summary, SeverityOK)
	require.Contains(t, oks, "rules/lang/go.md valid")
	require.Contains(t, oks, "rules/lang/tiny.md valid")
	require.Contains(t, oks, "rules/testing.md valid")
}

// TestCodeBlockChecks covers language tags on fenced code blocks.
func TestCodeBlockChecks(t *testing.T) {
	root := newValidTree(t)
	writeFile(t, root, "docs/notes.md", "# Notes\n\n```\nplain\n```\n\n"+
		"```go\nfmt.Println()\n```\n\n```\nagain\n```\n")
	writeFile(t, root, "docs/empty.md", "# Empty\n\n```\n```\n")
	writeFile(t, root, "node_modules/pkg/README.md", "```\nskipped\n```\n")
	writeFile(t, root, ".git/info.md", "```\nskipped\n```\n")

	summary, stdout, _ := runValidator(t, root)

	require.Zero(t, summary.Errors)
	require.Equal(t, []string{
		"docs/empty.md:3 code block without language tag",
		"docs/notes.md:3 code block without language tag",
		"docs/notes.md:11 code block without language tag",
	}, messages(summary, SeverityWarn))
	require.Contains(t, stdout, "  OK:    Code block validation complete\n")
}

// TestPlanReferences covers PLAN.md reference resolution.
func TestPlanReferences(t *testing.T) {
	root := newValidTree(t)
	writeFile(t, root, "templates/pr/body.txt", "template")
	writeFile(t, root, "PLAN.md", "# Plan\n\n"+
		"- skills/strategic-compact\n"+
		"- rules/testing (file without extension)\n"+
		"- templates/pr directory\n"+
		"- hooks/missing-hook twice: hooks/missing-hook\n"+
		"- contexts/review\n")

	summary, _, _ := runValidator(t, root)

	require.Zero(t, summary.Errors)
	require.Equal(t, []string{
		"PLAN.md references hooks/missing-hook but path not found",
		"PLAN.md references contexts/review but path not found",
	}, messages(summary, SeverityWarn))
	require.Contains(
		t, messages(summary, SeverityOK),
		"PLAN.md reference check complete",
	)
}

// TestSeverityString checks the console labels.
func TestSeverityString(t *testing.T) {
	require.Equal(t, "OK", SeverityOK.String())
	require.Equal(t, "WARN", SeverityWarn.String())
	require.Equal(t, "ERROR", SeverityError.String())
}
