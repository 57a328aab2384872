package commands

import (
	"os"
	"time"

	"github.com/roasbeef/agenthooks/internal/compact"
	"github.com/roasbeef/agenthooks/internal/hooks"
	"github.com/roasbeef/agenthooks/internal/inspect"
	"github.com/spf13/cobra"
)

func newWarnPushCmd() *cobra.Command {
	return newFilterCmd(
		hooks.WarnPushHook,
		"Remind to review changes before a git push",
		`PreToolUse filter for Bash. Prints a review reminder when the command
contains "git push".`,
		func(_ *cobra.Command, raw []byte) string {
			if inspect.ProcessPushInput(raw).Warn {
				return inspect.PushWarning
			}

			return ""
		},
	)
}

func newLogPRURLCmd() *cobra.Command {
	return newFilterCmd(
		hooks.LogPRURLHook,
		"Report the URL of a pull request created with gh",
		`PostToolUse filter for Bash. After "gh pr create", prints the first
GitHub URL found in the command output.`,
		func(_ *cobra.Command, raw []byte) string {
			var message string
			inspect.ProcessPRInput(raw).PRURL.WhenSome(func(url string) {
				message = inspect.PRCreatedMessage(url)
			})

			return message
		},
	)
}

func newSuggestCompactCmd(cfg *cliConfig) *cobra.Command {
	return newFilterCmd(
		hooks.SuggestCompactHook,
		"Suggest compaction after sustained editing",
		`PreToolUse filter for Edit and Write. Counts edits across invocations
and suggests a manual compaction every 20 edits, at most once per five
minutes.`,
		func(cmd *cobra.Command, _ []byte) string {
			store, closeStore := cfg.openStateStore()
			defer closeStore()

			decision := compact.Advise(
				cmd.Context(), store, time.Now(),
			)
			if !decision.Suggest {
				return ""
			}

			return compact.SuggestionMessage(decision.EditCount)
		},
	)
}

// openStateStore picks the advisor backend. A SQLite store that can't be
// opened falls back to the JSON file.
func (c *cliConfig) openStateStore() (compact.StateStore, func()) {
	noop := func() {}

	if c.stateDB != "" {
		key := os.Getenv(envProjectDir)
		if key == "" {
			key = compact.DefaultStateKey
		}

		store, err := compact.OpenSQLiteStore(c.stateDB, key)
		if err == nil {
			return store, func() {
				_ = store.Close()
			}
		}
		log.Warnf("Unable to open state database %s, using state "+
			"file: %v", c.stateDB, err)
	}

	path := c.stateFile
	if path == "" {
		path = compact.DefaultStatePath()
	}

	return compact.NewFileStore(path), noop
}
