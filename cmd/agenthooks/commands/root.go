package commands

import (
	"os"

	"github.com/roasbeef/agenthooks/internal/build"
	"github.com/roasbeef/agenthooks/internal/compact"
	"github.com/roasbeef/agenthooks/internal/inspect"
	"github.com/roasbeef/agenthooks/internal/validate"
	"github.com/spf13/cobra"
)

// Environment variables consulted when the matching flag is unset.
const (
	envStateFile  = "AGENTHOOKS_STATE_FILE"
	envStateDB    = "AGENTHOOKS_STATE_DB"
	envLogDir     = "AGENTHOOKS_LOGDIR"
	envProjectDir = "CLAUDE_PROJECT_DIR"
)

// cliConfig holds the global flag values of one command tree.
type cliConfig struct {
	// stateFile is the JSON advisor state file.
	stateFile string

	// stateDB selects the SQLite advisor store when set.
	stateDB string

	// logDir enables the rotating log file.
	logDir string

	// debugLevel is the btclog level name.
	debugLevel string

	// logStderr copies log records to stderr.
	logStderr bool

	// outputFormat controls output format (text, json).
	outputFormat string

	// closeLog flushes the log file, set by the pre-run hook.
	closeLog func() error
}

// failOpenAnnotation marks hook filters. Their setup errors are dropped so
// the event still passes through.
const failOpenAnnotation = "fail-open"

// Execute runs the CLI.
func Execute() error {
	rootCmd, cfg := newRootCmd()
	defer func() {
		_ = cfg.shutdownLogging()
	}()

	return rootCmd.Execute()
}

// newRootCmd builds the full command tree. Each call returns an independent
// tree with its own flag values.
func newRootCmd() (*cobra.Command, *cliConfig) {
	cfg := &cliConfig{}

	rootCmd := &cobra.Command{
		Use:   "agenthooks",
		Short: "Tool-event hooks and config validation for coding agents",
		Long: `agenthooks bundles the hook filters an AI coding assistant runs
around its tool calls, plus a validator for the assistant's configuration
tree.

Each hook subcommand reads one JSON event on stdin, writes it back to
stdout unchanged, and may print a single advisory line on stderr. Hooks
always exit 0.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			err := cfg.setupLogging(cmd)
			if err != nil && cmd.Annotations[failOpenAnnotation] != "" {
				return nil
			}

			return err
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(
		&cfg.stateFile, "state-file", os.Getenv(envStateFile),
		"Advisor state file (default: $TMPDIR/"+
			compact.DefaultStateFilename+", env "+envStateFile+")",
	)
	flags.StringVar(
		&cfg.stateDB, "state-db", os.Getenv(envStateDB),
		"Keep advisor state in this SQLite database instead of a "+
			"JSON file (env "+envStateDB+")",
	)
	flags.StringVar(
		&cfg.logDir, "logdir", os.Getenv(envLogDir),
		"Directory for the rotating log file (env "+envLogDir+")",
	)
	flags.StringVar(
		&cfg.debugLevel, "debuglevel", "info",
		"Logging level: trace, debug, info, warn, error, critical",
	)
	flags.BoolVar(
		&cfg.logStderr, "log-stderr", false,
		"Also write log records to stderr",
	)
	flags.StringVar(
		&cfg.outputFormat, "format", "text",
		"Output format: text, json",
	)

	rootCmd.AddCommand(newWarnPushCmd())
	rootCmd.AddCommand(newLogPRURLCmd())
	rootCmd.AddCommand(newSuggestCompactCmd(cfg))
	rootCmd.AddCommand(newValidateCmd(cfg))
	rootCmd.AddCommand(newHooksCmd(cfg))
	rootCmd.AddCommand(newVersionCmd(cfg))

	return rootCmd, cfg
}

// setupLogging builds the root logger and hands a subsystem logger to each
// package.
func (c *cliConfig) setupLogging(cmd *cobra.Command) error {
	logCfg := build.LogConfig{
		LogDir: c.logDir,
		Level:  c.debugLevel,
	}
	if c.logStderr {
		logCfg.Console = cmd.ErrOrStderr()
	}

	root, closer, err := build.NewRootLogger(logCfg)
	if err != nil {
		return err
	}
	c.closeLog = closer

	log = root.SubSystem("AHKS")
	compact.UseLogger(root.SubSystem(compact.Subsystem))
	inspect.UseLogger(root.SubSystem(inspect.Subsystem))
	validate.UseLogger(root.SubSystem(validate.Subsystem))

	return nil
}

func (c *cliConfig) shutdownLogging() error {
	if c.closeLog == nil {
		return nil
	}

	err := c.closeLog()
	c.closeLog = nil

	return err
}
