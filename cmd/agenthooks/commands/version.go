package commands

import (
	"fmt"

	"github.com/roasbeef/agenthooks/internal/build"
	"github.com/spf13/cobra"
)

func newVersionCmd(cfg *cliConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  `Display the version, commit hash, and build metadata for agenthooks.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd, cfg)
		},
	}
}

// runVersion prints the version and build information.
func runVersion(cmd *cobra.Command, cfg *cliConfig) error {
	commit := build.Commit
	if commit == "" {
		commit = build.CommitHash
	}

	if cfg.outputFormat == "json" {
		return outputJSON(cmd, map[string]any{
			"version":    build.Version(),
			"commit":     commit,
			"go_version": build.GoVersion,
			"tags":       build.Tags(),
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "agenthooks version %s", build.Version())

	if commit != "" {
		fmt.Fprintf(out, " commit=%s", commit)
	}

	if build.GoVersion != "" {
		fmt.Fprintf(out, " go=%s", build.GoVersion)
	}

	if tags := build.Tags(); len(tags) > 0 {
		fmt.Fprintf(out, " tags=%s", build.RawTags)
	}

	fmt.Fprintln(out)

	return nil
}
