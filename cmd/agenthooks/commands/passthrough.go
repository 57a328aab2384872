package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// adviseFunc inspects one raw event and returns the advisory line to show,
// or "" for none.
type adviseFunc func(cmd *cobra.Command, raw []byte) string

// newFilterCmd builds a hook filter subcommand around advise. Stray
// arguments and unknown flags are ignored. Any other flag error still
// forwards the input, without advice.
func newFilterCmd(use, short, long string, advise adviseFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:         use,
		Short:       short,
		Long:        long,
		Args:        cobra.ArbitraryArgs,
		Annotations: map[string]string{failOpenAnnotation: "true"},
		FParseErrWhitelist: cobra.FParseErrWhitelist{
			UnknownFlags: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			runPassthrough(cmd, advise)
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		log.Debugf("Ignoring flag error: %v", err)
		runPassthrough(cmd, noAdvice)

		return nil
	})

	return cmd
}

// noAdvice never prints anything.
func noAdvice(*cobra.Command, []byte) string {
	return ""
}

// runPassthrough copies stdin to stdout byte for byte and prints the
// advisory line, if any, to stderr. It never fails: a read error still
// forwards whatever was read.
func runPassthrough(cmd *cobra.Command, advise adviseFunc) {
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		log.Debugf("Partial read of hook input: %v", err)
	}

	var message string
	if err == nil {
		message = advise(cmd, raw)
	}

	if _, err := cmd.OutOrStdout().Write(raw); err != nil {
		log.Debugf("Unable to forward hook input: %v", err)
	}

	if message != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), message)
	}
}
