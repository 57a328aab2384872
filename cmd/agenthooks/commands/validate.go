package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/roasbeef/agenthooks/internal/validate"
	"github.com/spf13/cobra"
)

func newValidateCmd(cfg *cliConfig) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the assistant configuration tree",
		Long: `Check settings.json, skills, rules, markdown code blocks and the
references in PLAN.md under the configuration root.

The root is --root, else $CLAUDE_PROJECT_DIR, else the working directory.
Exits non-zero when any ERROR is reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, root, cfg.outputFormat == "json")
		},
	}

	cmd.Flags().StringVar(
		&root, "root", "", "Configuration root to validate",
	)

	return cmd
}

func runValidate(cmd *cobra.Command, root string, asJSON bool) error {
	root, err := validateRoot(root)
	if err != nil {
		return err
	}

	validatorCfg := validate.Config{
		Root:   root,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	}
	if asJSON {
		validatorCfg.Stdout = io.Discard
		validatorCfg.Stderr = io.Discard
	}

	summary := validate.New(validatorCfg).Run()

	if asJSON {
		findings := make([]map[string]string, 0, len(summary.Findings))
		for _, f := range summary.Findings {
			findings = append(findings, map[string]string{
				"severity": f.Severity.String(),
				"message":  f.Message,
			})
		}

		err := outputJSON(cmd, map[string]any{
			"root":     root,
			"errors":   summary.Errors,
			"warnings": summary.Warnings,
			"findings": findings,
		})
		if err != nil {
			return err
		}
	}

	if summary.Failed() {
		return fmt.Errorf("%w: %d errors", validate.ErrValidationFailed,
			summary.Errors)
	}

	return nil
}

// validateRoot resolves the directory to validate.
func validateRoot(root string) (string, error) {
	if root != "" {
		return root, nil
	}
	if dir := os.Getenv(envProjectDir); dir != "" {
		return dir, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	return dir, nil
}
