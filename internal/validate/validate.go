// Package validate checks that an assistant configuration tree follows the
// repository's structural conventions.
//
// The checks run as numbered sections. Each problem is reported as an ERROR
// or a WARN, passing checks as OK, and a final tally is printed. Only
// ERROR findings make a run fail.
package validate

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrValidationFailed is returned by callers when a run recorded at least
// one ERROR.
var ErrValidationFailed = errors.New("validation failed")

// Severity classifies a finding.
type Severity uint8

const (
	// SeverityOK marks a passing check.
	SeverityOK Severity = iota

	// SeverityWarn marks a problem that doesn't fail the run.
	SeverityWarn

	// SeverityError marks a problem that fails the run.
	SeverityError
)

// String returns the console label of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "OK"
	case SeverityWarn:
		return "WARN"
	case SeverityError:
		return "ERROR"
	default:
		return fmt.Sprintf("Severity(%d)", s)
	}
}

// Finding is a single reported result.
type Finding struct {
	Severity Severity
	Message  string
}

// Summary is the outcome of a run.
type Summary struct {
	Errors   int
	Warnings int
	Findings []Finding
}

// Failed reports whether any ERROR was recorded.
func (s Summary) Failed() bool {
	return s.Errors > 0
}

// Config configures a Validator.
type Config struct {
	// Root is the configuration tree to check.
	Root string

	// Stdout receives section headers, OK lines and the tally.
	Stdout io.Writer

	// Stderr receives ERROR and WARN lines.
	Stderr io.Writer
}

// Validator runs the checks over one tree. It is single use.
type Validator struct {
	cfg     Config
	summary Summary
}

// New returns a Validator for cfg. Nil writers default to the process
// streams.
func New(cfg Config) *Validator {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	return &Validator{cfg: cfg}
}

// section is one numbered group of checks.
type section struct {
	title string
	run   func()
}

// Run executes every section and prints the tally.
func (v *Validator) Run() Summary {
	sections := []section{
		{title: "settings.json", run: v.checkSettings},
		{title: "skills", run: v.checkSkills},
		{title: "rules", run: v.checkRules},
		{
			title: "code blocks in markdown files",
			run:   v.checkCodeBlocks,
		},
		{title: "PLAN.md references", run: v.checkPlanReferences},
	}

	log.Debugf("Validating %s", v.cfg.Root)

	for i, s := range sections {
		fmt.Fprintf(v.cfg.Stdout, "\n[%d/%d] Validating %s\n",
			i+1, len(sections), s.title)
		s.run()
	}

	fmt.Fprintln(v.cfg.Stdout, "\n---")
	fmt.Fprintf(v.cfg.Stdout, "Validation complete: %d errors, %d "+
		"warnings\n", v.summary.Errors, v.summary.Warnings)

	return v.summary
}

func (v *Validator) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(v.cfg.Stderr, "  ERROR: %s\n", msg)

	v.summary.Errors++
	v.record(SeverityError, msg)
}

func (v *Validator) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(v.cfg.Stderr, "  WARN:  %s\n", msg)

	v.summary.Warnings++
	v.record(SeverityWarn, msg)
}

func (v *Validator) okf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(v.cfg.Stdout, "  OK:    %s\n", msg)

	v.record(SeverityOK, msg)
}

func (v *Validator) record(severity Severity, msg string) {
	v.summary.Findings = append(v.summary.Findings, Finding{
		Severity: severity,
		Message:  msg,
	})
}
