package inspect

import (
	"fmt"
	"regexp"

	"github.com/lightningnetwork/lnd/fn/v2"
)

var (
	prCreatePattern = regexp.MustCompile(`gh pr create`)
	prURLPattern    = regexp.MustCompile(`https://github\.com\S+`)
)

// ExtractPRURL returns the first GitHub URL in stdout.
func ExtractPRURL(stdout string) fn.Option[string] {
	match := prURLPattern.FindString(stdout)
	if match == "" {
		return fn.None[string]()
	}

	return fn.Some(match)
}

// PRResult is the outcome of ProcessPRInput.
type PRResult struct {
	// Output is the raw input, passed through untouched.
	Output []byte

	// PRURL is the created pull request, if any.
	PRURL fn.Option[string]
}

// ProcessPRInput looks for the URL printed by `gh pr create`. Any other
// command, or unparseable input, yields no URL.
func ProcessPRInput(raw []byte) PRResult {
	result := PRResult{Output: raw, PRURL: fn.None[string]()}

	event, err := ParseEvent(raw)
	if err != nil {
		log.Debugf("Ignoring event: %v", err)
		return result
	}

	if !prCreatePattern.MatchString(event.Command) {
		return result
	}

	result.PRURL = ExtractPRURL(event.Stdout)

	return result
}

// PRCreatedMessage is the advisory line for a created pull request.
func PRCreatedMessage(url string) string {
	return fmt.Sprintf("[Hook] PR created: %s", url)
}
