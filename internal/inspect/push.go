package inspect

import "regexp"

// PushWarning is the advisory line printed before a push.
const PushWarning = "[Hook] Review changes before push"

var pushPattern = regexp.MustCompile(`git push`)

// ShouldWarnPush reports whether command runs a git push.
func ShouldWarnPush(command string) bool {
	return pushPattern.MatchString(command)
}

// PushResult is the outcome of ProcessPushInput.
type PushResult struct {
	// Output is the raw input, passed through untouched.
	Output []byte

	// Warn is true when PushWarning should be shown.
	Warn bool
}

// ProcessPushInput inspects a raw event for a git push. Unparseable input
// never warns.
func ProcessPushInput(raw []byte) PushResult {
	event, err := ParseEvent(raw)
	if err != nil {
		log.Debugf("Ignoring event: %v", err)
		return PushResult{Output: raw}
	}

	return PushResult{
		Output: raw,
		Warn:   ShouldWarnPush(event.Command),
	}
}
