package build

import (
	"fmt"
	"runtime/debug"
	"strings"
)

const (
	// AppMajor is the major version of agenthooks.
	AppMajor uint = 0

	// AppMinor is the minor version of agenthooks.
	AppMinor uint = 3

	// AppPatch is the patch version of agenthooks.
	AppPatch uint = 0

	// AppPreRelease is appended to the semantic version when non-empty.
	AppPreRelease = "beta"
)

// These are set at link time via -ldflags "-X".
var (
	// Commit is the git describe output of the build.
	Commit string

	// CommitHash is the full commit hash of the build.
	CommitHash string

	// GoVersion is the go version used to build the binary.
	GoVersion string

	// RawTags is the comma separated list of build tags.
	RawTags string
)

func init() {
	if GoVersion != "" && CommitHash != "" {
		return
	}

	// Fall back to the module build info for plain `go install` builds.
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if GoVersion == "" {
		GoVersion = info.GoVersion
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && CommitHash == "" {
			CommitHash = setting.Value
		}
	}
}

// Version returns the semantic version string.
func Version() string {
	version := fmt.Sprintf("%d.%d.%d", AppMajor, AppMinor, AppPatch)
	if AppPreRelease != "" {
		version = fmt.Sprintf("%s-%s", version, AppPreRelease)
	}

	return version
}

// Tags returns the build tags as a slice.
func Tags() []string {
	if RawTags == "" {
		return nil
	}

	return strings.Split(RawTags, ",")
}
