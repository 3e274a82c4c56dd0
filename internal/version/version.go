// Package version reports the client version and build metadata.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// CommitHash is the git commit of this build, set with
// -ldflags "-X github.com/Prannn182/CodeCollab-Frontend/internal/version.CommitHash=...".
var CommitHash string

// Semantic version components. PreRelease may only use [0-9A-Za-z-].
const (
	Major      = 0
	Minor      = 1
	Patch      = 0
	PreRelease = ""
)

// Version returns the semantic version string.
func Version() string {
	v := fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
	if pre := cleanPreRelease(PreRelease); pre != "" {
		v += "-" + pre
	}
	return v
}

// RichVersion appends the commit, falling back to the VCS revision recorded
// by the Go toolchain when CommitHash was not injected.
func RichVersion() string {
	commit := strings.TrimSpace(CommitHash)
	if commit == "" {
		commit = buildRevision()
	}
	if commit == "" {
		return Version()
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("%s commit=%s", Version(), commit)
}

func buildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			return s.Value
		}
	}
	return ""
}

func cleanPreRelease(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '-':
			return r
		default:
			return -1
		}
	}, s)
}
