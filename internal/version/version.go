// Package version provides build-time version information.
package version

import (
	"fmt"
	"runtime/debug"
)

// These variables are set at build time with
// -ldflags "-X cv-npr/internal/version.Version=..."
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Commit returns GitCommit, falling back to the VCS revision recorded by the Go
// toolchain when the linker flag was not set.
func Commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return GitCommit
}

// String returns a one-line description of the build.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit(), BuildTime)
}
