// Package version carries build metadata injected through -ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

// Build metadata, overridden at link time:
//
//	-ldflags "-X github.com/Sumatoshi-tech/tsq/pkg/version.Version=v0.3.0"
//
//nolint:gochecknoglobals // link-time variables.
var (
	Version = "dev"
	Commit  = "<unknown>"
	Date    = "<unknown>"
)

// String returns a one-line description of the running binary.
func String() string {
	return fmt.Sprintf("tsq %s (commit %s, built %s)", Version, revision(), Date)
}

// revision prefers the link-time commit and falls back to the VCS stamp
// recorded by the Go toolchain.
func revision() string {
	if Commit != "<unknown>" {
		return Commit
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			return setting.Value
		}
	}

	return Commit
}
