// Package version exposes build-time version information.
package version

import (
	"runtime/debug"
	"strings"
)

// These variables are intended to be populated at build time via -ldflags,
// for example:
//
//	-X github.com/tis24dev/backupmon/internal/version.Version=v0.3.0
//	-X github.com/tis24dev/backupmon/internal/version.Commit=abcdef123
//	-X github.com/tis24dev/backupmon/internal/version.Date=2026-01-01T00:00:00Z
var (
	// Version holds the semantic version of the binary. Defaults to a
	// development placeholder when not set by the build system.
	Version = "0.0.0-dev"

	// Commit holds the VCS commit hash used to build the binary (optional).
	Commit = ""

	// Date holds the build timestamp (optional).
	Date = ""
)

// readBuildInfo allows tests to substitute build metadata.
var readBuildInfo = debug.ReadBuildInfo

// String returns the effective version string. Preference order: the ldflags
// value, the main module version from build info, the development
// placeholder. A leading "v" is stripped.
func String() string {
	v := strings.TrimSpace(Version)

	if v == "" {
		if info, ok := readBuildInfo(); ok {
			if mv := strings.TrimSpace(info.Main.Version); mv != "" && mv != "(devel)" {
				v = mv
			}
		}
	}

	if v == "" {
		v = "0.0.0-dev"
	}

	return strings.TrimPrefix(v, "v")
}
