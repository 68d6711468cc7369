// Package version exposes build metadata stamped via -ldflags.
package version

import "runtime"

var (
	// GitRelease is the release tag (e.g., "v0.3.0"), set at build time.
	GitRelease = "dev"
	// GitCommit is the short commit hash, set at build time.
	GitCommit = "unknown"
	// GitCommitDate is the commit date, set at build time.
	GitCommitDate = "unknown"
	// GoInfo is the Go toolchain used for the build.
	GoInfo = runtime.Version()
)
