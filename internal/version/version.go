// Package version carries build identification stamped in via ldflags.
package version

import "fmt"

var (
	// Version is the semantic version of the binary, set at build time.
	Version = "dev"
	// Commit is the git commit hash, set at build time.
	Commit = "unknown"
	// BuildDate is the build timestamp, set at build time.
	BuildDate = "unknown"
)

// String renders the build identification on one line.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, BuildDate)
}
