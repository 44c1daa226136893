// Package build provides version and build information for webhook-notifier.
// This package intentionally has no dependencies on other internal packages
// to avoid import cycles.
package build

import "fmt"

var (
	// Version information - set via ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// IsDevBuild returns true if running a development build (not a release).
func IsDevBuild() bool {
	return Version == "dev"
}

// UserAgent is sent with every webhook request.
func UserAgent() string {
	return "Claude-Code-Webhook-Notifier/2.0"
}

// String returns a one-line version summary.
func String() string {
	return fmt.Sprintf("webhook-notifier %s (commit %s, built %s)", Version, Commit, BuildDate)
}
