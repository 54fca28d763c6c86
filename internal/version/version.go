package version

import "strings"

const (
	// Name of the application
	Name = "Tasklane"
)

var (
	// Version is the semantic version
	Version = "0.48.0"
	// BuildTime is set during build via ldflags
	BuildTime = "unknown"
	// GitCommit is set during build via ldflags
	GitCommit = "unknown"
)

// Full returns the complete version string.
func Full() string {
	if BuildTime != "unknown" && GitCommit != "unknown" {
		return Version + " (commit: " + GitCommit + ", built: " + BuildTime + ")"
	}
	return Version
}

// UserAgent identifies this build to outbound services such as object storage.
func UserAgent() (name, version string) {
	return strings.ToLower(Name), Version
}
