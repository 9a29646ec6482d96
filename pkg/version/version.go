// Package version holds the application version string.
package version

// Version is the current application version.
// Bumped manually on release.
const Version = "0.4.0"
