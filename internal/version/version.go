// Package version holds build-time metadata for the aadis binary.
package version

// Version is the semantic version of this build.
// Overridden at build time via -ldflags "-X .../internal/version.Version=v1.2.3".
var Version = "dev"

// Commit is the git commit hash of this build, injected via -ldflags.
var Commit = "unknown"

// Date is the build timestamp, injected via -ldflags.
var Date = "unknown"
