// Package version reports build information for the netview binaries.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Name is the program name used in version output.
const Name = "netview"

// Build information, set with
// -ldflags "-X github.com/ya-spark/netview-backendlog/pkg/version.Version=..."
var (
	// Version is the release version, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit hash. When not injected it is taken from the
	// VCS stamp embedded by the Go toolchain, if any.
	Commit = "unknown"

	// Date is the build date in RFC3339 format.
	Date = "unknown"

	// GoVersion is the Go version used to build the binary.
	GoVersion = runtime.Version()
)

func init() {
	if Commit != "unknown" {
		return
	}
	if rev, ok := vcsRevision(); ok {
		Commit = rev
	}
}

func vcsRevision() (string, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return shortRevision(s.Value), true
		}
	}
	return "", false
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// BuildInfo is structured version information for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// String returns a formatted version string with all build info.
func String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s, %s/%s)",
		Name, Version, Commit, Date, GoVersion, runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version string.
func Short() string {
	return Version
}

// GetInfo returns structured version information.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
