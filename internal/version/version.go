// Package version holds build information injected with ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is set with -ldflags "-X github.com/jmylchreest/cwal/internal/version.Version=x.y.z".
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"

	// Date is the build time in RFC3339.
	Date = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build information.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns the line printed by "cwal version".
func String() string {
	info := GetInfo()
	if Commit == "unknown" || Date == "unknown" {
		return fmt.Sprintf("cwal version %s (%s, %s)", info.Version, info.GoVersion, info.Platform)
	}

	commit := info.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("cwal version %s (commit: %s, built: %s, %s, %s)",
		info.Version, commit, info.Date, info.GoVersion, info.Platform)
}

// UserAgent returns the User-Agent sent with outgoing requests.
func UserAgent() string {
	return "cwal/" + Version
}
