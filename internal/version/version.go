// Package version holds the build fingerprint of the lumen CLI. The
// variables can be overridden at build time via -ldflags.
package version

import "strings"

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Info is a normalized snapshot of the build variables.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// Current returns the build variables with surrounding whitespace removed
// and "dev" standing in for an empty version.
func Current() Info {
	v := strings.TrimSpace(Version)
	if v == "" {
		v = "dev"
	}
	return Info{
		Version:   v,
		GitCommit: strings.TrimSpace(GitCommit),
		BuildDate: strings.TrimSpace(BuildDate),
	}
}

// Parts splits the version core into major, minor and patch. Missing parts
// are empty; a pre-release suffix stays on patch.
func (i Info) Parts() (major, minor, patch string) {
	parts := strings.SplitN(i.Version, ".", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return parts[0], parts[1], parts[2]
}
