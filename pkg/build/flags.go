// SPDX-License-Identifier: MIT
//
// Package build exposes build metadata embedded at compile time via
// -ldflags. Name, version, commit and build time default to "dev" values
// during development so the binary still runs without linker flags.
package build

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Populated by -ldflags at compile time.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "tuner",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
)

// Initialize copies any ldflags-provided values into the buildFlags
// struct. Missing values keep their development defaults. Call once,
// early in startup.
func Initialize() {
	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
