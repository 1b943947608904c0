package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the semantic version of the build, set via ldflags.
	//nolint:gochecknoglobals // Injected by the linker.
	Version = "0.1.0-dev"
	// Commit is the git revision, set via ldflags or read from build info.
	//nolint:gochecknoglobals // Injected by the linker.
	Commit = ""
	// BuildTime is the commit or build timestamp, set via ldflags or read from build info.
	//nolint:gochecknoglobals // Injected by the linker.
	BuildTime = ""
)

// Short returns only the semantic version string.
func Short() string {
	return Version
}

// Full returns the version with revision, timestamp and Go version.
func Full() string {
	commit, built := Commit, BuildTime
	if commit == "" || built == "" {
		vcsCommit, vcsTime := fromBuildInfo()
		commit = firstNonEmpty(commit, vcsCommit, "none")
		built = firstNonEmpty(built, vcsTime, "unknown")
	}

	return fmt.Sprintf("%s (commit %s, built %s, %s)", Version, commit, built, runtime.Version())
}

// fromBuildInfo reads the VCS stamp the go command embeds in module builds.
func fromBuildInfo() (revision, timestamp string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}

	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
			if len(revision) > 12 {
				revision = revision[:12]
			}
		case "vcs.time":
			timestamp = s.Value
		}
	}

	return revision, timestamp
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
