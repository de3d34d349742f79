// Package version holds build metadata for the k2tf binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// Version is the application version, set via ldflags.
	Version string
	// Branch is the git branch, set via ldflags.
	Branch string
	// BuildUser is the user who built the binary, set via ldflags.
	BuildUser string
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string

	// Revision is the git commit revision.
	Revision = getRevision()
	// GoVersion is the Go version used to build.
	GoVersion = runtime.Version()
	// GoOS is the operating system target.
	GoOS = runtime.GOOS
	// GoArch is the architecture target.
	GoArch = runtime.GOARCH
)

func getRevision() string {
	rev := "unknown"

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range buildInfo.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
		case "vcs.modified":
			if v.Value == "true" {
				modified = true
			}
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}

// UserAgent returns the User-Agent sent to remote services.
func UserAgent() string {
	v := Version
	if v == "" {
		v = "dev"
	}

	return "k2tf/" + v + " (" + GoOS + "/" + GoArch + ")"
}

// String returns a multi-line summary of the build metadata.
func String() string {
	var sb strings.Builder

	fields := []struct{ name, value string }{
		{"version", Version},
		{"revision", Revision},
		{"branch", Branch},
		{"build user", BuildUser},
		{"build date", BuildDate},
		{"go version", GoVersion},
		{"platform", GoOS + "/" + GoArch},
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}

		fmt.Fprintf(&sb, "%-11s %s\n", f.name+":", f.value)
	}

	return sb.String()
}
