// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/dmarkhas/renderdeploy-go/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/dmarkhas/renderdeploy-go/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/dmarkhas/renderdeploy-go/internal/buildinfo.BuildDate=...
var BuildDate = ""

// Release formats the version for error-tracker release tags and the
// --version flag. Falls back to "dev" for local builds without ldflags.
func Release() string {
	switch {
	case Version != "" && Commit != "":
		return Version + "+" + short(Commit)
	case Version != "":
		return Version
	case Commit != "":
		return short(Commit)
	default:
		return "dev"
	}
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}

