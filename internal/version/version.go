package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// Version and Commit can be set at build time:
//
//	go build -ldflags="-X github.com/muurk/lightbridge/internal/version.Version=v1.2.3 \
//	                   -X github.com/muurk/lightbridge/internal/version.Commit=abc123"
//
// Otherwise they come from the binary's embedded build info: the module
// version for 'go install ...@v1.2.3' builds, or the VCS revision and time
// for builds from a checkout. The server reports them on /health and the
// cloud client sends Version in its User-Agent.
var (
	Version = ""
	Commit  = ""
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		Version, Commit = resolve(Version, Commit, info)
	}
	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// resolve fills whichever of version and commit is empty from build info.
func resolve(version, commit string, info *debug.BuildInfo) (string, string) {
	vcs := map[string]string{}
	for _, s := range info.Settings {
		vcs[s.Key] = s.Value
	}

	if commit == "" {
		if rev := vcs["vcs.revision"]; rev != "" {
			if len(rev) > 7 {
				rev = rev[:7]
			}
			if vcs["vcs.modified"] == "true" {
				rev += "-dirty"
			}
			commit = rev
		}
	}

	if version == "" {
		switch {
		case info.Main.Version != "" && info.Main.Version != "(devel)":
			version = info.Main.Version
		case vcs["vcs.time"] != "":
			if t, err := time.Parse(time.RFC3339, vcs["vcs.time"]); err == nil {
				version = "dev-" + t.Format("20060102")
			}
		}
	}
	return version, commit
}

// Full returns the version with its commit, e.g. "v1.2.3 (commit: abc1234)".
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// UserAgent identifies this build in outbound HTTP requests.
func UserAgent() string {
	return "lightbridge/" + Version
}

// BuildInfo is the version block reported by the server's health endpoint
// and 'lightbridge version --format json'.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// Info returns the current build's version block.
func Info() BuildInfo {
	return BuildInfo{Version: Version, Commit: Commit, GoVersion: runtime.Version()}
}
