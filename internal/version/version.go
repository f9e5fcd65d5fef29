// Package version reports the build identity of the targetforge binary and
// of the bundler it embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

const esbuildModule = "github.com/evanw/esbuild"

// Info describes one binary.
type Info struct {
	Version        string    `json:"version" yaml:"version"`
	GitCommit      string    `json:"git_commit" yaml:"git_commit"`
	BuildTime      time.Time `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	GoVersion      string    `json:"go_version" yaml:"go_version"`
	Platform       string    `json:"platform" yaml:"platform"`
	EsbuildVersion string    `json:"esbuild_version" yaml:"esbuild_version"`
	Dirty          bool      `json:"dirty,omitempty" yaml:"dirty,omitempty"`
}

// Get collects version information from the linker flags, falling back to
// the module build info embedded by the Go toolchain.
func Get() Info {
	info := Info{
		Version:        Version,
		GitCommit:      GitCommit,
		BuildTime:      parseTime(BuildTime),
		GoVersion:      runtime.Version(),
		Platform:       runtime.GOOS + "/" + runtime.GOARCH,
		EsbuildVersion: "unknown",
	}

	build, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return fromBuildInfo(info, build)
}

func fromBuildInfo(info Info, build *debug.BuildInfo) Info {
	for _, dep := range build.Deps {
		if dep.Path == esbuildModule {
			info.EsbuildVersion = dep.Version
			if dep.Replace != nil {
				info.EsbuildVersion = dep.Replace.Version
			}
		}
	}

	for _, setting := range build.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "" || info.GitCommit == "unknown" {
				info.GitCommit = setting.Value
			}
		case "vcs.time":
			if info.BuildTime.IsZero() {
				info.BuildTime = parseTime(setting.Value)
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}

	if info.Version == "" || info.Version == "dev" {
		switch {
		case build.Main.Version != "" && build.Main.Version != "(devel)":
			info.Version = build.Main.Version
		case len(info.GitCommit) >= 7 && info.GitCommit != "unknown":
			info.Version = "dev-" + info.GitCommit[:7]
		default:
			info.Version = "dev"
		}
	}

	return info
}

// Short renders "<version> (<commit>)".
func (i Info) Short() string {
	if len(i.GitCommit) >= 7 && i.GitCommit != "unknown" && !strings.HasPrefix(i.Version, "dev-") {
		return fmt.Sprintf("%s (%s)", i.Version, i.GitCommit[:7])
	}
	return i.Version
}

// Pairs lists the fields in display order.
func (i Info) Pairs() [][2]string {
	pairs := [][2]string{
		{"Version", i.Version},
		{"Commit", i.GitCommit},
	}
	if !i.BuildTime.IsZero() {
		pairs = append(pairs, [2]string{"Built", i.BuildTime.Format(time.RFC3339)})
	}
	pairs = append(pairs,
		[2]string{"Go", i.GoVersion},
		[2]string{"Platform", i.Platform},
		[2]string{"esbuild", i.EsbuildVersion},
	)
	if i.Dirty {
		pairs = append(pairs, [2]string{"Dirty", "true"})
	}
	return pairs
}

// IsRelease reports whether the binary was built from a tagged version.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !strings.HasPrefix(i.Version, "dev-")
}

func parseTime(value string) time.Time {
	if value == "" || value == "unknown" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
