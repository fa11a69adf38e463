// Package buildinfo reports the heightcompare version.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/heightcompare/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/heightcompare/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/heightcompare/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped binaries installed with `go install` fall back to the module
// version and VCS settings recorded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var resolveOnce sync.Once

// resolve fills unstamped fields from the embedded build info.
func resolve() {
	resolveOnce.Do(func() {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		if Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && Commit == "none":
				Commit = s.Value
			case s.Key == "vcs.time" && Date == "unknown":
				Date = s.Value
			}
		}
	})
}

// String returns the version, commit and build date on separate lines.
func String() string {
	resolve()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	resolve()
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}
