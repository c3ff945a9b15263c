// Package version reports the build identity of the axin binary.
//
// Version and BuildTime are stamped at link time:
//
//	go build -ldflags "-X github.com/kbukum/axin/version.Version=1.2.0"
//
// The commit and dirty flag come from the VCS settings the Go toolchain
// embeds.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	Version   = "dev"
	BuildTime = ""
)

// Info is the build identity.
type Info struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit,omitempty"`
	Dirty     bool      `json:"dirty,omitempty"`
	GoVersion string    `json:"go_version"`
	BuiltAt   time.Time `json:"built_at,omitzero"`
}

// Get collects the build identity.
func Get() Info {
	info := Info{Version: Version}
	if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
		info.BuiltAt = t
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
			if len(info.Commit) > 7 {
				info.Commit = info.Commit[:7]
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		case "vcs.time":
			if info.BuiltAt.IsZero() {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.BuiltAt = t
				}
			}
		}
	}
	return info
}

// Short returns the version with the commit appended when known, e.g.
// "1.2.0-abc1234-dirty".
func (i Info) Short() string {
	if i.Commit == "" {
		return i.Version
	}
	if i.Dirty {
		return fmt.Sprintf("%s-%s-dirty", i.Version, i.Commit)
	}
	return fmt.Sprintf("%s-%s", i.Version, i.Commit)
}

// String adds the Go version and build date to Short.
func (i Info) String() string {
	s := i.Short()
	if i.GoVersion != "" {
		s += " " + i.GoVersion
	}
	if !i.BuiltAt.IsZero() {
		s += " (built " + i.BuiltAt.UTC().Format(time.RFC3339) + ")"
	}
	return s
}
