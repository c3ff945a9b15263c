package version

import (
	"strings"
	"testing"
	"time"
)

func TestGetUsesLinkedValues(t *testing.T) {
	origVersion, origBuild := Version, BuildTime
	t.Cleanup(func() { Version, BuildTime = origVersion, origBuild })

	Version = "1.2.0"
	BuildTime = "2026-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.2.0" {
		t.Errorf("Version = %q", info.Version)
	}
	want := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	if !info.BuiltAt.Equal(want) {
		t.Errorf("BuiltAt = %v, want %v", info.BuiltAt, want)
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"no commit", Info{Version: "dev"}, "dev"},
		{"commit", Info{Version: "1.0.0", Commit: "abc1234"}, "1.0.0-abc1234"},
		{"dirty", Info{Version: "1.0.0", Commit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.Short(); got != tc.want {
				t.Errorf("Short() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestString(t *testing.T) {
	info := Info{
		Version:   "1.0.0",
		GoVersion: "go1.26.0",
		BuiltAt:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	got := info.String()
	if !strings.HasPrefix(got, "1.0.0 go1.26.0") {
		t.Errorf("String() = %q", got)
	}
	if !strings.Contains(got, "(built 2026-03-01T00:00:00Z)") {
		t.Errorf("String() = %q", got)
	}
}
