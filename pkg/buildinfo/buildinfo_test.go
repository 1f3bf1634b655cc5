package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func reset(t *testing.T, version, commit, date string) {
	t.Helper()
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })
	Version, Commit, Date = version, commit, date
}

func TestFromBuildInfo(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	reset(t, "dev", "none", "unknown")
	fromBuildInfo(info)
	if Version != "v1.4.0" || Commit != "abc123" || Date != "2026-01-02T03:04:05Z" {
		t.Errorf("got %s", String())
	}
}

func TestFromBuildInfoKeepsLdflags(t *testing.T) {
	reset(t, "v2.0.0", "deadbeef", "2025-12-31")
	fromBuildInfo(&debug.BuildInfo{
		Main:     debug.Module{Version: "v1.4.0"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	})
	if Version != "v2.0.0" || Commit != "deadbeef" || Date != "2025-12-31" {
		t.Errorf("ldflags values overwritten: %s", String())
	}
}

func TestFromBuildInfoDevel(t *testing.T) {
	reset(t, "dev", "none", "unknown")
	fromBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if Version != "dev" {
		t.Errorf("Version = %q, want dev", Version)
	}
}

func TestTemplate(t *testing.T) {
	reset(t, "v1.0.0", "abc", "today")
	if got := Template(); !strings.Contains(got, "{{.Name}} version v1.0.0") || !strings.Contains(got, "commit: abc") {
		t.Errorf("Template() = %q", got)
	}
}
