package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func reset(t *testing.T) {
	t.Helper()
	v, c := Version, Commit
	t.Cleanup(func() { Version, Commit = v, c })
	Version, Commit = "", ""
}

func TestFromBuildInfo_VCS(t *testing.T) {
	reset(t)

	fromBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2025-03-04T05:06:07Z"},
		},
	}, true)

	if Commit != "0123456-dirty" {
		t.Errorf("Commit = %s", Commit)
	}
	if Version != "dev-20250304" {
		t.Errorf("Version = %s", Version)
	}
}

func TestFromBuildInfo_ModuleVersion(t *testing.T) {
	reset(t)

	fromBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}}, true)

	if Version != "v0.3.1" {
		t.Errorf("Version = %s", Version)
	}
	if Commit != "" {
		t.Errorf("Commit = %s, want empty without VCS info", Commit)
	}
}

func TestFromBuildInfo_KeepsLdflags(t *testing.T) {
	reset(t)
	Version = "v1.0.0"

	fromBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "v0.0.1"}}, true)
	if Version != "v1.0.0" {
		t.Errorf("Version = %s, ldflags value should win", Version)
	}

	fromBuildInfo(nil, false)
}

func TestFullAndUserAgent(t *testing.T) {
	reset(t)
	Version, Commit = "v1.2.3", "abc1234"

	if Full() != "v1.2.3 (commit: abc1234)" {
		t.Errorf("Full() = %s", Full())
	}
	if !strings.HasPrefix(UserAgent(), "crosspoint/v1.2.3") {
		t.Errorf("UserAgent() = %s", UserAgent())
	}
}
