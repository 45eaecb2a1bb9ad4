package buildinfo

import (
	"runtime/debug"
	"testing"
)

func stubBuildInfo(t *testing.T, info *debug.BuildInfo) {
	t.Helper()
	orig, origVersion, origCommit := readBuildInfo, version, commit
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
	t.Cleanup(func() {
		readBuildInfo = orig
		version = origVersion
		commit = origCommit
	})
}

func TestVersionPrefersExplicitValue(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "v0.3.0"}})

	if got := Version(); got != "v0.3.0" {
		t.Fatalf("expected module version, got %q", got)
	}
	SetVersion("")
	SetVersion("v1.0.0")
	if got := Version(); got != "v1.0.0" {
		t.Fatalf("expected override, got %q", got)
	}
}

func TestVersionIgnoresDevelModule(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got := Version(); got != "dev" {
		t.Fatalf("expected dev, got %q", got)
	}
}

func TestCommitTruncatesRevision(t *testing.T) {
	stubBuildInfo(t, &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
	}})
	if got := Commit(); got != "0123456789ab" {
		t.Fatalf("unexpected commit %q", got)
	}

	commit = "feedface"
	if got := Commit(); got != "feedface" {
		t.Fatalf("expected ldflags commit, got %q", got)
	}
}
