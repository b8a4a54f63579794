package version

import "testing"

func TestCurrent(t *testing.T) {
	info := Current("clubcore")
	if info.Service != "clubcore" {
		t.Errorf("Service = %q, want clubcore", info.Service)
	}
	if info.Version != DevelopmentVersion {
		t.Errorf("Version = %q, want %q in unflagged builds", info.Version, DevelopmentVersion)
	}
	if info.Commit != Unknown {
		t.Errorf("Commit = %q, want %q", info.Commit, Unknown)
	}
}

func TestCurrentNormalizesBlankService(t *testing.T) {
	info := Current("   ")
	if info.Service != Unknown {
		t.Errorf("Service = %q, want %q for blank input", info.Service, Unknown)
	}
}

func TestCurrentOverriddenMetadata(t *testing.T) {
	origVersion, origCommit, origBuild := AppVersion, GitCommit, BuildTime
	t.Cleanup(func() {
		AppVersion, GitCommit, BuildTime = origVersion, origCommit, origBuild
	})

	AppVersion = " v1.2.3 "
	GitCommit = "abc1234"
	BuildTime = "2026-09-01T00:00:00Z"

	info := Current("clubcore")
	if info.Version != "v1.2.3" {
		t.Errorf("Version = %q, want trimmed v1.2.3", info.Version)
	}
	if info.Commit != "abc1234" {
		t.Errorf("Commit = %q, want abc1234", info.Commit)
	}
	if info.BuildTime != "2026-09-01T00:00:00Z" {
		t.Errorf("BuildTime = %q", info.BuildTime)
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Service: "clubcore", Version: "v1.0.0", Commit: "abc", BuildTime: "ts"}
	want := "clubcore@v1.0.0 (commit=abc, build_time=ts)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
