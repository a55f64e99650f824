package version

import (
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetVersionInfoDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"

	info := GetVersionInfo()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
}

func TestGetVersionInfoRelease(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.4.0"
	GitCommit = "0123456789abcdef"

	info := GetVersionInfo()
	if !info.IsRelease {
		t.Error("1.4.0 should be a release")
	}
	if info.GitCommit != "0123456" {
		t.Errorf("expected commit truncated to 7 chars, got %q", info.GitCommit)
	}
}

func TestGetShortVersion(t *testing.T) {
	defer saveAndRestore()()
	Version = "2.0.0"
	GitCommit = "abcdef1"

	got := GetShortVersion()
	if !strings.HasPrefix(got, "2.0.0-abcdef1") {
		t.Errorf("expected prefix 2.0.0-abcdef1, got %q", got)
	}
}
