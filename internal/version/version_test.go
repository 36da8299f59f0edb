package version

import "testing"

func TestCurrentDefaults(t *testing.T) {
	if got := Current().Version; got != Version {
		t.Fatalf("Current().Version = %q, want %q", got, Version)
	}
}

func TestCurrentCanBeOverridden(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	Version = " 1.2.3-rc.1 "
	GitCommit = "abc123def456\n"
	BuildDate = "2024-01-15T10:30:00Z"

	info := Current()
	if info.Version != "1.2.3-rc.1" || info.GitCommit != "abc123def456" || info.BuildDate != BuildDate {
		t.Fatalf("unexpected info %+v", info)
	}
	major, minor, patch := info.Parts()
	if major != "1" || minor != "2" || patch != "3-rc.1" {
		t.Fatalf("Parts() = %q %q %q", major, minor, patch)
	}
}

func TestCurrentEmptyVersion(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "   "
	info := Current()
	if info.Version != "dev" {
		t.Fatalf("Version = %q, want dev", info.Version)
	}
	if _, minor, patch := info.Parts(); minor != "" || patch != "" {
		t.Fatalf("expected empty minor and patch, got %q %q", minor, patch)
	}
}
