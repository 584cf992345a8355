package version

import (
	"strings"
	"testing"
)

func TestGetFullVersion(t *testing.T) {
	oldVersion, oldCommit := Version, CommitHash
	t.Cleanup(func() { Version, CommitHash = oldVersion, oldCommit })

	Version = "1.2.0"
	CommitHash = "unknown"
	if got := GetFullVersion(); got != "1.2.0" {
		t.Fatalf("expected bare version, got %q", got)
	}

	CommitHash = "0123456789abcdef"
	if got := GetFullVersion(); got != "1.2.0 (0123456)" {
		t.Fatalf("expected short hash, got %q", got)
	}

	CommitHash = "abc"
	if got := GetFullVersion(); got != "1.2.0 (abc)" {
		t.Fatalf("expected short commit kept whole, got %q", got)
	}
}

func TestGetBuildInfo(t *testing.T) {
	if info := GetBuildInfo(); !strings.Contains(info, "Commit: ") || !strings.HasPrefix(info, "datatrans ") {
		t.Fatalf("unexpected build info: %q", info)
	}
}
