package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewVersionCmd tests the version command output.
func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"padarchive version", "commit:", "built:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

// TestGetVersion tests the fallback chain.
func TestGetVersion(t *testing.T) {
	if got := getVersion(); got == "" {
		t.Error("expected non-empty version")
	}
	if got := getCommit(); got == "" {
		t.Error("expected non-empty commit")
	}
	if got := getDate(); got == "" {
		t.Error("expected non-empty date")
	}
}

// TestGetVersionFromLdflags tests the ldflags override.
func TestGetVersionFromLdflags(t *testing.T) {
	orig := version
	defer func() { version = orig }()

	version = "v1.2.3"
	if got := getVersion(); got != "v1.2.3" {
		t.Errorf("expected ldflags version, got %q", got)
	}
}
