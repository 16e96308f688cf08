package main

import (
	"strings"
	"testing"

	"github.com/fbkclanna/vercast/internal/testutil"
)

func TestRunPreview(t *testing.T) {
	root := testutil.CreateMonorepo(t)
	testutil.AddChange(t, root, "feat.md", "---\npkg-b: minor\n---\n\nAdd a feature.\n")

	out, _, err := execute(t, "--cwd", root, "preview", "--identifier", "branch.abc1234", "--tag", "next")
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !strings.HasPrefix(out, "Ran publish for ") || !strings.Contains(out, "pkg-b") {
		t.Errorf("output = %q", out)
	}
	if !testutil.Exists(root, ".changes/feat.md") {
		t.Error("preview must not consume change files")
	}
}

func TestRunPreview_requiresIdentifier(t *testing.T) {
	root := testutil.CreateMonorepo(t)
	if _, _, err := execute(t, "--cwd", root, "preview"); err == nil {
		t.Fatal("expected error without --identifier")
	}
}
