package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fbkclanna/vercast/internal/testutil"
)

func TestRunPublish(t *testing.T) {
	root := testutil.CreateMonorepo(t)

	out, _, err := execute(t, "--cwd", root, "publish")
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if !strings.HasPrefix(out, "Ran publish for ") || !strings.Contains(out, "pkg-a") || !strings.Contains(out, "pkg-b") {
		t.Errorf("output = %q", out)
	}
}

func TestRunPublish_json(t *testing.T) {
	root := testutil.CreateMonorepo(t)

	out, _, err := execute(t, "--cwd", root, "publish", "--only", "pkg-b", "--json")
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	var report struct {
		Packages []string                  `json:"packages"`
		Record   map[string]map[string]any `json:"commandsRan"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(report.Packages) != 1 || report.Packages[0] != "pkg-b" {
		t.Errorf("packages = %v", report.Packages)
	}
	if _, ok := report.Record["pkg-b"]; !ok {
		t.Errorf("record = %v", report.Record)
	}
}

func TestRunRun_notConfigured(t *testing.T) {
	root := testutil.CreateMonorepo(t)

	out, _, err := execute(t, "--cwd", root, "run", "build")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if strings.TrimSpace(out) != "No commands configured to run on [build]." {
		t.Errorf("output = %q", out)
	}
}

func TestRunRun_requiresWorkflow(t *testing.T) {
	if _, _, err := execute(t, "--cwd", t.TempDir(), "run"); err == nil {
		t.Fatal("expected error without a workflow")
	}
}
