package main

import (
	"strings"
	"testing"

	"github.com/fbkclanna/vercast/internal/testutil"
	"github.com/fbkclanna/vercast/internal/workspace"
)

func createPolyglot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "packages/web/package.json", `{
  "name": "@scope/web",
  "version": "1.0.0",
  "dependencies": {
    "core": "^2.0.0"
  }
}
`)
	testutil.WriteFile(t, dir, "crates/core/Cargo.toml", "[package]\nname = \"core\"\nversion = \"2.0.0\"\n")
	testutil.WriteFile(t, dir, "packages/web/node_modules/left-pad/package.json", `{"name": "left-pad", "version": "1.3.0"}`)
	testutil.WriteFile(t, dir, "tools/package.json", `{"name": "tools", "private": true}`)
	return dir
}

func TestRunInit(t *testing.T) {
	dir := createPolyglot(t)

	out, _, err := execute(t, "--cwd", dir, "init", "--yes", "--git-site-url", "https://github.com/example/poly")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Initialized .changes with 2 package(s).") {
		t.Errorf("output = %s", out)
	}
	if !testutil.Exists(dir, ".changes/readme.md") {
		t.Error("expected .changes/readme.md")
	}

	ws, err := workspace.Load(dir)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	cfg := ws.Config
	if cfg.GitSiteURL != "https://github.com/example/poly/" {
		t.Errorf("gitSiteUrl = %q", cfg.GitSiteURL)
	}
	if strings.Join(cfg.PackageNames, ",") != "core,@scope/web" {
		t.Errorf("packages = %v", cfg.PackageNames)
	}
	web, ok := cfg.Package("@scope/web")
	if !ok {
		t.Fatal("@scope/web not configured")
	}
	if web.Manager != "javascript" || web.Path != "./packages/web" {
		t.Errorf("@scope/web = %+v", web)
	}
	if len(web.Dependencies) != 1 || web.Dependencies[0] != "core" {
		t.Errorf("@scope/web dependencies = %v", web.Dependencies)
	}
	core, _ := cfg.Package("core")
	if core.Manager != "rust" || len(core.Commands["publish"]) != 1 {
		t.Errorf("core = %+v", core)
	}
	if m, ok := ws.ManifestPath("core"); !ok || !strings.HasSuffix(m, "Cargo.toml") {
		t.Errorf("core manifest = %q", m)
	}
}

func TestRunInit_existing(t *testing.T) {
	root := testutil.CreateMonorepo(t)
	if _, _, err := execute(t, "--cwd", root, "init", "--yes"); err == nil {
		t.Fatal("expected error for an existing config")
	}
}

func TestRunInit_noPackages(t *testing.T) {
	if _, _, err := execute(t, "--cwd", t.TempDir(), "init", "--yes"); err == nil {
		t.Fatal("expected error without packages")
	}
}

func TestSkipped(t *testing.T) {
	tests := []struct {
		rel  string
		want bool
	}{
		{"package.json", false},
		{"packages/a/package.json", false},
		{"node_modules/x/package.json", true},
		{"a/node_modules/x/package.json", true},
		{"crates/x/target/package/Cargo.toml", true},
		{"app/.dart_tool/pubspec.yaml", true},
		{"targets/x/Cargo.toml", false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			if got := skipped(tt.rel); got != tt.want {
				t.Errorf("skipped(%q) = %v, want %v", tt.rel, got, tt.want)
			}
		})
	}
}
