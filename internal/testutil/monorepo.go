package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to rel inside dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil { //nolint:gosec // test directory
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
}

// ReadFile returns the content of rel inside dir.
func ReadFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, rel)) //nolint:gosec // test file
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Exists reports whether rel exists inside dir.
func Exists(dir, rel string) bool {
	_, err := os.Stat(filepath.Join(dir, rel))
	return err == nil
}

// TwoPackageConfig configures pkg-a and pkg-b as javascript packages where
// pkg-a depends on pkg-b. Commands echo so workflows can run for real.
const TwoPackageConfig = `{
  "gitSiteUrl": "https://github.com/example/mono/",
  "pkgManagers": {
    "javascript": {
      "version": true,
      "getPublishedVersion": "echo 0.0.0",
      "prepublish": "echo prepublishing {{ .Pkg.Name }}",
      "publish": ["echo publishing {{ .Pkg.Name }}@{{ .PkgFile.Version }}"],
      "postpublish": "echo published {{ .Pkg.Name }}"
    }
  },
  "packages": {
    "pkg-a": {
      "path": "./packages/pkg-a",
      "manager": "javascript",
      "dependencies": ["pkg-b"]
    },
    "pkg-b": {
      "path": "./packages/pkg-b",
      "manager": "javascript"
    }
  }
}
`

// CreateMonorepo lays out a two-package javascript monorepo in a temp
// directory: .changes/config.json plus package.json manifests at pkg-a 0.5.0
// and pkg-b 0.8.8. Returns the root.
func CreateMonorepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteFile(t, dir, ".changes/config.json", TwoPackageConfig)
	WriteFile(t, dir, "packages/pkg-a/package.json", `{
  "name": "pkg-a",
  "version": "0.5.0",
  "dependencies": {
    "pkg-b": "0.8.8"
  }
}
`)
	WriteFile(t, dir, "packages/pkg-b/package.json", `{
  "name": "pkg-b",
  "version": "0.8.8"
}
`)
	return dir
}

// AddChange writes a change file into the .changes folder of root.
func AddChange(t *testing.T, root, name, content string) {
	t.Helper()
	WriteFile(t, root, filepath.Join(".changes", name), content)
}
