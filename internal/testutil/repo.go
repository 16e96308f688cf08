package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// CreateRepo creates a git repository on branch main with an initial commit
// in a temp directory. Returns the path to the work tree.
func CreateRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	InitRepo(t, dir)
	return dir
}

// InitRepo turns an existing directory into a git repository and commits
// whatever it contains.
func InitRepo(t *testing.T, dir string) {
	t.Helper()
	run(t, dir, "git", "init", "-b", "main")
	run(t, dir, "git", "config", "user.email", "test@example.com")
	run(t, dir, "git", "config", "user.name", "Test")

	readme := filepath.Join(dir, "README.md")
	if _, err := os.Stat(readme); os.IsNotExist(err) {
		WriteFile(t, dir, "README.md", "# test\n")
	}
	run(t, dir, "git", "add", ".")
	run(t, dir, "git", "commit", "-m", "initial commit")
}

// CommitFile writes content to rel inside dir and commits it with message.
func CommitFile(t *testing.T, dir, rel, content, message string) {
	t.Helper()
	WriteFile(t, dir, rel, content)
	run(t, dir, "git", "add", "--", rel)
	run(t, dir, "git", "commit", "-m", message)
}

func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("command %s %v failed: %v", name, args, err)
	}
}
