package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Commit is one entry from the history of a change file.
type Commit struct {
	HashShort string `json:"hashShort"`
	HashLong  string `json:"hashLong"`
	Date      string `json:"date"`
	Subject   string `json:"commitSubject"`
}

// FileCommits returns the commits that added, renamed or modified path,
// oldest first.
func FileCommits(dir, path string) ([]Commit, error) {
	out, err := git(dir, "log", "--reverse", "--format=%h %H %as %s",
		"--diff-filter=ARM", "--remove-empty", "--", path)
	if err != nil {
		return nil, err
	}
	return parseLog(out), nil
}

// parseLog parses lines of the form "<short> <long> <date> <subject>".
func parseLog(out string) []Commit {
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), " ", 4)
		if len(parts) < 3 {
			continue
		}
		c := Commit{HashShort: parts[0], HashLong: parts[1], Date: parts[2]}
		if len(parts) == 4 {
			c.Subject = parts[3]
		}
		commits = append(commits, c)
	}
	return commits
}

// CurrentBranch returns the checked out branch, or "" on a detached HEAD.
func CurrentBranch(dir string) (string, error) {
	out, err := git(dir, "symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		// symbolic-ref --quiet exits 1 only when HEAD is not a symbolic ref.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return out, nil
}

// HeadCommit returns the abbreviated hash of HEAD.
func HeadCommit(dir string) (string, error) {
	return git(dir, "rev-parse", "--short", "HEAD")
}

// IsDirty reports uncommitted or untracked files in the work tree.
func IsDirty(dir string) (bool, error) {
	out, err := git(dir, "status", "--porcelain")
	return out != "", err
}

// IsRepo reports whether dir is inside a git work tree.
func IsRepo(dir string) bool {
	out, err := git(dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// IsGitInstalled reports whether git is on PATH.
func IsGitInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// Version returns the "git version" line.
func Version() (string, error) {
	return git(".", "version")
}

// Init creates a repository in dir.
func Init(dir string) error {
	_, err := git(dir, "init")
	return err
}

// Add stages paths.
func Add(dir string, paths ...string) error {
	_, err := git(dir, append([]string{"add", "--"}, paths...)...)
	return err
}

// CommitAll commits the index with message, setting a repo-local identity
// when none is configured.
func CommitAll(dir, message string) error {
	for key, fallback := range map[string]string{"user.name": "vercast", "user.email": "vercast@localhost"} {
		if _, err := git(dir, "config", key); err == nil {
			continue
		}
		if _, err := git(dir, "config", key, fallback); err != nil {
			return fmt.Errorf("setting commit identity: %w", err)
		}
	}
	_, err := git(dir, "commit", "--quiet", "-m", message)
	return err
}

// git runs a git subcommand in dir and returns its trimmed stdout. Stderr
// is folded into the error.
func git(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}
