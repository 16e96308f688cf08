package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fbkclanna/vercast/internal/testutil"
)

func TestFileCommits(t *testing.T) {
	dir := testutil.CreateRepo(t)
	testutil.CommitFile(t, dir, ".changes/feat.md", "---\n\"pkg-a\": minor\n---\nfeat\n", "add feature change (#12)")
	testutil.CommitFile(t, dir, ".changes/feat.md", "---\n\"pkg-a\": major\n---\nfeat\n", "escalate")

	commits, err := FileCommits(dir, ".changes/feat.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("commits = %d, want 2", len(commits))
	}
	if commits[0].Subject != "add feature change (#12)" {
		t.Errorf("first subject = %q", commits[0].Subject)
	}
	if len(commits[0].HashShort) < 7 || len(commits[0].HashLong) != 40 {
		t.Errorf("unexpected hashes: %+v", commits[0])
	}
	if len(commits[0].Date) != len("2006-01-02") {
		t.Errorf("date = %q, want YYYY-MM-DD", commits[0].Date)
	}
}

func TestFileCommits_untracked(t *testing.T) {
	dir := testutil.CreateRepo(t)
	if err := os.WriteFile(filepath.Join(dir, "loose.md"), []byte("x"), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
	commits, err := FileCommits(dir, "loose.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(commits) != 0 {
		t.Errorf("commits = %d, want 0", len(commits))
	}
}

func TestParseLog(t *testing.T) {
	out := "abc1234 abc1234def 2026-01-02 fix: thing\n\nbad\ndef5678 def5678abc 2026-01-03\n"
	commits := parseLog(out)
	if len(commits) != 2 {
		t.Fatalf("commits = %d, want 2", len(commits))
	}
	if commits[0].Subject != "fix: thing" {
		t.Errorf("subject = %q", commits[0].Subject)
	}
	if commits[1].Subject != "" || commits[1].Date != "2026-01-03" {
		t.Errorf("unexpected second commit: %+v", commits[1])
	}
}

func TestCurrentBranch(t *testing.T) {
	dir := testutil.CreateRepo(t)
	branch, err := CurrentBranch(dir)
	if err != nil {
		t.Fatal(err)
	}
	if branch != "main" {
		t.Errorf("branch = %q, want main", branch)
	}
}

func TestCurrentBranch_detached(t *testing.T) {
	dir := testutil.CreateRepo(t)
	if _, err := git(dir, "checkout", "--quiet", "--detach"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	branch, err := CurrentBranch(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if branch != "" {
		t.Errorf("branch = %q, want empty on detached HEAD", branch)
	}
}

func TestCurrentBranch_notARepo(t *testing.T) {
	if _, err := CurrentBranch(t.TempDir()); err == nil {
		t.Fatal("expected error outside a repository")
	}
}

func TestHeadCommit(t *testing.T) {
	dir := testutil.CreateRepo(t)
	sha, err := HeadCommit(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(sha) < 7 {
		t.Errorf("short sha too short: %q", sha)
	}
}

func TestIsDirty(t *testing.T) {
	dir := testutil.CreateRepo(t)
	dirty, err := IsDirty(dir)
	if err != nil {
		t.Fatal(err)
	}
	if dirty {
		t.Error("expected clean repo")
	}
	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
	dirty, err = IsDirty(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !dirty {
		t.Error("expected dirty repo")
	}
}

func TestIsRepo(t *testing.T) {
	dir := testutil.CreateRepo(t)
	sub := filepath.Join(dir, "packages", "a")
	if err := os.MkdirAll(sub, 0755); err != nil { //nolint:gosec // test directory
		t.Fatal(err)
	}
	if !IsRepo(sub) {
		t.Error("expected subdirectory of a repo to be detected")
	}
	if IsRepo(t.TempDir()) {
		t.Error("expected plain temp dir not to be a repo")
	}
}

func TestInitAddCommit(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
	if err := Add(dir, "a.txt"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := CommitAll(dir, "first"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := HeadCommit(dir); err != nil {
		t.Errorf("expected HEAD after commit: %v", err)
	}
}
