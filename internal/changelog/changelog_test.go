package changelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fbkclanna/vercast/internal/change"
	"github.com/fbkclanna/vercast/internal/config"
	"github.com/fbkclanna/vercast/internal/git"
)

func decl(summary, tag string, commits ...git.Commit) *change.Declaration {
	d := &change.Declaration{
		Packages: []string{"pkg-a"},
		Releases: map[string]string{"pkg-a": "minor"},
		Tags:     map[string]string{},
		Summary:  summary,
		Meta:     change.Meta{Commits: commits},
	}
	if tag != "" {
		d.Tags["pkg-a"] = tag
	}
	return d
}

func TestRender(t *testing.T) {
	cascaded := decl("Bump pkg-b.", "")
	cascaded.Meta.Dependencies = []string{"pkg-b"}

	r := Release{
		Name:    "pkg-a",
		Version: "0.6.0",
		Changes: []*change.Declaration{
			decl("Plain change.", ""),
			decl("Fix the thing.", "bug", git.Commit{HashShort: "abc1234", HashLong: "abc1234def", Subject: "fix: thing (#12)"}),
			decl("Add feature.\nWith details.", "feat"),
			decl("Tidy up.", "chore"),
			cascaded,
		},
	}
	got := Render(r, Options{
		GitSiteURL: "https://github.com/example/mono/",
		ChangeTags: []config.Tag{{Key: "feat", Title: "New Features"}, {Key: "bug", Title: "Bug Fixes"}},
		Versions:   map[string]string{"pkg-b": "0.8.9"},
	})

	want := "## [0.6.0]\n" +
		"\n- Plain change.\n" +
		"\n### New Features\n\n- Add feature.\n  With details.\n" +
		"\n### Bug Fixes\n\n- [`abc1234`](https://github.com/example/mono/commit/abc1234def)([#12](https://github.com/example/mono/pull/12)) Fix the thing.\n" +
		"\n### Dependencies\n\n- Upgraded to `pkg-b@0.8.9`\n" +
		"\n### Chore\n\n- Tidy up.\n"
	if got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestRender_dependencyOnly(t *testing.T) {
	cascaded := decl("Bump pkg-b.", "")
	cascaded.Meta.Dependencies = []string{"pkg-b"}

	got := Render(Release{Name: "pkg-a", Version: "0.5.1", Changes: []*change.Declaration{cascaded}}, Options{})
	want := "## [0.5.1]\n\n- Bumped due to dependency.\n\n### Dependencies\n\n- Upgraded to latest `pkg-b`\n"
	if got != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestRender_defaultTag(t *testing.T) {
	got := Render(Release{Name: "pkg-a", Version: "1.0.0", Changes: []*change.Declaration{decl("Something.", "")}},
		Options{DefaultTag: "feat", ChangeTags: []config.Tag{{Key: "feat", Title: "Features"}}})
	if !strings.Contains(got, "### Features\n\n- Something.") {
		t.Errorf("Render = %q", got)
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		want     string
	}{
		{"empty", "", "# Changelog\n\n## [1.0.0]\n\n- x\n"},
		{"title only", "# Changelog\n", "# Changelog\n\n## [1.0.0]\n\n- x\n"},
		{
			"previous release",
			"# Changelog\n\n## [0.9.0]\n\n- y\n",
			"# Changelog\n\n## [1.0.0]\n\n- x\n\n## [0.9.0]\n\n- y\n",
		},
		{"no title", "## [0.9.0]\n", "# Changelog\n\n## [1.0.0]\n\n- x\n\n## [0.9.0]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Insert(tt.existing, "## [1.0.0]\n\n- x\n"); got != tt.want {
				t.Errorf("Insert =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(dir, "## [0.1.0]\n\n- First.\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Errorf("path = %q", path)
	}
	if _, err := Write(dir, "## [0.2.0]\n\n- Second.\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "# Changelog\n\n## [0.2.0]\n\n- Second.\n\n## [0.1.0]\n\n- First.\n"
	if string(data) != want {
		t.Errorf("changelog =\n%s\nwant\n%s", data, want)
	}
}

func TestSection(t *testing.T) {
	dir := t.TempDir()
	if got, err := Section(dir, "1.0.0"); err != nil || got != "" {
		t.Fatalf("Section on missing file = %q, %v", got, err)
	}
	content := "# Changelog\n\n## [1.1.0]\n\n- New.\n\n### Bug Fixes\n\n- Fixed.\n\n## [1.0.0]\n\n- Old.\n"
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		version string
		want    string
	}{
		{"1.1.0", "- New.\n\n### Bug Fixes\n\n- Fixed."},
		{"1.0.0", "- Old."},
		{"0.9.0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := Section(dir, tt.version)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Section(%s) = %q, want %q", tt.version, got, tt.want)
			}
		})
	}
}
