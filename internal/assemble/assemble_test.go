package assemble

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/fbkclanna/vercast/internal/bump"
	"github.com/fbkclanna/vercast/internal/change"
	"github.com/fbkclanna/vercast/internal/pre"
)

func decl(path string, releases ...string) *change.Declaration {
	d := &change.Declaration{Releases: map[string]string{}, Tags: map[string]string{}, Summary: "summary of " + path, Meta: change.Meta{Path: path}}
	for i := 0; i+1 < len(releases); i += 2 {
		d.Packages = append(d.Packages, releases[i])
		d.Releases[releases[i]] = releases[i+1]
	}
	return d
}

func typeOf(t *testing.T, p *Plan, name string) bump.Type {
	t.Helper()
	r, ok := p.Get(name)
	if !ok {
		t.Fatalf("package %s missing from plan %v", name, p.Names())
	}
	return r.Type
}

func TestAssemble_mergesMostSevere(t *testing.T) {
	decls := []*change.Declaration{
		decl("a.md", "pkg-a", "patch", "pkg-b", "patch"),
		decl("b.md", "pkg-a", "minor"),
		decl("c.md", "pkg-b", "noop"),
	}
	plan, err := Assemble(decls, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := typeOf(t, plan, "pkg-a"); got != bump.Minor {
		t.Errorf("pkg-a = %q, want minor", got)
	}
	if got := typeOf(t, plan, "pkg-b"); got != bump.Patch {
		t.Errorf("pkg-b = %q, want patch", got)
	}
	r, _ := plan.Get("pkg-a")
	if len(r.Changes) != 2 {
		t.Errorf("pkg-a changes = %d, want 2", len(r.Changes))
	}
	if !reflect.DeepEqual(plan.Names(), []string{"pkg-a", "pkg-b"}) {
		t.Errorf("names = %v", plan.Names())
	}
}

func TestAssemble_idempotent(t *testing.T) {
	decls := []*change.Declaration{
		decl("a.md", "pkg-a", "patch"),
		decl("b.md", "pkg-a", "major", "pkg-c", "minor"),
	}
	first, err := Assemble(decls, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Assemble(decls, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("plans differ:\n%+v\n%+v", first, second)
	}

	reversed := []*change.Declaration{decls[1], decls[0]}
	third, err := Assemble(reversed, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range first.Names() {
		if typeOf(t, first, name) != typeOf(t, third, name) {
			t.Errorf("%s type depends on declaration order", name)
		}
	}
}

func TestAssemble_additionalBumpTypes(t *testing.T) {
	decls := []*change.Declaration{
		decl("a.md", "pkg-a", "housekeeping"),
		decl("b.md", "pkg-b", "housekeeping"),
		decl("c.md", "pkg-b", "patch"),
	}
	plan, err := Assemble(decls, Options{AdditionalBumpTypes: []string{"housekeeping"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := typeOf(t, plan, "pkg-a"); got != "housekeeping" {
		t.Errorf("pkg-a = %q, want housekeeping", got)
	}
	if got := typeOf(t, plan, "pkg-b"); got != bump.Patch {
		t.Errorf("pkg-b = %q, want patch", got)
	}
}

func TestAssemble_malformed(t *testing.T) {
	_, err := Assemble([]*change.Declaration{decl("empty.md")}, Options{})
	var malformed *MalformedChangeError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedChangeError, got %v", err)
	}
	if malformed.Source != "empty.md" {
		t.Errorf("source = %q", malformed.Source)
	}
}

func TestAssemble_invalidBumpType(t *testing.T) {
	_, err := Assemble([]*change.Declaration{decl(".changes/x.md", "pkg-a", "huge")}, Options{AdditionalBumpTypes: []string{"housekeeping"}})
	var invalid *InvalidBumpTypeError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidBumpTypeError, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"pkg-a", "huge", ".changes/x.md", "major, minor, patch"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
	if strings.Contains(msg, "housekeeping") || strings.Contains(msg, "noop") {
		t.Errorf("error should not suggest additional types or noop: %q", msg)
	}
}

func TestAssemble_prereleaseIsNotDeclarable(t *testing.T) {
	_, err := Assemble([]*change.Declaration{decl("x.md", "pkg-a", "prerelease")}, Options{})
	var invalid *InvalidBumpTypeError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidBumpTypeError, got %v", err)
	}
}

func TestAssemble_unknownPackage(t *testing.T) {
	decls := []*change.Declaration{
		decl("a.md", "pkg-a", "patch"),
		decl("b.md", "ghost", "minor"),
		decl("c.md", "ghost", "patch"),
	}
	_, err := Assemble(decls, Options{Packages: []string{"pkg-a"}})
	var unknown *UnknownPackageError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownPackageError, got %v", err)
	}
	if unknown.Package != "ghost" || !reflect.DeepEqual(unknown.Sources, []string{"b.md", "c.md"}) {
		t.Errorf("unexpected error detail: %+v", unknown)
	}
}

func TestAssemble_preModeFirstRun(t *testing.T) {
	decls := []*change.Declaration{
		decl("a.md", "pkg-a", "minor", "pkg-b", "patch"),
		decl("b.md", "pkg-c", "major"),
	}
	plan, err := Assemble(decls, Options{Pre: &pre.File{Tag: "beta"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]bump.Type{"pkg-a": bump.Preminor, "pkg-b": bump.Prepatch, "pkg-c": bump.Premajor}
	for name, w := range want {
		if got := typeOf(t, plan, name); got != w {
			t.Errorf("%s = %q, want %q", name, got, w)
		}
	}
}

func TestAssemble_preModeLaterRuns(t *testing.T) {
	tests := []struct {
		name  string
		decls []*change.Declaration
		want  map[string]bump.Type
	}{
		{
			name: "escalates on more severe change",
			decls: []*change.Declaration{
				decl("old.md", "pkg-a", "patch"),
				decl("new.md", "pkg-a", "minor"),
			},
			want: map[string]bump.Type{"pkg-a": bump.Preminor},
		},
		{
			name: "increments counter on equal change",
			decls: []*change.Declaration{
				decl("old.md", "pkg-a", "minor"),
				decl("new.md", "pkg-a", "minor"),
			},
			want: map[string]bump.Type{"pkg-a": bump.Prerelease},
		},
		{
			name: "increments counter on less severe change",
			decls: []*change.Declaration{
				decl("old.md", "pkg-a", "major"),
				decl("new.md", "pkg-a", "patch"),
			},
			want: map[string]bump.Type{"pkg-a": bump.Prerelease},
		},
		{
			name: "new package escalates against noop",
			decls: []*change.Declaration{
				decl("old.md", "pkg-a", "major"),
				decl("new.md", "pkg-b", "patch"),
			},
			want: map[string]bump.Type{"pkg-b": bump.Prepatch},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Assemble(tt.decls, Options{Pre: &pre.File{Tag: "beta", Changes: []string{"old.md"}}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.Len() != len(tt.want) {
				t.Errorf("plan = %v, want only %v", plan.Names(), tt.want)
			}
			for name, w := range tt.want {
				if got := typeOf(t, plan, name); got != w {
					t.Errorf("%s = %q, want %q", name, got, w)
				}
			}
			if len(plan.Changes) != 1 || plan.Changes[0].Meta.Path != "new.md" {
				t.Errorf("plan changes should only hold new declarations: %v", plan.Changes)
			}
		})
	}
}

func TestAssemble_preModeNoNewChanges(t *testing.T) {
	plan, err := Assemble([]*change.Declaration{decl("old.md", "pkg-a", "minor")}, Options{Pre: &pre.File{Tag: "beta", Changes: []string{"old.md"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Len() != 0 || len(plan.Changes) != 0 {
		t.Errorf("expected empty plan, got %v", plan.Names())
	}
}

func TestPlan_cloneAndDelete(t *testing.T) {
	p := NewPlan()
	p.Set("a", &Release{Type: bump.Patch})
	p.Set("b", &Release{Type: bump.Minor, Parents: []string{"a"}})
	c := p.Clone()
	rb, _ := c.Get("b")
	rb.Parents[0] = "z"
	c.Delete("a")

	orig, _ := p.Get("b")
	if orig.Parents[0] != "a" {
		t.Error("clone shares parents with original")
	}
	if p.Len() != 2 || c.Len() != 1 {
		t.Errorf("lens = %d, %d", p.Len(), c.Len())
	}
	if !reflect.DeepEqual(c.Names(), []string{"b"}) {
		t.Errorf("names = %v", c.Names())
	}
}
