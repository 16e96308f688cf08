package cascade

import (
	"errors"
	"reflect"
	"testing"

	"github.com/fbkclanna/vercast/internal/assemble"
	"github.com/fbkclanna/vercast/internal/bump"
	"github.com/fbkclanna/vercast/internal/change"
)

func chainGraph() Graph {
	return Graph{
		Order: []string{"A", "B", "C", "D"},
		Dependencies: map[string][]string{
			"A": {"B"},
			"B": {"C"},
			"C": {"D"},
		},
	}
}

func planWith(entries map[string]bump.Type, order ...string) *assemble.Plan {
	p := assemble.NewPlan()
	for _, name := range order {
		d := &change.Declaration{
			Packages: []string{name},
			Releases: map[string]string{name: string(entries[name])},
			Meta:     change.Meta{Path: name + ".md"},
		}
		p.Set(name, &assemble.Release{Type: entries[name], Changes: []*change.Declaration{d}})
	}
	return p
}

func TestCascade_chain(t *testing.T) {
	plan := planWith(map[string]bump.Type{"D": bump.Minor}, "D")
	out, err := Cascade(plan, chainGraph(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(out.Names(), []string{"D", "C", "B", "A"}) {
		t.Fatalf("names = %v", out.Names())
	}
	if d, _ := out.Get("D"); d.Type != bump.Minor {
		t.Errorf("D = %q, want minor", d.Type)
	}
	deps := map[string]string{"C": "D", "B": "C", "A": "B"}
	for name, dep := range deps {
		r, _ := out.Get(name)
		if r.Type != bump.Patch {
			t.Errorf("%s = %q, want patch", name, r.Type)
		}
		if len(r.Changes) == 0 || !reflect.DeepEqual(r.Changes[0].Meta.Dependencies, []string{dep}) {
			t.Errorf("%s changes should be annotated with only %s: %+v", name, dep, r.Changes)
		}
	}
	if a, _ := out.Get("A"); len(a.Parents) != 0 {
		t.Errorf("A parents = %v, want none", a.Parents)
	}
	if c, _ := out.Get("C"); !reflect.DeepEqual(c.Parents, []string{"B"}) {
		t.Errorf("C parents = %v", c.Parents)
	}

	// The input plan is untouched.
	if plan.Len() != 1 {
		t.Errorf("input plan mutated: %v", plan.Names())
	}
	orig, _ := plan.Get("D")
	if len(orig.Changes[0].Meta.Dependencies) != 0 {
		t.Error("input declarations were annotated")
	}
}

func TestCascade_fixedPoint(t *testing.T) {
	plan := planWith(map[string]bump.Type{"D": bump.Patch}, "D")
	once, err := Cascade(plan, chainGraph(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := Cascade(once, chainGraph(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second cascade changed the plan:\n%+v\n%+v", once, twice)
	}
}

func TestCascade_explicitBumpWins(t *testing.T) {
	plan := planWith(map[string]bump.Type{"D": bump.Patch, "B": bump.Major}, "D", "B")
	out, err := Cascade(plan, chainGraph(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := out.Get("B")
	if b.Type != bump.Major {
		t.Errorf("B = %q, want major", b.Type)
	}
	if len(b.Changes) != 1 || len(b.Changes[0].Meta.Dependencies) != 0 {
		t.Errorf("explicit B changes should be untouched: %+v", b.Changes)
	}
	if out.Len() != 4 {
		t.Errorf("names = %v", out.Names())
	}
}

func TestCascade_dependencyIsNotBumped(t *testing.T) {
	graph := Graph{
		Order:        []string{"pkg-a", "pkg-b"},
		Dependencies: map[string][]string{"pkg-a": {"pkg-b"}},
	}
	plan := planWith(map[string]bump.Type{"pkg-a": bump.Minor}, "pkg-a")
	out, err := Cascade(plan, graph, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := out.Get("pkg-b"); ok {
		t.Error("dependency pkg-b should not be added")
	}
	if a, _ := out.Get("pkg-a"); a.Type != bump.Minor {
		t.Errorf("pkg-a = %q, want minor", a.Type)
	}
}

func TestCascade_prereleaseIdentifier(t *testing.T) {
	plan := planWith(map[string]bump.Type{"D": bump.Preminor}, "D")
	out, err := Cascade(plan, chainGraph(), Options{PrereleaseIdentifier: "beta"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"A", "B", "C"} {
		r, _ := out.Get(name)
		if r.Type != bump.Prerelease {
			t.Errorf("%s = %q, want prerelease", name, r.Type)
		}
	}
}

func TestCascade_rangeSpecifierSkipsParent(t *testing.T) {
	specs := map[string]string{"C/D": "^1.0.0", "B/C": "1.0.0"}
	opts := Options{Specifier: func(parent, dep string) (string, bool) {
		s, ok := specs[parent+"/"+dep]
		return s, ok
	}}
	plan := planWith(map[string]bump.Type{"D": bump.Patch, "C": bump.Patch}, "D", "C")
	out, err := Cascade(plan, chainGraph(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := out.Get("B"); !ok {
		t.Error("B pins C exactly and should be bumped")
	}

	plan = planWith(map[string]bump.Type{"D": bump.Patch}, "D")
	out, err = Cascade(plan, chainGraph(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := out.Get("C"); ok {
		t.Error("C uses a range for D and should not be bumped")
	}
}

func TestCascade_cycle(t *testing.T) {
	graph := Graph{
		Order: []string{"A", "B", "C"},
		Dependencies: map[string][]string{
			"A": {"B"},
			"B": {"C"},
			"C": {"A"},
		},
	}
	plan := planWith(map[string]bump.Type{"C": bump.Patch}, "C")
	_, err := Cascade(plan, graph, Options{})
	var cyc *CyclicDependencyError
	if !errors.As(err, &cyc) {
		t.Fatalf("expected CyclicDependencyError, got %v", err)
	}
	if len(cyc.Cycle) < 2 || cyc.Cycle[0] != cyc.Cycle[len(cyc.Cycle)-1] {
		t.Errorf("cycle = %v, want closed path", cyc.Cycle)
	}
}

func TestCascade_longChain(t *testing.T) {
	graph := Graph{Dependencies: map[string][]string{}}
	for i := 0; i < 50; i++ {
		name := string(rune('a'+i%26)) + string(rune('0'+i/26))
		graph.Order = append(graph.Order, name)
		if i > 0 {
			graph.Dependencies[name] = []string{graph.Order[i-1]}
		}
	}
	first := graph.Order[0]
	plan := planWith(map[string]bump.Type{first: bump.Patch}, first)
	out, err := Cascade(plan, graph, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Len() != 50 {
		t.Errorf("len = %d, want 50", out.Len())
	}
}

func TestParentsOf(t *testing.T) {
	g := Graph{
		Order:        []string{"x", "y", "z"},
		Dependencies: map[string][]string{"x": {"z"}, "y": {"z"}},
	}
	if got := g.ParentsOf("z"); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("ParentsOf(z) = %v", got)
	}
	if got := g.ParentsOf("x"); got != nil {
		t.Errorf("ParentsOf(x) = %v, want nil", got)
	}
}
