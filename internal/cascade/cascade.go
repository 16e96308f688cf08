package cascade

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fbkclanna/vercast/internal/assemble"
	"github.com/fbkclanna/vercast/internal/bump"
	"github.com/fbkclanna/vercast/internal/change"
	"github.com/fbkclanna/vercast/internal/semverx"
)

// Graph maps a package name to the packages it depends on, in configuration
// order. Order lists every package so iteration is deterministic.
type Graph struct {
	Order        []string
	Dependencies map[string][]string
}

// ParentsOf returns the packages whose dependencies include name.
func (g Graph) ParentsOf(name string) []string {
	var parents []string
	for _, candidate := range g.Order {
		if slices.Contains(g.Dependencies[candidate], name) {
			parents = append(parents, candidate)
		}
	}
	return parents
}

// CyclicDependencyError reports a dependency cycle reachable from the plan.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// Options configures Cascade.
type Options struct {
	// PrereleaseIdentifier makes cascaded entries prerelease bumps.
	PrereleaseIdentifier string
	// Specifier returns the version specifier parent uses for dep. When it
	// reports a range, the parent does not need a release for the new
	// dependency version and is skipped.
	Specifier func(parent, dep string) (string, bool)
}

// Cascade returns a copy of plan with entries added for every transitive
// parent of a planned package.
func Cascade(plan *assemble.Plan, graph Graph, opts Options) (*assemble.Plan, error) {
	if err := checkCycles(plan, graph); err != nil {
		return nil, err
	}

	out := plan.Clone()
	for _, name := range out.Names() {
		r, _ := out.Get(name)
		r.Parents = graph.ParentsOf(name)
	}

	cascaded := bump.Patch
	if opts.PrereleaseIdentifier != "" {
		cascaded = bump.Prerelease
	}

	for pass := 0; ; pass++ {
		if pass > len(graph.Order) {
			return nil, &CyclicDependencyError{Cycle: out.Names()}
		}
		added := false
		for _, name := range out.Names() {
			r, _ := out.Get(name)
			for _, parent := range r.Parents {
				if _, ok := out.Get(parent); ok {
					continue
				}
				if opts.Specifier != nil {
					if spec, ok := opts.Specifier(parent, name); ok && semverx.IsRange(spec) {
						continue
					}
				}
				out.Set(parent, &assemble.Release{
					Type:    cascaded,
					Changes: annotate(r.Changes, name),
					Parents: graph.ParentsOf(parent),
				})
				added = true
			}
		}
		if !added {
			return out, nil
		}
	}
}

// annotate clones changes and records dep as the reason they apply. The
// note names only the direct dependency, replacing any inherited one.
func annotate(changes []*change.Declaration, dep string) []*change.Declaration {
	out := make([]*change.Declaration, 0, len(changes))
	for _, c := range changes {
		clone := c.Clone()
		clone.Meta.Dependencies = []string{dep}
		out = append(out, clone)
	}
	return out
}

// checkCycles walks parent edges from every planned package.
func checkCycles(plan *assemble.Plan, graph Graph) error {
	const (
		visiting = 1
		done     = 2
	)
	state := map[string]int{}
	var stack []string

	var visit func(string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			start := slices.Index(stack, name)
			cycle := append(append([]string(nil), stack[start:]...), name)
			return &CyclicDependencyError{Cycle: cycle}
		case done:
			return nil
		}
		state[name] = visiting
		stack = append(stack, name)
		for _, parent := range graph.ParentsOf(name) {
			if err := visit(parent); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	for _, name := range plan.Names() {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}
