package assemble

import (
	"github.com/fbkclanna/vercast/internal/bump"
	"github.com/fbkclanna/vercast/internal/change"
)

// Release is the resolved bump decision for one package.
type Release struct {
	Type    bump.Type
	Changes []*change.Declaration
	// Parents is filled by the cascade resolver.
	Parents []string
}

// Clone copies r. Declarations are shared since they are never mutated.
func (r *Release) Clone() *Release {
	return &Release{
		Type:    r.Type,
		Changes: append([]*change.Declaration(nil), r.Changes...),
		Parents: append([]string(nil), r.Parents...),
	}
}

// Plan maps package names to releases in a stable insertion order.
type Plan struct {
	names    []string
	releases map[string]*Release
	// Changes holds the declarations the plan was built from. In pre-mode
	// these are only the declarations not seen by earlier prereleases.
	Changes []*change.Declaration
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{releases: map[string]*Release{}}
}

// Get returns the release for name.
func (p *Plan) Get(name string) (*Release, bool) {
	r, ok := p.releases[name]
	return r, ok
}

// Set stores r under name, appending name to the order if new.
func (p *Plan) Set(name string, r *Release) {
	if _, ok := p.releases[name]; !ok {
		p.names = append(p.names, name)
	}
	p.releases[name] = r
}

// Delete removes name from the plan.
func (p *Plan) Delete(name string) {
	if _, ok := p.releases[name]; !ok {
		return
	}
	delete(p.releases, name)
	for i, n := range p.names {
		if n == name {
			p.names = append(p.names[:i:i], p.names[i+1:]...)
			break
		}
	}
}

// Names returns package names in plan order.
func (p *Plan) Names() []string {
	return append([]string(nil), p.names...)
}

// Len returns the number of packages in the plan.
func (p *Plan) Len() int {
	return len(p.names)
}

// Clone returns a copy of p that can be modified independently.
func (p *Plan) Clone() *Plan {
	c := NewPlan()
	for _, name := range p.names {
		c.Set(name, p.releases[name].Clone())
	}
	c.Changes = append([]*change.Declaration(nil), p.Changes...)
	return c
}
