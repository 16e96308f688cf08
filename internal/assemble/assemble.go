package assemble

import (
	"slices"

	"github.com/fbkclanna/vercast/internal/bump"
	"github.com/fbkclanna/vercast/internal/change"
	"github.com/fbkclanna/vercast/internal/pre"
)

// Options configures Assemble.
type Options struct {
	AdditionalBumpTypes []string
	// Packages is the configured package set. When non-nil, every planned
	// package must be a member.
	Packages []string
	// Pre enables prerelease train diffing.
	Pre *pre.File
}

// Assemble validates declarations and merges them into a plan.
func Assemble(decls []*change.Declaration, opts Options) (*Plan, error) {
	if err := validate(decls, opts.AdditionalBumpTypes); err != nil {
		return nil, err
	}

	all := merge(decls)
	if opts.Packages != nil {
		if err := checkPackages(all, opts.Packages); err != nil {
			return nil, err
		}
	}
	if opts.Pre == nil {
		return all, nil
	}

	var fresh, seen []*change.Declaration
	for _, d := range decls {
		if opts.Pre.Seen(d.Meta.Path) {
			seen = append(seen, d)
		} else {
			fresh = append(fresh, d)
		}
	}

	if len(opts.Pre.Changes) == 0 {
		for _, name := range all.Names() {
			r, _ := all.Get(name)
			r.Type = bump.Pre(r.Type)
		}
		return all, nil
	}

	plan := merge(fresh)
	old := merge(seen)
	for _, name := range plan.Names() {
		r, _ := plan.Get(name)
		if bump.Severity(r.Type) == bump.Severity(bump.Noop) {
			continue
		}
		previous := bump.Noop
		if o, ok := old.Get(name); ok {
			previous = o.Type
		}
		if bump.MoreSevere(r.Type, previous) {
			r.Type = bump.Pre(r.Type)
		} else {
			r.Type = bump.Prerelease
		}
	}
	return plan, nil
}

func validate(decls []*change.Declaration, additional []string) error {
	for _, d := range decls {
		if len(d.Releases) == 0 {
			return &MalformedChangeError{Source: d.Source()}
		}
		for _, name := range d.Packages {
			value := d.Releases[name]
			if !bump.Valid(value, additional) {
				return &InvalidBumpTypeError{
					Package: name,
					Value:   value,
					Source:  d.Source(),
					Valid:   bump.Suggestions(),
				}
			}
		}
	}
	return nil
}

// merge keeps the most severe bump per package and collects the
// declarations that mention it.
func merge(decls []*change.Declaration) *Plan {
	plan := NewPlan()
	plan.Changes = append([]*change.Declaration(nil), decls...)
	for _, d := range decls {
		for _, name := range d.Packages {
			declared := bump.Type(d.Releases[name])
			r, ok := plan.Get(name)
			if !ok {
				plan.Set(name, &Release{Type: declared, Changes: []*change.Declaration{d}})
				continue
			}
			r.Type = bump.Max(r.Type, declared)
			r.Changes = append(r.Changes, d)
		}
	}
	return plan
}

func checkPackages(plan *Plan, known []string) error {
	for _, name := range plan.Names() {
		if slices.Contains(known, name) {
			continue
		}
		r, _ := plan.Get(name)
		sources := make([]string, 0, len(r.Changes))
		for _, d := range r.Changes {
			sources = append(sources, d.Source())
		}
		return &UnknownPackageError{Package: name, Sources: sources}
	}
	return nil
}
