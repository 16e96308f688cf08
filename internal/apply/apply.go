package apply

import (
	"fmt"

	"github.com/fbkclanna/vercast/internal/bump"
	"github.com/fbkclanna/vercast/internal/logging"
	"github.com/fbkclanna/vercast/internal/pkgfile"
	"github.com/fbkclanna/vercast/internal/semverx"
)

// Change is the release of one package as the applier sees it.
type Change struct {
	Name string
	Type bump.Type
	// Dependencies are the configured workspace dependencies of the package.
	Dependencies        []string
	ErrorOnVersionRange string
}

// Options tune version computation.
type Options struct {
	// PreviewVersion replaces the prerelease of every bumped version.
	PreviewVersion       string
	PrereleaseIdentifier string
	Logger               *logging.Logger
}

// Bumped is a manifest touched by a run.
type Bumped struct {
	Name     string
	Previous string
	Version  string
	Manifest pkgfile.Manifest
}

// Plan computes the next versions without writing anything and logs each
// planned version.
func Plan(changes []Change, manifests map[string]pkgfile.Manifest, opts Options) ([]Bumped, error) {
	out, err := compute(changes, manifests, opts, true)
	if err != nil {
		return nil, err
	}
	log := logger(opts)
	for _, b := range out {
		log.Info(fmt.Sprintf("%s planned to be bumped to %s", b.Name, b.Version))
	}
	return out, nil
}

// Apply computes the next versions and saves every touched manifest. Nothing
// is written unless every computation succeeds.
func Apply(changes []Change, manifests map[string]pkgfile.Manifest, opts Options) ([]Bumped, error) {
	out, err := compute(changes, manifests, opts, true)
	if err != nil {
		return nil, err
	}
	for _, b := range out {
		if err := pkgfile.Save(b.Manifest); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Validate runs the computation on copies of the manifests and serializes
// each touched one, writing nothing.
func Validate(changes []Change, manifests map[string]pkgfile.Manifest, opts Options) error {
	out, err := compute(changes, manifests, opts, false)
	if err != nil {
		return err
	}
	for _, b := range out {
		if _, err := b.Manifest.Serialize(); err != nil {
			return fmt.Errorf("validating %s: %w", b.Name, err)
		}
	}
	return nil
}

func logger(opts Options) *logging.Logger {
	if opts.Logger == nil {
		return logging.NopLogger()
	}
	return opts.Logger
}

// compute works on clones so the caller's manifests are never changed.
func compute(changes []Change, manifests map[string]pkgfile.Manifest, opts Options, logs bool) ([]Bumped, error) {
	log := logger(opts)
	planned := make(map[string]bool, len(changes))
	work := make(map[string]pkgfile.Manifest, len(changes))
	for _, c := range changes {
		planned[c.Name] = true
		if m := manifests[c.Name]; m != nil {
			work[c.Name] = m.Clone()
		}
	}

	touched := map[string]*Bumped{}
	touch := func(name string, m pkgfile.Manifest, prev string) {
		if _, ok := touched[name]; !ok {
			touched[name] = &Bumped{Name: name, Previous: prev, Manifest: m}
		}
	}

	for _, c := range changes {
		m := manifests[c.Name]
		if m == nil || c.Type == bump.Noop || !bump.IsBuiltin(c.Type) {
			continue
		}
		m = work[c.Name]
		if logs {
			if opts.PreviewVersion != "" {
				log.Info(fmt.Sprintf("bumping %s with %s identifier to publish a preview", c.Name, opts.PreviewVersion))
			} else {
				log.Info(fmt.Sprintf("bumping %s with %s", c.Name, c.Type))
			}
		}
		next, err := nextVersion(m.Version(), c, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		prev := m.Version()
		if err := m.SetVersion(next); err != nil {
			return nil, err
		}
		if c.ErrorOnVersionRange != "" {
			ok, err := semverx.Satisfies(next, c.ErrorOnVersionRange)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", c.Name, err)
			}
			if ok {
				return nil, &DisallowedVersionError{Package: c.Name, Version: next, Range: c.ErrorOnVersionRange}
			}
		}
		touch(c.Name, m, prev)
	}

	for _, c := range changes {
		if manifests[c.Name] == nil {
			continue
		}
		m := work[c.Name]
		for _, dep := range c.Dependencies {
			if !planned[dep] {
				continue
			}
			changed, err := rewriteDependency(c.Name, m, dep, work[dep], opts.PreviewVersion)
			if err != nil {
				return nil, err
			}
			if changed {
				touch(c.Name, m, manifests[c.Name].Version())
			}
		}
	}

	out := make([]Bumped, 0, len(touched))
	for _, c := range changes {
		if b, ok := touched[c.Name]; ok {
			b.Version = b.Manifest.Version()
			out = append(out, *b)
			delete(touched, c.Name)
		}
	}
	return out, nil
}

func nextVersion(current string, c Change, opts Options) (string, error) {
	if current == "" {
		return "", fmt.Errorf("no version number")
	}
	if opts.PreviewVersion != "" {
		return semverx.Preview(current, opts.PreviewVersion)
	}
	return semverx.Inc(current, c.Type, opts.PrereleaseIdentifier)
}

// rewriteDependency points every specifier of dep in m at the new version
// of dep. It reports whether anything changed.
func rewriteDependency(name string, m pkgfile.Manifest, dep string, depManifest pkgfile.Manifest, preview string) (bool, error) {
	changed := false
	for _, spec := range m.Dependency(dep) {
		if !spec.HasVersion {
			return false, &MissingVersionError{Package: name, Dependency: dep}
		}
		var next string
		switch {
		case preview != "":
			next = semverx.RewritePreview(spec.Version, preview)
		case depManifest == nil || depManifest.Version() == "":
			continue
		default:
			next = semverx.Rewrite(spec.Version, depManifest.Version())
		}
		if next == spec.Version {
			continue
		}
		if err := m.SetDependency(spec.Kind, dep, next); err != nil {
			return false, fmt.Errorf("%s: updating %s: %w", name, dep, err)
		}
		changed = true
	}
	return changed, nil
}
