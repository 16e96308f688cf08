package release

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fbkclanna/vercast/internal/apply"
	"github.com/fbkclanna/vercast/internal/assemble"
	"github.com/fbkclanna/vercast/internal/cascade"
	"github.com/fbkclanna/vercast/internal/command"
	"github.com/fbkclanna/vercast/internal/config"
	"github.com/fbkclanna/vercast/internal/logging"
	"github.com/fbkclanna/vercast/internal/pkgfile"
	"github.com/fbkclanna/vercast/internal/workspace"
)

var tracer = otel.Tracer("github.com/fbkclanna/vercast/internal/release")

// Session runs workflows against one workspace.
type Session struct {
	WS     *workspace.Context
	DryRun bool
	Logger *logging.Logger
	// Only and Skip filter the packages command workflows run for.
	Only []string
	Skip []string
	// Runner and Registry replace the engine defaults when set.
	Runner   command.Runner
	Registry command.VersionChecker
}

// New returns a Session for ws.
func New(ws *workspace.Context, log *logging.Logger) *Session {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Session{WS: ws, Logger: log}
}

func (s *Session) engine(workflow string) *command.Engine {
	e := command.New(workflow, s.WS.Root, s.Logger.WithWorkflow(workflow))
	e.DryRun = s.DryRun
	if s.Runner != nil {
		e.Runner = s.Runner
	}
	if s.Registry != nil {
		e.Registry = s.Registry
	}
	return e
}

func (s *Session) prereleaseIdentifier() string {
	if s.WS.Pre == nil {
		return ""
	}
	return s.WS.Pre.Tag
}

func (s *Session) packageNames() []string {
	return config.FilterPackages(s.WS.Config.PackageNames, s.Only, s.Skip)
}

// resolved is the state read from disk and planned from the change files.
type resolved struct {
	paths     []string
	assembled *assemble.Plan
	cascaded  *assemble.Plan
	manifests map[string]pkgfile.Manifest
}

// resolve reads the change files and manifests and plans every release,
// cascaded bumps included.
func (s *Session) resolve(ctx context.Context, withCommits bool) (*resolved, error) {
	cfg := s.WS.Config
	paths, err := s.WS.ChangeFiles()
	if err != nil {
		return nil, err
	}
	decls, err := s.WS.Changes(paths, withCommits)
	if err != nil {
		return nil, err
	}
	assembled, err := assemble.Assemble(decls, assemble.Options{
		AdditionalBumpTypes: cfg.AdditionalBumpTypes,
		Packages:            cfg.PackageNames,
		Pre:                 s.WS.Pre,
	})
	if err != nil {
		return nil, err
	}
	manifests, err := s.WS.LoadManifests(ctx, cfg.PackageNames)
	if err != nil {
		return nil, err
	}
	cascaded, err := cascade.Cascade(assembled, cfg.Graph(), cascade.Options{
		PrereleaseIdentifier: s.prereleaseIdentifier(),
		Specifier:            specifier(manifests),
	})
	if err != nil {
		return nil, err
	}
	return &resolved{paths: paths, assembled: assembled, cascaded: cascaded, manifests: manifests}, nil
}

// specifier reads the first version specifier of dep from parent's manifest.
func specifier(manifests map[string]pkgfile.Manifest) func(parent, dep string) (string, bool) {
	return func(parent, dep string) (string, bool) {
		m := manifests[parent]
		if m == nil {
			return "", false
		}
		for _, spec := range m.Dependency(dep) {
			if spec.HasVersion {
				return spec.Version, true
			}
		}
		return "", false
	}
}

// applyChanges converts a plan into the applier's input, in plan order.
func (s *Session) applyChanges(plan *assemble.Plan) []apply.Change {
	out := make([]apply.Change, 0, plan.Len())
	for _, name := range plan.Names() {
		r, _ := plan.Get(name)
		c := apply.Change{Name: name, Type: r.Type}
		if p, ok := s.WS.Config.Package(name); ok {
			c.Dependencies = p.Dependencies
			c.ErrorOnVersionRange = p.ErrorOnVersionRange
		}
		out = append(out, c)
	}
	return out
}

// versionPackages returns the command packages of the planned releases.
func (s *Session) versionPackages(workflow string, plan *assemble.Plan, manifests map[string]pkgfile.Manifest) []*command.Package {
	var pkgs []*command.Package
	for _, name := range config.FilterPackages(plan.Names(), s.Only, s.Skip) {
		r, _ := plan.Get(name)
		if pkg, ok := Merge(s.WS, name, workflow, r, manifests[name]); ok {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs
}

// bump applies the cascaded plan, or only plans it on a dry run, and points
// r.manifests and the package summaries at the bumped manifests.
func (s *Session) bump(r *resolved, pkgs []*command.Package, opts apply.Options) ([]apply.Bumped, error) {
	changes := s.applyChanges(r.cascaded)
	var (
		bumped []apply.Bumped
		err    error
	)
	if s.DryRun {
		bumped, err = apply.Plan(changes, r.manifests, opts)
	} else {
		bumped, err = apply.Apply(changes, r.manifests, opts)
	}
	if err != nil {
		return nil, err
	}
	for _, b := range bumped {
		r.manifests[b.Name] = b.Manifest
	}
	for _, pkg := range pkgs {
		if m := r.manifests[pkg.Name]; m != nil {
			pkg.File = pkgfile.InfoOf(m)
		}
	}
	return bumped, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
