package release

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fbkclanna/vercast/internal/apply"
	"github.com/fbkclanna/vercast/internal/bump"
	"github.com/fbkclanna/vercast/internal/command"
)

// Planned is one release as reported by Status.
type Planned struct {
	Name    string    `json:"name"`
	Type    bump.Type `json:"type"`
	Current string    `json:"current,omitempty"`
	Next    string    `json:"next,omitempty"`
	Changes int       `json:"changes"`
	// Dependencies lists the packages whose bumps cascaded into this one.
	Dependencies []string `json:"dependencies,omitempty"`
}

// Ready is a package whose current version is not published yet.
type Ready struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// StatusReport is the outcome of Status.
type StatusReport struct {
	Response string `json:"response"`
	// Ready is set when there are no change files.
	Ready    []Ready   `json:"readyToPublish,omitempty"`
	Releases []Planned `json:"releases,omitempty"`
}

// Status reports the planned releases without changing anything. With no
// change files it lists the packages that are ready to publish instead.
func (s *Session) Status(ctx context.Context) (*StatusReport, error) {
	ctx, span := tracer.Start(ctx, "workflow status")
	defer span.End()

	r, err := s.resolve(ctx, false)
	if err != nil {
		return nil, fail(span, err)
	}

	if len(r.paths) == 0 {
		s.Logger.Info("There are no changes.")
		return s.readyToPublish(ctx, r)
	}
	if s.WS.Pre != nil && len(r.assembled.Changes) == 0 {
		s.Logger.Info("There are no changes.")
		s.Logger.Info("We have previously released the changes in these files: " + strings.Join(r.paths, ", "))
		return &StatusReport{Response: "No changes."}, nil
	}

	for _, name := range r.assembled.Names() {
		rel, _ := r.assembled.Get(name)
		s.Logger.Info(fmt.Sprintf("%s => %s", name, rel.Type))
	}

	opts := apply.Options{PrereleaseIdentifier: s.prereleaseIdentifier(), Logger: s.Logger}
	changes := s.applyChanges(r.cascaded)
	if err := apply.Validate(changes, r.manifests, opts); err != nil {
		return nil, fail(span, err)
	}
	bumped, err := apply.Plan(changes, r.manifests, opts)
	if err != nil {
		return nil, fail(span, err)
	}
	next := make(map[string]string, len(bumped))
	for _, b := range bumped {
		next[b.Name] = b.Version
	}

	report := &StatusReport{}
	for _, name := range r.cascaded.Names() {
		rel, _ := r.cascaded.Get(name)
		p := Planned{Name: name, Type: rel.Type, Changes: len(rel.Changes), Next: next[name]}
		if m := r.manifests[name]; m != nil {
			p.Current = m.Version()
		}
		for _, c := range rel.Changes {
			for _, dep := range c.Meta.Dependencies {
				if !slices.Contains(p.Dependencies, dep) {
					p.Dependencies = append(p.Dependencies, dep)
				}
			}
		}
		report.Releases = append(report.Releases, p)
	}

	items := make([]string, 0, r.assembled.Len())
	for _, name := range r.assembled.Names() {
		rel, _ := r.assembled.Get(name)
		items = append(items, fmt.Sprintf(" %s with %s", name, rel.Type))
	}
	report.Response = fmt.Sprintf("There are %d changes which include%s", r.assembled.Len(), strings.Join(items, ","))
	return report, nil
}

func (s *Session) readyToPublish(ctx context.Context, r *resolved) (*StatusReport, error) {
	const workflow = "publish"
	var pkgs []*command.Package
	for _, name := range s.packageNames() {
		pkg, ok := Merge(s.WS, name, workflow, nil, r.manifests[name])
		if ok && pkg.Stage(workflow, command.StageMain).Configured() {
			pkgs = append(pkgs, pkg)
		}
	}
	if len(pkgs) == 0 {
		msg := "No commands configured to run on publish."
		s.Logger.Info(msg)
		return &StatusReport{Response: msg}, nil
	}

	pending, err := s.engine(workflow).ConfirmPublishNeeded(ctx, pkgs)
	if err != nil {
		return nil, err
	}
	report := &StatusReport{Response: "No changes."}
	for _, pkg := range pending {
		rd := Ready{Name: pkg.Name}
		if pkg.File != nil {
			rd.Version = pkg.File.Version
		}
		report.Ready = append(report.Ready, rd)
	}
	if len(report.Ready) > 0 {
		names := make([]string, 0, len(report.Ready))
		for _, rd := range report.Ready {
			names = append(names, fmt.Sprintf(" %s@%s", rd.Name, rd.Version))
		}
		s.Logger.Info(fmt.Sprintf("There is %s ready to publish which includes%s",
			plural(len(report.Ready), "package", "packages"), strings.Join(names, ",")))
	}
	return report, nil
}
