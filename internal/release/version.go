package release

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fbkclanna/vercast/internal/apply"
	"github.com/fbkclanna/vercast/internal/changelog"
	"github.com/fbkclanna/vercast/internal/command"
	"github.com/fbkclanna/vercast/internal/git"
)

// VersionReport is the outcome of Version.
type VersionReport struct {
	Response string         `json:"response,omitempty"`
	Applied  []apply.Bumped `json:"-"`
	Record   command.Record `json:"commandsRan"`
	// Changelogs maps package names to their rendered changelog section.
	Changelogs map[string]string `json:"changelogs,omitempty"`
}

// Version bumps every planned package, writes changelogs and consumes the
// change files. Pre-mode records the change files in pre.json instead of
// removing them. A dry run writes nothing and only logs the commands.
func (s *Session) Version(ctx context.Context) (*VersionReport, error) {
	const workflow = "version"
	ctx, span := tracer.Start(ctx, "workflow "+workflow)
	defer span.End()
	span.SetAttributes(attribute.Bool("vercast.dry_run", s.DryRun))

	r, err := s.resolve(ctx, git.IsRepo(s.WS.Root))
	if err != nil {
		return nil, fail(span, err)
	}
	if r.cascaded.Len() == 0 {
		s.Logger.Info("There are no changes.")
		return &VersionReport{Response: "No changes.", Record: command.Record{}}, nil
	}

	// Disallowed versions and unpinned dependencies abort before any command runs.
	opts := apply.Options{PrereleaseIdentifier: s.prereleaseIdentifier(), Logger: s.Logger}
	if err := apply.Validate(s.applyChanges(r.cascaded), r.manifests, opts); err != nil {
		return nil, fail(span, err)
	}

	pkgs := s.versionPackages(workflow, r.cascaded, r.manifests)
	eng := s.engine(workflow)
	rec, err := eng.RunStage(ctx, pkgs, command.StagePre, nil)
	if err != nil {
		return nil, fail(span, err)
	}

	bumped, err := s.bump(r, pkgs, opts)
	if err != nil {
		return nil, fail(span, err)
	}

	logs, err := s.writeChangelogs(r, bumped, rec)
	if err != nil {
		return nil, fail(span, err)
	}

	rec, err = eng.RunStage(ctx, pkgs, command.StagePost, rec)
	if err != nil {
		return nil, fail(span, err)
	}

	if !s.DryRun {
		if s.WS.Pre != nil {
			if err := s.WS.SavePre(s.WS.Pre.WithChanges(r.paths)); err != nil {
				return nil, fail(span, err)
			}
		} else if err := s.WS.RemoveChanges(r.paths); err != nil {
			return nil, fail(span, err)
		}
	}

	return &VersionReport{
		Response:   fmt.Sprintf("Bumped %s.", plural(len(bumped), "package", "packages")),
		Applied:    bumped,
		Record:     rec,
		Changelogs: logs,
	}, nil
}

// writeChangelogs renders a section for every bumped package and stores it
// as the package's main output. Sections are written to disk unless this is
// a dry run.
func (s *Session) writeChangelogs(r *resolved, bumped []apply.Bumped, rec command.Record) (map[string]string, error) {
	cfg := s.WS.Config
	versions := make(map[string]string, len(bumped))
	changed := map[string]bool{}
	for _, b := range bumped {
		versions[b.Name] = b.Version
		changed[b.Name] = b.Version != b.Previous
	}
	opts := changelog.Options{
		GitSiteURL: cfg.GitSiteURL,
		ChangeTags: cfg.ChangeTags,
		DefaultTag: cfg.DefaultChangeTag,
		Versions:   versions,
	}

	out := map[string]string{}
	for _, name := range r.cascaded.Names() {
		if !changed[name] {
			continue
		}
		version := versions[name]
		rel, _ := r.cascaded.Get(name)
		dir, _ := s.WS.PackageDir(name)
		section := changelog.Render(changelog.Release{Name: name, Dir: dir, Version: version, Changes: rel.Changes}, opts)
		out[name] = section
		rec.Entry(name).Main = command.Output{Stdout: section}
		if s.DryRun || dir == "" {
			continue
		}
		path, err := changelog.Write(dir, section)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		s.Logger.WithPackage(name).Debug("changelog written", "path", path)
	}
	return out, nil
}
