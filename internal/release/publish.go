package release

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fbkclanna/vercast/internal/changelog"
	"github.com/fbkclanna/vercast/internal/command"
	"github.com/fbkclanna/vercast/internal/pkgfile"
)

// RunReport is the outcome of Publish and Preview.
type RunReport struct {
	Response string `json:"response,omitempty"`
	// Packages are the packages the workflow ran for, after dropping those
	// already published.
	Packages []string       `json:"packages"`
	Record   command.Record `json:"commandsRan"`
}

// Publish runs workflow for every package that configures it. Each package
// runs its pre, main and post stages before the next package starts.
// Publish-family workflows skip packages whose version is already
// published, and get the package's latest changelog section as the seed of
// the main stage output.
func (s *Session) Publish(ctx context.Context, workflow string) (*RunReport, error) {
	ctx, span := tracer.Start(ctx, "workflow "+workflow)
	defer span.End()
	span.SetAttributes(attribute.Bool("vercast.dry_run", s.DryRun))

	manifests, err := s.WS.LoadManifests(ctx, s.WS.Config.PackageNames)
	if err != nil {
		return nil, fail(span, err)
	}
	pkgs := s.workflowPackages(workflow, manifests, "")
	if len(pkgs) == 0 {
		return s.nothingConfigured(workflow), nil
	}

	eng := s.engine(workflow)
	rec := command.Record{}
	if _, ok := publishedVersionKey(workflow); ok {
		if pkgs, err = eng.ConfirmPublishNeeded(ctx, pkgs); err != nil {
			return nil, fail(span, err)
		}
		if err := pipeChangelogs(pkgs, rec); err != nil {
			return nil, fail(span, err)
		}
	}

	rec, err = eng.RunPipeline(ctx, pkgs, stages, rec)
	if err != nil {
		return nil, fail(span, err)
	}
	return &RunReport{Packages: names(pkgs), Record: rec}, nil
}

// workflowPackages merges the packages that configure the main stage of
// workflow. A non-empty tag replaces the release tag template.
func (s *Session) workflowPackages(workflow string, manifests map[string]pkgfile.Manifest, tag string) []*command.Package {
	var pkgs []*command.Package
	for _, name := range s.packageNames() {
		pkg, ok := Merge(s.WS, name, workflow, nil, manifests[name])
		if !ok || !pkg.Stage(workflow, command.StageMain).Configured() {
			continue
		}
		if tag != "" {
			pkg.ReleaseTag = tag
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs
}

func (s *Session) nothingConfigured(workflow string) *RunReport {
	msg := fmt.Sprintf("No commands configured to run on [%s].", workflow)
	s.Logger.Info(msg)
	return &RunReport{Response: msg, Record: command.Record{}}
}

// pipeChangelogs seeds the main output of each package with the changelog
// section of its current version.
func pipeChangelogs(pkgs []*command.Package, rec command.Record) error {
	for _, pkg := range pkgs {
		if pkg.Path == "" || pkg.File == nil || pkg.File.Version == "" {
			continue
		}
		section, err := changelog.Section(pkg.Path, pkg.File.Version)
		if err != nil {
			return fmt.Errorf("%s: %w", pkg.Name, err)
		}
		if strings.TrimSpace(section) != "" {
			rec.Entry(pkg.Name).Main = command.Output{Stdout: section}
		}
	}
	return nil
}

func names(pkgs []*command.Package) []string {
	out := make([]string, len(pkgs))
	for i, pkg := range pkgs {
		out[i] = pkg.Name
	}
	return out
}
