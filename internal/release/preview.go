package release

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fbkclanna/vercast/internal/apply"
	"github.com/fbkclanna/vercast/internal/command"
)

// Preview versions every planned package with previewVersion as its
// prerelease, without consuming change files, and runs the pre and main
// publish stages with tag as the release tag.
func (s *Session) Preview(ctx context.Context, previewVersion, tag string) (*RunReport, error) {
	ctx, span := tracer.Start(ctx, "workflow preview")
	defer span.End()
	span.SetAttributes(attribute.Bool("vercast.dry_run", s.DryRun), attribute.String("vercast.preview", previewVersion))

	if previewVersion == "" {
		return nil, fail(span, fmt.Errorf("preview: a preview identifier is required"))
	}

	r, err := s.resolve(ctx, false)
	if err != nil {
		return nil, fail(span, err)
	}

	opts := apply.Options{
		PreviewVersion:       previewVersion,
		PrereleaseIdentifier: s.prereleaseIdentifier(),
		Logger:               s.Logger,
	}
	if err := apply.Validate(s.applyChanges(r.cascaded), r.manifests, opts); err != nil {
		return nil, fail(span, err)
	}

	versionPkgs := s.versionPackages("version", r.cascaded, r.manifests)
	versionEng := s.engine("version")
	if _, err := versionEng.RunStage(ctx, versionPkgs, command.StagePre, nil); err != nil {
		return nil, fail(span, err)
	}
	if _, err := s.bump(r, versionPkgs, opts); err != nil {
		return nil, fail(span, err)
	}
	if _, err := versionEng.RunStage(ctx, versionPkgs, command.StagePost, nil); err != nil {
		return nil, fail(span, err)
	}

	const workflow = "publish"
	pkgs := s.workflowPackages(workflow, r.manifests, tag)
	if len(pkgs) == 0 {
		return s.nothingConfigured(workflow), nil
	}
	eng := s.engine(workflow)
	if pkgs, err = eng.ConfirmPublishNeeded(ctx, pkgs); err != nil {
		return nil, fail(span, err)
	}
	rec, err := eng.RunPipeline(ctx, pkgs, []command.Stage{command.StagePre, command.StageMain}, nil)
	if err != nil {
		return nil, fail(span, err)
	}
	return &RunReport{Packages: names(pkgs), Record: rec}, nil
}
