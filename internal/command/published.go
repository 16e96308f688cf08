package command

import (
	"context"
	"fmt"
	"strings"
)

// PublishedVersionKey is the command key that reports the latest published
// version of a package.
const PublishedVersionKey = "getPublishedVersion"

// ConfirmPublishNeeded drops packages whose current version is already
// published. Packages without a getPublishedVersion command are kept. A
// failing fetch:check counts as not published; a failing shell command is
// an error.
func (e *Engine) ConfirmPublishNeeded(ctx context.Context, pkgs []*Package) ([]*Package, error) {
	out := make([]*Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		published, err := e.isPublished(ctx, pkg)
		if err != nil {
			return nil, err
		}
		if !published {
			out = append(out, pkg)
		}
	}
	return out, nil
}

func (e *Engine) isPublished(ctx context.Context, pkg *Package) (bool, error) {
	cmds := pkg.Commands[PublishedVersionKey]
	if len(cmds) == 0 || pkg.File == nil || pkg.File.Version == "" {
		return false, nil
	}
	log := e.Logger.WithPackage(pkg.Name)
	version := pkg.File.Version
	spec := cmds[0]
	pc := e.context(pkg, PackageRecord{}, "")

	line, err := e.describe(spec, pc)
	if err != nil {
		return false, err
	}
	log.Info(fmt.Sprintf("Checking if %s@%s is already published with: %s", pkg.Name, version, line))

	var got string
	switch {
	case spec.Func != nil:
		return false, fmt.Errorf("%s: %s must be a command or %s", pkg.Name, PublishedVersionKey, BuiltinFetchCheck)
	case spec.Use == BuiltinFetchCheck:
		got, err = e.fetch(ctx, pkg, spec, line)
		if err != nil {
			log.Debug("published version lookup failed", "error", err)
			return false, nil
		}
	default:
		got, err = e.runOnce(ctx, pkg, spec, line, pc, log)
		if err != nil {
			return false, err
		}
	}

	if strings.TrimSpace(got) == version {
		log.Info(fmt.Sprintf("%s@%s is already published. Skipping.", pkg.Name, version))
		return true, nil
	}
	return false, nil
}
