package release

import (
	"strings"

	"github.com/fbkclanna/vercast/internal/assemble"
	"github.com/fbkclanna/vercast/internal/command"
	"github.com/fbkclanna/vercast/internal/pkgfile"
	"github.com/fbkclanna/vercast/internal/workspace"
)

var stages = []command.Stage{command.StagePre, command.StageMain, command.StagePost}

// Merge builds the command package of name for workflow from its settings
// layered over its manager's. rel and m may be nil. It reports false for
// packages that are not configured.
func Merge(ws *workspace.Context, name, workflow string, rel *assemble.Release, m pkgfile.Manifest) (*command.Package, bool) {
	p, ok := ws.Config.Package(name)
	if !ok {
		return nil, false
	}
	dir, _ := ws.PackageDir(name)
	pkg := &command.Package{
		Name:         name,
		Path:         dir,
		Manager:      p.Manager,
		File:         pkgfile.InfoOf(m),
		Dependencies: p.Dependencies,
		ReleaseTag:   p.ReleaseTagTemplate(),
		Commands:     map[string]command.Commands{},
	}
	if rel != nil {
		pkg.Release = &command.Release{Type: rel.Type, Changes: rel.Changes}
	}
	for _, a := range p.Assets {
		pkg.Assets = append(pkg.Assets, command.Asset{Name: a.Name, Path: a.Path})
	}
	for _, s := range stages {
		key := s.Key(workflow)
		if cmds := p.Command(key); cmds != nil {
			pkg.Commands[key] = cmds
		}
	}
	if key, ok := publishedVersionKey(workflow); ok {
		if cmds := p.Command(key); cmds != nil {
			pkg.Commands[command.PublishedVersionKey] = cmds
		}
	}
	return pkg, true
}

// publishedVersionKey returns the getPublishedVersion key of a
// publish-family workflow: "publish" reads getPublishedVersion and
// "publishDocs" reads getPublishedVersionDocs.
func publishedVersionKey(workflow string) (string, bool) {
	suffix, ok := strings.CutPrefix(workflow, "publish")
	if !ok {
		return "", false
	}
	return command.PublishedVersionKey + suffix, true
}
