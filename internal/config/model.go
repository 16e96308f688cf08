package config

import (
	"fmt"

	"github.com/fbkclanna/vercast/internal/command"
	"gopkg.in/yaml.v3"
)

// DefaultChangeFolder is where change files and config live.
const DefaultChangeFolder = ".changes"

// DefaultReleaseTag is the release tag template used when none is configured.
const DefaultReleaseTag = "{{ .Pkg.Name }}-v{{ .PkgFile.Version }}"

// Config represents .changes/config.json.
type Config struct {
	ChangeFolder        string
	GitSiteURL          string
	AdditionalBumpTypes []string
	DefaultChangeTag    string
	ChangeTags          []Tag
	PkgManagers         map[string]*Settings
	// PackageNames lists configured packages in file order.
	PackageNames []string
	Packages     map[string]*Settings
}

// Tag is a changelog section keyed by the tag used in change files.
type Tag struct {
	Key   string
	Title string
}

// Asset is a file uploaded alongside a published release.
type Asset struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ReleaseTag is a tag template, or disabled with false.
type ReleaseTag struct {
	Set      bool
	Disabled bool
	Template string
}

// UnmarshalYAML accepts a template string or a bool.
func (r *ReleaseTag) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: releaseTag must be a string or false", n.Line)
	}
	if n.Tag == "!!bool" {
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		*r = ReleaseTag{Set: true, Disabled: !b}
		return nil
	}
	*r = ReleaseTag{Set: true, Template: n.Value}
	return nil
}

// Settings holds the keys shared by pkgManagers and packages entries. Keys
// that are not known settings are workflow commands, e.g. "publish",
// "prepublish" or "getPublishedVersion".
type Settings struct {
	Manager             string
	Path                string
	PackageFileName     string
	Dependencies        []string
	ErrorOnVersionRange string
	ReleaseTag          ReleaseTag
	Assets              []Asset
	Commands            map[string]command.Commands
}

// UnmarshalYAML decodes known keys into fields and everything else into
// Commands.
func (s *Settings) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: package settings must be an object", n.Line)
	}
	out := Settings{Commands: map[string]command.Commands{}}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i].Value, n.Content[i+1]
		var err error
		switch key {
		case "manager":
			err = value.Decode(&out.Manager)
		case "path":
			err = value.Decode(&out.Path)
		case "packageFileName":
			err = value.Decode(&out.PackageFileName)
		case "dependencies":
			err = value.Decode(&out.Dependencies)
		case "errorOnVersionRange":
			err = value.Decode(&out.ErrorOnVersionRange)
		case "releaseTag":
			err = value.Decode(&out.ReleaseTag)
		case "assets":
			err = value.Decode(&out.Assets)
		default:
			// false keeps the key with a nil list so it can override a manager command.
			var cmds command.Commands
			if err = value.Decode(&cmds); err == nil {
				out.Commands[key] = cmds
			}
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	*s = out
	return nil
}

// Package is the effective configuration of one package: its own settings
// layered over those of its package manager.
type Package struct {
	Name                string
	Manager             string
	Path                string
	PackageFileName     string
	Dependencies        []string
	ErrorOnVersionRange string
	ReleaseTag          ReleaseTag
	Assets              []Asset
	Commands            map[string]command.Commands
}

// Command returns the configured commands for key, or nil.
func (p *Package) Command(key string) command.Commands {
	return p.Commands[key]
}

// ReleaseTagTemplate returns the tag template, or "" when disabled.
func (p *Package) ReleaseTagTemplate() string {
	switch {
	case p.ReleaseTag.Disabled:
		return ""
	case p.ReleaseTag.Template != "":
		return p.ReleaseTag.Template
	default:
		return DefaultReleaseTag
	}
}
