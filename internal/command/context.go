package command

import (
	"encoding/json"

	"github.com/fbkclanna/vercast/internal/bump"
	"github.com/fbkclanna/vercast/internal/change"
	"github.com/fbkclanna/vercast/internal/pkgfile"
)

// Stage is one of the three steps of a workflow for a package.
type Stage int

// Stages in run order.
const (
	StagePre Stage = iota
	StageMain
	StagePost
)

// Key returns the config key of the stage for workflow, e.g. "prepublish".
func (s Stage) Key(workflow string) string {
	switch s {
	case StagePre:
		return "pre" + workflow
	case StagePost:
		return "post" + workflow
	default:
		return workflow
	}
}

// Release is the planned release of a package, if any.
type Release struct {
	Type    bump.Type
	Changes []*change.Declaration
}

// Asset is a file published alongside a release.
type Asset struct {
	Name string
	Path string
}

// Package is everything the engine needs to run a package's commands.
type Package struct {
	Name string
	// Path is the absolute package directory.
	Path    string
	Manager string
	// File is the manifest summary, nil when the package has none.
	File         *pkgfile.Info
	Release      *Release
	Dependencies []string
	// ReleaseTag is a template rendered against the command context. Empty
	// disables the release tag.
	ReleaseTag string
	Assets     []Asset

	// Commands holds the resolved commands keyed by stage key, plus
	// getPublishedVersion.
	Commands map[string]Commands
}

// Stage returns the commands configured for the stage of workflow.
func (p *Package) Stage(workflow string, s Stage) Commands {
	if p.Commands == nil {
		return nil
	}
	return p.Commands[s.Key(workflow)]
}

// Context is the template data of a command and the argument of a Func.
type Context struct {
	Pkg     *Package
	PkgFile *pkgfile.Info
	Release *Release
	// Pipe is the accumulated stdout of earlier piped commands of the stage.
	Pipe string
	// Record is what the package's stages produced so far.
	Record PackageRecord
	// Tag is the rendered release tag, empty when disabled.
	Tag      string
	DryRun   bool
	Workflow string
}

// Output is the result of a stage: whether it ran, and the stdout it
// produced.
type Output struct {
	Ran    bool
	Stdout string
}

// String returns the stdout, or "true" when the stage ran silently.
func (o Output) String() string {
	if o.Stdout == "" && o.Ran {
		return "true"
	}
	return o.Stdout
}

// MarshalJSON encodes stdout as a string, a silent run as true and
// anything else as null.
func (o Output) MarshalJSON() ([]byte, error) {
	switch {
	case o.Stdout != "":
		return json.Marshal(o.Stdout)
	case o.Ran:
		return []byte("true"), nil
	default:
		return []byte("null"), nil
	}
}

// PackageRecord collects the stage outputs of one package.
type PackageRecord struct {
	Pre       Output `json:"precommand"`
	Main      Output `json:"command"`
	Post      Output `json:"postcommand"`
	Published bool   `json:"published"`
}

// Get returns the output of a stage.
func (r *PackageRecord) Get(s Stage) Output {
	switch s {
	case StagePre:
		return r.Pre
	case StagePost:
		return r.Post
	default:
		return r.Main
	}
}

// Set replaces the output of a stage.
func (r *PackageRecord) Set(s Stage, o Output) {
	switch s {
	case StagePre:
		r.Pre = o
	case StagePost:
		r.Post = o
	default:
		r.Main = o
	}
}

// Record maps package names to what their stages produced.
type Record map[string]*PackageRecord

// Entry returns the record of name, creating it if needed.
func (r Record) Entry(name string) *PackageRecord {
	rec, ok := r[name]
	if !ok {
		rec = &PackageRecord{}
		r[name] = rec
	}
	return rec
}
