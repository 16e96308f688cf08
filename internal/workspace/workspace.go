package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sourcegraph/conc/pool"

	"github.com/fbkclanna/vercast/internal/change"
	"github.com/fbkclanna/vercast/internal/config"
	"github.com/fbkclanna/vercast/internal/pkgfile"
	"github.com/fbkclanna/vercast/internal/pre"
)

// ConfigNames are the accepted config file names inside the change folder.
var ConfigNames = []string{"config.json", "config.yaml", "config.yml"}

// maxLoaders bounds concurrent manifest reads.
const maxLoaders = 8

// Context holds the resolved paths and loaded config for a workspace.
type Context struct {
	Root       string
	ConfigPath string
	PrePath    string
	Config     *config.Config
	Pre        *pre.File // may be nil
}

// Load finds the config under root and loads it, plus pre.json if present.
func Load(root string) (*Context, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace root: %w", err)
	}

	configPath, err := FindConfig(root)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Root:       root,
		ConfigPath: configPath,
		PrePath:    filepath.Join(root, cfg.ChangeFolder, pre.FileName),
		Config:     cfg,
	}

	if _, statErr := os.Stat(ctx.PrePath); statErr == nil {
		pf, err := pre.Load(ctx.PrePath)
		if err != nil {
			return nil, err
		}
		ctx.Pre = pf
	}

	return ctx, nil
}

// FindConfig returns the config file path under root's default change
// folder.
func FindConfig(root string) (string, error) {
	dir := filepath.Join(root, config.DefaultChangeFolder)
	for _, name := range ConfigNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no config found in %s (run \"vercast init\")", dir)
}

// ChangeDir returns the absolute change folder.
func (c *Context) ChangeDir() string {
	return filepath.Join(c.Root, c.Config.ChangeFolder)
}

// ChangeFiles lists change files relative to the root.
func (c *Context) ChangeFiles() ([]string, error) {
	return change.Discover(c.Root, c.Config.ChangeFolder)
}

// Changes loads and parses change files with their git history when
// withCommits is set.
func (c *Context) Changes(paths []string, withCommits bool) ([]*change.Declaration, error) {
	return change.Load(c.Root, paths, change.LoadOptions{WithCommits: withCommits})
}

// PackageDir returns the absolute directory of a package. Packages without
// a path have no directory.
func (c *Context) PackageDir(name string) (string, bool) {
	p, ok := c.Config.Package(name)
	if !ok || p.Path == "" {
		return "", false
	}
	dir, _ := c.split(p)
	return dir, true
}

// ManifestPath returns the manifest file of a package. A configured path
// that names a file is used as is; a directory gets the packageFileName or
// the manager's default file.
func (c *Context) ManifestPath(name string) (string, bool) {
	p, ok := c.Config.Package(name)
	if !ok || p.Path == "" {
		return "", false
	}
	dir, file := c.split(p)
	return filepath.Join(dir, file), true
}

func (c *Context) split(p *config.Package) (dir, file string) {
	full := filepath.Join(c.Root, filepath.FromSlash(p.Path))
	if info, err := os.Stat(full); err == nil && info.Mode().IsRegular() {
		return filepath.Dir(full), filepath.Base(full)
	}
	if p.PackageFileName != "" {
		return full, p.PackageFileName
	}
	return full, pkgfile.FileName(p.Manager)
}

// LoadManifests reads the manifests of names concurrently. Packages without
// a path are left out of the result.
func (c *Context) LoadManifests(ctx context.Context, names []string) (map[string]pkgfile.Manifest, error) {
	type loaded struct {
		name string
		m    pkgfile.Manifest
	}
	p := pool.NewWithResults[loaded]().WithContext(ctx).WithMaxGoroutines(maxLoaders)
	for _, name := range names {
		path, ok := c.ManifestPath(name)
		if !ok {
			continue
		}
		p.Go(func(ctx context.Context) (loaded, error) {
			if err := ctx.Err(); err != nil {
				return loaded{}, err
			}
			m, err := pkgfile.Load(name, path)
			if err != nil {
				return loaded{}, err
			}
			return loaded{name: name, m: m}, nil
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, err
	}
	out := make(map[string]pkgfile.Manifest, len(results))
	for _, r := range results {
		if r.m != nil {
			out[r.name] = r.m
		}
	}
	return out, nil
}

// SavePre writes the pre-mode file.
func (c *Context) SavePre(f *pre.File) error {
	c.Pre = f
	return pre.Save(c.PrePath, f)
}

// RemoveChanges deletes consumed change files.
func (c *Context) RemoveChanges(paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := os.Remove(filepath.Join(c.Root, filepath.FromSlash(p))); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("removing change file: %w", err))
		}
	}
	return errors.Join(errs...)
}
