package change

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fbkclanna/vercast/internal/git"
)

// Discover returns the change files in folder, relative to root and sorted.
// README files are skipped.
func Discover(root, folder string) ([]string, error) {
	dir := filepath.Join(root, folder)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "*.md")
	if err != nil {
		return nil, fmt.Errorf("listing change files: %w", err)
	}
	var paths []string
	for _, m := range matches {
		if strings.EqualFold(m, "readme.md") {
			continue
		}
		paths = append(paths, filepath.ToSlash(filepath.Join(folder, m)))
	}
	slices.Sort(paths)
	return paths, nil
}

// LoadOptions controls how change files are loaded.
type LoadOptions struct {
	// WithCommits attaches the git history of each file.
	WithCommits bool
}

// Load reads and parses the change files at paths relative to root.
func Load(root string, paths []string, opts LoadOptions) ([]*Declaration, error) {
	decls := make([]*Declaration, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(filepath.Join(root, p)) //nolint:gosec // path is a discovered change file
		if err != nil {
			return nil, fmt.Errorf("reading change file: %w", err)
		}
		d, err := Parse(p, data)
		if err != nil {
			return nil, err
		}
		if opts.WithCommits {
			commits, err := git.FileCommits(root, p)
			if err != nil {
				return nil, err
			}
			d.Meta.Commits = commits
		}
		decls = append(decls, d)
	}
	return decls, nil
}
