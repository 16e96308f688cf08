package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fbkclanna/vercast/internal/bump"
	"github.com/fbkclanna/vercast/internal/change"
	"github.com/fbkclanna/vercast/internal/config"
	"github.com/fbkclanna/vercast/internal/git"
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Write a change file declaring bumps for one or more packages",
		Example: `  vercast add --bump pkg-a=minor --summary "Add the thing."
  vercast add --bump pkg-a=patch:bug --bump pkg-b=patch --summary "Fix the thing."`,
		Args: cobra.NoArgs,
		RunE: runAdd,
	}
	cmd.Flags().StringArray("bump", nil, "Bump as <package>=<type>[:<tag>] (repeatable)")
	cmd.Flags().String("summary", "", "Change summary used in changelogs")
	cmd.Flags().String("name", "", "Change file name without extension (default: from the git branch)")
	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	values, _ := cmd.Flags().GetStringArray("bump")
	summary, _ := cmd.Flags().GetString("summary")
	name, _ := cmd.Flags().GetString("name")

	ws, _, err := loadWorkspace(cmd)
	if err != nil {
		return err
	}
	cfg := ws.Config

	var bumps map[string]string
	switch {
	case len(values) > 0:
		bumps, err = parseBumps(values, cfg)
		if err != nil {
			return err
		}
		if strings.TrimSpace(summary) == "" {
			return fmt.Errorf("--summary is required with --bump")
		}
	case term.IsTerminal(int(os.Stdin.Fd())):
		bumps, summary, err = interactiveChange(cfg.PackageNames, cfg.AdditionalBumpTypes)
		if err != nil {
			return fmt.Errorf("interactive change: %w", err)
		}
	default:
		return fmt.Errorf("no --bump given; interactive mode requires a TTY")
	}

	packages := make([]string, 0, len(bumps))
	for pkg := range bumps {
		packages = append(packages, pkg)
	}
	slices.Sort(packages)

	dir := ws.ChangeDir()
	if name == "" {
		name = defaultChangeName(ws.Root, dir)
	} else if err := validChangeName(name); err != nil {
		return err
	}
	path := filepath.Join(dir, name+".md")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("change file %s already exists", path)
	}

	if err := os.MkdirAll(dir, 0755); err != nil { //nolint:gosec // change folder is committed
		return fmt.Errorf("creating change folder: %w", err)
	}
	if err := os.WriteFile(path, change.Render(packages, bumps, summary), 0644); err != nil { //nolint:gosec // change files are committed
		return fmt.Errorf("writing change file: %w", err)
	}

	rel, err := filepath.Rel(ws.Root, path)
	if err != nil {
		rel = path
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", filepath.ToSlash(rel))
	return nil
}

// parseBumps reads <package>=<type>[:<tag>] values against the config.
func parseBumps(values []string, cfg *config.Config) (map[string]string, error) {
	bumps := make(map[string]string, len(values))
	for _, v := range values {
		pkg, value, ok := strings.Cut(v, "=")
		pkg, value = strings.TrimSpace(pkg), strings.TrimSpace(value)
		if !ok || pkg == "" || value == "" {
			return nil, fmt.Errorf("invalid bump %q: want <package>=<type>[:<tag>]", v)
		}
		if _, ok := cfg.Package(pkg); !ok {
			return nil, fmt.Errorf("unknown package %q", pkg)
		}
		kind, tag, hasTag := strings.Cut(value, ":")
		if !bump.Valid(kind, cfg.AdditionalBumpTypes) {
			return nil, fmt.Errorf("invalid bump %q for %s: must be one of %s",
				kind, pkg, strings.Join(bump.Allowed(cfg.AdditionalBumpTypes), ", "))
		}
		if hasTag && tag == "" {
			return nil, fmt.Errorf("invalid bump %q: empty tag", v)
		}
		if _, dup := bumps[pkg]; dup {
			return nil, fmt.Errorf("package %q given more than once", pkg)
		}
		bumps[pkg] = value
	}
	return bumps, nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeChangeName turns a branch name into a file name.
func sanitizeChangeName(s string) string {
	s = unsafeNameChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-.")
}

func validChangeName(name string) error {
	if name == "readme" || sanitizeChangeName(name) != name {
		return fmt.Errorf("invalid change name %q: use letters, digits, '.', '-' or '_'", name)
	}
	return nil
}

// defaultChangeName names a change after the current branch, with a random
// suffix when that name is taken. Outside a branch a random name is used.
func defaultChangeName(root, dir string) string {
	branch := ""
	if git.IsRepo(root) {
		if b, err := git.CurrentBranch(root); err == nil {
			branch = sanitizeChangeName(b)
		}
	}
	if branch == "" || branch == "readme" {
		return uuid.NewString()
	}
	if _, err := os.Stat(filepath.Join(dir, branch+".md")); err != nil {
		return branch
	}
	return branch + "-" + uuid.NewString()[:8]
}
