package main

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"golang.org/x/term"

	"github.com/fbkclanna/vercast/internal/command"
	"github.com/fbkclanna/vercast/internal/config"
	"github.com/fbkclanna/vercast/internal/git"
	"github.com/fbkclanna/vercast/internal/pkgfile"
	"github.com/fbkclanna/vercast/internal/settings"
	"github.com/fbkclanna/vercast/internal/ui"
)

const manifestPattern = "**/{package.json,Cargo.toml,pubspec.yaml}"

var skippedDirs = []string{"node_modules", "target", ".git", ".dart_tool", config.DefaultChangeFolder}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Detect the packages of the workspace and write a starter config",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
	cmd.Flags().Bool("yes", false, "Write the config without asking")
	cmd.Flags().Bool("force", false, "Overwrite an existing config")
	cmd.Flags().Bool("commit", false, "Commit the new change folder, initializing git when needed")
	cmd.Flags().String("git-site-url", "", "Repository URL used for commit links in changelogs")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	force, _ := cmd.Flags().GetBool("force")
	commit, _ := cmd.Flags().GetBool("commit")
	siteURL, _ := cmd.Flags().GetString("git-site-url")

	s, err := settings.Load(cmd)
	if err != nil {
		return err
	}
	root, err := filepath.Abs(s.Cwd)
	if err != nil {
		return err
	}
	dir := filepath.Join(root, config.DefaultChangeFolder)
	configPath := filepath.Join(dir, "config.json")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	pkgs, err := scanPackages(root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		return fmt.Errorf("no versioned package.json, Cargo.toml or pubspec.yaml found under %s", root)
	}

	out := cmd.OutOrStdout()
	tbl := ui.NewTable(out, "PACKAGE", "MANAGER", "VERSION", "PATH", "DEPENDS ON")
	for _, p := range pkgs {
		tbl.Row(p.Name, p.Manager, p.Version, p.Path, strings.Join(p.Dependencies, ","))
	}
	if err := tbl.Flush(); err != nil {
		return err
	}

	if !yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("confirmation requires a TTY; use --yes")
		}
		ok, err := promptConfirm(fmt.Sprintf("Write %s?", filepath.Join(config.DefaultChangeFolder, "config.json")), true)
		if err != nil {
			return err
		}
		if !ok {
			return errAborted
		}
	}

	data, err := buildConfig(pkgs, siteURL)
	if err != nil {
		return fmt.Errorf("building config: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil { //nolint:gosec // change folder is committed
		return fmt.Errorf("creating change folder: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil { //nolint:gosec // config is committed
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), []byte(changeReadme), 0644); err != nil { //nolint:gosec // readme is committed
		return fmt.Errorf("writing readme: %w", err)
	}

	if commit {
		commitChangeFolder(cmd, root)
	}

	_, _ = fmt.Fprintf(out, "Initialized %s with %d package(s).\n", config.DefaultChangeFolder, len(pkgs))
	return nil
}

// detected is a package found by scanning the workspace.
type detected struct {
	Name         string
	Manager      string
	Version      string
	Path         string
	Dependencies []string
	manifest     pkgfile.Manifest
}

// scanPackages finds versioned manifests under root, skipping dependency
// and build directories. Unreadable manifests are reported to warn and
// skipped.
func scanPackages(root string, warn io.Writer) ([]detected, error) {
	matches, err := doublestar.Glob(os.DirFS(root), manifestPattern)
	if err != nil {
		return nil, fmt.Errorf("scanning for manifests: %w", err)
	}
	slices.Sort(matches)

	var pkgs []detected
	seen := make(map[string]string)
	for _, rel := range matches {
		if skipped(rel) {
			continue
		}
		m, err := pkgfile.Load(rel, filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			_, _ = fmt.Fprintf(warn, "Warning: skipping %s: %v\n", rel, err)
			continue
		}
		if m.Version() == "" {
			continue
		}
		dir := path.Dir(rel)
		name := m.DeclaredName()
		if name == "" {
			name = path.Base(dir)
			if dir == "." {
				name = filepath.Base(root)
			}
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("package %q found at both %s and %s", name, prev, rel)
		}
		seen[name] = rel

		pkgPath := "."
		if dir != "." {
			pkgPath = "./" + dir
		}
		pkgs = append(pkgs, detected{
			Name:     name,
			Manager:  managerFor(rel),
			Version:  m.Version(),
			Path:     pkgPath,
			manifest: m,
		})
	}

	for i := range pkgs {
		for _, other := range pkgs {
			if other.Name != pkgs[i].Name && len(pkgs[i].manifest.Dependency(other.Name)) > 0 {
				pkgs[i].Dependencies = append(pkgs[i].Dependencies, other.Name)
			}
		}
	}
	return pkgs, nil
}

func skipped(rel string) bool {
	for _, part := range strings.Split(path.Dir(rel), "/") {
		if slices.Contains(skippedDirs, part) {
			return true
		}
	}
	return false
}

func managerFor(rel string) string {
	switch path.Base(rel) {
	case "Cargo.toml":
		return "rust"
	case "pubspec.yaml":
		return "dart"
	default:
		return "javascript"
	}
}

type setting struct {
	key   string
	value any
}

func fetchCheck(url string) map[string]any {
	return map[string]any{"use": command.BuiltinFetchCheck, "options": map[string]any{"url": url}}
}

var managerDefaults = map[string][]setting{
	"javascript": {
		{"version", true},
		{"getPublishedVersion", fetchCheck("https://registry.npmjs.com/{{ .Pkg.Name }}/{{ .PkgFile.Version }}")},
		{"publish", []string{"npm publish --access public"}},
	},
	"rust": {
		{"version", true},
		{"getPublishedVersion", fetchCheck("https://crates.io/api/v1/crates/{{ .Pkg.Name }}/{{ .PkgFile.Version }}")},
		{"publish", []string{"cargo publish"}},
	},
	"dart": {
		{"version", true},
		{"getPublishedVersion", fetchCheck("https://pub.dev/api/packages/{{ .Pkg.Name }}/versions/{{ .PkgFile.Version }}")},
		{"publish", []string{"dart pub publish --force"}},
	},
}

// buildConfig renders config.json for pkgs with defaults for each manager
// in use.
func buildConfig(pkgs []detected, gitSiteURL string) ([]byte, error) {
	data := []byte(`{}`)
	var err error
	set := func(p string, v any) {
		if err == nil {
			data, err = sjson.SetBytes(data, p, v)
		}
	}

	if gitSiteURL != "" {
		set("gitSiteUrl", strings.TrimSuffix(gitSiteURL, "/")+"/")
	}
	var managers []string
	for _, p := range pkgs {
		if !slices.Contains(managers, p.Manager) {
			managers = append(managers, p.Manager)
		}
	}
	slices.Sort(managers)
	for _, m := range managers {
		for _, s := range managerDefaults[m] {
			set("pkgManagers."+m+"."+s.key, s.value)
		}
	}
	for _, p := range pkgs {
		key := "packages." + pkgfile.EscapeKey(p.Name)
		set(key+".path", p.Path)
		set(key+".manager", p.Manager)
		if len(p.Dependencies) > 0 {
			set(key+".dependencies", p.Dependencies)
		}
	}
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(data, &pretty.Options{Width: 80, Indent: "  "}), nil
}

// commitChangeFolder commits the change folder. Failures are warnings.
func commitChangeFolder(cmd *cobra.Command, root string) {
	warn := cmd.ErrOrStderr()
	if !git.IsGitInstalled() {
		_, _ = fmt.Fprintln(warn, "Warning: git is not installed; skipping commit")
		return
	}
	if !git.IsRepo(root) {
		if err := git.Init(root); err != nil {
			_, _ = fmt.Fprintf(warn, "Warning: git init failed: %v\n", err)
			return
		}
	}
	if err := git.Add(root, config.DefaultChangeFolder); err != nil {
		_, _ = fmt.Fprintf(warn, "Warning: git add failed: %v\n", err)
		return
	}
	if err := git.CommitAll(root, "Initialize vercast"); err != nil {
		_, _ = fmt.Fprintf(warn, "Warning: git commit failed: %v\n", err)
	}
}

const changeReadme = `# Changes

Each markdown file in this folder declares bumps for one or more packages and
a summary for their changelogs:

    ---
    "pkg-a": minor
    "pkg-b": patch:bug
    ---

    Describe the change.

Create one with ` + "`vercast add`" + `. ` + "`vercast version`" + ` consumes them, bumps the
packages and writes their changelogs. ` + "`vercast publish`" + ` publishes versions
that are not published yet.
`
