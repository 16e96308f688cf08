package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fbkclanna/vercast/internal/assemble"
	"github.com/fbkclanna/vercast/internal/git"
	"github.com/fbkclanna/vercast/internal/pkgfile"
	"github.com/fbkclanna/vercast/internal/settings"
	"github.com/fbkclanna/vercast/internal/ui"
	"github.com/fbkclanna/vercast/internal/workspace"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the environment, config, manifests and change files",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	s, err := settings.Load(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	ws, loadErr := workspace.Load(s.Cwd)
	total := 3
	if loadErr == nil {
		total += 1 + len(ws.Config.PackageNames)
	}
	checks := ui.NewChecklist(out, total)

	if v, err := git.Version(); err != nil {
		checks.Fail("git", fmt.Errorf("git is required: %w", err))
	} else {
		checks.Pass("git", v)
	}
	checks.Pass("repository", repositoryState(s.Cwd))

	if loadErr != nil {
		checks.Fail("config", loadErr)
	} else {
		checks.Pass("config", fmt.Sprintf("%s (%d packages)", ws.ConfigPath, len(ws.Config.PackageNames)))
		for _, name := range ws.Config.PackageNames {
			label := "package " + name
			if detail, err := checkManifest(ws, name); err != nil {
				checks.Fail(label, err)
			} else {
				checks.Pass(label, detail)
			}
		}
		if detail, err := checkChanges(ws); err != nil {
			checks.Fail("change files", err)
		} else {
			checks.Pass("change files", detail)
		}
	}

	if n := checks.Failed(); n > 0 {
		_, _ = fmt.Fprintf(out, "\n%d check(s) failed. See above for details.\n", n)
		return fmt.Errorf("doctor checks failed")
	}
	_, _ = fmt.Fprintln(out, "\nAll checks passed.")
	return nil
}

// repositoryState describes the branch and working tree of dir. A missing
// repository only disables commit links, so it is not a failure.
func repositoryState(dir string) string {
	if !git.IsRepo(dir) {
		return "not a git repository, changelogs will have no commit links"
	}
	branch, _ := git.CurrentBranch(dir)
	if branch == "" {
		branch = "detached HEAD"
	}
	parts := []string{branch}
	if head, err := git.HeadCommit(dir); err == nil {
		parts = append(parts, "at "+head)
	}
	if dirty, err := git.IsDirty(dir); err == nil && dirty {
		parts = append(parts, "with uncommitted changes")
	}
	return strings.Join(parts, " ")
}

// checkManifest loads a package manifest and checks that writing it back
// unchanged reproduces the file byte for byte.
func checkManifest(ws *workspace.Context, name string) (string, error) {
	path, ok := ws.ManifestPath(name)
	if !ok {
		return "no path, versioned through its dependencies only", nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from workspace config
	if err != nil {
		return "", err
	}
	m, err := pkgfile.Parse(name, path, data)
	if err != nil {
		return "", err
	}
	if m.Version() == "" {
		return "", fmt.Errorf("%s has no version", path)
	}
	round, err := m.Serialize()
	if err != nil {
		return "", err
	}
	if !bytes.Equal(round, data) {
		return "", fmt.Errorf("%s does not round-trip; bumping it would reformat the file", path)
	}
	return fmt.Sprintf("%s@%s", name, m.Version()), nil
}

func checkChanges(ws *workspace.Context) (string, error) {
	paths, err := ws.ChangeFiles()
	if err != nil {
		return "", err
	}
	decls, err := ws.Changes(paths, false)
	if err != nil {
		return "", err
	}
	cfg := ws.Config
	plan, err := assemble.Assemble(decls, assemble.Options{
		AdditionalBumpTypes: cfg.AdditionalBumpTypes,
		Packages:            cfg.PackageNames,
		Pre:                 ws.Pre,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d change file(s) releasing %d package(s)", len(paths), plan.Len()), nil
}
