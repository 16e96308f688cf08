package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fbkclanna/vercast/internal/logging"
	"github.com/fbkclanna/vercast/internal/registry"
	"github.com/fbkclanna/vercast/internal/release"
	"github.com/fbkclanna/vercast/internal/settings"
	"github.com/fbkclanna/vercast/internal/workspace"
)

// loadWorkspace resolves settings for cmd and loads the workspace they
// point at.
func loadWorkspace(cmd *cobra.Command) (*workspace.Context, *settings.Settings, error) {
	s, err := settings.Load(cmd)
	if err != nil {
		return nil, nil, err
	}
	ws, err := workspace.Load(s.Cwd)
	if err != nil {
		return nil, nil, err
	}
	return ws, s, nil
}

// loadSession returns a release session for cmd that logs to its stderr.
func loadSession(cmd *cobra.Command) (*release.Session, error) {
	ws, s, err := loadWorkspace(cmd)
	if err != nil {
		return nil, err
	}
	reg, err := registry.LoadSettings()
	if err != nil {
		return nil, err
	}
	sess := release.New(ws, newLogger(cmd.ErrOrStderr(), s))
	sess.DryRun = s.DryRun
	sess.Registry = registry.New(reg)
	if f := cmd.Flags().Lookup("only"); f != nil {
		sess.Only, _ = cmd.Flags().GetStringSlice("only")
		sess.Skip, _ = cmd.Flags().GetStringSlice("skip")
	}
	return sess, nil
}

// newLogger picks console output for a terminal and JSON lines otherwise,
// unless a format is configured.
func newLogger(w io.Writer, s *settings.Settings) *logging.Logger {
	format := s.LogFormat
	if format == "" {
		format = logging.FormatJSON
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = logging.FormatConsole
		}
	}
	return logging.New(w, s.LogLevel, format)
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("only", nil, "Only run for these packages")
	cmd.Flags().StringSlice("skip", nil, "Skip these packages")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
