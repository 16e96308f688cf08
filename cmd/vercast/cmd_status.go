package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fbkclanna/vercast/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the releases the pending change files would make",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	report, err := sess.Status(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, report)
	}

	switch {
	case len(report.Releases) > 0:
		tbl := ui.NewTable(out, "PACKAGE", "BUMP", "CURRENT", "NEXT", "CHANGES", "VIA")
		for _, r := range report.Releases {
			tbl.Row(r.Name, r.Type, r.Current, r.Next, r.Changes, strings.Join(r.Dependencies, ","))
		}
		if err := tbl.Flush(); err != nil {
			return err
		}
	case len(report.Ready) > 0:
		tbl := ui.NewTable(out, "READY TO PUBLISH", "VERSION")
		for _, r := range report.Ready {
			tbl.Row(r.Name, r.Version)
		}
		if err := tbl.Flush(); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintln(out, report.Response)
	return nil
}
