package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fbkclanna/vercast/internal/ui"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Bump versions, write changelogs and consume change files",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("json", false, "Output the commands ran as JSON")
	addFilterFlags(cmd)
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	report, err := sess.Version(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, report)
	}
	if len(report.Applied) > 0 {
		tbl := ui.NewTable(out, "PACKAGE", "FROM", "TO")
		for _, b := range report.Applied {
			tbl.Row(b.Name, b.Previous, b.Version)
		}
		if err := tbl.Flush(); err != nil {
			return err
		}
	}
	msg := report.Response
	if sess.DryRun && len(report.Applied) > 0 {
		msg = "Dry run: nothing was written."
	}
	_, _ = fmt.Fprintln(out, msg)
	return nil
}
