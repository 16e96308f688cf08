package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fbkclanna/vercast/internal/release"
)

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish every package whose version is not published yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkflow(cmd, "publish")
		},
	}
	cmd.Flags().Bool("json", false, "Output the commands ran as JSON")
	addFilterFlags(cmd)
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <workflow>",
		Short: "Run a configured workflow, e.g. build or test, for every package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd, args[0])
		},
	}
	cmd.Flags().Bool("json", false, "Output the commands ran as JSON")
	addFilterFlags(cmd)
	return cmd
}

func runWorkflow(cmd *cobra.Command, workflow string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	report, err := sess.Publish(cmd.Context(), workflow)
	if err != nil {
		return err
	}
	return printRun(cmd, workflow, report, asJSON)
}

func printRun(cmd *cobra.Command, workflow string, report *release.RunReport, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, report)
	}
	switch {
	case report.Response != "":
		_, _ = fmt.Fprintln(out, report.Response)
	case len(report.Packages) == 0:
		_, _ = fmt.Fprintf(out, "Nothing to %s.\n", workflow)
	default:
		_, _ = fmt.Fprintf(out, "Ran %s for %s.\n", workflow, strings.Join(report.Packages, ", "))
	}
	return nil
}
