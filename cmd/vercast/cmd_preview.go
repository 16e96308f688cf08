package main

import (
	"github.com/spf13/cobra"
)

func newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Version pending changes as preview prereleases and publish them",
		Long: "Preview bumps every planned package to <version>-<identifier> without consuming\n" +
			"change files, then runs the prepublish and publish commands with --tag\n" +
			"available to command templates as {{ .Tag }}.",
		Args: cobra.NoArgs,
		RunE: runPreview,
	}
	cmd.Flags().String("identifier", "", "Prerelease used for every preview version, e.g. branch.1a2b3c4")
	cmd.Flags().String("tag", "", "Distribution tag passed to publish commands")
	cmd.Flags().Bool("json", false, "Output the commands ran as JSON")
	_ = cmd.MarkFlagRequired("identifier")
	addFilterFlags(cmd)
	return cmd
}

func runPreview(cmd *cobra.Command, _ []string) error {
	identifier, _ := cmd.Flags().GetString("identifier")
	tag, _ := cmd.Flags().GetString("tag")
	asJSON, _ := cmd.Flags().GetBool("json")

	sess, err := loadSession(cmd)
	if err != nil {
		return err
	}
	report, err := sess.Preview(cmd.Context(), identifier, tag)
	if err != nil {
		return err
	}
	return printRun(cmd, "publish", report, asJSON)
}
