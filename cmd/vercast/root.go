package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fbkclanna/vercast/internal/settings"
	"github.com/fbkclanna/vercast/internal/telemetry"
)

func newRootCmd() *cobra.Command {
	var shutdown func(context.Context) error
	cmd := &cobra.Command{
		Use:           "vercast",
		Short:         "Version and publish the packages of a monorepo from change files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := settings.Load(cmd)
			if err != nil {
				return err
			}
			shutdown, err = telemetry.Setup(cmd.Context(), telemetry.Endpoint(s.OTelEndpoint), version)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if shutdown == nil {
				return nil
			}
			return shutdown(context.WithoutCancel(cmd.Context()))
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("cwd", ".", "Workspace root")
	pf.Bool("dry-run", false, "Log commands instead of running them and write nothing")
	pf.String("log-level", "info", "Log level: debug, info, warn or error")
	pf.String("log-format", "", "Log format: console or json (default: console on a terminal, json otherwise)")
	pf.String("otel-endpoint", "", "OTLP HTTP endpoint to export traces to")

	cmd.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newStatusCmd(),
		newVersionCmd(),
		newPublishCmd(),
		newRunCmd(),
		newPreviewCmd(),
		newDoctorCmd(),
	)

	return cmd
}
