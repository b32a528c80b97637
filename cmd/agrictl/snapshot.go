package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agridash/internal/exporter"
	"agridash/internal/services"
)

func newSnapshotCmd(g *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write a KPI snapshot of every page into the reports directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.load(cmd)
			if err != nil {
				return err
			}
			if format == "" {
				format = e.cfg.Snapshot.Format
			}
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}
			if err := e.paths.EnsureDirectories(); err != nil {
				return err
			}
			data, err := e.dataset(cmd)
			if err != nil {
				return err
			}

			dashboard := services.NewDashboardService(data, e.logger, nil, nil)
			path, err := services.NewSnapshotService(dashboard, e.paths, f, nil, e.logger).Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "csv or xlsx (default from config)")
	return cmd
}
