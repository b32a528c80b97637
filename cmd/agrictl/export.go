package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"agridash/internal/exporter"
	"agridash/internal/services"
)

func newExportCmd(g *globalFlags) *cobra.Command {
	var (
		format    string
		out       string
		normalize bool
		selFlags  selectionFlags
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the rows matching a selection",
		Example: `  agrictl export --format csv --out france.csv --country France
  agrictl export --format xlsx --out balance.xlsx --category "Balance (inputs minus outputs)" --normalize`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}
			sel, err := selFlags.selection()
			if err != nil {
				return err
			}

			e, err := g.load(cmd)
			if err != nil {
				return err
			}
			data, err := e.dataset(cmd)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer file.Close()
				w = file
			}

			n, err := services.NewDataService(data, e.paths, e.logger).Export(cmd.Context(), w, sel, f, normalize)
			if err != nil {
				return err
			}
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", n, out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(exporter.FormatCSV), "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "add the per-1000-ha normalized value column")
	selFlags.register(cmd)
	return cmd
}
