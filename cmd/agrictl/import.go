package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"agridash/internal/dataset"
)

func newImportCmd(g *globalFlags) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:     "import",
		Short:   "Convert a CSV or XLSX dataset into a SQLite database",
		Example: `  agrictl import --from data/agri_environmental_indicators.csv --to data/indicators.db`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ext := strings.ToLower(filepath.Ext(to)); ext != ".db" && ext != ".sqlite" {
				return fmt.Errorf("target %s must end in .db or .sqlite", to)
			}

			g.datasetArg = from
			e, err := g.load(cmd)
			if err != nil {
				return err
			}
			data, err := e.dataset(cmd)
			if err != nil {
				return err
			}

			if err := dataset.WriteSQLite(cmd.Context(), to, data.Observations()); err != nil {
				return fmt.Errorf("failed to write %s: %w", to, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows into %s\n", data.Len(), to)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "source dataset (.csv or .xlsx)")
	cmd.Flags().StringVar(&to, "to", "", "target SQLite file")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	return cmd
}
