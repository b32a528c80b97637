package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"

	"agridash/internal/services"
	"agridash/pkg/contracts/domain"
)

const titleWidth = 60

func newKPICmd(g *globalFlags) *cobra.Command {
	var (
		page     string
		asJSON   bool
		selFlags selectionFlags
	)

	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "Print the KPIs of a dashboard page",
		Example: `  agrictl kpi --page overview
  agrictl kpi --page nutrients --country France --country Japan --year-start 2000
  agrictl kpi --page all --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			dashboard := services.NewDashboardService(data, e.logger, nil, nil)

			ids := domain.Pages
			if page != "all" {
				id := domain.PageID(page)
				if _, err := dashboard.Page(id); err != nil {
					return err
				}
				ids = []domain.PageID{id}
			}

			results := make([]*domain.PageResult, 0, len(ids))
			for _, id := range ids {
				res, err := dashboard.Compute(cmd.Context(), id, sel)
				if err != nil {
					return err
				}
				results = append(results, res)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			return printKPIs(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVarP(&page, "page", "p", string(domain.PageOverview), "page id, or \"all\"")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full page results as JSON")
	selFlags.register(cmd)
	return cmd
}

func printKPIs(out io.Writer, results []*domain.PageResult) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tKPI\tTITLE\tVALUE")
	for _, res := range results {
		for _, k := range res.KPIs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", res.Page, k.ID, truncate.StringWithTail(k.Title, titleWidth, "..."), k.Value)
		}
	}
	return tw.Flush()
}
