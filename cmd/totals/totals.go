// Package totals reports the yearly total of every category.
package totals

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fjacquet/pnl-forecast/cmd/common"
	"fjacquet/pnl-forecast/internal/export"
)

var (
	year   int
	output common.Output
)

// Cmd represents the totals command
var Cmd = &cobra.Command{
	Use:   "totals",
	Short: "Show the yearly total of every category",
	Long: `Show the total of every category for one year, or for the whole horizon
with --year 0. Calculated lines are evaluated from their formulas.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	common.AddYearFlag(Cmd, &year)
	common.AddOutputFlags(Cmd, &output)
}

func run(cmd *cobra.Command, args []string) error {
	if err := common.ValidateYear(year); err != nil {
		return err
	}
	c, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}

	rows := export.TotalRows(c.NewAggregation(plan.Data), year)
	return output.Write(cmd, c, common.Report{
		Text: func(w io.Writer) error {
			tw := common.NewTable(w)
			fmt.Fprintln(tw, "Category\tType\tTotal\t")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t\n", r.Name, r.Type, r.Total)
			}
			return tw.Flush()
		},
		CSV:  func(w io.Writer) error { return c.GetExporter().WriteTotals(w, rows) },
		YAML: rows,
	})
}
