// Package ratios reports headline financial ratios.
package ratios

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"fjacquet/pnl-forecast/cmd/common"
	"fjacquet/pnl-forecast/internal/export"
	ratioscalc "fjacquet/pnl-forecast/internal/ratios"
)

var (
	year   int
	output common.Output
)

// Cmd represents the ratios command
var Cmd = &cobra.Command{
	Use:   "ratios",
	Short: "Show margins, expense ratio, effective tax rate and target achievement",
	Args:  cobra.NoArgs,
	RunE:  run,
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

	result := ratioscalc.Compute(c.NewAggregation(plan.Data), year)
	rows := export.RatioRows(result)
	return output.Write(cmd, c, common.Report{
		Text: func(w io.Writer) error {
			tw := common.NewTable(w)
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s%%\t\n", r.Name, r.Value)
			}
			return tw.Flush()
		},
		CSV:  func(w io.Writer) error { return c.GetExporter().WriteRatios(w, rows) },
		YAML: result,
	})
}
