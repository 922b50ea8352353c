// Package monthly reports the month-by-month series of every category.
package monthly

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/pnl-forecast/cmd/common"
	"fjacquet/pnl-forecast/internal/export"
	"fjacquet/pnl-forecast/internal/models"
)

var (
	year   int
	output common.Output
)

// Cmd represents the monthly command
var Cmd = &cobra.Command{
	Use:   "monthly",
	Short: "Show the monthly series of every category for one year",
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
	if year == models.AllYears {
		return fmt.Errorf("monthly needs a single year")
	}
	c, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}

	rows := export.MonthlyRows(c.NewAggregation(plan.Data), year)
	return output.Write(cmd, c, common.Report{
		Text: func(w io.Writer) error {
			tw := common.NewTable(w)
			fmt.Fprintln(tw, "Key\tJan\tFeb\tMar\tApr\tMay\tJun\tJul\tAug\tSep\tOct\tNov\tDec\tTotal\t")
			for _, r := range rows {
				cells := []string{r.Key, r.Jan, r.Feb, r.Mar, r.Apr, r.May, r.Jun, r.Jul, r.Aug, r.Sep, r.Oct, r.Nov, r.Dec, r.Total}
				fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
			}
			return tw.Flush()
		},
		CSV:  func(w io.Writer) error { return c.GetExporter().WriteMonthly(w, rows) },
		YAML: rows,
	})
}
