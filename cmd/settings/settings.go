// Package settings changes plan-wide settings: the tax rate and the net
// income target.
package settings

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fjacquet/pnl-forecast/cmd/common"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
	"fjacquet/pnl-forecast/internal/state"
)

// TaxRateCmd represents the tax-rate command
var TaxRateCmd = &cobra.Command{
	Use:   "tax-rate [RATE]",
	Short: "Show or set the tax rate, a percentage between 0 and 100",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args, "tax rate", func(data models.FinancialData) float64 { return data.TaxRate },
			func(v float64) state.Action { return state.SetTaxRate{Rate: v} })
	},
}

// TargetIncomeCmd represents the target-income command
var TargetIncomeCmd = &cobra.Command{
	Use:   "target-income [AMOUNT]",
	Short: "Show or set the net income target used by the achievement ratio",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd, args, "target income", func(data models.FinancialData) float64 { return data.TargetIncome },
			func(v float64) state.Action { return state.SetTargetIncome{Amount: v} })
	},
}

func init() {
	// A negative argument is a value, not a shorthand flag.
	TaxRateCmd.Flags().SetInterspersed(false)
	TargetIncomeCmd.Flags().SetInterspersed(false)
}

func run(cmd *cobra.Command, args []string, label string, get func(models.FinancialData) float64, set func(float64) state.Action) error {
	c, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", label, models.FormatAmount(get(plan.Data), 2))
		return nil
	}

	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return &planerror.InvalidInputError{Field: label, Value: args[0], Err: err}
	}
	st := c.NewState(plan)
	data, err := st.Dispatch(set(value))
	if err != nil {
		return err
	}
	snapshot := st.Snapshot()
	if err := common.SavePlan(cmd, c, &snapshot); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", label, models.FormatAmount(get(data), 2))
	return nil
}
