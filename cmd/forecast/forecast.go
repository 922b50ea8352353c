// Package forecast manages forecast records: listing, adding, deleting,
// applying and checking them for overlaps.
package forecast

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/pnl-forecast/cmd/common"
	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/overlap"
	"fjacquet/pnl-forecast/internal/planerror"
	"fjacquet/pnl-forecast/internal/state"
	"fjacquet/pnl-forecast/internal/store"
)

// Cmd represents the forecast command group
var Cmd = &cobra.Command{
	Use:   "forecast",
	Short: "Manage forecast records",
	Long: `Forecast records project row values over a date range, either by
compounding a monthly growth_rate or by setting a fixed_amount.`,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List forecast records",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add FILE",
	Short: "Add the forecast records of a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a forecast record; values it projected are kept",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var applyCmd = &cobra.Command{
	Use:   "apply [ID]",
	Short: "Apply one forecast record, or every active record and scenario with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runApply,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "List active forecast records that overlap an account set and date range",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var (
	rejectOverlap bool
	all           bool
	checkOp       common.OverlapQuery
)

func init() {
	addCmd.Flags().BoolVar(&rejectOverlap, "reject-overlap", false, "Reject records that overlap an active forecast")
	applyCmd.Flags().BoolVar(&all, "all", false, "Apply every active forecast record, then every active scenario")
	common.AddOverlapFlags(checkCmd, &checkOp)

	Cmd.AddCommand(listCmd, addCmd, deleteCmd, applyCmd, checkCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	_, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(plan.Forecasts) == 0 {
		fmt.Fprintln(out, "No forecast records")
		return nil
	}
	tw := common.NewTable(out)
	fmt.Fprintln(tw, "ID\tNAME\tMETHOD\tACCOUNTS\tPERIOD\tSTATUS")
	for _, r := range plan.Forecasts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s..%s\t%s\n", r.ID, r.Name, r.Method, strings.Join(r.AccountIDs, ","), r.StartDate, r.EndDate, r.Status)
	}
	return tw.Flush()
}

func runAdd(cmd *cobra.Command, args []string) error {
	records, err := store.LoadRecords(args[0])
	if err != nil {
		return err
	}
	if len(records.Forecasts) == 0 {
		return &planerror.InvalidInputError{Field: "file", Value: args[0], Err: fmt.Errorf("no forecasts in file")}
	}
	c, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}

	st := c.NewState(plan, state.WithOverlapGuard(rejectOverlap))
	out := cmd.OutOrStdout()
	for _, r := range records.Forecasts {
		added, res, err := st.AddForecast(r)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Added forecast %s\n", added.ID)
		common.PrintOverlap(out, res.OverlappingAccountIDs, forecastIDs(res))
	}
	snapshot := st.Snapshot()
	return common.SavePlan(cmd, c, &snapshot)
}

func runDelete(cmd *cobra.Command, args []string) error {
	c, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}
	st := c.NewState(plan)
	if err := st.DeleteForecast(args[0]); err != nil {
		return err
	}
	snapshot := st.Snapshot()
	if err := common.SavePlan(cmd, c, &snapshot); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted forecast %s\n", args[0])
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	if all == (len(args) == 1) {
		return fmt.Errorf("give either a forecast id or --all")
	}
	c, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}

	st := c.NewState(plan)
	if all {
		_, err = st.ApplyActive()
	} else {
		_, err = st.ApplyForecastByID(args[0])
	}
	if err != nil {
		return err
	}
	snapshot := st.Snapshot()
	if err := common.SavePlan(cmd, c, &snapshot); err != nil {
		return err
	}

	if all {
		c.GetLogger().Info("Applied active records",
			logging.F(logging.FieldRecordKind, "forecast"),
			logging.F(logging.FieldCount, countActive(snapshot.Forecasts)))
		fmt.Fprintln(cmd.OutOrStdout(), "Applied active forecasts and scenarios")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied forecast %s\n", args[0])
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	_, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}
	res, err := overlap.CheckDateOverlap(plan.Forecasts, checkOp.AccountIDs(), checkOp.Start, checkOp.End, checkOp.Exclude)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !res.HasOverlap {
		fmt.Fprintln(out, "No overlapping forecasts")
		return nil
	}
	common.PrintOverlap(out, res.OverlappingAccountIDs, forecastIDs(res))
	return nil
}

func forecastIDs(res overlap.Result[models.ForecastRecord]) []string {
	ids := make([]string, 0, len(res.OverlappingItems))
	for _, r := range res.OverlappingItems {
		ids = append(ids, r.ID)
	}
	return ids
}

func countActive(records []models.ForecastRecord) int {
	n := 0
	for _, r := range records {
		if r.IsActive() {
			n++
		}
	}
	return n
}
