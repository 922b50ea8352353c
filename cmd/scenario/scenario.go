// Package scenario manages scenarios: what-if adjustments that add a
// percentage or a fixed amount to rows over a date range.
package scenario

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/pnl-forecast/cmd/common"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/overlap"
	"fjacquet/pnl-forecast/internal/planerror"
	"fjacquet/pnl-forecast/internal/state"
	"fjacquet/pnl-forecast/internal/store"
)

// Cmd represents the scenario command group
var Cmd = &cobra.Command{
	Use:   "scenario",
	Short: "Manage scenarios",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenarios",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var addCmd = &cobra.Command{
	Use:   "add FILE",
	Short: "Add the scenarios of a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a scenario; values it projected are kept",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var applyCmd = &cobra.Command{
	Use:   "apply ID",
	Short: "Apply one scenario",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "List active scenarios that overlap an account set and date range",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var (
	rejectOverlap bool
	checkOp       common.OverlapQuery
)

func init() {
	addCmd.Flags().BoolVar(&rejectOverlap, "reject-overlap", false, "Reject scenarios that overlap an active scenario")
	common.AddOverlapFlags(checkCmd, &checkOp)

	Cmd.AddCommand(listCmd, addCmd, deleteCmd, applyCmd, checkCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	_, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(plan.Scenarios) == 0 {
		fmt.Fprintln(out, "No scenarios")
		return nil
	}
	tw := common.NewTable(out)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tVALUE\tACCOUNTS\tPERIOD\tSTATUS")
	for _, s := range plan.Scenarios {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s..%s\t%s\n", s.ID, s.Name, s.Type, models.FormatAmount(s.Value, 2),
			strings.Join(s.AccountIDs, ","), s.StartDate, s.EndDate, s.Status)
	}
	return tw.Flush()
}

func runAdd(cmd *cobra.Command, args []string) error {
	records, err := store.LoadRecords(args[0])
	if err != nil {
		return err
	}
	if len(records.Scenarios) == 0 {
		return &planerror.InvalidInputError{Field: "file", Value: args[0], Err: fmt.Errorf("no scenarios in file")}
	}
	c, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}

	st := c.NewState(plan, state.WithOverlapGuard(rejectOverlap))
	out := cmd.OutOrStdout()
	for _, s := range records.Scenarios {
		added, res, err := st.AddScenario(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Added scenario %s\n", added.ID)
		common.PrintOverlap(out, res.OverlappingAccountIDs, scenarioIDs(res))
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
	if err := st.DeleteScenario(args[0]); err != nil {
		return err
	}
	snapshot := st.Snapshot()
	if err := common.SavePlan(cmd, c, &snapshot); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted scenario %s\n", args[0])
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	c, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}
	st := c.NewState(plan)
	if _, err := st.ApplyScenarioByID(args[0]); err != nil {
		return err
	}
	snapshot := st.Snapshot()
	if err := common.SavePlan(cmd, c, &snapshot); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied scenario %s\n", args[0])
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	_, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}
	res, err := overlap.CheckScenarioOverlap(plan.Scenarios, checkOp.AccountIDs(), checkOp.Start, checkOp.End, checkOp.Exclude)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !res.HasOverlap {
		fmt.Fprintln(out, "No overlapping scenarios")
		return nil
	}
	common.PrintOverlap(out, res.OverlappingAccountIDs, scenarioIDs(res))
	return nil
}

func scenarioIDs(res overlap.Result[models.ScenarioConfig]) []string {
	ids := make([]string, 0, len(res.OverlappingItems))
	for _, s := range res.OverlappingItems {
		ids = append(ids, s.ID)
	}
	return ids
}
