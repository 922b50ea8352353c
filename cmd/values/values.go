// Package values edits row values: one at a time or imported from CSV.
package values

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"fjacquet/pnl-forecast/cmd/common"
	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/planerror"
	"fjacquet/pnl-forecast/internal/state"
)

// SetCmd represents the set-value command
var SetCmd = &cobra.Command{
	Use:   "set-value ROW_ID YEAR MONTH VALUE",
	Short: "Record an actual value for one month of a row",
	Long: `Record an actual value for one month of a row. The value is no longer
marked as projected. Costs are entered as negative amounts. Global flags go
before ROW_ID.`,
	Example: "  pnl-forecast set-value rent 2025 3 -1800",
	Args:    cobra.ExactArgs(4),
	RunE:    runSet,
}

func init() {
	// Flags end at the first positional argument so negative amounts such as
	// -1800 are read as VALUE.
	SetCmd.Flags().SetInterspersed(false)
}

// ImportCmd represents the import-values command
var ImportCmd = &cobra.Command{
	Use:   "import-values FILE",
	Short: "Record row values from a CSV file with row_id, year, month and value columns",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runSet(cmd *cobra.Command, args []string) error {
	action, err := parseSetValue(args)
	if err != nil {
		return err
	}
	c, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}

	st := c.NewState(plan)
	if _, err := st.Dispatch(action); err != nil {
		return err
	}
	snapshot := st.Snapshot()
	if err := common.SavePlan(cmd, c, &snapshot); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s %d-%02d to %s\n", action.RowID, action.Year, action.Month, strconv.FormatFloat(action.Value, 'f', -1, 64))
	return nil
}

func parseSetValue(args []string) (state.SetRowValue, error) {
	year, err := strconv.Atoi(args[1])
	if err != nil {
		return state.SetRowValue{}, &planerror.InvalidInputError{Field: "year", Value: args[1], Err: err}
	}
	month, err := strconv.Atoi(args[2])
	if err != nil {
		return state.SetRowValue{}, &planerror.InvalidInputError{Field: "month", Value: args[2], Err: err}
	}
	value, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return state.SetRowValue{}, &planerror.InvalidInputError{Field: "value", Value: args[3], Err: err}
	}
	return state.SetRowValue{RowID: args[0], Year: year, Month: month, Value: value}, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	c, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("error opening CSV file: %w", err)
	}
	defer file.Close()

	rows, err := c.GetExporter().ReadValues(file)
	if err != nil {
		return err
	}

	// All rows are applied or none: the plan is saved only when every row
	// succeeds.
	st := c.NewState(plan)
	for i, r := range rows {
		action := state.SetRowValue{RowID: r.RowID, Year: r.Year, Month: r.Month, Value: r.Value}
		if _, err := st.Dispatch(action); err != nil {
			return fmt.Errorf("line %d: %w", i+2, err)
		}
	}
	snapshot := st.Snapshot()
	if err := common.SavePlan(cmd, c, &snapshot); err != nil {
		return err
	}

	c.GetLogger().Info("Imported row values",
		logging.F(logging.FieldFile, args[0]),
		logging.F(logging.FieldCount, len(rows)))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d values\n", len(rows))
	return nil
}
