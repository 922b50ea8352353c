// Package validate checks the stored plan for problems.
package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/pnl-forecast/cmd/common"
	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/overlap"
	"fjacquet/pnl-forecast/internal/validation"
)

// Cmd represents the validate command
var Cmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the plan for formula cycles, unknown tokens and invalid records",
	Long: `Check the plan for problems the engine tolerates silently: formula cycles,
unknown formula tokens, duplicate values and category types, out-of-range
settings, invalid forecast records and scenarios, and active records that
overlap on the same accounts. With --strict unknown tokens are errors.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func run(cmd *cobra.Command, args []string) error {
	c, plan, err := common.LoadPlan(cmd)
	if err != nil {
		return err
	}

	issues := validation.ValidateData(plan.Data, c.GetConfig().Engine.StrictFormulas)
	issues = append(issues, recordIssues(plan)...)

	out := cmd.OutOrStdout()
	for _, issue := range issues {
		fmt.Fprintln(out, issue.String())
	}
	c.GetLogger().Debug("Validated plan", logging.F(logging.FieldCount, len(issues)))

	if validation.HasErrors(issues) {
		return fmt.Errorf("plan is invalid: %w", validation.AsError(issues))
	}
	fmt.Fprintf(out, "Plan is valid (%d warnings)\n", len(issues))
	return nil
}

func recordIssues(plan *models.Plan) []validation.Issue {
	var issues []validation.Issue
	for _, f := range plan.Forecasts {
		subject := "forecast " + f.ID
		if err := validation.ValidateForecast(f); err != nil {
			issues = append(issues, validation.Issue{Severity: validation.SeverityError, Subject: subject, Message: err.Error()})
			continue
		}
		if !f.IsActive() {
			continue
		}
		res, err := overlap.CheckDateOverlap(plan.Forecasts, f.AccountIDs, f.StartDate, f.EndDate, f.ID)
		if err == nil && res.HasOverlap {
			issues = append(issues, overlapIssue(subject, res.OverlappingAccountIDs))
		}
	}
	for _, s := range plan.Scenarios {
		subject := "scenario " + s.ID
		if err := validation.ValidateScenario(s); err != nil {
			issues = append(issues, validation.Issue{Severity: validation.SeverityError, Subject: subject, Message: err.Error()})
			continue
		}
		if !s.IsActive() {
			continue
		}
		res, err := overlap.CheckScenarioOverlap(plan.Scenarios, s.AccountIDs, s.StartDate, s.EndDate, s.ID)
		if err == nil && res.HasOverlap {
			issues = append(issues, overlapIssue(subject, res.OverlappingAccountIDs))
		}
	}
	return issues
}

func overlapIssue(subject string, accounts []string) validation.Issue {
	return validation.Issue{
		Severity: validation.SeverityWarning,
		Subject:  subject,
		Message:  fmt.Sprintf("overlaps another active record on %v", accounts),
	}
}
