// Package initplan creates a new plan from the default P&L template.
package initplan

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fjacquet/pnl-forecast/cmd/root"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
	"fjacquet/pnl-forecast/internal/sample"
)

var (
	force      bool
	withSample bool

	// now is replaced in tests.
	now = time.Now
)

// Cmd represents the init command
var Cmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new plan from the default P&L template",
	Long: `Create a new plan with the standard P&L layout: revenue, cost of goods
sold, operating expenses, other income and expenses, and the calculated profit
and tax lines. With --sample the plan is seeded with a year of example values,
a growth forecast and a paused scenario.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().BoolVar(&force, "force", false, "Replace an existing plan")
	Cmd.Flags().BoolVar(&withSample, "sample", false, "Seed the plan with example values and records")
}

func run(cmd *cobra.Command, args []string) error {
	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	repo := c.GetRepository()
	ctx := cmd.Context()

	if !force {
		_, err := repo.LoadPlan(ctx)
		var notFound *planerror.NotFoundError
		switch {
		case err == nil:
			return fmt.Errorf("a plan already exists; use --force to replace it")
		case !errors.As(err, &notFound):
			return fmt.Errorf("error checking for an existing plan: %w", err)
		}
	}

	var plan models.Plan
	if withSample {
		plan = sample.Plan(now())
	} else {
		plan = models.Plan{Data: sample.Template(now())}
	}
	plan.Data.TaxRate = c.GetConfig().Engine.DefaultTaxRate

	if err := repo.SavePlan(ctx, &plan); err != nil {
		return fmt.Errorf("error saving plan: %w", err)
	}

	c.GetLogger().Info("Plan created")
	fmt.Fprintf(cmd.OutOrStdout(), "Created plan with %d categories (tax rate %s%%)\n",
		len(plan.Data.Categories), models.FormatAmount(plan.Data.TaxRate, 2))
	return nil
}
