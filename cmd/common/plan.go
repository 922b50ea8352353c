// Package common contains shared functionality for command handlers
package common

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fjacquet/pnl-forecast/cmd/root"
	"fjacquet/pnl-forecast/internal/container"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
)

// LoadPlan loads the stored plan through the application container.
func LoadPlan(cmd *cobra.Command) (*container.Container, *models.Plan, error) {
	c, err := root.GetContainer()
	if err != nil {
		return nil, nil, err
	}
	plan, err := c.GetRepository().LoadPlan(cmd.Context())
	if err != nil {
		var notFound *planerror.NotFoundError
		if errors.As(err, &notFound) {
			return c, nil, fmt.Errorf("%w (run 'pnl-forecast init' first)", err)
		}
		return c, nil, fmt.Errorf("error loading plan: %w", err)
	}
	return c, plan, nil
}

// SavePlan stores plan through the application container.
func SavePlan(cmd *cobra.Command, c *container.Container, plan *models.Plan) error {
	if err := c.GetRepository().SavePlan(cmd.Context(), plan); err != nil {
		return fmt.Errorf("error saving plan: %w", err)
	}
	return nil
}

// AddYearFlag registers --year on cmd.
func AddYearFlag(cmd *cobra.Command, year *int) {
	cmd.Flags().IntVarP(year, "year", "y", models.HorizonStartYear,
		fmt.Sprintf("Year to report (%d-%d, 0 for all years)", models.HorizonStartYear, models.HorizonEndYear))
}

// ValidateYear accepts models.AllYears or a year of the horizon.
func ValidateYear(year int) error {
	if year == models.AllYears {
		return nil
	}
	if year < models.HorizonStartYear || year > models.HorizonEndYear {
		return &planerror.InvalidInputError{
			Field: "year",
			Value: fmt.Sprint(year),
			Err:   fmt.Errorf("must be between %d and %d", models.HorizonStartYear, models.HorizonEndYear),
		}
	}
	return nil
}

// NewTable returns a tab-aligned writer for text reports.
func NewTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}
