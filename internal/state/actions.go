// Package state applies edits to a plan as pure transitions: every action
// takes a snapshot and returns a new one, leaving the input untouched.
package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
	"fjacquet/pnl-forecast/internal/projection"
)

// Action is one edit of the data tree.
type Action interface {
	apply(data *models.FinancialData, engine *projection.Engine) error
}

// SetRowValue records an actual value for one month of a row.
type SetRowValue struct {
	RowID string
	Year  int
	Month int
	Value float64
}

// SetTaxRate changes the tax rate, a percentage between 0 and 100.
type SetTaxRate struct {
	Rate float64
}

// SetTargetIncome changes the net income target.
type SetTargetIncome struct {
	Amount float64
}

// AddRow appends an empty row to a subcategory. A blank ID is generated.
type AddRow struct {
	CategoryID    string
	SubcategoryID string
	ID            string
	Name          string
}

// RemoveRow deletes a row.
type RemoveRow struct {
	RowID string
}

// ApplyForecast runs a forecast record over the tree.
type ApplyForecast struct {
	Record models.ForecastRecord
}

// ApplyScenario runs a scenario over the tree.
type ApplyScenario struct {
	Scenario models.ScenarioConfig
}

// ApplyActive re-runs every active forecast record, then every active
// scenario.
type ApplyActive struct {
	Forecasts []models.ForecastRecord
	Scenarios []models.ScenarioConfig
}

var defaultEngine = projection.NewEngine(nil)

// Reduce applies action to a copy of data and stamps LastUpdated with now.
// On error data is returned unchanged.
func Reduce(data models.FinancialData, action Action, now time.Time) (models.FinancialData, error) {
	return reduce(data, action, now, defaultEngine)
}

func reduce(data models.FinancialData, action Action, now time.Time, engine *projection.Engine) (models.FinancialData, error) {
	if action == nil {
		return data, fmt.Errorf("nil action")
	}
	next := data.Clone()
	if err := action.apply(&next, engine); err != nil {
		return data, err
	}
	next.LastUpdated = now
	return next, nil
}

func (a SetRowValue) apply(data *models.FinancialData, _ *projection.Engine) error {
	row, ok := models.NewIndex(data).Row(a.RowID)
	if !ok {
		return &planerror.NotFoundError{Kind: "row", ID: a.RowID}
	}
	if a.Month < 1 || a.Month > 12 {
		return &planerror.InvalidInputError{Field: "month", Value: fmt.Sprint(a.Month), Err: fmt.Errorf("must be between 1 and 12")}
	}
	i := row.IndexOf(a.Year, a.Month)
	if i < 0 {
		return &planerror.InvalidInputError{Field: "year", Value: fmt.Sprint(a.Year), Err: fmt.Errorf("outside the forecast horizon")}
	}
	row.Values[i].Value = a.Value
	row.Values[i].IsProjected = false
	return nil
}

func (a SetTaxRate) apply(data *models.FinancialData, _ *projection.Engine) error {
	if a.Rate < 0 || a.Rate > 100 {
		return &planerror.ValidationError{Subject: "taxRate", Reason: "must be between 0 and 100"}
	}
	data.TaxRate = a.Rate
	return nil
}

func (a SetTargetIncome) apply(data *models.FinancialData, _ *projection.Engine) error {
	data.TargetIncome = a.Amount
	return nil
}

func (a AddRow) apply(data *models.FinancialData, _ *projection.Engine) error {
	ix := models.NewIndex(data)
	cat, ok := ix.Category(a.CategoryID)
	if !ok {
		return &planerror.NotFoundError{Kind: "category", ID: a.CategoryID}
	}
	id := a.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := ix.Row(id); exists {
		return &planerror.ValidationError{Subject: "row " + id, Reason: "id already in use"}
	}
	for si := range cat.Subcategories {
		sub := &cat.Subcategories[si]
		if sub.ID != a.SubcategoryID {
			continue
		}
		sub.Rows = append(sub.Rows, models.NewRow(id, a.Name, cat.Type, cat.ID, sub.ID, len(sub.Rows)+1))
		return nil
	}
	return &planerror.NotFoundError{Kind: "subcategory", ID: a.SubcategoryID}
}

func (a RemoveRow) apply(data *models.FinancialData, _ *projection.Engine) error {
	for ci := range data.Categories {
		cat := &data.Categories[ci]
		for si := range cat.Subcategories {
			sub := &cat.Subcategories[si]
			for ri := range sub.Rows {
				if sub.Rows[ri].ID == a.RowID {
					sub.Rows = append(sub.Rows[:ri], sub.Rows[ri+1:]...)
					return nil
				}
			}
		}
	}
	return &planerror.NotFoundError{Kind: "row", ID: a.RowID}
}

func (a ApplyForecast) apply(data *models.FinancialData, engine *projection.Engine) error {
	out, _, err := engine.ApplyForecast(*data, a.Record)
	if err != nil {
		return err
	}
	*data = out
	return nil
}

func (a ApplyScenario) apply(data *models.FinancialData, engine *projection.Engine) error {
	out, _, err := engine.ApplyScenario(*data, a.Scenario)
	if err != nil {
		return err
	}
	*data = out
	return nil
}

func (a ApplyActive) apply(data *models.FinancialData, engine *projection.Engine) error {
	out, _, err := engine.ApplyActive(*data, a.Forecasts, a.Scenarios)
	if err != nil {
		return err
	}
	*data = out
	return nil
}
