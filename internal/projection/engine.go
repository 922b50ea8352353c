// Package projection writes projected values onto rows over a month window,
// either compounding a growth rate or setting a fixed amount.
package projection

import (
	"fmt"
	"strings"

	"fjacquet/pnl-forecast/internal/dateutils"
	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
)

// Method is the normalized projection rule.
type Method string

const (
	// Growth compounds a percentage month over month.
	Growth Method = "growth"
	// Fixed sets every month to an amount.
	Fixed Method = "fixed"
)

// ParseMethod maps forecast methods and scenario types onto a Method.
func ParseMethod(name string) (Method, error) {
	switch strings.TrimSpace(name) {
	case string(models.MethodGrowthRate), string(models.ScenarioPercentage):
		return Growth, nil
	case string(models.MethodFixedAmount), string(models.ScenarioAmount):
		return Fixed, nil
	}
	return "", &planerror.InvalidInputError{Field: "method", Value: name, Err: planerror.ErrUnknownMethod}
}

// Result summarizes one application.
type Result struct {
	RowsAffected  int
	ValuesChanged int
	Months        int
}

// Engine applies projections. It holds no state besides its logger.
type Engine struct {
	logger logging.Logger
}

// NewEngine creates an engine. logger may be nil.
func NewEngine(logger logging.Logger) *Engine {
	return &Engine{logger: logging.OrDiscard(logger)}
}

// ApplyProjection returns a copy of data in which every row listed in
// accountIDs has its values in the [startDate, endDate] month window
// replaced. For Growth, value is a percentage; the first window month grows
// the value stored just before it in the row, and each later month grows the
// (already projected) previous calendar month. For Fixed, every window month
// is set to value. Results are rounded half up and flagged as projected.
//
// Unknown row ids and window months absent from a row are ignored. On error
// data is returned unchanged.
func (e *Engine) ApplyProjection(data models.FinancialData, accountIDs []string, method string, value float64, startDate, endDate string) (models.FinancialData, Result, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return data, Result{}, err
	}
	window, err := monthWindow(startDate, endDate)
	if err != nil {
		return data, Result{}, err
	}

	out := data.Clone()
	result := Result{Months: len(window)}
	targets := make(map[string]bool, len(accountIDs))
	for _, id := range accountIDs {
		targets[id] = true
	}

	out.EachRow(func(_ *models.Category, _ *models.Subcategory, row *models.FinancialRow) {
		if !targets[row.ID] {
			return
		}
		changed := project(row, window, m, value)
		if changed > 0 {
			result.RowsAffected++
			result.ValuesChanged += changed
		}
	})

	e.logger.Debug("Applied projection",
		logging.F(logging.FieldMethod, method),
		logging.F(logging.FieldAccountIDs, accountIDs),
		logging.F(logging.FieldStartDate, startDate),
		logging.F(logging.FieldEndDate, endDate),
		logging.F(logging.FieldCount, result.ValuesChanged))
	return out, result, nil
}

// ApplyForecast applies a forecast record regardless of its status.
func (e *Engine) ApplyForecast(data models.FinancialData, record models.ForecastRecord) (models.FinancialData, Result, error) {
	value := record.Parameters.Amount
	if record.Method == models.MethodGrowthRate {
		value = record.Parameters.GrowthRate
	}
	out, res, err := e.ApplyProjection(data, record.AccountIDs, string(record.Method), value, record.StartDate, record.EndDate)
	if err != nil {
		return data, res, fmt.Errorf("forecast '%s': %w", record.ID, err)
	}
	return out, res, nil
}

// ApplyScenario applies a scenario regardless of its status.
func (e *Engine) ApplyScenario(data models.FinancialData, scenario models.ScenarioConfig) (models.FinancialData, Result, error) {
	out, res, err := e.ApplyProjection(data, scenario.AccountIDs, string(scenario.Type), scenario.Value, scenario.StartDate, scenario.EndDate)
	if err != nil {
		return data, res, fmt.Errorf("scenario '%s': %w", scenario.ID, err)
	}
	return out, res, nil
}

// ApplyActive applies every active forecast record, then every active
// scenario, in slice order. The first error aborts and returns data unchanged.
func (e *Engine) ApplyActive(data models.FinancialData, forecasts []models.ForecastRecord, scenarios []models.ScenarioConfig) (models.FinancialData, Result, error) {
	out := data
	var total Result
	for _, f := range forecasts {
		if !f.IsActive() {
			continue
		}
		next, res, err := e.ApplyForecast(out, f)
		if err != nil {
			return data, Result{}, err
		}
		out = next
		total = total.add(res)
	}
	for _, s := range scenarios {
		if !s.IsActive() {
			continue
		}
		next, res, err := e.ApplyScenario(out, s)
		if err != nil {
			return data, Result{}, err
		}
		out = next
		total = total.add(res)
	}
	return out, total, nil
}

func (r Result) add(other Result) Result {
	return Result{
		RowsAffected:  r.RowsAffected + other.RowsAffected,
		ValuesChanged: r.ValuesChanged + other.ValuesChanged,
		Months:        r.Months + other.Months,
	}
}

func monthWindow(startDate, endDate string) ([]dateutils.YearMonth, error) {
	if _, err := dateutils.ParseISODate(startDate); err != nil {
		return nil, &planerror.InvalidInputError{Field: "startDate", Value: startDate, Err: planerror.ErrInvalidDate}
	}
	if _, err := dateutils.ParseISODate(endDate); err != nil {
		return nil, &planerror.InvalidInputError{Field: "endDate", Value: endDate, Err: planerror.ErrInvalidDate}
	}
	return dateutils.MonthWindow(startDate, endDate)
}

// project mutates row in place and returns how many values it wrote.
func project(row *models.FinancialRow, window []dateutils.YearMonth, m Method, value float64) int {
	changed := 0
	for _, ym := range window {
		idx := row.IndexOf(ym.Year, ym.Month)
		if idx < 0 {
			continue
		}

		var next float64
		switch m {
		case Fixed:
			next = models.RoundHalfUp(value)
		case Growth:
			next = models.Grow(growthBase(row, idx, ym, changed == 0), value)
		}
		row.Values[idx].Value = next
		row.Values[idx].IsProjected = true
		changed++
	}
	return changed
}

// growthBase is the value a growth step starts from: the entry stored just
// before idx for the first window month found in the row, the previous
// calendar month after.
// Missing bases count as 0.
func growthBase(row *models.FinancialRow, idx int, ym dateutils.YearMonth, first bool) float64 {
	if first {
		if idx == 0 {
			return 0
		}
		return row.Values[idx-1].Value
	}
	prev := ym.Prev()
	if v, ok := row.ValueAt(prev.Year, prev.Month); ok {
		return v.Value
	}
	return 0
}
