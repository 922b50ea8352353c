// Package aggregation computes totals and monthly series over a P&L snapshot.
// Leaf categories are summed from their rows; calculated categories are
// delegated to the formula evaluator, which calls back into LeafValue.
package aggregation

import (
	"math"

	"fjacquet/pnl-forecast/internal/formula"
	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
)

// Series is one value per month, January first.
type Series [12]float64

// Total sums the series.
func (s Series) Total() float64 {
	total := 0.0
	for _, v := range s {
		total += v
	}
	return total
}

// Service answers total and series queries over one snapshot. Missing ids and
// types yield 0.
type Service struct {
	data   models.FinancialData
	index  *models.Index
	eval   *formula.Evaluator
	logger logging.Logger
}

// New builds a service over a private copy of data. logger may be nil.
func New(data models.FinancialData, logger logging.Logger) *Service {
	s := &Service{
		data:   data.Clone(),
		logger: logging.OrDiscard(logger),
	}
	s.index = models.NewIndex(&s.data)
	s.eval = formula.NewEvaluator(s.index, s.data.TaxRate, s, s.logger)
	return s
}

// Index exposes the lookup index of the snapshot.
func (s *Service) Index() *models.Index { return s.index }

// Evaluator exposes the formula evaluator bound to the snapshot.
func (s *Service) Evaluator() *formula.Evaluator { return s.eval }

// TaxRate returns the snapshot's tax rate.
func (s *Service) TaxRate() float64 { return s.data.TaxRate }

// TargetIncome returns the snapshot's target income.
func (s *Service) TargetIncome() float64 { return s.data.TargetIncome }

// Categories returns the snapshot's categories in tree order.
func (s *Service) Categories() []models.Category { return s.data.Categories }

// LeafValue sums every row of cat whose values match sel.
func (s *Service) LeafValue(cat *models.Category, sel formula.Selector) float64 {
	total := 0.0
	for si := range cat.Subcategories {
		total += subcategorySum(&cat.Subcategories[si], sel)
	}
	return total
}

// RowTotal sums a row over year, or over every year with models.AllYears.
func (s *Service) RowTotal(rowID string, year int) float64 {
	row, ok := s.index.Row(rowID)
	if !ok {
		return 0
	}
	return rowSum(row, formula.Total(year))
}

// SubcategoryTotal sums the rows of a subcategory.
func (s *Service) SubcategoryTotal(subcategoryID string, year int) float64 {
	sub, ok := s.index.Subcategory(subcategoryID)
	if !ok {
		return 0
	}
	return subcategorySum(sub, formula.Total(year))
}

// CategoryTotal is the sum of a leaf category's subcategories, or the value
// of a calculated category's formula over the whole year filter.
func (s *Service) CategoryTotal(categoryID string, year int) float64 {
	cat, ok := s.index.Category(categoryID)
	if !ok {
		return 0
	}
	return s.categoryValue(cat, formula.Total(year))
}

// CategoryYearlyTotalByType resolves the first category of the given type and
// returns its total.
func (s *Service) CategoryYearlyTotalByType(categoryType models.CategoryType, year int) float64 {
	cat, ok := s.index.CategoryByType(categoryType)
	if !ok {
		return 0
	}
	return s.categoryValue(cat, formula.Total(year))
}

// CategoryMonthValue returns a category's value for one month.
func (s *Service) CategoryMonthValue(categoryID string, monthIndex, year int) float64 {
	cat, ok := s.index.Category(categoryID)
	if !ok {
		return 0
	}
	return s.categoryValue(cat, formula.Month(monthIndex, year))
}

// CategorySeries returns the monthly values of one category for year.
func (s *Service) CategorySeries(cat *models.Category, year int) Series {
	var series Series
	for m := 0; m < 12; m++ {
		series[m] = s.categoryValue(cat, formula.Month(m, year))
	}
	return series
}

// MonthlySeries returns one series per category for year, keyed by category
// id and by category type (first category of a type wins). When an id equals
// another category's type, the id key holds that category's series. An
// operating_profit series is always present; when no category provides it,
// it is derived as revenue - |cogs| - |operating expenses| per month.
func (s *Service) MonthlySeries(year int) map[string]Series {
	out := make(map[string]Series, 2*len(s.data.Categories)+1)
	for ci := range s.data.Categories {
		cat := &s.data.Categories[ci]
		series := s.CategorySeries(cat, year)
		out[cat.ID] = series
		if _, seen := out[string(cat.Type)]; !seen {
			out[string(cat.Type)] = series
		}
	}

	key := string(models.CategoryTypeOperatingProfit)
	if _, ok := out[key]; !ok {
		revenue := out[string(models.CategoryTypeSalesRevenue)]
		cogs := out[string(models.CategoryTypeCOGS)]
		opex := out[string(models.CategoryTypeOperatingExpenses)]
		var derived Series
		for m := range derived {
			derived[m] = revenue[m] - math.Abs(cogs[m]) - math.Abs(opex[m])
		}
		out[key] = derived
		s.logger.Debug("Derived operating_profit series", logging.F(logging.FieldYear, year))
	}
	return out
}

// YearlyTotals returns the total of every category keyed by id.
func (s *Service) YearlyTotals(year int) map[string]float64 {
	out := make(map[string]float64, len(s.data.Categories))
	for ci := range s.data.Categories {
		cat := &s.data.Categories[ci]
		out[cat.ID] = s.categoryValue(cat, formula.Total(year))
	}
	return out
}

func (s *Service) categoryValue(cat *models.Category, sel formula.Selector) float64 {
	if cat.IsCalculated {
		return s.eval.EvaluateCategory(cat, sel)
	}
	return s.LeafValue(cat, sel)
}

func subcategorySum(sub *models.Subcategory, sel formula.Selector) float64 {
	total := 0.0
	for ri := range sub.Rows {
		total += rowSum(&sub.Rows[ri], sel)
	}
	return total
}

func rowSum(row *models.FinancialRow, sel formula.Selector) float64 {
	total := 0.0
	for _, v := range row.Values {
		if sel.Matches(v) {
			total += v.Value
		}
	}
	return total
}
