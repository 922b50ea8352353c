// Package ratios derives headline financial ratios from aggregated totals.
package ratios

import (
	"math"

	"fjacquet/pnl-forecast/internal/models"
)

// Totals is the part of the aggregation service ratios need.
type Totals interface {
	CategoryYearlyTotalByType(categoryType models.CategoryType, year int) float64
	TargetIncome() float64
}

// Ratio names as exposed by AsMap.
const (
	GrossMargin             = "grossMargin"
	OperatingMargin         = "operatingMargin"
	NetMargin               = "netMargin"
	ExpenseRatio            = "expenseRatio"
	EffectiveTaxRate        = "effectiveTaxRate"
	TargetIncomeAchievement = "targetIncomeAchievement"
)

// Ratios are percentages rounded to two decimals. A ratio whose denominator
// is zero is 0.
type Ratios struct {
	GrossMargin             float64 `json:"grossMargin" yaml:"grossMargin"`
	OperatingMargin         float64 `json:"operatingMargin" yaml:"operatingMargin"`
	NetMargin               float64 `json:"netMargin" yaml:"netMargin"`
	ExpenseRatio            float64 `json:"expenseRatio" yaml:"expenseRatio"`
	EffectiveTaxRate        float64 `json:"effectiveTaxRate" yaml:"effectiveTaxRate"`
	TargetIncomeAchievement float64 `json:"targetIncomeAchievement" yaml:"targetIncomeAchievement"`
}

// Compute derives the ratios for year (models.AllYears for every period).
// Costs are stored negative, so the expense ratio uses their magnitude.
func Compute(t Totals, year int) Ratios {
	revenue := t.CategoryYearlyTotalByType(models.CategoryTypeSalesRevenue, year)
	grossProfit := t.CategoryYearlyTotalByType(models.CategoryTypeGrossProfit, year)
	operatingProfit := t.CategoryYearlyTotalByType(models.CategoryTypeOperatingProfit, year)
	opex := t.CategoryYearlyTotalByType(models.CategoryTypeOperatingExpenses, year)
	preTax := t.CategoryYearlyTotalByType(models.CategoryTypeNetProfitBeforeTax, year)
	tax := t.CategoryYearlyTotalByType(models.CategoryTypeTax, year)
	netProfit := t.CategoryYearlyTotalByType(models.CategoryTypeNetProfitAfterTax, year)

	return Ratios{
		GrossMargin:             percent(grossProfit, revenue),
		OperatingMargin:         percent(operatingProfit, revenue),
		NetMargin:               percent(netProfit, revenue),
		ExpenseRatio:            percent(math.Abs(opex), revenue),
		EffectiveTaxRate:        percent(tax, preTax),
		TargetIncomeAchievement: percent(netProfit, t.TargetIncome()),
	}
}

// AsMap returns the ratios keyed by name.
func (r Ratios) AsMap() map[string]float64 {
	return map[string]float64{
		GrossMargin:             r.GrossMargin,
		OperatingMargin:         r.OperatingMargin,
		NetMargin:               r.NetMargin,
		ExpenseRatio:            r.ExpenseRatio,
		EffectiveTaxRate:        r.EffectiveTaxRate,
		TargetIncomeAchievement: r.TargetIncomeAchievement,
	}
}

func percent(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return models.Round2(num / den * 100)
}
