// Package sample provides the default P&L template and a seeded example plan.
package sample

import (
	"fmt"
	"time"

	"fjacquet/pnl-forecast/internal/formula"
	"fjacquet/pnl-forecast/internal/models"
)

// DefaultTaxRate applies to new plans unless configured otherwise.
const DefaultTaxRate = 25

// Costs are stored as negative amounts, so profit lines add them.
var calculatedLines = []struct {
	id      string
	name    string
	typ     models.CategoryType
	formula string
}{
	{"gross-profit", "Gross Profit", models.CategoryTypeGrossProfit, "sales_revenue+cogs"},
	{"operating-profit", "Operating Profit", models.CategoryTypeOperatingProfit, "gross_profit+operating_expenses"},
	{"net-profit-before-tax", "Net Profit Before Tax", models.CategoryTypeNetProfitBeforeTax, "operating_profit+other_income+other_expenses"},
	{"tax", "Tax", models.CategoryTypeTax, formula.TaxFormula},
	{"net-profit-after-tax", "Net Profit After Tax", models.CategoryTypeNetProfitAfterTax, "net_profit_before_tax-tax"},
}

type leafLine struct {
	id       string
	name     string
	typ      models.CategoryType
	sentinel string
	subs     []subLine
}

type subLine struct {
	id   string
	name string
	rows [][2]string
}

var leafLines = []leafLine{
	{"revenue", "Sales Revenue", models.CategoryTypeSalesRevenue, "revenue_subcategories", []subLine{
		{"revenue-products", "Products", [][2]string{{"product-sales", "Product Sales"}}},
		{"revenue-services", "Services", [][2]string{{"consulting", "Consulting"}}},
	}},
	{"cogs", "Cost of Goods Sold", models.CategoryTypeCOGS, "cogs_subcategories", []subLine{
		{"cogs-materials", "Materials", [][2]string{{"raw-materials", "Raw Materials"}}},
	}},
	{"operating-expenses", "Operating Expenses", models.CategoryTypeOperatingExpenses, "operating_expenses_subcategories", []subLine{
		{"opex-staff", "Staff Costs", [][2]string{{"salaries", "Salaries"}}},
		{"opex-facilities", "Facilities", [][2]string{{"rent", "Rent"}, {"utilities", "Utilities"}}},
	}},
	{"other-income", "Other Income", models.CategoryTypeOtherIncome, "other_income_subcategories", []subLine{
		{"other-income-financial", "Financial Income", [][2]string{{"interest-income", "Interest Income"}}},
	}},
	{"other-expenses", "Other Expenses", models.CategoryTypeOtherExpenses, "other_expenses_subcategories", []subLine{
		{"other-expenses-financial", "Financial Expenses", [][2]string{{"bank-fees", "Bank Fees"}}},
	}},
}

// Template returns an empty plan tree with the standard P&L layout: five leaf
// sections backed by rows and five calculated profit lines.
func Template(now time.Time) models.FinancialData {
	var categories []models.Category
	order := 0
	leaves := make(map[models.CategoryType]models.Category, len(leafLines))
	for _, line := range leafLines {
		b := models.NewCategoryBuilder(line.id, line.name, line.typ).WithFormula(line.sentinel)
		for _, sub := range line.subs {
			b.WithSubcategory(sub.id, sub.name)
			for _, row := range sub.rows {
				b.WithRow(sub.id, row[0], row[1])
			}
		}
		leaves[line.typ] = b.MustBuild()
	}

	// Section order: revenue, cogs, gross profit, opex, operating profit,
	// other income, other expenses, npbt, tax, npat.
	layout := []models.CategoryType{
		models.CategoryTypeSalesRevenue,
		models.CategoryTypeCOGS,
		models.CategoryTypeGrossProfit,
		models.CategoryTypeOperatingExpenses,
		models.CategoryTypeOperatingProfit,
		models.CategoryTypeOtherIncome,
		models.CategoryTypeOtherExpenses,
		models.CategoryTypeNetProfitBeforeTax,
		models.CategoryTypeTax,
		models.CategoryTypeNetProfitAfterTax,
	}
	for _, t := range layout {
		order++
		if cat, ok := leaves[t]; ok {
			cat.Order = order
			categories = append(categories, cat)
			continue
		}
		for _, line := range calculatedLines {
			if line.typ == t {
				categories = append(categories, models.NewCategoryBuilder(line.id, line.name, line.typ).
					WithOrder(order).
					WithFormula(line.formula).
					MustBuild())
			}
		}
	}

	return models.FinancialData{
		Categories:      categories,
		ForecastPeriods: ForecastPeriods(now.Year()+1, 12),
		LastUpdated:     now,
		TaxRate:         DefaultTaxRate,
	}
}

// ForecastPeriods labels count months starting in January of year.
func ForecastPeriods(year, count int) []models.MonthPeriod {
	periods := make([]models.MonthPeriod, 0, count)
	for i := 0; i < count; i++ {
		y, m := year+i/12, i%12+1
		periods = append(periods, models.MonthPeriod{
			Year:  y,
			Month: m,
			Label: fmt.Sprintf("%s %d", time.Month(m).String()[:3], y),
		})
	}
	return periods
}

// monthly actuals for the seeded year; costs negative.
var seed = map[string]float64{
	"product-sales":   12000,
	"consulting":      4000,
	"raw-materials":   -4800,
	"salaries":        -5000,
	"rent":            -1500,
	"utilities":       -300,
	"interest-income": 50,
	"bank-fees":       -25,
}

// Plan returns the template with a year of actuals in 2024, one growth
// forecast and one paused scenario.
func Plan(now time.Time) models.Plan {
	data := Template(now)
	data.TargetIncome = 30000
	data.BalanceSheet.Accounts = []models.BalanceSheetAccount{
		{ID: "cash", Name: "Cash", Type: models.AccountTypeAsset, Balance: 25000},
		{ID: "loan", Name: "Bank Loan", Type: models.AccountTypeLiability, Balance: 10000},
		{ID: "capital", Name: "Share Capital", Type: models.AccountTypeEquity, Balance: 15000},
	}

	data.EachRow(func(_ *models.Category, _ *models.Subcategory, row *models.FinancialRow) {
		amount, ok := seed[row.ID]
		if !ok {
			return
		}
		for i := range row.Values {
			if row.Values[i].Year == models.HorizonStartYear {
				row.Values[i].Value = amount
				row.Values[i].IsProjected = false
			}
		}
	})

	return models.Plan{
		Data: data,
		Forecasts: []models.ForecastRecord{{
			ID:         "forecast-product-growth",
			Name:       "Product sales growth",
			AccountIDs: []string{"product-sales"},
			Method:     models.MethodGrowthRate,
			Parameters: models.ForecastParameters{GrowthRate: 2},
			StartDate:  "2025-01-01",
			EndDate:    "2025-12-31",
			Status:     models.StatusActive,
		}},
		Scenarios: []models.ScenarioConfig{{
			ID:         "scenario-rent-increase",
			Name:       "New office",
			Type:       models.ScenarioAmount,
			Value:      -2500,
			AccountIDs: []string{"rent"},
			StartDate:  "2025-07-01",
			EndDate:    "2025-12-31",
			Status:     models.StatusPaused,
		}},
	}
}
