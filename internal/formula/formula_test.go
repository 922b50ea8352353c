package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
)

// rowSum sums a category's rows, standing in for the aggregation service.
type rowSum struct{}

func (rowSum) LeafValue(cat *models.Category, sel Selector) float64 {
	total := 0.0
	for _, sub := range cat.Subcategories {
		for _, row := range sub.Rows {
			for _, v := range row.Values {
				if sel.Matches(v) {
					total += v.Value
				}
			}
		}
	}
	return total
}

func leaf(id string, t models.CategoryType, values map[[2]int]float64) models.Category {
	b := models.NewCategoryBuilder(id, id, t).
		WithSubcategory(id+"-sub", id).
		WithRow(id+"-sub", id+"-row", id)
	for ym, v := range values {
		b.WithValue(id+"-row", ym[0], ym[1], v)
	}
	return b.MustBuild()
}

func calculated(id string, t models.CategoryType, formula string) models.Category {
	return models.NewCategoryBuilder(id, id, t).WithFormula(formula).MustBuild()
}

func newEvaluator(t *testing.T, data *models.FinancialData, logger logging.Logger) *Evaluator {
	t.Helper()
	return NewEvaluator(models.NewIndex(data), data.TaxRate, rowSum{}, logger)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		kind    Kind
		terms   []Term
		ignored []string
	}{
		{
			name:   "sentinel",
			source: "revenue_subcategories",
			kind:   KindSubcategories,
		},
		{
			name:   "tax",
			source: "net_profit_before_tax*taxRate/100",
			kind:   KindTax,
		},
		{
			name:   "left to right terms",
			source: "a + b*c",
			kind:   KindTerms,
			terms: []Term{
				{Op: '+', Operand: Operand{Kind: OperandCategory, Ref: "a"}},
				{Op: '+', Operand: Operand{Kind: OperandCategory, Ref: "b"}},
				{Op: '*', Operand: Operand{Kind: OperandCategory, Ref: "c"}},
			},
		},
		{
			name:   "tax rate literal and ignored characters",
			source: "(profit)*taxRate",
			kind:   KindTerms,
			terms: []Term{
				{Op: '+', Operand: Operand{Kind: OperandCategory, Ref: "profit"}},
				{Op: '*', Operand: Operand{Kind: OperandTaxRate, Ref: "taxRate"}},
			},
			ignored: []string{"(", ")"},
		},
		{
			name:   "empty",
			source: "",
			kind:   KindTerms,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := Parse(tt.source)
			assert.Equal(t, tt.kind, expr.Kind)
			assert.Equal(t, tt.terms, expr.Terms)
			assert.Equal(t, tt.ignored, expr.Ignored)
		})
	}
}

func TestExpression_ReferencesAndUnresolved(t *testing.T) {
	data := models.FinancialData{Categories: []models.Category{
		leaf("rev", models.CategoryTypeSalesRevenue, nil),
	}}
	ix := models.NewIndex(&data)

	expr := Parse("sales_revenue-cogs*taxRate")
	assert.Equal(t, []string{"sales_revenue", "cogs"}, expr.References())
	assert.Equal(t, []string{"cogs"}, expr.Unresolved(ix))

	assert.Equal(t, []string{"net_profit_before_tax"}, Parse(TaxFormula).References())
	assert.Nil(t, Parse("cogs_subcategories").References())
}

func TestEvaluate_LeftToRight(t *testing.T) {
	data := models.FinancialData{Categories: []models.Category{
		leaf("a", "a", map[[2]int]float64{{2024, 1}: 2}),
		leaf("b", "b", map[[2]int]float64{{2024, 1}: 3}),
		leaf("c", "c", map[[2]int]float64{{2024, 1}: 4}),
		calculated("result", "result", "a+b*c"),
	}}
	ev := newEvaluator(t, &data, nil)

	assert.Equal(t, 20.0, ev.Evaluate("result", Month(0, 2024)))
	assert.Equal(t, 20.0, ev.Evaluate("result", Total(2024)))
}

func TestEvaluate_GrossProfitSignedCOGS(t *testing.T) {
	data := models.FinancialData{Categories: []models.Category{
		leaf("revenue", models.CategoryTypeSalesRevenue, map[[2]int]float64{{2024, 1}: 1000}),
		leaf("cogs", models.CategoryTypeCOGS, map[[2]int]float64{{2024, 1}: -400}),
		calculated("gp", models.CategoryTypeGrossProfit, "sales_revenue-cogs"),
	}}
	ev := newEvaluator(t, &data, nil)

	assert.Equal(t, 1400.0, ev.Evaluate("gp", Month(0, 2024)))
	assert.Equal(t, 0.0, ev.Evaluate("gp", Month(1, 2024)))
}

func TestEvaluate_TaxClamp(t *testing.T) {
	tests := []struct {
		name    string
		preTax  float64
		taxRate float64
		want    float64
	}{
		{"profit is taxed", 1000, 25, 250},
		{"loss gives no tax", -1000, 25, 0},
		{"break even gives no tax", 0, 40, 0},
		{"zero rate", 1000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := models.FinancialData{
				TaxRate: tt.taxRate,
				Categories: []models.Category{
					leaf("npbt", models.CategoryTypeNetProfitBeforeTax, map[[2]int]float64{{2024, 3}: tt.preTax}),
					calculated("tax", models.CategoryTypeTax, TaxFormula),
				},
			}
			ev := newEvaluator(t, &data, nil)
			assert.Equal(t, tt.want, ev.Evaluate("tax", Month(2, 2024)))
			assert.Equal(t, tt.want, ev.Evaluate("tax", Total(models.AllYears)))
		})
	}
}

func TestEvaluate_Quirks(t *testing.T) {
	data := models.FinancialData{
		TaxRate: 20,
		Categories: []models.Category{
			leaf("a", "a", map[[2]int]float64{{2024, 1}: 10}),
			leaf("zero", "zero", nil),
			calculated("div0", "division", "a/zero"),
			calculated("unknown", "unknown", "a*missing+a"),
			calculated("rate", "rate", "a*taxRate"),
			calculated("by-id", "by_id", "div0+a"),
			calculated("sentinel", "sentinel", "revenue_subcategories"),
		},
	}
	ev := newEvaluator(t, &data, nil)
	sel := Month(0, 2024)

	assert.Equal(t, 10.0, ev.Evaluate("div0", sel), "division by zero divides by one")
	assert.Equal(t, 20.0, ev.Evaluate("unknown", sel), "unknown token skipped")
	assert.Equal(t, 200.0, ev.Evaluate("rate", sel))
	assert.Equal(t, 20.0, ev.Evaluate("by-id", sel), "operands fall back to ids")
	assert.Equal(t, 0.0, ev.Evaluate("sentinel", sel), "sentinel sums own rows")
	assert.Equal(t, 0.0, ev.Evaluate("nope", sel))
}

func TestEvaluate_CycleIsCut(t *testing.T) {
	data := models.FinancialData{Categories: []models.Category{
		leaf("a", "a", map[[2]int]float64{{2024, 1}: 5}),
		calculated("x", "x", "a+y"),
		calculated("y", "y", "x"),
	}}
	logger := logging.NewMockLogger()
	ev := newEvaluator(t, &data, logger)

	assert.Equal(t, 5.0, ev.Evaluate("x", Month(0, 2024)))
	require.NotEmpty(t, logger.GetEntriesByLevel("WARN"))
	assert.True(t, logger.HasEntry("WARN", "Formula cycle detected, operand contributes 0"))
}

func TestEvaluate_CachesExpressions(t *testing.T) {
	data := models.FinancialData{Categories: []models.Category{
		calculated("x", "x", "a+b"),
	}}
	ev := newEvaluator(t, &data, nil)
	cat, _ := models.NewIndex(&data).Category("x")

	first := ev.Expression(cat)
	cat.Formula = "changed"
	assert.Equal(t, first, ev.Expression(cat))
}

func TestSelector(t *testing.T) {
	v := models.FinancialValue{Year: 2025, Month: 3}

	assert.True(t, Total(models.AllYears).Matches(v))
	assert.True(t, Total(2025).Matches(v))
	assert.False(t, Total(2024).Matches(v))
	assert.True(t, Month(2, 2025).Matches(v))
	assert.False(t, Month(3, 2025).Matches(v))
	assert.True(t, Total(2025).IsTotal())
	assert.Equal(t, 2, Month(2, 2025).MonthIndex())
	assert.Equal(t, 2025, Month(2, 2025).Year())
}
