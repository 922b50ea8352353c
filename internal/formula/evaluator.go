package formula

import (
	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
)

// LeafSource sums a category's own rows under a selector. The aggregation
// service implements it.
type LeafSource interface {
	LeafValue(cat *models.Category, sel Selector) float64
}

// Evaluator computes calculated categories over one data snapshot. Parsed
// expressions are cached per category id for the evaluator's lifetime.
// An Evaluator is not safe for concurrent use.
type Evaluator struct {
	index   *models.Index
	leaves  LeafSource
	taxRate float64
	logger  logging.Logger

	cache  map[string]Expression
	active map[string]bool
}

// NewEvaluator creates an evaluator. logger may be nil.
func NewEvaluator(index *models.Index, taxRate float64, leaves LeafSource, logger logging.Logger) *Evaluator {
	return &Evaluator{
		index:   index,
		leaves:  leaves,
		taxRate: taxRate,
		logger:  logging.OrDiscard(logger),
		cache:   make(map[string]Expression),
		active:  make(map[string]bool),
	}
}

// Evaluate returns the value of the category with the given id. Unknown ids
// yield 0.
func (e *Evaluator) Evaluate(categoryID string, sel Selector) float64 {
	cat, ok := e.index.Category(categoryID)
	if !ok {
		return 0
	}
	return e.EvaluateCategory(cat, sel)
}

// EvaluateCategory returns the value of cat: its own rows for a leaf, its
// formula otherwise.
func (e *Evaluator) EvaluateCategory(cat *models.Category, sel Selector) float64 {
	if !cat.IsCalculated {
		return e.leaves.LeafValue(cat, sel)
	}

	if e.active[cat.ID] {
		e.logger.Warn("Formula cycle detected, operand contributes 0",
			logging.F(logging.FieldCategoryID, cat.ID),
			logging.F(logging.FieldFormula, cat.Formula))
		return 0
	}
	e.active[cat.ID] = true
	defer delete(e.active, cat.ID)

	expr := e.Expression(cat)
	switch expr.Kind {
	case KindSubcategories:
		return e.leaves.LeafValue(cat, sel)
	case KindTax:
		return e.tax(sel)
	default:
		return e.fold(cat, expr, sel)
	}
}

// Expression returns the cached parse of cat's formula.
func (e *Evaluator) Expression(cat *models.Category) Expression {
	if expr, ok := e.cache[cat.ID]; ok {
		return expr
	}
	expr := Parse(cat.Formula)
	e.cache[cat.ID] = expr
	return expr
}

func (e *Evaluator) tax(sel Selector) float64 {
	preTax := e.operand(string(models.CategoryTypeNetProfitBeforeTax), sel)
	if preTax <= 0 {
		return 0
	}
	return preTax * e.taxRate / 100
}

func (e *Evaluator) fold(cat *models.Category, expr Expression, sel Selector) float64 {
	result := 0.0
	for _, term := range expr.Terms {
		var value float64
		switch term.Operand.Kind {
		case OperandTaxRate:
			value = e.taxRate
		default:
			ref, ok := e.index.Resolve(term.Operand.Ref)
			if !ok {
				e.logger.Debug("Skipping unresolved formula token",
					logging.F(logging.FieldCategoryID, cat.ID),
					logging.F(logging.FieldToken, term.Operand.Ref))
				continue
			}
			value = e.EvaluateCategory(ref, sel)
		}
		result = apply(result, term.Op, value)
	}
	return result
}

// operand resolves a token by type or id and evaluates it; missing is 0.
func (e *Evaluator) operand(token string, sel Selector) float64 {
	cat, ok := e.index.Resolve(token)
	if !ok {
		return 0
	}
	return e.EvaluateCategory(cat, sel)
}

func apply(result float64, op byte, value float64) float64 {
	switch op {
	case '-':
		return result - value
	case '*':
		return result * value
	case '/':
		if value == 0 {
			return result
		}
		return result / value
	default:
		return result + value
	}
}
