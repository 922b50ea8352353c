// Package formula parses and evaluates the formulas of calculated categories.
//
// A formula is a flat sequence of operands and the operators + - * /,
// evaluated strictly left to right: "a+b*c" is (a+b)*c. Operands are category
// types (or ids) and the literal taxRate.
package formula

import (
	"regexp"
	"strings"
	"unicode"

	"fjacquet/pnl-forecast/internal/models"
)

// TaxFormula is evaluated as pre-tax profit times the tax rate, clamped to 0
// when there is no profit.
const TaxFormula = "net_profit_before_tax*taxRate/100"

// TaxRateToken is the literal replaced by the plan's tax rate.
const TaxRateToken = "taxRate"

// Sentinels are formulas meaning "sum my own rows".
var Sentinels = map[string]bool{
	"revenue_subcategories":            true,
	"cogs_subcategories":               true,
	"operating_expenses_subcategories": true,
	"other_income_subcategories":       true,
	"other_expenses_subcategories":     true,
	"tax_subcategories":                true,
}

var tokenPattern = regexp.MustCompile(`\w+|[+\-*/]`)

// Kind tells how an expression is evaluated.
type Kind int

const (
	// KindTerms is a left-to-right fold over Terms.
	KindTerms Kind = iota
	// KindSubcategories sums the category's own rows.
	KindSubcategories
	// KindTax is TaxFormula.
	KindTax
)

// OperandKind distinguishes category references from the tax rate literal.
type OperandKind int

const (
	OperandCategory OperandKind = iota
	OperandTaxRate
)

// Operand is one value in a formula.
type Operand struct {
	Kind OperandKind
	Ref  string
}

// Term is an operand with the operator that folds it into the running result.
type Term struct {
	Op      byte
	Operand Operand
}

// Expression is a parsed formula.
type Expression struct {
	Source string
	Kind   Kind
	Terms  []Term
	// Ignored holds the non-blank characters the tokenizer skipped.
	Ignored []string
}

// Parse turns a formula into an Expression. It never fails: anything the
// tokenizer does not recognize is recorded in Ignored and otherwise dropped.
func Parse(source string) Expression {
	trimmed := strings.TrimSpace(source)
	switch {
	case Sentinels[trimmed]:
		return Expression{Source: source, Kind: KindSubcategories}
	case trimmed == TaxFormula:
		return Expression{Source: source, Kind: KindTax}
	}

	expr := Expression{Source: source, Kind: KindTerms}
	op := byte('+')
	last := 0
	for _, loc := range tokenPattern.FindAllStringIndex(source, -1) {
		expr.Ignored = append(expr.Ignored, skipped(source[last:loc[0]])...)
		last = loc[1]

		token := source[loc[0]:loc[1]]
		switch token {
		case "+", "-", "*", "/":
			op = token[0]
		case TaxRateToken:
			expr.Terms = append(expr.Terms, Term{Op: op, Operand: Operand{Kind: OperandTaxRate, Ref: token}})
		default:
			expr.Terms = append(expr.Terms, Term{Op: op, Operand: Operand{Kind: OperandCategory, Ref: token}})
		}
	}
	expr.Ignored = append(expr.Ignored, skipped(source[last:])...)
	return expr
}

func skipped(gap string) []string {
	var out []string
	for _, r := range gap {
		if !unicode.IsSpace(r) {
			out = append(out, string(r))
		}
	}
	return out
}

// References lists the category tokens the expression depends on.
func (e Expression) References() []string {
	switch e.Kind {
	case KindTax:
		return []string{string(models.CategoryTypeNetProfitBeforeTax)}
	case KindSubcategories:
		return nil
	}
	var refs []string
	for _, t := range e.Terms {
		if t.Operand.Kind == OperandCategory {
			refs = append(refs, t.Operand.Ref)
		}
	}
	return refs
}

// Unresolved lists the category tokens that match no category in index.
// They are skipped during evaluation.
func (e Expression) Unresolved(index *models.Index) []string {
	var out []string
	for _, ref := range e.References() {
		if _, ok := index.Resolve(ref); !ok {
			out = append(out, ref)
		}
	}
	return out
}
