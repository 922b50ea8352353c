// Package validation checks a plan for problems the engine tolerates at
// evaluation time: formula cycles, unknown tokens, duplicate entries and
// out-of-range inputs.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/pnl-forecast/internal/dateutils"
	"fjacquet/pnl-forecast/internal/formula"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
)

// Severity of an issue.
type Severity string

// Severities
const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Issue is a single finding.
type Issue struct {
	Severity Severity
	Subject  string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Subject, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// AsError joins the error-level issues into one error, or returns nil.
func AsError(issues []Issue) error {
	var errs []error
	for _, i := range issues {
		if i.Severity == SeverityError {
			errs = append(errs, &planerror.ValidationError{Subject: i.Subject, Reason: i.Message})
		}
	}
	return errors.Join(errs...)
}

// ValidateData inspects the tree. In strict mode unresolved formula tokens
// and characters the tokenizer ignores are errors rather than warnings.
func ValidateData(data models.FinancialData, strict bool) []Issue {
	var issues []Issue
	add := func(sev Severity, subject, format string, args ...interface{}) {
		issues = append(issues, Issue{Severity: sev, Subject: subject, Message: fmt.Sprintf(format, args...)})
	}
	lenient := SeverityWarning
	if strict {
		lenient = SeverityError
	}

	if data.TaxRate < 0 || data.TaxRate > 100 {
		add(SeverityError, "taxRate", "%v is outside 0..100", data.TaxRate)
	}

	ix := models.NewIndex(&data)
	for _, t := range ix.DuplicateTypes() {
		add(SeverityWarning, "category type "+string(t), "used by more than one category; formulas resolve to the first")
	}

	rowIDs := make(map[string]bool)
	data.EachRow(func(_ *models.Category, _ *models.Subcategory, row *models.FinancialRow) {
		subject := "row " + row.ID
		if rowIDs[row.ID] {
			add(SeverityError, subject, "duplicate row id")
		}
		rowIDs[row.ID] = true

		seen := make(map[dateutils.YearMonth]bool, len(row.Values))
		for _, v := range row.Values {
			ym := dateutils.YearMonth{Year: v.Year, Month: v.Month}
			if v.Month < 1 || v.Month > 12 {
				add(SeverityError, subject, "month %d is outside 1..12", v.Month)
				continue
			}
			if seen[ym] {
				add(SeverityError, subject, "more than one value for %s", ym)
			}
			seen[ym] = true
		}
	})

	for ci := range data.Categories {
		cat := &data.Categories[ci]
		if !cat.IsCalculated {
			continue
		}
		subject := "category " + cat.ID
		if strings.TrimSpace(cat.Formula) == "" {
			add(SeverityWarning, subject, "calculated category has no formula")
			continue
		}
		expr := formula.Parse(cat.Formula)
		for _, token := range expr.Unresolved(ix) {
			add(lenient, subject, "token '%s' matches no category and is skipped", token)
		}
		if len(expr.Ignored) > 0 {
			add(lenient, subject, "characters %q are ignored", strings.Join(expr.Ignored, ""))
		}
	}

	for _, cycle := range FindCycles(data) {
		add(SeverityError, "category "+cycle[0], "formula cycle %s", strings.Join(cycle, " -> "))
	}
	return issues
}

// FindCycles returns each formula cycle as the list of category ids along it,
// starting and ending with the same id.
func FindCycles(data models.FinancialData) [][]string {
	ix := models.NewIndex(&data)

	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int)
	var stack []string
	var cycles [][]string

	var visit func(cat *models.Category)
	visit = func(cat *models.Category) {
		state[cat.ID] = inProgress
		stack = append(stack, cat.ID)
		if cat.IsCalculated {
			for _, ref := range formula.Parse(cat.Formula).References() {
				next, ok := ix.Resolve(ref)
				if !ok {
					continue
				}
				switch state[next.ID] {
				case inProgress:
					start := indexOf(stack, next.ID)
					cycle := append(append([]string(nil), stack[start:]...), next.ID)
					cycles = append(cycles, cycle)
				case unvisited:
					visit(next)
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[cat.ID] = done
	}

	for ci := range data.Categories {
		cat, _ := ix.Category(data.Categories[ci].ID)
		if state[cat.ID] == unvisited {
			visit(cat)
		}
	}
	return cycles
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return 0
}

// ValidateForecast checks a forecast record before it is stored.
func ValidateForecast(record models.ForecastRecord) error {
	subject := "forecast " + record.ID
	switch record.Method {
	case models.MethodGrowthRate, models.MethodFixedAmount:
	default:
		return &planerror.ValidationError{Subject: subject, Reason: fmt.Sprintf("unknown method '%s'", record.Method)}
	}
	switch record.Status {
	case models.StatusActive, models.StatusPaused, models.StatusCompleted:
	default:
		return &planerror.ValidationError{Subject: subject, Reason: fmt.Sprintf("unknown status '%s'", record.Status)}
	}
	return validateTarget(subject, record.AccountIDs, record.StartDate, record.EndDate)
}

// ValidateScenario checks a scenario before it is stored.
func ValidateScenario(scenario models.ScenarioConfig) error {
	subject := "scenario " + scenario.ID
	switch scenario.Type {
	case models.ScenarioPercentage, models.ScenarioAmount:
	default:
		return &planerror.ValidationError{Subject: subject, Reason: fmt.Sprintf("unknown type '%s'", scenario.Type)}
	}
	switch scenario.Status {
	case models.StatusActive, models.StatusPaused:
	default:
		return &planerror.ValidationError{Subject: subject, Reason: fmt.Sprintf("unknown status '%s'", scenario.Status)}
	}
	return validateTarget(subject, scenario.AccountIDs, scenario.StartDate, scenario.EndDate)
}

func validateTarget(subject string, accountIDs []string, start, end string) error {
	if len(accountIDs) == 0 {
		return &planerror.ValidationError{Subject: subject, Reason: "no accounts selected"}
	}
	s, err := dateutils.ParseISODate(start)
	if err != nil {
		return &planerror.InvalidInputError{Field: "startDate", Value: start, Err: planerror.ErrInvalidDate}
	}
	e, err := dateutils.ParseISODate(end)
	if err != nil {
		return &planerror.InvalidInputError{Field: "endDate", Value: end, Err: planerror.ErrInvalidDate}
	}
	if e.Before(s) {
		return &planerror.ValidationError{Subject: subject, Reason: "end date is before start date"}
	}
	return nil
}

// IsValidOutputFormat checks if the given format is supported by the CLI.
func IsValidOutputFormat(format string) error {
	switch format {
	case "text", "csv", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s. Supported formats are 'text', 'csv', 'yaml'", format)
	}
}
