package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// rowIterator is the subset of *sql.Rows and pgx.Rows the loaders need.
type rowIterator interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type (
	execFunc  func(ctx context.Context, query string, args ...any) error
	queryFunc func(ctx context.Context, query string, args ...any) (rowIterator, error)
)

// Tables are cleared children first and filled parents first.
var clearStatements = []string{
	"DELETE FROM scenario_accounts",
	"DELETE FROM scenarios",
	"DELETE FROM forecast_accounts",
	"DELETE FROM forecast_records",
	"DELETE FROM balance_sheet_accounts",
	"DELETE FROM forecast_periods",
	"DELETE FROM financial_values",
	"DELETE FROM financial_rows",
	"DELETE FROM subcategories",
	"DELETE FROM categories",
	"DELETE FROM plan_settings",
}

const (
	insertSettings      = `INSERT INTO plan_settings (id, tax_rate, target_income, last_updated) VALUES (1, ?, ?, ?)`
	insertCategory      = `INSERT INTO categories (id, position, name, type, sort_order, is_expanded, is_calculated, formula) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	insertSubcategory   = `INSERT INTO subcategories (id, category_id, position, name, sort_order) VALUES (?, ?, ?, ?, ?)`
	insertRow           = `INSERT INTO financial_rows (id, subcategory_id, category_id, position, name, type, sort_order) VALUES (?, ?, ?, ?, ?, ?, ?)`
	insertValue         = `INSERT INTO financial_values (row_id, year, month, value, date, is_projected) VALUES (?, ?, ?, ?, ?, ?)`
	insertPeriod        = `INSERT INTO forecast_periods (position, year, month, label) VALUES (?, ?, ?, ?)`
	insertAccount       = `INSERT INTO balance_sheet_accounts (id, position, name, type, balance) VALUES (?, ?, ?, ?, ?)`
	insertForecast      = `INSERT INTO forecast_records (id, position, name, method, growth_rate, amount, start_date, end_date, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	insertForecastLink  = `INSERT INTO forecast_accounts (record_id, position, account_id) VALUES (?, ?, ?)`
	insertScenario      = `INSERT INTO scenarios (id, position, name, type, value, start_date, end_date, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	insertScenarioLink  = `INSERT INTO scenario_accounts (scenario_id, position, account_id) VALUES (?, ?, ?)`
	selectSettings      = `SELECT tax_rate, target_income, last_updated FROM plan_settings WHERE id = 1`
	selectCategories    = `SELECT id, position, name, type, sort_order, is_expanded, is_calculated, formula FROM categories ORDER BY position`
	selectSubcategories = `SELECT id, category_id, position, name, sort_order FROM subcategories ORDER BY category_id, position`
	selectRows          = `SELECT id, subcategory_id, category_id, position, name, type, sort_order FROM financial_rows ORDER BY subcategory_id, position`
	selectValues        = `SELECT row_id, year, month, value, date, is_projected FROM financial_values ORDER BY row_id, year, month`
	selectPeriods       = `SELECT position, year, month, label FROM forecast_periods ORDER BY position`
	selectAccounts      = `SELECT id, position, name, type, balance FROM balance_sheet_accounts ORDER BY position`
	selectForecasts     = `SELECT id, position, name, method, growth_rate, amount, start_date, end_date, status FROM forecast_records ORDER BY position`
	selectForecastLinks = `SELECT record_id, position, account_id FROM forecast_accounts ORDER BY record_id, position`
	selectScenarios     = `SELECT id, position, name, type, value, start_date, end_date, status FROM scenarios ORDER BY position`
	selectScenarioLinks = `SELECT scenario_id, position, account_id FROM scenario_accounts ORDER BY scenario_id, position`
)

// bindDollar rewrites ? placeholders as $1, $2, ... for PostgreSQL.
func bindDollar(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func bindQuestion(query string) string { return query }

// writeTables replaces the stored plan with t. The caller owns the
// transaction.
func writeTables(ctx context.Context, exec execFunc, bind func(string) string, t planTables) error {
	for _, stmt := range clearStatements {
		if err := exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}

	insert := func(query string, args ...any) error {
		if err := exec(ctx, bind(query), args...); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	}

	if err := insert(insertSettings, t.settings.TaxRate, t.settings.TargetIncome, t.settings.LastUpdated); err != nil {
		return err
	}
	for _, c := range t.categories {
		if err := insert(insertCategory, c.ID, c.Position, c.Name, c.Type, c.Order, c.IsExpanded, c.IsCalculated, c.Formula); err != nil {
			return err
		}
	}
	for _, s := range t.subcategories {
		if err := insert(insertSubcategory, s.ID, s.CategoryID, s.Position, s.Name, s.Order); err != nil {
			return err
		}
	}
	for _, r := range t.rows {
		if err := insert(insertRow, r.ID, r.SubcategoryID, r.CategoryID, r.Position, r.Name, r.Type, r.Order); err != nil {
			return err
		}
	}
	for _, v := range t.values {
		if err := insert(insertValue, v.RowID, v.Year, v.Month, v.Value, v.Date, v.IsProjected); err != nil {
			return err
		}
	}
	for _, p := range t.periods {
		if err := insert(insertPeriod, p.Position, p.Year, p.Month, p.Label); err != nil {
			return err
		}
	}
	for _, a := range t.accounts {
		if err := insert(insertAccount, a.ID, a.Position, a.Name, a.Type, a.Balance); err != nil {
			return err
		}
	}
	for _, f := range t.forecasts {
		if err := insert(insertForecast, f.ID, f.Position, f.Name, f.Method, f.GrowthRate, f.Amount, f.StartDate, f.EndDate, f.Status); err != nil {
			return err
		}
	}
	for _, l := range t.forecastAccounts {
		if err := insert(insertForecastLink, l.OwnerID, l.Position, l.AccountID); err != nil {
			return err
		}
	}
	for _, s := range t.scenarios {
		if err := insert(insertScenario, s.ID, s.Position, s.Name, s.Type, s.Value, s.StartDate, s.EndDate, s.Status); err != nil {
			return err
		}
	}
	for _, l := range t.scenarioAccounts {
		if err := insert(insertScenarioLink, l.OwnerID, l.Position, l.AccountID); err != nil {
			return err
		}
	}
	return nil
}

func scanAll(ctx context.Context, query queryFunc, stmt string, scan func(rowIterator) error) error {
	rows, err := query(ctx, stmt)
	if err != nil {
		return fmt.Errorf("%s: %w", stmt, err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
	}
	return rows.Err()
}

// readTables loads every table. A database without settings yields zero
// settings.
func readTables(ctx context.Context, query queryFunc) (planTables, error) {
	var t planTables

	steps := []struct {
		stmt string
		scan func(rowIterator) error
	}{
		{selectSettings, func(r rowIterator) error {
			return r.Scan(&t.settings.TaxRate, &t.settings.TargetIncome, &t.settings.LastUpdated)
		}},
		{selectCategories, func(r rowIterator) error {
			var c categoryRecord
			if err := r.Scan(&c.ID, &c.Position, &c.Name, &c.Type, &c.Order, &c.IsExpanded, &c.IsCalculated, &c.Formula); err != nil {
				return err
			}
			t.categories = append(t.categories, c)
			return nil
		}},
		{selectSubcategories, func(r rowIterator) error {
			var s subcategoryRecord
			if err := r.Scan(&s.ID, &s.CategoryID, &s.Position, &s.Name, &s.Order); err != nil {
				return err
			}
			t.subcategories = append(t.subcategories, s)
			return nil
		}},
		{selectRows, func(r rowIterator) error {
			var row rowRecord
			if err := r.Scan(&row.ID, &row.SubcategoryID, &row.CategoryID, &row.Position, &row.Name, &row.Type, &row.Order); err != nil {
				return err
			}
			t.rows = append(t.rows, row)
			return nil
		}},
		{selectValues, func(r rowIterator) error {
			var v valueRecord
			if err := r.Scan(&v.RowID, &v.Year, &v.Month, &v.Value, &v.Date, &v.IsProjected); err != nil {
				return err
			}
			t.values = append(t.values, v)
			return nil
		}},
		{selectPeriods, func(r rowIterator) error {
			var p periodRecord
			if err := r.Scan(&p.Position, &p.Year, &p.Month, &p.Label); err != nil {
				return err
			}
			t.periods = append(t.periods, p)
			return nil
		}},
		{selectAccounts, func(r rowIterator) error {
			var a accountRecord
			if err := r.Scan(&a.ID, &a.Position, &a.Name, &a.Type, &a.Balance); err != nil {
				return err
			}
			t.accounts = append(t.accounts, a)
			return nil
		}},
		{selectForecasts, func(r rowIterator) error {
			var f forecastRecordRow
			if err := r.Scan(&f.ID, &f.Position, &f.Name, &f.Method, &f.GrowthRate, &f.Amount, &f.StartDate, &f.EndDate, &f.Status); err != nil {
				return err
			}
			t.forecasts = append(t.forecasts, f)
			return nil
		}},
		{selectForecastLinks, func(r rowIterator) error {
			var l linkRecord
			if err := r.Scan(&l.OwnerID, &l.Position, &l.AccountID); err != nil {
				return err
			}
			t.forecastAccounts = append(t.forecastAccounts, l)
			return nil
		}},
		{selectScenarios, func(r rowIterator) error {
			var s scenarioRecord
			if err := r.Scan(&s.ID, &s.Position, &s.Name, &s.Type, &s.Value, &s.StartDate, &s.EndDate, &s.Status); err != nil {
				return err
			}
			t.scenarios = append(t.scenarios, s)
			return nil
		}},
		{selectScenarioLinks, func(r rowIterator) error {
			var l linkRecord
			if err := r.Scan(&l.OwnerID, &l.Position, &l.AccountID); err != nil {
				return err
			}
			t.scenarioAccounts = append(t.scenarioAccounts, l)
			return nil
		}},
	}

	for _, step := range steps {
		if err := scanAll(ctx, query, step.stmt, step.scan); err != nil {
			return planTables{}, err
		}
	}
	return t, nil
}
