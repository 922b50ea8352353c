package storage

import (
	"sort"
	"time"

	"fjacquet/pnl-forecast/internal/models"
)

type settingsRecord struct {
	TaxRate      float64
	TargetIncome float64
	LastUpdated  string
}

type categoryRecord struct {
	ID           string
	Position     int
	Name         string
	Type         string
	Order        int
	IsExpanded   bool
	IsCalculated bool
	Formula      string
}

type subcategoryRecord struct {
	ID         string
	CategoryID string
	Position   int
	Name       string
	Order      int
}

type rowRecord struct {
	ID            string
	SubcategoryID string
	CategoryID    string
	Position      int
	Name          string
	Type          string
	Order         int
}

type valueRecord struct {
	RowID       string
	Year        int
	Month       int
	Value       float64
	Date        string
	IsProjected bool
}

type periodRecord struct {
	Position int
	Year     int
	Month    int
	Label    string
}

type accountRecord struct {
	ID       string
	Position int
	Name     string
	Type     string
	Balance  float64
}

type forecastRecordRow struct {
	ID         string
	Position   int
	Name       string
	Method     string
	GrowthRate float64
	Amount     float64
	StartDate  string
	EndDate    string
	Status     string
}

type scenarioRecord struct {
	ID        string
	Position  int
	Name      string
	Type      string
	Value     float64
	StartDate string
	EndDate   string
	Status    string
}

// linkRecord attaches one account id to a forecast record or scenario.
type linkRecord struct {
	OwnerID   string
	Position  int
	AccountID string
}

// planTables is a plan in relational form.
type planTables struct {
	settings         settingsRecord
	categories       []categoryRecord
	subcategories    []subcategoryRecord
	rows             []rowRecord
	values           []valueRecord
	periods          []periodRecord
	accounts         []accountRecord
	forecasts        []forecastRecordRow
	forecastAccounts []linkRecord
	scenarios        []scenarioRecord
	scenarioAccounts []linkRecord
}

// flatten converts plan to table rows, dropping zero values.
func flatten(plan *models.Plan) planTables {
	data := plan.Data.Compact()

	var t planTables
	t.settings = settingsRecord{
		TaxRate:      data.TaxRate,
		TargetIncome: data.TargetIncome,
	}
	if !data.LastUpdated.IsZero() {
		t.settings.LastUpdated = data.LastUpdated.UTC().Format(time.RFC3339Nano)
	}

	for ci, cat := range data.Categories {
		t.categories = append(t.categories, categoryRecord{
			ID:           cat.ID,
			Position:     ci,
			Name:         cat.Name,
			Type:         string(cat.Type),
			Order:        cat.Order,
			IsExpanded:   cat.IsExpanded,
			IsCalculated: cat.IsCalculated,
			Formula:      cat.Formula,
		})
		for si, sub := range cat.Subcategories {
			t.subcategories = append(t.subcategories, subcategoryRecord{
				ID:         sub.ID,
				CategoryID: cat.ID,
				Position:   si,
				Name:       sub.Name,
				Order:      sub.Order,
			})
			for ri, row := range sub.Rows {
				t.rows = append(t.rows, rowRecord{
					ID:            row.ID,
					SubcategoryID: sub.ID,
					CategoryID:    cat.ID,
					Position:      ri,
					Name:          row.Name,
					Type:          string(row.Type),
					Order:         row.Order,
				})
				for _, v := range row.Values {
					t.values = append(t.values, valueRecord{
						RowID:       row.ID,
						Year:        v.Year,
						Month:       v.Month,
						Value:       v.Value,
						Date:        v.Date,
						IsProjected: v.IsProjected,
					})
				}
			}
		}
	}

	for i, p := range data.ForecastPeriods {
		t.periods = append(t.periods, periodRecord{Position: i, Year: p.Year, Month: p.Month, Label: p.Label})
	}
	for i, a := range data.BalanceSheet.Accounts {
		t.accounts = append(t.accounts, accountRecord{ID: a.ID, Position: i, Name: a.Name, Type: a.Type, Balance: a.Balance})
	}

	for i, f := range plan.Forecasts {
		t.forecasts = append(t.forecasts, forecastRecordRow{
			ID:         f.ID,
			Position:   i,
			Name:       f.Name,
			Method:     string(f.Method),
			GrowthRate: f.Parameters.GrowthRate,
			Amount:     f.Parameters.Amount,
			StartDate:  f.StartDate,
			EndDate:    f.EndDate,
			Status:     string(f.Status),
		})
		for ai, id := range f.AccountIDs {
			t.forecastAccounts = append(t.forecastAccounts, linkRecord{OwnerID: f.ID, Position: ai, AccountID: id})
		}
	}
	for i, s := range plan.Scenarios {
		t.scenarios = append(t.scenarios, scenarioRecord{
			ID:        s.ID,
			Position:  i,
			Name:      s.Name,
			Type:      string(s.Type),
			Value:     s.Value,
			StartDate: s.StartDate,
			EndDate:   s.EndDate,
			Status:    string(s.Status),
		})
		for ai, id := range s.AccountIDs {
			t.scenarioAccounts = append(t.scenarioAccounts, linkRecord{OwnerID: s.ID, Position: ai, AccountID: id})
		}
	}
	return t
}

// rebuild assembles a plan from table rows. Records referring to a missing
// parent are dropped. Every row is densified to the full horizon.
func (t planTables) rebuild() (*models.Plan, error) {
	plan := &models.Plan{}
	data := &plan.Data
	data.TaxRate = t.settings.TaxRate
	data.TargetIncome = t.settings.TargetIncome
	if t.settings.LastUpdated != "" {
		ts, err := time.Parse(time.RFC3339Nano, t.settings.LastUpdated)
		if err != nil {
			return nil, err
		}
		data.LastUpdated = ts
	}

	sort.SliceStable(t.categories, func(i, j int) bool { return t.categories[i].Position < t.categories[j].Position })
	sort.SliceStable(t.subcategories, func(i, j int) bool { return t.subcategories[i].Position < t.subcategories[j].Position })
	sort.SliceStable(t.rows, func(i, j int) bool { return t.rows[i].Position < t.rows[j].Position })

	valuesByRow := make(map[string][]models.FinancialValue)
	for _, v := range t.values {
		valuesByRow[v.RowID] = append(valuesByRow[v.RowID], models.FinancialValue{
			Value:       v.Value,
			Year:        v.Year,
			Month:       v.Month,
			Date:        v.Date,
			IsProjected: v.IsProjected,
		})
	}
	rowsBySub := make(map[string][]models.FinancialRow)
	for _, r := range t.rows {
		rowsBySub[r.SubcategoryID] = append(rowsBySub[r.SubcategoryID], models.FinancialRow{
			ID:            r.ID,
			Name:          r.Name,
			Type:          models.CategoryType(r.Type),
			CategoryID:    r.CategoryID,
			SubcategoryID: r.SubcategoryID,
			Order:         r.Order,
			Values:        valuesByRow[r.ID],
		})
	}
	subsByCat := make(map[string][]models.Subcategory)
	for _, s := range t.subcategories {
		subsByCat[s.CategoryID] = append(subsByCat[s.CategoryID], models.Subcategory{
			ID:    s.ID,
			Name:  s.Name,
			Order: s.Order,
			Rows:  rowsBySub[s.ID],
		})
	}
	for _, c := range t.categories {
		data.Categories = append(data.Categories, models.Category{
			ID:            c.ID,
			Name:          c.Name,
			Type:          models.CategoryType(c.Type),
			Order:         c.Order,
			IsExpanded:    c.IsExpanded,
			Subcategories: subsByCat[c.ID],
			IsCalculated:  c.IsCalculated,
			Formula:       c.Formula,
		})
	}
	data.EnsureHorizon()

	sort.SliceStable(t.periods, func(i, j int) bool { return t.periods[i].Position < t.periods[j].Position })
	for _, p := range t.periods {
		data.ForecastPeriods = append(data.ForecastPeriods, models.MonthPeriod{Year: p.Year, Month: p.Month, Label: p.Label})
	}
	sort.SliceStable(t.accounts, func(i, j int) bool { return t.accounts[i].Position < t.accounts[j].Position })
	for _, a := range t.accounts {
		data.BalanceSheet.Accounts = append(data.BalanceSheet.Accounts, models.BalanceSheetAccount{
			ID: a.ID, Name: a.Name, Type: a.Type, Balance: a.Balance,
		})
	}

	forecastAccounts := groupLinks(t.forecastAccounts)
	sort.SliceStable(t.forecasts, func(i, j int) bool { return t.forecasts[i].Position < t.forecasts[j].Position })
	for _, f := range t.forecasts {
		plan.Forecasts = append(plan.Forecasts, models.ForecastRecord{
			ID:         f.ID,
			Name:       f.Name,
			AccountIDs: forecastAccounts[f.ID],
			Method:     models.ForecastMethod(f.Method),
			Parameters: models.ForecastParameters{GrowthRate: f.GrowthRate, Amount: f.Amount},
			StartDate:  f.StartDate,
			EndDate:    f.EndDate,
			Status:     models.RecordStatus(f.Status),
		})
	}
	scenarioAccounts := groupLinks(t.scenarioAccounts)
	sort.SliceStable(t.scenarios, func(i, j int) bool { return t.scenarios[i].Position < t.scenarios[j].Position })
	for _, s := range t.scenarios {
		plan.Scenarios = append(plan.Scenarios, models.ScenarioConfig{
			ID:         s.ID,
			Name:       s.Name,
			Type:       models.ScenarioType(s.Type),
			Value:      s.Value,
			AccountIDs: scenarioAccounts[s.ID],
			StartDate:  s.StartDate,
			EndDate:    s.EndDate,
			Status:     models.RecordStatus(s.Status),
		})
	}
	return plan, nil
}

func groupLinks(links []linkRecord) map[string][]string {
	sort.SliceStable(links, func(i, j int) bool { return links[i].Position < links[j].Position })
	out := make(map[string][]string)
	for _, l := range links {
		out[l.OwnerID] = append(out[l.OwnerID], l.AccountID)
	}
	return out
}
