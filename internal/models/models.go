// Package models holds the P&L data tree and the forecast and scenario
// records that project values onto it.
package models

import "time"

// FinancialValue is the amount of one row for one calendar month.
type FinancialValue struct {
	Value       float64 `json:"value" yaml:"value"`
	Year        int     `json:"year" yaml:"year"`
	Month       int     `json:"month" yaml:"month"`
	Date        string  `json:"date" yaml:"date"`
	IsProjected bool    `json:"isProjected" yaml:"isProjected"`
}

// FinancialRow is a single line item, e.g. "Rent".
type FinancialRow struct {
	ID            string           `json:"id" yaml:"id"`
	Name          string           `json:"name" yaml:"name"`
	Type          CategoryType     `json:"type" yaml:"type"`
	CategoryID    string           `json:"categoryId" yaml:"categoryId"`
	SubcategoryID string           `json:"subcategoryId" yaml:"subcategoryId"`
	Order         int              `json:"order" yaml:"order"`
	Values        []FinancialValue `json:"values" yaml:"values"`
}

// Subcategory groups rows under a heading. It has no values of its own.
type Subcategory struct {
	ID    string         `json:"id" yaml:"id"`
	Name  string         `json:"name" yaml:"name"`
	Order int            `json:"order" yaml:"order"`
	Rows  []FinancialRow `json:"rows" yaml:"rows,omitempty"`
}

// Category is a top-level P&L grouping. A calculated category derives its
// value from Formula; a leaf category sums its rows.
type Category struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Type          CategoryType  `json:"type" yaml:"type"`
	Order         int           `json:"order" yaml:"order"`
	IsExpanded    bool          `json:"isExpanded" yaml:"isExpanded"`
	Subcategories []Subcategory `json:"subcategories" yaml:"subcategories,omitempty"`
	IsCalculated  bool          `json:"isCalculated,omitempty" yaml:"isCalculated,omitempty"`
	Formula       string        `json:"formula,omitempty" yaml:"formula,omitempty"`
}

// MonthPeriod labels one forecast column.
type MonthPeriod struct {
	Year  int    `json:"year" yaml:"year"`
	Month int    `json:"month" yaml:"month"`
	Label string `json:"label" yaml:"label"`
}

// BalanceSheetAccount is carried with the plan but not used by the engine.
type BalanceSheetAccount struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Type    string  `json:"type" yaml:"type"`
	Balance float64 `json:"balance" yaml:"balance"`
}

// BalanceSheet wraps the balance sheet accounts.
type BalanceSheet struct {
	Accounts []BalanceSheetAccount `json:"accounts" yaml:"accounts"`
}

// FinancialData is the root of the P&L tree.
type FinancialData struct {
	Categories      []Category    `json:"categories" yaml:"categories"`
	ForecastPeriods []MonthPeriod `json:"forecastPeriods" yaml:"forecastPeriods"`
	LastUpdated     time.Time     `json:"lastUpdated" yaml:"lastUpdated"`
	TaxRate         float64       `json:"taxRate" yaml:"taxRate"`
	TargetIncome    float64       `json:"targetIncome" yaml:"targetIncome"`
	BalanceSheet    BalanceSheet  `json:"balanceSheet" yaml:"balanceSheet"`
}

// ForecastParameters carries the method-specific inputs of a forecast record.
// GrowthRate is a percentage (10 means +10% per month).
type ForecastParameters struct {
	GrowthRate float64 `json:"growthRate,omitempty" yaml:"growthRate,omitempty"`
	Amount     float64 `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// ForecastRecord describes a projection over a set of rows and a month range.
// AccountIDs are row ids.
type ForecastRecord struct {
	ID         string             `json:"id" yaml:"id"`
	Name       string             `json:"name" yaml:"name"`
	AccountIDs []string           `json:"accountIds" yaml:"accountIds"`
	Method     ForecastMethod     `json:"method" yaml:"method"`
	Parameters ForecastParameters `json:"parameters" yaml:"parameters"`
	StartDate  string             `json:"startDate" yaml:"startDate"`
	EndDate    string             `json:"endDate" yaml:"endDate"`
	Status     RecordStatus       `json:"status" yaml:"status"`
}

// ScenarioConfig is the two-method variant of a forecast record.
type ScenarioConfig struct {
	ID         string       `json:"id" yaml:"id"`
	Name       string       `json:"name" yaml:"name"`
	Type       ScenarioType `json:"type" yaml:"type"`
	Value      float64      `json:"value" yaml:"value"`
	AccountIDs []string     `json:"accountIds" yaml:"accountIds"`
	StartDate  string       `json:"startDate" yaml:"startDate"`
	EndDate    string       `json:"endDate" yaml:"endDate"`
	Status     RecordStatus `json:"status" yaml:"status"`
}

// Plan is the persisted unit: the data tree plus its projection records.
type Plan struct {
	Data      FinancialData    `json:"data" yaml:"data"`
	Forecasts []ForecastRecord `json:"forecasts" yaml:"forecasts"`
	Scenarios []ScenarioConfig `json:"scenarios" yaml:"scenarios"`
}
