package models

// CategoryType names the role a category plays in the P&L. Formula operands
// refer to categories by these names.
type CategoryType string

// Well-known category types.
const (
	CategoryTypeSalesRevenue       CategoryType = "sales_revenue"
	CategoryTypeCOGS               CategoryType = "cogs"
	CategoryTypeGrossProfit        CategoryType = "gross_profit"
	CategoryTypeOperatingExpenses  CategoryType = "operating_expenses"
	CategoryTypeOperatingProfit    CategoryType = "operating_profit"
	CategoryTypeOtherIncome        CategoryType = "other_income"
	CategoryTypeOtherExpenses      CategoryType = "other_expenses"
	CategoryTypeNetProfitBeforeTax CategoryType = "net_profit_before_tax"
	CategoryTypeTax                CategoryType = "tax"
	CategoryTypeNetProfitAfterTax  CategoryType = "net_profit_after_tax"
)

// ForecastMethod selects how a forecast record projects values.
type ForecastMethod string

// Forecast methods
const (
	MethodGrowthRate  ForecastMethod = "growth_rate"
	MethodFixedAmount ForecastMethod = "fixed_amount"
)

// ScenarioType selects how a scenario projects values.
type ScenarioType string

// Scenario types
const (
	ScenarioPercentage ScenarioType = "percentage"
	ScenarioAmount     ScenarioType = "amount"
)

// RecordStatus is the lifecycle state of a forecast record or scenario.
// Scenarios only use active and paused.
type RecordStatus string

// Record statuses
const (
	StatusActive    RecordStatus = "active"
	StatusPaused    RecordStatus = "paused"
	StatusCompleted RecordStatus = "completed"
)

// Balance sheet account types
const (
	AccountTypeAsset     = "asset"
	AccountTypeLiability = "liability"
	AccountTypeEquity    = "equity"
)

// Forecast horizon. Every row carries one value per month in this range.
const (
	HorizonStartYear = 2024
	HorizonEndYear   = 2030
	HorizonMonths    = (HorizonEndYear - HorizonStartYear + 1) * 12
)

// AllYears selects every period when passed as a year filter.
const AllYears = 0

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
