package state

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
	"fjacquet/pnl-forecast/internal/sample"
)

var (
	created = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	edited  = time.Date(2024, time.February, 2, 10, 0, 0, 0, time.UTC)
)

func fixedClock() time.Time { return edited }

func rowValue(t *testing.T, data models.FinancialData, rowID string, year, month int) models.FinancialValue {
	t.Helper()
	row, ok := models.NewIndex(&data).Row(rowID)
	require.True(t, ok, rowID)
	v, ok := row.ValueAt(year, month)
	require.True(t, ok)
	return v
}

func TestReduce(t *testing.T) {
	base := sample.Template(created)

	tests := []struct {
		name   string
		action Action
		check  func(t *testing.T, next models.FinancialData)
	}{
		{
			name:   "set row value marks actual",
			action: SetRowValue{RowID: "rent", Year: 2025, Month: 3, Value: -1800},
			check: func(t *testing.T, next models.FinancialData) {
				v := rowValue(t, next, "rent", 2025, 3)
				assert.Equal(t, -1800.0, v.Value)
				assert.False(t, v.IsProjected)
			},
		},
		{
			name:   "set tax rate",
			action: SetTaxRate{Rate: 30},
			check: func(t *testing.T, next models.FinancialData) {
				assert.Equal(t, 30.0, next.TaxRate)
			},
		},
		{
			name:   "set target income",
			action: SetTargetIncome{Amount: 50000},
			check: func(t *testing.T, next models.FinancialData) {
				assert.Equal(t, 50000.0, next.TargetIncome)
			},
		},
		{
			name:   "add row",
			action: AddRow{CategoryID: "operating-expenses", SubcategoryID: "opex-staff", ID: "bonus", Name: "Bonus"},
			check: func(t *testing.T, next models.FinancialData) {
				row, ok := models.NewIndex(&next).Row("bonus")
				require.True(t, ok)
				assert.Equal(t, models.CategoryTypeOperatingExpenses, row.Type)
				assert.Equal(t, 2, row.Order)
				assert.Len(t, row.Values, models.HorizonMonths)
			},
		},
		{
			name:   "add row generates id",
			action: AddRow{CategoryID: "revenue", SubcategoryID: "revenue-services", Name: "Training"},
			check: func(t *testing.T, next models.FinancialData) {
				rows := next.Categories[0].Subcategories[1].Rows
				require.Len(t, rows, 2)
				assert.Len(t, rows[1].ID, 36)
			},
		},
		{
			name:   "remove row",
			action: RemoveRow{RowID: "utilities"},
			check: func(t *testing.T, next models.FinancialData) {
				_, ok := models.NewIndex(&next).Row("utilities")
				assert.False(t, ok)
			},
		},
		{
			name: "apply scenario",
			action: ApplyScenario{Scenario: models.ScenarioConfig{
				ID: "s", Type: models.ScenarioAmount, Value: 900, AccountIDs: []string{"rent"},
				StartDate: "2025-01-01", EndDate: "2025-01-31",
			}},
			check: func(t *testing.T, next models.FinancialData) {
				assert.Equal(t, 900.0, rowValue(t, next, "rent", 2025, 1).Value)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Reduce(base, tt.action, edited)
			require.NoError(t, err)
			assert.Equal(t, edited, next.LastUpdated)
			assert.Equal(t, created, base.LastUpdated, "input snapshot untouched")
			tt.check(t, next)
		})
	}

	assert.Equal(t, 0.0, rowValue(t, base, "rent", 2025, 3).Value)
	assert.Equal(t, float64(sample.DefaultTaxRate), base.TaxRate)
}

func TestReduce_Errors(t *testing.T) {
	base := sample.Template(created)

	tests := []struct {
		name   string
		action Action
		target interface{}
	}{
		{"unknown row", SetRowValue{RowID: "nope", Year: 2025, Month: 1}, new(*planerror.NotFoundError)},
		{"bad month", SetRowValue{RowID: "rent", Year: 2025, Month: 13}, new(*planerror.InvalidInputError)},
		{"outside horizon", SetRowValue{RowID: "rent", Year: 2040, Month: 1}, new(*planerror.InvalidInputError)},
		{"tax rate above 100", SetTaxRate{Rate: 101}, new(*planerror.ValidationError)},
		{"negative tax rate", SetTaxRate{Rate: -1}, new(*planerror.ValidationError)},
		{"unknown category", AddRow{CategoryID: "nope", SubcategoryID: "x"}, new(*planerror.NotFoundError)},
		{"unknown subcategory", AddRow{CategoryID: "revenue", SubcategoryID: "x"}, new(*planerror.NotFoundError)},
		{"duplicate row", AddRow{CategoryID: "revenue", SubcategoryID: "revenue-products", ID: "rent"}, new(*planerror.ValidationError)},
		{"remove unknown", RemoveRow{RowID: "nope"}, new(*planerror.NotFoundError)},
		{"bad forecast", ApplyForecast{Record: models.ForecastRecord{Method: "x"}}, new(*planerror.InvalidInputError)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Reduce(base, tt.action, edited)
			require.Error(t, err)
			assert.True(t, errors.As(err, tt.target), "got %T", err)
			assert.Equal(t, base, next)
		})
	}

	_, err := Reduce(base, nil, edited)
	assert.Error(t, err)
}

func newStore(opts ...Option) (*Store, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return NewStore(sample.Plan(created), logger, opts...), logger
}

func TestStore_Dispatch(t *testing.T) {
	store, logger := newStore()

	data, err := store.Dispatch(SetTaxRate{Rate: 10})
	require.NoError(t, err)
	assert.Equal(t, 10.0, data.TaxRate)
	assert.Equal(t, edited, store.Data().LastUpdated)

	_, err = store.Dispatch(SetTaxRate{Rate: 200})
	require.Error(t, err)
	assert.Equal(t, 10.0, store.Data().TaxRate)
	assert.True(t, logger.HasEntry("WARN", "Action rejected"))
}

func TestStore_ForecastLifecycle(t *testing.T) {
	store, logger := newStore()

	record, res, err := store.AddForecast(models.ForecastRecord{
		Name:       "Overlapping growth",
		AccountIDs: []string{"product-sales"},
		Method:     models.MethodGrowthRate,
		Parameters: models.ForecastParameters{GrowthRate: 5},
		StartDate:  "2025-06-01",
		EndDate:    "2026-06-30",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, models.StatusActive, record.Status)
	assert.True(t, res.HasOverlap, "overlaps the sample forecast")
	assert.True(t, logger.HasEntry("WARN", "Forecast overlaps an active forecast"))
	assert.Len(t, store.Snapshot().Forecasts, 2)

	data, err := store.ApplyForecastByID("forecast-product-growth")
	require.NoError(t, err)
	assert.Equal(t, 12240.0, rowValue(t, data, "product-sales", 2025, 1).Value)

	require.NoError(t, store.DeleteForecast(record.ID))
	assert.Len(t, store.Snapshot().Forecasts, 1)

	var notFound *planerror.NotFoundError
	assert.True(t, errors.As(store.DeleteForecast(record.ID), &notFound))
	_, err = store.ApplyForecastByID(record.ID)
	assert.True(t, errors.As(err, &notFound))
}

func TestStore_OverlapGuard(t *testing.T) {
	store, _ := newStore(WithOverlapGuard(true))

	_, res, err := store.AddForecast(models.ForecastRecord{
		AccountIDs: []string{"product-sales"},
		Method:     models.MethodFixedAmount,
		StartDate:  "2025-12-01",
		EndDate:    "2025-12-31",
	})
	require.Error(t, err)
	assert.True(t, res.HasOverlap)
	assert.Len(t, store.Snapshot().Forecasts, 1)

	_, _, err = store.AddForecast(models.ForecastRecord{
		AccountIDs: []string{"product-sales"},
		Method:     models.MethodFixedAmount,
		StartDate:  "2026-01-01",
		EndDate:    "2026-12-31",
	})
	require.NoError(t, err)

	_, _, err = store.AddForecast(models.ForecastRecord{
		ID:         "paused-overlap",
		AccountIDs: []string{"product-sales"},
		Method:     models.MethodFixedAmount,
		StartDate:  "2025-12-01",
		EndDate:    "2025-12-31",
		Status:     models.StatusPaused,
	})
	require.NoError(t, err, "paused records never conflict")
}

func TestStore_ScenarioLifecycle(t *testing.T) {
	store, _ := newStore(WithOverlapGuard(true))

	// The sample rent scenario is paused, so this one does not conflict.
	scenario, res, err := store.AddScenario(models.ScenarioConfig{
		ID: "cheaper-rent", Type: models.ScenarioPercentage, Value: -10,
		AccountIDs: []string{"rent"}, StartDate: "2025-08-01", EndDate: "2025-09-30",
	})
	require.NoError(t, err)
	assert.False(t, res.HasOverlap)

	_, _, err = store.AddScenario(models.ScenarioConfig{
		ID: "cheaper-rent", Type: models.ScenarioAmount, AccountIDs: []string{"x"}, StartDate: "2030-01-01", EndDate: "2030-01-01",
	})
	assert.Error(t, err, "duplicate id")

	_, _, err = store.AddScenario(models.ScenarioConfig{
		Type: models.ScenarioAmount, Value: 1, AccountIDs: []string{"rent"}, StartDate: "2025-09-01", EndDate: "2025-09-01",
	})
	assert.Error(t, err, "guarded overlap")

	data, err := store.ApplyScenarioByID(scenario.ID)
	require.NoError(t, err)
	// rent for July 2025 is 0, so growth keeps it at 0.
	assert.Equal(t, 0.0, rowValue(t, data, "rent", 2025, 8).Value)
	assert.True(t, rowValue(t, data, "rent", 2025, 8).IsProjected)

	require.NoError(t, store.DeleteScenario(scenario.ID))
	assert.Error(t, store.DeleteScenario(scenario.ID))
	_, err = store.ApplyScenarioByID("nope")
	assert.Error(t, err)
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	store, _ := newStore()

	var wg sync.WaitGroup
	for i := 1; i <= 12; i++ {
		wg.Add(1)
		go func(month int) {
			defer wg.Done()
			_, err := store.Dispatch(SetRowValue{RowID: "salaries", Year: 2026, Month: month, Value: -100})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	data := store.Data()
	for m := 1; m <= 12; m++ {
		assert.Equal(t, -100.0, rowValue(t, data, "salaries", 2026, m).Value)
	}
}

func TestStore_SnapshotIsCopy(t *testing.T) {
	store, _ := newStore()
	snap := store.Snapshot()
	snap.Forecasts[0].AccountIDs[0] = "changed"
	snap.Data.TaxRate = 99

	again := store.Snapshot()
	assert.Equal(t, "product-sales", again.Forecasts[0].AccountIDs[0])
	assert.Equal(t, float64(sample.DefaultTaxRate), again.Data.TaxRate)
}

func TestStore_ApplyActive(t *testing.T) {
	store, _ := newStore()

	data, err := store.ApplyActive()
	require.NoError(t, err)
	assert.Equal(t, 12240.0, rowValue(t, data, "product-sales", 2025, 1).Value)
	assert.Equal(t, 0.0, rowValue(t, data, "rent", 2025, 7).Value, "paused scenario is skipped")
	assert.Equal(t, edited, data.LastUpdated)
}
