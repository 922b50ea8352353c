package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
	"fjacquet/pnl-forecast/internal/sample"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	err := os.WriteFile(path, []byte(content), 0600)
	require.NoError(t, err)
}

func TestNewPlanStore_Default(t *testing.T) {
	assert.Equal(t, DefaultPlanFile, NewPlanStore("", nil).File)
}

func TestFindPlanFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plan.yaml")
	writeFile(t, file, "data: {}\n")

	s := NewPlanStore(file, nil)

	found, err := s.FindPlanFile(file)
	require.NoError(t, err)
	assert.Equal(t, file, found)

	_, err = s.FindPlanFile(filepath.Join(dir, "nonexistent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveAndLoadPlan_RoundTrip(t *testing.T) {
	ctx := context.Background()
	file := filepath.Join(t.TempDir(), "nested", "plan.yaml")
	logger := logging.NewMockLogger()
	s := NewPlanStore(file, logger)

	now := time.Date(2024, time.May, 1, 8, 30, 0, 0, time.UTC)
	plan := sample.Plan(now)
	require.NoError(t, s.SavePlan(ctx, &plan))

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "year: 2030", "zero values are not written")
	assert.Contains(t, string(raw), "net_profit_before_tax*taxRate/100")

	loaded, err := s.LoadPlan(ctx)
	require.NoError(t, err)
	assert.True(t, now.Equal(loaded.Data.LastUpdated))
	assert.Equal(t, plan.Data.Categories, loaded.Data.Categories)
	assert.Equal(t, plan.Data.TaxRate, loaded.Data.TaxRate)
	assert.Equal(t, plan.Forecasts, loaded.Forecasts)
	assert.Equal(t, plan.Scenarios, loaded.Scenarios)
	assert.True(t, logger.HasEntry("DEBUG", "Saved plan"))
	assert.True(t, logger.HasEntry("DEBUG", "Loaded plan"))
}

func TestLoadPlan_SparseFileIsDensified(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plan.yaml")
	writeFile(t, file, `data:
  taxRate: 20
  categories:
    - id: revenue
      type: sales_revenue
      subcategories:
        - id: products
          rows:
            - id: widgets
              values:
                - {value: 1000, year: 2024, month: 1}
`)

	plan, err := NewPlanStore(file, nil).LoadPlan(context.Background())
	require.NoError(t, err)

	row := plan.Data.Categories[0].Subcategories[0].Rows[0]
	require.Len(t, row.Values, models.HorizonMonths)
	assert.Equal(t, models.FinancialValue{Value: 1000, Year: 2024, Month: 1, Date: "2024-01-01"}, row.Values[0])
	assert.Equal(t, models.EmptyValue(2024, 2), row.Values[1])
}

func TestLoadPlan_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewPlanStore(filepath.Join(dir, "missing.yaml"), nil).LoadPlan(context.Background())
	var notFound *planerror.NotFoundError
	assert.True(t, errors.As(err, &notFound))

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "data: [unclosed")
	_, err = NewPlanStore(bad, nil).LoadPlan(context.Background())
	var storageErr *planerror.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "parse", storageErr.Op)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewPlanStore(bad, nil).LoadPlan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, NewPlanStore(bad, nil).SavePlan(ctx, &models.Plan{}), context.Canceled)
}

func TestLoadRecords(t *testing.T) {
	file := filepath.Join(t.TempDir(), "records.yaml")
	writeFile(t, file, strings.TrimSpace(`
forecasts:
  - id: f1
    name: Growth
    accountIds: [product-sales]
    method: growth_rate
    parameters: {growthRate: 3}
    startDate: "2025-01-01"
    endDate: "2025-06-30"
    status: active
scenarios:
  - id: s1
    type: amount
    value: -2000
    accountIds: [rent]
    startDate: "2025-01-01"
    endDate: "2025-01-31"
    status: paused
`))

	records, err := LoadRecords(file)
	require.NoError(t, err)
	require.Len(t, records.Forecasts, 1)
	require.Len(t, records.Scenarios, 1)
	assert.Equal(t, 3.0, records.Forecasts[0].Parameters.GrowthRate)
	assert.Equal(t, models.ScenarioAmount, records.Scenarios[0].Type)

	_, err = LoadRecords(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func TestMockPlanStore(t *testing.T) {
	ctx := context.Background()
	m := &MockPlanStore{}

	_, err := m.LoadPlan(ctx)
	assert.Error(t, err)

	plan := sample.Plan(time.Now())
	require.NoError(t, m.SavePlan(ctx, &plan))
	plan.Data.TaxRate = 99

	loaded, err := m.LoadPlan(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(sample.DefaultTaxRate), loaded.Data.TaxRate)
	assert.Equal(t, 1, m.Saves)

	m.SaveError = errors.New("read-only")
	assert.Error(t, m.SavePlan(ctx, &plan))
	assert.NoError(t, m.Close())
}
