package export

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pnl-forecast/internal/aggregation"
	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/ratios"
	"fjacquet/pnl-forecast/internal/sample"
)

func sampleService(t *testing.T) *aggregation.Service {
	t.Helper()
	plan := sample.Plan(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))
	return aggregation.New(plan.Data, nil)
}

func TestTotalRows(t *testing.T) {
	rows := TotalRows(sampleService(t), 2024)

	byID := make(map[string]TotalRow, len(rows))
	for _, r := range rows {
		byID[r.CategoryID] = r
	}
	assert.Equal(t, "revenue", rows[0].CategoryID)
	assert.Equal(t, "192000.00", byID["revenue"].Total)
	assert.Equal(t, "-57600.00", byID["cogs"].Total)
	assert.Equal(t, "13275.00", byID["tax"].Total)
	assert.Equal(t, "39825.00", byID["net-profit-after-tax"].Total)
	assert.Equal(t, string(models.CategoryTypeTax), byID["tax"].Type)
}

func TestMonthlyRows(t *testing.T) {
	svc := sampleService(t)
	rows := MonthlyRows(svc, 2024)
	require.Len(t, rows, len(svc.Categories()))

	revenue := rows[0]
	assert.Equal(t, "revenue", revenue.Key)
	assert.Equal(t, "16000.00", revenue.Jan)
	assert.Equal(t, "16000.00", revenue.Dec)
	assert.Equal(t, "192000.00", revenue.Total)

	empty := MonthlyRows(svc, 2026)
	assert.Equal(t, "0.00", empty[0].Total)
}

func TestMonthlyRows_DerivedOperatingProfit(t *testing.T) {
	revenue := models.NewCategoryBuilder("rev", "Revenue", models.CategoryTypeSalesRevenue).
		WithSubcategory("s", "Sales").
		WithRow("s", "r", "Widgets").
		WithValue("r", 2024, 1, 500).
		MustBuild()
	svc := aggregation.New(models.FinancialData{Categories: []models.Category{revenue}}, nil)

	rows := MonthlyRows(svc, 2024)
	require.Len(t, rows, 2)
	assert.Equal(t, string(models.CategoryTypeOperatingProfit), rows[1].Key)
	assert.Equal(t, "500.00", rows[1].Jan)
}

func TestWriteTotals(t *testing.T) {
	tests := []struct {
		name      string
		delimiter rune
		header    string
	}{
		{"comma", ',', "category_id,type,name,total"},
		{"semicolon", ';', "category_id;type;name;total"},
		{"default", 0, "category_id,type,name,total"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			e := NewExporter(tt.delimiter, nil)
			err := e.WriteTotals(&buf, []TotalRow{{CategoryID: "tax", Type: "tax", Name: "Tax", Total: "10.00"}})
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			require.Len(t, lines, 2)
			assert.Equal(t, tt.header, lines[0])
		})
	}
}

func TestWriteMonthly(t *testing.T) {
	var buf bytes.Buffer
	e := NewExporter(',', nil)
	require.NoError(t, e.WriteMonthly(&buf, MonthlyRows(sampleService(t), 2024)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "key,jan,feb,mar,apr,may,jun,jul,aug,sep,oct,nov,dec,total\n"))
	assert.Contains(t, out, "revenue,16000.00,")
}

func TestWrite_NilRows(t *testing.T) {
	e := NewExporter(',', nil)
	assert.Error(t, e.WriteTotals(io.Discard, nil))
	assert.Error(t, e.WriteMonthly(io.Discard, nil))
}

func TestReadValues(t *testing.T) {
	e := NewExporter(';', nil)
	rows, err := e.ReadValues(strings.NewReader("row_id;year;month;value\nrent; 2025; 3; -1800.5\nsalaries;2025;4;-5200\n"))
	require.NoError(t, err)
	assert.Equal(t, []ValueRow{
		{RowID: "rent", Year: 2025, Month: 3, Value: -1800.5},
		{RowID: "salaries", Year: 2025, Month: 4, Value: -5200},
	}, rows)

	_, err = e.ReadValues(strings.NewReader("row_id;year;month;value\nrent;abc;3;1\n"))
	assert.Error(t, err)
}

func TestToFile(t *testing.T) {
	logger := logging.NewMockLogger()
	e := NewExporter(',', logger)
	path := filepath.Join(t.TempDir(), "out", "totals.csv")

	err := e.ToFile(path, func(w io.Writer) error {
		return e.WriteTotals(w, TotalRows(sampleService(t), 2024))
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "revenue,sales_revenue,Sales Revenue,192000.00")
	assert.True(t, logger.HasEntry("INFO", "Wrote CSV file"))
}

func TestRatioRows(t *testing.T) {
	rows := RatioRows(ratios.Compute(sampleService(t), 2024))
	require.Len(t, rows, 6)
	assert.Equal(t, RatioRow{Name: ratios.GrossMargin, Value: "70.00"}, rows[0])
	assert.Equal(t, RatioRow{Name: ratios.TargetIncomeAchievement, Value: "132.75"}, rows[5])

	var buf bytes.Buffer
	require.NoError(t, NewExporter(',', nil).WriteRatios(&buf, rows))
	assert.True(t, strings.HasPrefix(buf.String(), "ratio,percent\ngrossMargin,70.00\n"))
}
