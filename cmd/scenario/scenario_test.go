package scenario

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pnl-forecast/cmd/common"
	"fjacquet/pnl-forecast/cmd/root"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/sample"
	"fjacquet/pnl-forecast/internal/store"
)

func install(t *testing.T) *store.MockPlanStore {
	t.Helper()
	plan := sample.Plan(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	repo, err := common.UseMemoryPlan(&plan, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		root.SetContainer(nil)
		rejectOverlap = false
		checkOp = common.OverlapQuery{}
	})
	return repo
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetErr(&out)
	Cmd.SetArgs(args)
	err := Cmd.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	install(t)

	out, err := execute("list")
	require.NoError(t, err)
	assert.Contains(t, out, "scenario-rent-increase")
	assert.Contains(t, out, "-2500.00")
	assert.Contains(t, out, "paused")
}

func TestApply(t *testing.T) {
	repo := install(t)

	out, err := execute("apply", "scenario-rent-increase")
	require.NoError(t, err)
	assert.Equal(t, "Applied scenario scenario-rent-increase\n", out)

	row, ok := models.NewIndex(&repo.Plan.Data).Row("rent")
	require.True(t, ok)
	for _, month := range []int{6, 7, 12} {
		v, ok := row.ValueAt(2025, month)
		require.True(t, ok)
		if month < 7 {
			assert.Zero(t, v.Value)
			continue
		}
		assert.Equal(t, -2500.0, v.Value)
		assert.True(t, v.IsProjected)
	}

	_, err = execute("apply", "nope")
	assert.Error(t, err)
	assert.Equal(t, 1, repo.Saves)
}

func TestAddAndDelete(t *testing.T) {
	repo := install(t)
	file := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`scenarios:
  - id: price-rise
    name: Price rise
    type: percentage
    value: 3
    accountIds: [product-sales, consulting]
    startDate: "2026-01-01"
    endDate: "2026-12-31"
`), 0600))

	out, err := execute("add", file)
	require.NoError(t, err)
	assert.Equal(t, "Added scenario price-rise\n", out)
	require.Len(t, repo.Plan.Scenarios, 2)

	// Same id again.
	_, err = execute("add", file)
	assert.Error(t, err)

	out, err = execute("delete", "price-rise")
	require.NoError(t, err)
	assert.Equal(t, "Deleted scenario price-rise\n", out)
	assert.Len(t, repo.Plan.Scenarios, 1)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		active   bool
		expected string
	}{
		{"paused scenarios never overlap", false, "No overlapping scenarios\n"},
		{"active scenario overlaps", true, "Overlaps scenario-rent-increase on rent\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := install(t)
			if tt.active {
				repo.Plan.Scenarios[0].Status = models.StatusActive
			}
			out, err := execute("check", "--accounts", "rent", "--start", "2025-12-01", "--end", "2026-03-31")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}
