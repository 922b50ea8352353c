package common

import (
	"context"

	"fjacquet/pnl-forecast/cmd/root"
	"fjacquet/pnl-forecast/internal/config"
	"fjacquet/pnl-forecast/internal/container"
	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/store"
)

// UseMemoryPlan installs an application container backed by an in-memory
// repository holding plan (nil for an empty repository). It is meant for
// command tests.
func UseMemoryPlan(plan *models.Plan, logger logging.Logger) (*store.MockPlanStore, error) {
	repo := &store.MockPlanStore{}
	if plan != nil {
		clone := plan.Clone()
		repo.Plan = &clone
	}

	cfg := &config.Config{}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Storage.Driver = config.DriverYAML
	cfg.Engine.DefaultTaxRate = 25
	cfg.Export.Delimiter = ","

	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	c, err := container.NewContainer(context.Background(), cfg,
		container.WithRepository(repo),
		container.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	root.SetContainer(c)
	return repo, nil
}
