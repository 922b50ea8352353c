// Package container provides dependency injection for the pnl-forecast
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"fjacquet/pnl-forecast/internal/aggregation"
	"fjacquet/pnl-forecast/internal/config"
	"fjacquet/pnl-forecast/internal/export"
	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/state"
	"fjacquet/pnl-forecast/internal/storage"
	"fjacquet/pnl-forecast/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	repository storage.Repository
	exporter   *export.Exporter
}

// Option overrides a dependency, mostly for tests.
type Option func(*Container)

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger logging.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// WithRepository replaces the repository selected by storage.driver.
func WithRepository(repo storage.Repository) Option {
	return func(c *Container) { c.repository = repo }
}

// NewContainer creates and wires all application dependencies.
// The repository is chosen by cfg.Storage.Driver; ctx bounds the database
// connection setup.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))
	}

	if c.repository == nil {
		repo, err := newRepository(ctx, cfg, c.logger)
		if err != nil {
			return nil, err
		}
		c.repository = repo
	}

	c.exporter = export.NewExporter(cfg.Delimiter(), c.logger)

	c.logger.Debug("Container initialized",
		logging.F(logging.FieldBackend, cfg.Storage.Driver))
	return c, nil
}

func newRepository(ctx context.Context, cfg *config.Config, logger logging.Logger) (storage.Repository, error) {
	switch cfg.Storage.Driver {
	case config.DriverYAML, "":
		return store.NewPlanStore(cfg.Plan.File, logger), nil
	case config.DriverSQLite:
		return storage.NewSQLiteRepository(cfg.Storage.SQLitePath, logger)
	case config.DriverPostgres:
		return storage.NewPostgresRepository(ctx, cfg.Storage.PostgresURL, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRepository returns the plan repository.
func (c *Container) GetRepository() storage.Repository {
	return c.repository
}

// GetExporter returns the CSV exporter configured with the export delimiter.
func (c *Container) GetExporter() *export.Exporter {
	return c.exporter
}

// NewAggregation builds an aggregation service over data.
func (c *Container) NewAggregation(data models.FinancialData) *aggregation.Service {
	return aggregation.New(data, c.logger)
}

// NewState wraps plan in a state store sharing the container's logger.
func (c *Container) NewState(plan *models.Plan, opts ...state.Option) *state.Store {
	return state.NewStore(*plan, c.logger, opts...)
}

// Close releases the repository.
func (c *Container) Close() error {
	if c.repository == nil {
		return nil
	}
	if err := c.repository.Close(); err != nil {
		return fmt.Errorf("error closing repository: %w", err)
	}
	return nil
}
