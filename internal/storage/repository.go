// Package storage persists plans in relational databases. SQLite is the
// embedded backend; PostgreSQL serves shared deployments.
package storage

import (
	"context"

	"fjacquet/pnl-forecast/internal/models"
)

// Repository loads and saves a whole plan. Implementations store only
// non-zero values and return a plan whose rows cover the full horizon.
type Repository interface {
	LoadPlan(ctx context.Context) (*models.Plan, error)
	SavePlan(ctx context.Context, plan *models.Plan) error
	Close() error
}

// Backend names, as used in configuration and in StorageError.Backend.
const (
	BackendYAML     = "yaml"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var (
	_ Repository = (*SQLiteRepository)(nil)
	_ Repository = (*PostgresRepository)(nil)
)
