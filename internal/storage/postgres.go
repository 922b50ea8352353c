package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
)

//go:embed schema/postgres.sql
var postgresSchema string

// PostgresRepository stores the plan in PostgreSQL through a pgx pool.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewPostgresRepository connects to databaseURL and ensures the schema
// exists.
func NewPostgresRepository(ctx context.Context, databaseURL string, logger logging.Logger) (*PostgresRepository, error) {
	if databaseURL == "" {
		return nil, &planerror.InvalidInputError{Field: "storage.postgres_url", Value: "", Err: errors.New("database URL not set")}
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, &planerror.StorageError{Backend: BackendPostgres, Op: "parse config", Err: err}
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, &planerror.StorageError{Backend: BackendPostgres, Op: "connect", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &planerror.StorageError{Backend: BackendPostgres, Op: "ping", Err: err}
	}

	repo := &PostgresRepository{pool: pool, logger: logging.OrDiscard(logger)}
	if err := repo.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, &planerror.StorageError{Backend: BackendPostgres, Op: "schema", Err: err}
	}
	return repo, nil
}

func (r *PostgresRepository) ensureSchema(ctx context.Context) error {
	for _, stmt := range splitStatements(postgresSchema) {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", firstLine(stmt), err)
		}
	}
	return nil
}

// LoadPlan reads the stored plan. An empty database is a NotFoundError.
func (r *PostgresRepository) LoadPlan(ctx context.Context) (*models.Plan, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, &planerror.StorageError{Backend: BackendPostgres, Op: "begin", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var count int
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM plan_settings").Scan(&count); err != nil {
		return nil, &planerror.StorageError{Backend: BackendPostgres, Op: "load", Err: err}
	}
	if count == 0 {
		return nil, &planerror.NotFoundError{Kind: "plan", ID: BackendPostgres}
	}

	tables, err := readTables(ctx, func(ctx context.Context, query string, args ...any) (rowIterator, error) {
		return tx.Query(ctx, query, args...)
	})
	if err != nil {
		return nil, &planerror.StorageError{Backend: BackendPostgres, Op: "load", Err: err}
	}
	plan, err := tables.rebuild()
	if err != nil {
		return nil, &planerror.StorageError{Backend: BackendPostgres, Op: "decode", Err: err}
	}

	r.logger.Debug("Loaded plan",
		logging.F(logging.FieldBackend, BackendPostgres),
		logging.F(logging.FieldCount, len(plan.Data.Categories)))
	return plan, nil
}

// SavePlan replaces the stored plan in one transaction.
func (r *PostgresRepository) SavePlan(ctx context.Context, plan *models.Plan) error {
	if plan == nil {
		return fmt.Errorf("nil plan")
	}
	tables := flatten(plan)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return &planerror.StorageError{Backend: BackendPostgres, Op: "begin", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	exec := func(ctx context.Context, query string, args ...any) error {
		_, err := tx.Exec(ctx, query, args...)
		return err
	}
	if err := writeTables(ctx, exec, bindDollar, tables); err != nil {
		return &planerror.StorageError{Backend: BackendPostgres, Op: "save", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return &planerror.StorageError{Backend: BackendPostgres, Op: "commit", Err: err}
	}

	r.logger.Debug("Saved plan",
		logging.F(logging.FieldBackend, BackendPostgres),
		logging.F(logging.FieldCount, len(tables.values)))
	return nil
}

// Close releases the pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// splitStatements splits a schema file on semicolons, dropping comment lines.
func splitStatements(schema string) []string {
	var lines []string
	for _, line := range strings.Split(schema, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
