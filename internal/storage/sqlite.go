package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
)

// DefaultSQLitePath is used when no database path is configured.
const DefaultSQLitePath = "data/plan.db"

// SQLiteRepository stores the plan in a single SQLite file.
type SQLiteRepository struct {
	db     *sql.DB
	path   string
	logger logging.Logger
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string, logger logging.Logger) (*SQLiteRepository, error) {
	if dbPath == "" {
		dbPath = DefaultSQLitePath
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &planerror.StorageError{Backend: BackendSQLite, Op: "open", Err: err}
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &planerror.StorageError{Backend: BackendSQLite, Op: "ping", Err: err}
	}
	if err := RunMigrations(dbPath); err != nil {
		_ = db.Close()
		return nil, &planerror.StorageError{Backend: BackendSQLite, Op: "migrate", Err: err}
	}

	log := logging.OrDiscard(logger)
	log.Debug("Opened SQLite database", logging.F(logging.FieldFile, dbPath))
	return &SQLiteRepository{db: db, path: dbPath, logger: log}, nil
}

// LoadPlan reads the stored plan. An empty database is a NotFoundError.
func (r *SQLiteRepository) LoadPlan(ctx context.Context) (*models.Plan, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &planerror.StorageError{Backend: BackendSQLite, Op: "begin", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM plan_settings").Scan(&count); err != nil {
		return nil, &planerror.StorageError{Backend: BackendSQLite, Op: "load", Err: err}
	}
	if count == 0 {
		return nil, &planerror.NotFoundError{Kind: "plan", ID: r.path}
	}

	tables, err := readTables(ctx, func(ctx context.Context, query string, args ...any) (rowIterator, error) {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		return sqlRows{rows}, nil
	})
	if err != nil {
		return nil, &planerror.StorageError{Backend: BackendSQLite, Op: "load", Err: err}
	}
	plan, err := tables.rebuild()
	if err != nil {
		return nil, &planerror.StorageError{Backend: BackendSQLite, Op: "decode", Err: err}
	}

	r.logger.Debug("Loaded plan",
		logging.F(logging.FieldBackend, BackendSQLite),
		logging.F(logging.FieldCount, len(plan.Data.Categories)))
	return plan, nil
}

// SavePlan replaces the stored plan in one transaction.
func (r *SQLiteRepository) SavePlan(ctx context.Context, plan *models.Plan) error {
	if plan == nil {
		return fmt.Errorf("nil plan")
	}
	tables := flatten(plan)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &planerror.StorageError{Backend: BackendSQLite, Op: "begin", Err: err}
	}
	exec := func(ctx context.Context, query string, args ...any) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}
	if err := writeTables(ctx, exec, bindQuestion, tables); err != nil {
		_ = tx.Rollback()
		return &planerror.StorageError{Backend: BackendSQLite, Op: "save", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &planerror.StorageError{Backend: BackendSQLite, Op: "commit", Err: err}
	}

	r.logger.Debug("Saved plan",
		logging.F(logging.FieldBackend, BackendSQLite),
		logging.F(logging.FieldCount, len(tables.values)))
	return nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type sqlRows struct{ rows *sql.Rows }

func (s sqlRows) Next() bool             { return s.rows.Next() }
func (s sqlRows) Scan(dest ...any) error { return s.rows.Scan(dest...) }
func (s sqlRows) Err() error             { return s.rows.Err() }
func (s sqlRows) Close()                 { _ = s.rows.Close() }
