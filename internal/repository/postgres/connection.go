package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"timevault/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Tenants     string
	Users       string
	Clients     string
	Projects    string
	Tasks       string
	TimeEntries string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Tenants:     fmt.Sprintf("%stenants", prefix),
		Users:       fmt.Sprintf("%susers", prefix),
		Clients:     fmt.Sprintf("%sclients", prefix),
		Projects:    fmt.Sprintf("%sprojects", prefix),
		Tasks:       fmt.Sprintf("%stasks", prefix),
		TimeEntries: fmt.Sprintf("%stime_entries", prefix),
	}
}

// CreateConnectionPool creates a new pgx connection pool.
//
// If port 6543 is detected (a transaction-pooling PgBouncer, e.g. Supabase),
// the query exec mode switches to QueryExecModeCacheDescribe: it uses the
// extended protocol but caches statement descriptions instead of prepared
// statements, which transaction pooling does not support. An explicit
// default_query_exec_mode in the connection string takes precedence.
//
// The fmt.Sprintf table-name interpolation used by the repositories is safe
// with prepared statements because the prefix is fixed at startup and the
// SQL string is interpolated before it is sent to the database.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool. This lets repositories
// automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
