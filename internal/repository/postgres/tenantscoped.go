package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"timevault/internal/config"
	"timevault/internal/domain"
	"timevault/internal/domain/repositories"
)

// mapping describes how one tenant-owned table maps to its entity struct.
// Each entity supplies an explicit, statically-typed scan function; there is
// no reflection and schema drift fails at compile time in the scan func.
type mapping[T any] struct {
	table       string
	entity      string            // resource name used in error messages
	columns     string            // select list, in scan order
	scan        func(row pgx.Row) (*T, error)
	sortable    map[string]string // caller-facing sort key -> column
	defaultSort string
	softDelete  bool
}

// tenantScoped is the generic base repository every tenant-owned entity
// builds on. It is the single place that applies the tenant filter and the
// soft-delete filter, so no query path can accidentally omit either.
type tenantScoped[T any] struct {
	pool *pgxpool.Pool
	m    mapping[T]
}

func newTenantScoped[T any](pool *pgxpool.Pool, m mapping[T]) *tenantScoped[T] {
	return &tenantScoped[T]{pool: pool, m: m}
}

// activeFilter returns the soft-delete predicate for default-scoped reads.
func (r *tenantScoped[T]) activeFilter(includeDeleted bool) string {
	if r.m.softDelete && !includeDeleted {
		return " AND deleted_at IS NULL"
	}
	return ""
}

// orderClause validates opts.OrderBy against the entity's allow-list and
// falls back to the default sort. Column names are never interpolated from
// untrusted input.
func (r *tenantScoped[T]) orderClause(opts repositories.ListOptions) string {
	column, ok := r.m.sortable[opts.OrderBy]
	if !ok {
		column = r.m.defaultSort
	}
	direction := "ASC"
	if opts.OrderDesc {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", column, direction)
}

// GetByID retrieves an active entity scoped to (id, tenant_id). A row in
// another tenant or soft-deleted reports the same NotFoundError as a
// missing row.
func (r *tenantScoped[T]) GetByID(ctx context.Context, id, tenantID string) (*T, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND tenant_id = $2%s
	`, r.m.columns, r.m.table, r.activeFilter(false))

	executor := GetExecutor(ctx, r.pool)
	entity, err := r.m.scan(executor.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Resource: r.m.entity, ID: id}
		}
		return nil, storageError("get "+r.m.entity, err)
	}

	return entity, nil
}

// ListByTenant retrieves an ordered page of entities for one tenant.
func (r *tenantScoped[T]) ListByTenant(ctx context.Context, tenantID string, opts repositories.ListOptions) ([]T, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = config.DefaultPageSize
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s WHERE tenant_id = $1", r.m.columns, r.m.table)
	sb.WriteString(r.activeFilter(opts.IncludeDeleted))
	sb.WriteString(r.orderClause(opts))
	fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", limit, opts.Offset)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, sb.String(), tenantID)
	if err != nil {
		return nil, storageError("list "+r.m.entity, err)
	}
	defer rows.Close()

	var entities []T
	for rows.Next() {
		entity, err := r.m.scan(rows)
		if err != nil {
			return nil, storageError("scan "+r.m.entity, err)
		}
		entities = append(entities, *entity)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate "+r.m.entity, err)
	}

	// Return empty slice instead of nil if no rows
	if entities == nil {
		entities = []T{}
	}

	return entities, nil
}

// Exists reports whether an active row with this id exists in the tenant.
func (r *tenantScoped[T]) Exists(ctx context.Context, id, tenantID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s WHERE id = $1 AND tenant_id = $2%s
		)
	`, r.m.table, r.activeFilter(false))

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id, tenantID).Scan(&exists); err != nil {
		return false, storageError("check "+r.m.entity, err)
	}

	return exists, nil
}

// SoftDelete sets deleted_at once. The one-way transition is enforced by the
// deleted_at IS NULL predicate: deleting twice reports NotFoundError.
func (r *tenantScoped[T]) SoftDelete(ctx context.Context, id, tenantID string) error {
	if !r.m.softDelete {
		return &domain.ValidationError{Message: r.m.entity + " does not support soft delete"}
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW()
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL
	`, r.m.table)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, tenantID)
	if err != nil {
		return storageError("soft delete "+r.m.entity, err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: r.m.entity, ID: id}
	}

	return nil
}

// HardDelete removes the row irreversibly. Reserved for entities without a
// soft-delete column.
func (r *tenantScoped[T]) HardDelete(ctx context.Context, id, tenantID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND tenant_id = $2
	`, r.m.table)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, tenantID)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("%s %s is still referenced", r.m.entity, id),
				ResourceType: r.m.entity,
				ResourceID:   id,
			}
		}
		return storageError("hard delete "+r.m.entity, err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: r.m.entity, ID: id}
	}

	return nil
}
