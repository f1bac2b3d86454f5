package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"timevault/internal/domain"
	"timevault/internal/domain/models"
	"timevault/internal/domain/repositories"
)

// PostgresTenantRepository implements the TenantRepository interface.
// Tenants are the isolation boundary itself, so this repository is not
// tenant-scoped and the table has no soft-delete column: removal is a
// hard delete, guarded by foreign keys from every owned table.
type PostgresTenantRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(config *RepositoryConfig) repositories.TenantRepository {
	return &PostgresTenantRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	var t models.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persists a new tenant
func (r *PostgresTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	if tenant.ID == "" || tenant.Name == "" {
		return &domain.ValidationError{Message: "tenant requires id and name"}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, r.tables.Tenants)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("tenant %s already exists", tenant.ID),
				ResourceType: "tenant",
				ResourceID:   tenant.ID,
			}
		}
		return storageError("create tenant", err)
	}

	return nil
}

// GetByID retrieves a tenant by ID
func (r *PostgresTenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	query := fmt.Sprintf(`
		SELECT id, name, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Tenants)

	executor := GetExecutor(ctx, r.pool)
	tenant, err := scanTenant(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Resource: "tenant", ID: id}
		}
		return nil, storageError("get tenant", err)
	}

	return tenant, nil
}

// List retrieves all tenants, ordered by name
func (r *PostgresTenantRepository) List(ctx context.Context) ([]models.Tenant, error) {
	query := fmt.Sprintf(`
		SELECT id, name, created_at, updated_at
		FROM %s
		ORDER BY name ASC
	`, r.tables.Tenants)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, storageError("list tenants", err)
	}
	defer rows.Close()

	var tenants []models.Tenant
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, storageError("scan tenant", err)
		}
		tenants = append(tenants, *tenant)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate tenants", err)
	}

	if tenants == nil {
		tenants = []models.Tenant{}
	}

	return tenants, nil
}

// HardDelete removes a tenant irreversibly. Fails while any owned row still
// references it.
func (r *PostgresTenantRepository) HardDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Tenants)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("tenant %s still owns data", id),
				ResourceType: "tenant",
				ResourceID:   id,
			}
		}
		return storageError("delete tenant", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "tenant", ID: id}
	}

	return nil
}
