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

// PostgresClientRepository implements the ClientRepository interface
type PostgresClientRepository struct {
	*tenantScoped[models.Client]
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewClientRepository creates a new client repository
func NewClientRepository(config *RepositoryConfig) repositories.ClientRepository {
	return &PostgresClientRepository{
		tenantScoped: newTenantScoped(config.Pool, mapping[models.Client]{
			table:   config.Tables.Clients,
			entity:  "client",
			columns: "id, tenant_id, name, note, created_at, updated_at, deleted_at",
			scan:    scanClient,
			sortable: map[string]string{
				"name":       "name",
				"created_at": "created_at",
				"updated_at": "updated_at",
			},
			defaultSort: "name",
			softDelete:  true,
		}),
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanClient(row pgx.Row) (*models.Client, error) {
	var c models.Client
	err := row.Scan(
		&c.ID,
		&c.TenantID,
		&c.Name,
		&c.Note,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persists a new client
func (r *PostgresClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" || client.TenantID == "" || client.Name == "" {
		return &domain.ValidationError{Message: "client requires id, tenant_id and name"}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, name, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Clients)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		client.ID,
		client.TenantID,
		client.Name,
		client.Note,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return storageError("create client", err)
	}

	return nil
}

// Update writes the client's mutable fields, scoped to the active row
func (r *PostgresClientRepository) Update(ctx context.Context, client *models.Client) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, note = $2, updated_at = $3
		WHERE id = $4 AND tenant_id = $5 AND deleted_at IS NULL
	`, r.tables.Clients)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		client.Name,
		client.Note,
		client.UpdatedAt,
		client.ID,
		client.TenantID,
	)
	if err != nil {
		return storageError("update client", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "client", ID: client.ID}
	}

	return nil
}
