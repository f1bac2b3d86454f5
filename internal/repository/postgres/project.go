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

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	*tenantScoped[models.Project]
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *RepositoryConfig) repositories.ProjectRepository {
	return &PostgresProjectRepository{
		tenantScoped: newTenantScoped(config.Pool, mapping[models.Project]{
			table:   config.Tables.Projects,
			entity:  "project",
			columns: "id, tenant_id, client_id, name, created_at, updated_at, deleted_at",
			scan:    scanProject,
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

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.TenantID,
		&p.ClientID,
		&p.Name,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persists a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" || project.TenantID == "" || project.ClientID == "" || project.Name == "" {
		return &domain.ValidationError{Message: "project requires id, tenant_id, client_id and name"}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, client_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		project.ID,
		project.TenantID,
		project.ClientID,
		project.Name,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return &domain.ReferentialError{Field: "client_id", ID: project.ClientID}
		}
		return storageError("create project", err)
	}

	return nil
}

// Update writes the project's mutable fields, scoped to the active row
func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3 AND tenant_id = $4 AND deleted_at IS NULL
	`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		project.Name,
		project.UpdatedAt,
		project.ID,
		project.TenantID,
	)
	if err != nil {
		return storageError("update project", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "project", ID: project.ID}
	}

	return nil
}

// ListByClient retrieves active projects under one client
func (r *PostgresProjectRepository) ListByClient(ctx context.Context, clientID, tenantID string, opts repositories.ListOptions) ([]models.Project, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, client_id, name, created_at, updated_at, deleted_at
		FROM %s
		WHERE client_id = $1 AND tenant_id = $2%s%s
	`, r.tables.Projects, r.activeFilter(opts.IncludeDeleted), r.orderClause(opts))

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, clientID, tenantID)
	if err != nil {
		return nil, storageError("list projects by client", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, storageError("scan project", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate projects", err)
	}

	if projects == nil {
		projects = []models.Project{}
	}

	return projects, nil
}
