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

// PostgresTaskRepository implements the TaskRepository interface
type PostgresTaskRepository struct {
	*tenantScoped[models.Task]
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(config *RepositoryConfig) repositories.TaskRepository {
	return &PostgresTaskRepository{
		tenantScoped: newTenantScoped(config.Pool, mapping[models.Task]{
			table:   config.Tables.Tasks,
			entity:  "task",
			columns: "id, tenant_id, project_id, name, created_at, updated_at, deleted_at",
			scan:    scanTask,
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

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID,
		&t.TenantID,
		&t.ProjectID,
		&t.Name,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persists a new task
func (r *PostgresTaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID == "" || task.TenantID == "" || task.ProjectID == "" || task.Name == "" {
		return &domain.ValidationError{Message: "task requires id, tenant_id, project_id and name"}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, project_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		task.ID,
		task.TenantID,
		task.ProjectID,
		task.Name,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return &domain.ReferentialError{Field: "project_id", ID: task.ProjectID}
		}
		return storageError("create task", err)
	}

	return nil
}

// Update writes the task's mutable fields, scoped to the active row
func (r *PostgresTaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3 AND tenant_id = $4 AND deleted_at IS NULL
	`, r.tables.Tasks)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		task.Name,
		task.UpdatedAt,
		task.ID,
		task.TenantID,
	)
	if err != nil {
		return storageError("update task", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "task", ID: task.ID}
	}

	return nil
}

// ListByProject retrieves active tasks under one project
func (r *PostgresTaskRepository) ListByProject(ctx context.Context, projectID, tenantID string, opts repositories.ListOptions) ([]models.Task, error) {
	query := fmt.Sprintf(`
		SELECT id, tenant_id, project_id, name, created_at, updated_at, deleted_at
		FROM %s
		WHERE project_id = $1 AND tenant_id = $2%s%s
	`, r.tables.Tasks, r.activeFilter(opts.IncludeDeleted), r.orderClause(opts))

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID, tenantID)
	if err != nil {
		return nil, storageError("list tasks by project", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, storageError("scan task", err)
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate tasks", err)
	}

	if tasks == nil {
		tasks = []models.Task{}
	}

	return tasks, nil
}

// ExistsInProject reports whether an active task belongs to the given
// project within the tenant.
func (r *PostgresTaskRepository) ExistsInProject(ctx context.Context, id, projectID, tenantID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE id = $1 AND project_id = $2 AND tenant_id = $3 AND deleted_at IS NULL
		)
	`, r.tables.Tasks)

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id, projectID, tenantID).Scan(&exists); err != nil {
		return false, storageError("check task", err)
	}

	return exists, nil
}
