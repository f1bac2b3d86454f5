package repositories

import (
	"context"

	"timevault/internal/domain/models"
)

// ClientRepository manages client persistence.
type ClientRepository interface {
	TenantScoped[models.Client]
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
}

// ProjectRepository manages project persistence.
type ProjectRepository interface {
	TenantScoped[models.Project]
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	ListByClient(ctx context.Context, clientID, tenantID string, opts ListOptions) ([]models.Project, error)
}

// TaskRepository manages task persistence.
type TaskRepository interface {
	TenantScoped[models.Task]
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, task *models.Task) error
	ListByProject(ctx context.Context, projectID, tenantID string, opts ListOptions) ([]models.Task, error)

	// ExistsInProject reports whether an active task belongs to the given
	// project within the tenant.
	ExistsInProject(ctx context.Context, id, projectID, tenantID string) (bool, error)
}

// TenantRepository manages the tenant registry. Tenants are not themselves
// tenant-scoped and carry no soft-delete column.
type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	List(ctx context.Context) ([]models.Tenant, error)
	HardDelete(ctx context.Context, id string) error
}
