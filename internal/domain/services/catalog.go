package services

import (
	"context"

	"timevault/internal/domain/models"
	"timevault/internal/domain/repositories"
)

// CreateClientRequest creates a client.
type CreateClientRequest struct {
	Name string  `json:"name"`
	Note *string `json:"note,omitempty"`
}

// UpdateClientRequest applies only the supplied fields.
type UpdateClientRequest struct {
	Name *string `json:"name,omitempty"`
	Note *string `json:"note,omitempty"`
}

// ClientService defines business logic operations for clients.
type ClientService interface {
	Create(ctx context.Context, tenantID string, req *CreateClientRequest) (*models.Client, error)
	Get(ctx context.Context, id, tenantID string) (*models.Client, error)
	List(ctx context.Context, tenantID string, opts repositories.ListOptions) ([]models.Client, error)
	Update(ctx context.Context, id, tenantID string, req *UpdateClientRequest) (*models.Client, error)
	SoftDelete(ctx context.Context, id, tenantID string) error
}

// CreateProjectRequest creates a project under a client.
type CreateProjectRequest struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
}

// UpdateProjectRequest applies only the supplied fields.
type UpdateProjectRequest struct {
	Name *string `json:"name,omitempty"`
}

// ProjectService defines business logic operations for projects.
type ProjectService interface {
	Create(ctx context.Context, tenantID string, req *CreateProjectRequest) (*models.Project, error)
	Get(ctx context.Context, id, tenantID string) (*models.Project, error)
	List(ctx context.Context, tenantID string, opts repositories.ListOptions) ([]models.Project, error)
	Update(ctx context.Context, id, tenantID string, req *UpdateProjectRequest) (*models.Project, error)
	SoftDelete(ctx context.Context, id, tenantID string) error
}

// CreateTaskRequest creates a task under a project.
type CreateTaskRequest struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
}

// UpdateTaskRequest applies only the supplied fields.
type UpdateTaskRequest struct {
	Name *string `json:"name,omitempty"`
}

// TaskService defines business logic operations for tasks.
type TaskService interface {
	Create(ctx context.Context, tenantID string, req *CreateTaskRequest) (*models.Task, error)
	Get(ctx context.Context, id, tenantID string) (*models.Task, error)
	List(ctx context.Context, tenantID string, opts repositories.ListOptions) ([]models.Task, error)
	Update(ctx context.Context, id, tenantID string, req *UpdateTaskRequest) (*models.Task, error)
	SoftDelete(ctx context.Context, id, tenantID string) error
}
