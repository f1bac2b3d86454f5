package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"timevault/internal/config"
	"timevault/internal/domain"
	"timevault/internal/domain/models"
	"timevault/internal/domain/repositories"
	"timevault/internal/domain/services"
	"timevault/internal/metrics"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// projectService implements the ProjectService interface
type projectService struct {
	projects repositories.ProjectRepository
	clients  repositories.ClientRepository
	audit    repositories.AuditSink
	logger   *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projects repositories.ProjectRepository,
	clients repositories.ClientRepository,
	audit repositories.AuditSink,
	logger *slog.Logger,
) services.ProjectService {
	return &projectService{projects: projects, clients: clients, audit: audit, logger: logger}
}

// Create creates a new project under a client
func (s *projectService) Create(ctx context.Context, tenantID string, req *services.CreateProjectRequest) (*models.Project, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.ClientID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	ok, err := s.clients.Exists(ctx, req.ClientID, tenantID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ReferentialError{Field: "client_id", ID: req.ClientID}
	}

	now := time.Now().UTC()
	project := &models.Project{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		ClientID:  req.ClientID,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	metrics.ObserveMutation("project", "create")
	s.recordAudit(ctx, "create", tenantID, project.ID, nil, project)
	s.logger.Info("project created", "id", project.ID, "tenant_id", tenantID, "name", project.Name)

	return project, nil
}

// Get retrieves a project by ID
func (s *projectService) Get(ctx context.Context, id, tenantID string) (*models.Project, error) {
	return s.projects.GetByID(ctx, id, tenantID)
}

// List retrieves a page of projects for a tenant
func (s *projectService) List(ctx context.Context, tenantID string, opts repositories.ListOptions) ([]models.Project, error) {
	return s.projects.ListByTenant(ctx, tenantID, opts)
}

// Update applies the supplied fields to a project
func (s *projectService) Update(ctx context.Context, id, tenantID string, req *services.UpdateProjectRequest) (*models.Project, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Length(1, config.MaxNameLength)),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	project, err := s.projects.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	before := *project

	if req.Name != nil {
		project.Name = strings.TrimSpace(*req.Name)
	}
	project.UpdatedAt = time.Now().UTC()

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	metrics.ObserveMutation("project", "update")
	s.recordAudit(ctx, "update", tenantID, project.ID, &before, project)
	s.logger.Info("project updated", "id", project.ID, "tenant_id", tenantID)

	return project, nil
}

// SoftDelete marks a project deleted
func (s *projectService) SoftDelete(ctx context.Context, id, tenantID string) error {
	project, err := s.projects.GetByID(ctx, id, tenantID)
	if err != nil {
		return err
	}

	if err := s.projects.SoftDelete(ctx, id, tenantID); err != nil {
		return err
	}

	metrics.ObserveMutation("project", "delete")
	s.recordAudit(ctx, "delete", tenantID, id, project, nil)
	s.logger.Info("project deleted", "id", id, "tenant_id", tenantID)

	return nil
}

func (s *projectService) recordAudit(ctx context.Context, action, tenantID, entityID string, before, after interface{}) {
	event := repositories.AuditEvent{
		TenantID:   tenantID,
		UserID:     domain.ActorFromContext(ctx),
		Action:     action,
		EntityType: "project",
		EntityID:   entityID,
		Before:     before,
		After:      after,
		OccurredAt: time.Now().UTC(),
	}
	go s.audit.Record(context.Background(), event)
}
