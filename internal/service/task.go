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

// taskService implements the TaskService interface
type taskService struct {
	tasks    repositories.TaskRepository
	projects repositories.ProjectRepository
	audit    repositories.AuditSink
	logger   *slog.Logger
}

// NewTaskService creates a new task service
func NewTaskService(
	tasks repositories.TaskRepository,
	projects repositories.ProjectRepository,
	audit repositories.AuditSink,
	logger *slog.Logger,
) services.TaskService {
	return &taskService{tasks: tasks, projects: projects, audit: audit, logger: logger}
}

// Create creates a new task under a project
func (s *taskService) Create(ctx context.Context, tenantID string, req *services.CreateTaskRequest) (*models.Task, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	ok, err := s.projects.Exists(ctx, req.ProjectID, tenantID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.ReferentialError{Field: "project_id", ID: req.ProjectID}
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		ProjectID: req.ProjectID,
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	metrics.ObserveMutation("task", "create")
	s.recordAudit(ctx, "create", tenantID, task.ID, nil, task)
	s.logger.Info("task created", "id", task.ID, "tenant_id", tenantID, "name", task.Name)

	return task, nil
}

// Get retrieves a task by ID
func (s *taskService) Get(ctx context.Context, id, tenantID string) (*models.Task, error) {
	return s.tasks.GetByID(ctx, id, tenantID)
}

// List retrieves a page of tasks for a tenant
func (s *taskService) List(ctx context.Context, tenantID string, opts repositories.ListOptions) ([]models.Task, error) {
	return s.tasks.ListByTenant(ctx, tenantID, opts)
}

// Update applies the supplied fields to a task
func (s *taskService) Update(ctx context.Context, id, tenantID string, req *services.UpdateTaskRequest) (*models.Task, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Length(1, config.MaxNameLength)),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	task, err := s.tasks.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	before := *task

	if req.Name != nil {
		task.Name = strings.TrimSpace(*req.Name)
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	metrics.ObserveMutation("task", "update")
	s.recordAudit(ctx, "update", tenantID, task.ID, &before, task)
	s.logger.Info("task updated", "id", task.ID, "tenant_id", tenantID)

	return task, nil
}

// SoftDelete marks a task deleted
func (s *taskService) SoftDelete(ctx context.Context, id, tenantID string) error {
	task, err := s.tasks.GetByID(ctx, id, tenantID)
	if err != nil {
		return err
	}

	if err := s.tasks.SoftDelete(ctx, id, tenantID); err != nil {
		return err
	}

	metrics.ObserveMutation("task", "delete")
	s.recordAudit(ctx, "delete", tenantID, id, task, nil)
	s.logger.Info("task deleted", "id", id, "tenant_id", tenantID)

	return nil
}

func (s *taskService) recordAudit(ctx context.Context, action, tenantID, entityID string, before, after interface{}) {
	event := repositories.AuditEvent{
		TenantID:   tenantID,
		UserID:     domain.ActorFromContext(ctx),
		Action:     action,
		EntityType: "task",
		EntityID:   entityID,
		Before:     before,
		After:      after,
		OccurredAt: time.Now().UTC(),
	}
	go s.audit.Record(context.Background(), event)
}
