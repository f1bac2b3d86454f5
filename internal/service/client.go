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

// clientService implements the ClientService interface
type clientService struct {
	clients repositories.ClientRepository
	audit   repositories.AuditSink
	logger  *slog.Logger
}

// NewClientService creates a new client service
func NewClientService(clients repositories.ClientRepository, audit repositories.AuditSink, logger *slog.Logger) services.ClientService {
	return &clientService{clients: clients, audit: audit, logger: logger}
}

// Create creates a new client
func (s *clientService) Create(ctx context.Context, tenantID string, req *services.CreateClientRequest) (*models.Client, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, config.MaxNameLength)),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	now := time.Now().UTC()
	client := &models.Client{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Name:      strings.TrimSpace(req.Name),
		Note:      normalizeDescription(req.Note),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}

	metrics.ObserveMutation("client", "create")
	s.recordAudit(ctx, "create", tenantID, client.ID, nil, client)
	s.logger.Info("client created", "id", client.ID, "tenant_id", tenantID, "name", client.Name)

	return client, nil
}

// Get retrieves a client by ID
func (s *clientService) Get(ctx context.Context, id, tenantID string) (*models.Client, error) {
	return s.clients.GetByID(ctx, id, tenantID)
}

// List retrieves a page of clients for a tenant
func (s *clientService) List(ctx context.Context, tenantID string, opts repositories.ListOptions) ([]models.Client, error) {
	return s.clients.ListByTenant(ctx, tenantID, opts)
}

// Update applies the supplied fields to a client
func (s *clientService) Update(ctx context.Context, id, tenantID string, req *services.UpdateClientRequest) (*models.Client, error) {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Length(1, config.MaxNameLength)),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	client, err := s.clients.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	before := *client

	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Note != nil {
		client.Note = normalizeDescription(req.Note)
	}
	client.UpdatedAt = time.Now().UTC()

	if err := s.clients.Update(ctx, client); err != nil {
		return nil, err
	}

	metrics.ObserveMutation("client", "update")
	s.recordAudit(ctx, "update", tenantID, client.ID, &before, client)
	s.logger.Info("client updated", "id", client.ID, "tenant_id", tenantID)

	return client, nil
}

// SoftDelete marks a client deleted
func (s *clientService) SoftDelete(ctx context.Context, id, tenantID string) error {
	client, err := s.clients.GetByID(ctx, id, tenantID)
	if err != nil {
		return err
	}

	if err := s.clients.SoftDelete(ctx, id, tenantID); err != nil {
		return err
	}

	metrics.ObserveMutation("client", "delete")
	s.recordAudit(ctx, "delete", tenantID, id, client, nil)
	s.logger.Info("client deleted", "id", id, "tenant_id", tenantID)

	return nil
}

func (s *clientService) recordAudit(ctx context.Context, action, tenantID, entityID string, before, after interface{}) {
	event := repositories.AuditEvent{
		TenantID:   tenantID,
		UserID:     domain.ActorFromContext(ctx),
		Action:     action,
		EntityType: "client",
		EntityID:   entityID,
		Before:     before,
		After:      after,
		OccurredAt: time.Now().UTC(),
	}
	go s.audit.Record(context.Background(), event)
}
