package service

import (
	"context"
	"errors"
	"fmt"
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

// timeEntryService implements the TimeEntryService interface
type timeEntryService struct {
	entries   repositories.TimeEntryRepository
	refs      services.ReferenceChecker
	txManager repositories.TransactionManager
	audit     repositories.AuditSink
	logger    *slog.Logger
}

// NewTimeEntryService creates a new time entry service
func NewTimeEntryService(
	entries repositories.TimeEntryRepository,
	refs services.ReferenceChecker,
	txManager repositories.TransactionManager,
	audit repositories.AuditSink,
	logger *slog.Logger,
) services.TimeEntryService {
	return &timeEntryService{
		entries:   entries,
		refs:      refs,
		txManager: txManager,
		audit:     audit,
		logger:    logger,
	}
}

// Create validates and persists one entry. The overlap check and the insert
// run inside one scoped transaction so a concurrent create for the same user
// cannot slip between them.
func (s *timeEntryService) Create(ctx context.Context, tenantID string, req *services.CreateTimeEntryRequest) (*models.TimeEntry, error) {
	if tenantID == "" {
		return nil, &domain.ValidationError{Message: "tenant id is required"}
	}
	if err := validateCandidate(req); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, tenantID, req.ProjectID, req.TaskID); err != nil {
		return nil, err
	}

	entry := newEntry(tenantID, req)

	started := time.Now()
	err := s.txManager.ExecScopedTx(ctx, tenantID, req.UserID, func(txCtx context.Context) error {
		conflicts, err := s.entries.FindOverlapping(txCtx, tenantID, req.UserID, entry.StartTime, entry.EndTime, "")
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return overlapConflict(conflicts)
		}
		return s.entries.Create(txCtx, entry)
	})
	metrics.ObserveCommit("create", time.Since(started))
	if err != nil {
		if isConflict(err) {
			metrics.ObserveConflict("create")
		}
		return nil, err
	}

	metrics.ObserveMutation("time_entry", "create")
	s.emitAudit("create", tenantID, entry.UserID, entry.ID, nil, entry)
	s.logger.Info("time entry created",
		"id", entry.ID,
		"tenant_id", tenantID,
		"user_id", entry.UserID,
		"duration_minutes", entry.DurationMinutes,
	)

	return entry, nil
}

// Update applies the supplied fields. Whenever either bound changes the
// duration is recomputed and the overlap check re-runs excluding the entry's
// own prior state.
func (s *timeEntryService) Update(ctx context.Context, tenantID, id string, req *services.UpdateTimeEntryRequest) (*models.TimeEntry, error) {
	if err := validateUpdate(req); err != nil {
		return nil, err
	}

	// Resolve the owner first: the scoped transaction is keyed on the
	// entry's user, which the caller does not supply.
	existing, err := s.entries.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}

	var before, updated *models.TimeEntry
	started := time.Now()
	err = s.txManager.ExecScopedTx(ctx, tenantID, existing.UserID, func(txCtx context.Context) error {
		// Reload under the lock; the pre-lock read only identified the owner.
		current, err := s.entries.GetByID(txCtx, id, tenantID)
		if err != nil {
			return err
		}
		snapshot := *current
		before = &snapshot

		next := applyUpdate(current, req)

		if next.ProjectID != snapshot.ProjectID || next.TaskID != snapshot.TaskID {
			if err := s.checkReferences(txCtx, tenantID, next.ProjectID, next.TaskID); err != nil {
				return err
			}
		}

		boundsChanged := !next.StartTime.Equal(snapshot.StartTime) || !next.EndTime.Equal(snapshot.EndTime)
		if boundsChanged {
			if err := checkInterval(next.StartTime, next.EndTime); err != nil {
				return err
			}
			next.DurationMinutes = models.DurationMinutes(next.StartTime, next.EndTime)

			conflicts, err := s.entries.FindOverlapping(txCtx, tenantID, next.UserID, next.StartTime, next.EndTime, next.ID)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return overlapConflict(conflicts)
			}
		}

		next.UpdatedAt = time.Now().UTC()
		if err := s.entries.Update(txCtx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	metrics.ObserveCommit("update", time.Since(started))
	if err != nil {
		if isConflict(err) {
			metrics.ObserveConflict("update")
		}
		return nil, err
	}

	metrics.ObserveMutation("time_entry", "update")
	s.emitAudit("update", tenantID, updated.UserID, updated.ID, before, updated)
	s.logger.Info("time entry updated",
		"id", updated.ID,
		"tenant_id", tenantID,
		"user_id", updated.UserID,
	)

	return updated, nil
}

// SoftDelete removes the entry from all default-scoped reads. The row stays
// in storage with deleted_at set; its interval no longer blocks new entries.
func (s *timeEntryService) SoftDelete(ctx context.Context, tenantID, id string) error {
	existing, err := s.entries.GetByID(ctx, id, tenantID)
	if err != nil {
		return err
	}

	if err := s.entries.SoftDelete(ctx, id, tenantID); err != nil {
		return err
	}

	metrics.ObserveMutation("time_entry", "delete")
	s.emitAudit("delete", tenantID, existing.UserID, id, existing, nil)
	s.logger.Info("time entry deleted",
		"id", id,
		"tenant_id", tenantID,
		"user_id", existing.UserID,
	)

	return nil
}

// Get returns one entry with display names joined in
func (s *timeEntryService) Get(ctx context.Context, tenantID, id string) (*models.TimeEntryDetailed, error) {
	return s.entries.GetByIDDetailed(ctx, id, tenantID)
}

// List returns a detailed, filtered page
func (s *timeEntryService) List(ctx context.Context, tenantID string, req *services.ListTimeEntriesRequest) (*services.TimeEntryPage, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = config.DefaultPageSize
	}
	if perPage > config.MaxPageSize {
		perPage = config.MaxPageSize
	}

	opts := repositories.ListOptions{
		Limit:     perPage,
		Offset:    (page - 1) * perPage,
		OrderBy:   req.OrderBy,
		OrderDesc: req.OrderDesc,
	}

	entries, err := s.entries.ListFilteredDetailed(ctx, tenantID, req.Filter, opts)
	if err != nil {
		return nil, err
	}

	total, err := s.entries.CountFiltered(ctx, tenantID, req.Filter)
	if err != nil {
		return nil, err
	}

	return &services.TimeEntryPage{
		Entries: entries,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// FindOverlapping exposes the conflict query to collaborators
func (s *timeEntryService) FindOverlapping(ctx context.Context, tenantID, userID string, start, end time.Time, excludeID string) ([]models.TimeEntry, error) {
	if err := checkInterval(start, end); err != nil {
		return nil, err
	}
	return s.entries.FindOverlapping(ctx, tenantID, userID, start, end, excludeID)
}

// checkReferences confirms the project exists in the tenant and the task
// belongs to that project.
func (s *timeEntryService) checkReferences(ctx context.Context, tenantID, projectID, taskID string) error {
	ok, err := s.refs.ProjectExists(ctx, projectID, tenantID)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.ReferentialError{Field: "project_id", ID: projectID}
	}

	ok, err = s.refs.TaskInProject(ctx, taskID, projectID, tenantID)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.ReferentialError{Field: "task_id", ID: taskID}
	}

	return nil
}

// emitAudit sends the event on a detached context: the mutation already
// committed, so the caller's deadline must not cut delivery short and a
// delivery failure must not reach the caller.
func (s *timeEntryService) emitAudit(action, tenantID, userID, entityID string, before, after interface{}) {
	event := repositories.AuditEvent{
		TenantID:   tenantID,
		UserID:     userID,
		Action:     action,
		EntityType: "time_entry",
		EntityID:   entityID,
		Before:     before,
		After:      after,
		OccurredAt: time.Now().UTC(),
	}
	go s.audit.Record(context.Background(), event)
}

// newEntry builds a persisted-shape entry from a validated candidate,
// assigning identifier and timestamps.
func newEntry(tenantID string, req *services.CreateTimeEntryRequest) *models.TimeEntry {
	now := time.Now().UTC()
	return &models.TimeEntry{
		ID:              uuid.NewString(),
		TenantID:        tenantID,
		UserID:          req.UserID,
		ProjectID:       req.ProjectID,
		TaskID:          req.TaskID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: models.DurationMinutes(req.StartTime, req.EndTime),
		Description:     normalizeDescription(req.Description),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// applyUpdate copies the current entry and applies only the supplied fields.
func applyUpdate(current *models.TimeEntry, req *services.UpdateTimeEntryRequest) *models.TimeEntry {
	next := *current
	if req.ProjectID != nil {
		next.ProjectID = *req.ProjectID
	}
	if req.TaskID != nil {
		next.TaskID = *req.TaskID
	}
	if req.StartTime != nil {
		next.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		next.EndTime = *req.EndTime
	}
	if req.Description != nil {
		next.Description = normalizeDescription(req.Description)
	}
	return &next
}

// validateCandidate runs the structural checks for one candidate entry.
// No I/O: this is the fail-fast phase.
func validateCandidate(req *services.CreateTimeEntryRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.TaskID, validation.Required),
		validation.Field(&req.StartTime, validation.Required),
		validation.Field(&req.EndTime, validation.Required),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return checkInterval(req.StartTime, req.EndTime)
}

// validateUpdate checks the supplied fields of a partial update.
func validateUpdate(req *services.UpdateTimeEntryRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	if req.ProjectID == nil && req.TaskID == nil && req.StartTime == nil && req.EndTime == nil && req.Description == nil {
		return &domain.ValidationError{Message: "no fields to update"}
	}
	return nil
}

// checkInterval enforces the half-open interval shape: strictly positive
// length, bounded above.
func checkInterval(start, end time.Time) error {
	if !end.After(start) {
		return &domain.ValidationError{Message: "end_time must be after start_time"}
	}
	if end.Sub(start) > config.MaxEntryDurationHours*time.Hour {
		return &domain.ValidationError{Message: fmt.Sprintf("entry exceeds %d hours", config.MaxEntryDurationHours)}
	}
	return nil
}

// normalizeDescription trims and folds empty to absent.
func normalizeDescription(d *string) *string {
	if d == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*d)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// overlapConflict builds the conflict error for a non-empty conflict set.
// The caller gets a generic conflict with the first conflicting id, not an
// enumeration of someone's calendar.
func overlapConflict(conflicts []models.TimeEntry) error {
	return &domain.ConflictError{
		Message:      "time entry overlaps an existing entry",
		ResourceType: "time_entry",
		ResourceID:   conflicts[0].ID,
	}
}

func isConflict(err error) bool {
	var conflict *domain.ConflictError
	return errors.As(err, &conflict)
}
