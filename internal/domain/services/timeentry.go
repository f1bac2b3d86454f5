package services

import (
	"context"
	"time"

	"timevault/internal/domain/models"
	"timevault/internal/domain/repositories"
)

// CreateTimeEntryRequest is one candidate entry. Duration is derived from
// the bounds and deliberately has no field here.
type CreateTimeEntryRequest struct {
	UserID      string    `json:"user_id"`
	ProjectID   string    `json:"project_id"`
	TaskID      string    `json:"task_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description *string   `json:"description,omitempty"`
}

// UpdateTimeEntryRequest applies only the supplied fields.
type UpdateTimeEntryRequest struct {
	ProjectID   *string    `json:"project_id,omitempty"`
	TaskID      *string    `json:"task_id,omitempty"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	Description *string    `json:"description,omitempty"`
}

// ListTimeEntriesRequest filters and paginates the detailed listing.
type ListTimeEntriesRequest struct {
	Filter    repositories.TimeEntryFilter
	Page      int // 1-based; values < 1 are treated as 1
	PerPage   int // capped at config.MaxPageSize
	OrderBy   string
	OrderDesc bool
}

// TimeEntryPage is one page of the detailed listing.
type TimeEntryPage struct {
	Entries []models.TimeEntryDetailed `json:"entries"`
	Total   int64                      `json:"total"`
	Page    int                        `json:"page"`
	PerPage int                        `json:"per_page"`
}

// TimeEntryService is the write and read surface for time entries. All
// mutations enforce the non-overlap invariant per (tenant, user) and emit
// an audit event after committing.
type TimeEntryService interface {
	// Create validates and persists one entry. Fails with ValidationError,
	// ReferentialError or ConflictError.
	Create(ctx context.Context, tenantID string, req *CreateTimeEntryRequest) (*models.TimeEntry, error)

	// CreateBatch persists up to config.MaxBatchSize entries for one user,
	// all or nothing. Any failure is reported as a BatchItemError carrying
	// the zero-based index of the failing candidate; nothing is persisted.
	CreateBatch(ctx context.Context, tenantID, userID string, reqs []CreateTimeEntryRequest) ([]models.TimeEntry, error)

	// Update applies the supplied fields, recomputes the duration whenever
	// either bound changes and re-validates overlap excluding the entry's
	// own prior state.
	Update(ctx context.Context, tenantID, id string, req *UpdateTimeEntryRequest) (*models.TimeEntry, error)

	// SoftDelete removes the entry from all default-scoped reads.
	SoftDelete(ctx context.Context, tenantID, id string) error

	// Get returns one entry with display names joined in.
	Get(ctx context.Context, tenantID, id string) (*models.TimeEntryDetailed, error)

	// List returns a detailed, filtered page.
	List(ctx context.Context, tenantID string, req *ListTimeEntriesRequest) (*TimeEntryPage, error)

	// FindOverlapping exposes the conflict query to collaborators.
	FindOverlapping(ctx context.Context, tenantID, userID string, start, end time.Time, excludeID string) ([]models.TimeEntry, error)
}
