package repositories

import (
	"context"
	"time"

	"timevault/internal/domain/models"
)

// TimeEntryFilter narrows filtered listings. Nil fields are not applied.
// From/To filter on interval intersection with [From, To).
type TimeEntryFilter struct {
	UserID    *string
	ProjectID *string
	TaskID    *string
	From      *time.Time
	To        *time.Time
}

// TimeEntryRepository manages time entry persistence and the overlap query.
type TimeEntryRepository interface {
	TenantScoped[models.TimeEntry]

	Create(ctx context.Context, entry *models.TimeEntry) error
	Update(ctx context.Context, entry *models.TimeEntry) error

	// ListFiltered returns active entries matching the filter, paginated.
	ListFiltered(ctx context.Context, tenantID string, filter TimeEntryFilter, opts ListOptions) ([]models.TimeEntry, error)

	// CountFiltered returns the total number of active entries matching the
	// filter, ignoring pagination.
	CountFiltered(ctx context.Context, tenantID string, filter TimeEntryFilter) (int64, error)

	// ListFilteredDetailed is ListFiltered with project/task/user display
	// names joined in.
	ListFilteredDetailed(ctx context.Context, tenantID string, filter TimeEntryFilter, opts ListOptions) ([]models.TimeEntryDetailed, error)

	// GetByIDDetailed returns one active entry with display names joined in.
	GetByIDDetailed(ctx context.Context, id, tenantID string) (*models.TimeEntryDetailed, error)

	// FindOverlapping returns every active entry for the user whose stored
	// interval overlaps the half-open interval [start, end). excludeID, when
	// non-empty, removes one entry from consideration (an update validating
	// against its own prior state). Returns all conflicts, not just the
	// first; an empty slice means no conflict.
	FindOverlapping(ctx context.Context, tenantID, userID string, start, end time.Time, excludeID string) ([]models.TimeEntry, error)
}
