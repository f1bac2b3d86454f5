package repositories

import "context"

// ListOptions controls pagination and ordering for tenant-scoped listings.
// OrderBy is validated against a per-entity allow-list of column names;
// unknown values fall back to the entity's default sort.
type ListOptions struct {
	Limit          int
	Offset         int
	OrderBy        string
	OrderDesc      bool
	IncludeDeleted bool
}

// TenantScoped is the generic data-access contract every tenant-owned entity
// is built on. Implementations must scope every read and write to
// (id, tenant_id) and hide soft-deleted rows by default. A row in another
// tenant, or soft-deleted, is indistinguishable from an absent row.
type TenantScoped[T any] interface {
	// GetByID returns the active entity, or NotFoundError.
	GetByID(ctx context.Context, id, tenantID string) (*T, error)

	// ListByTenant returns an ordered page. Empty slice, never an error,
	// when nothing matches.
	ListByTenant(ctx context.Context, tenantID string, opts ListOptions) ([]T, error)

	// Exists reports whether an active row with this id exists in the tenant.
	Exists(ctx context.Context, id, tenantID string) (bool, error)

	// SoftDelete sets deleted_at once. NotFoundError when the row is
	// missing, already deleted, or in another tenant.
	SoftDelete(ctx context.Context, id, tenantID string) error

	// HardDelete removes the row irreversibly. Reserved for entities
	// without a soft-delete column; same not-found semantics.
	HardDelete(ctx context.Context, id, tenantID string) error
}
