package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"timevault/internal/config"
	"timevault/internal/domain"
	"timevault/internal/domain/models"
	"timevault/internal/domain/repositories"
)

// PostgresTimeEntryRepository implements the TimeEntryRepository interface
type PostgresTimeEntryRepository struct {
	*tenantScoped[models.TimeEntry]
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(config *RepositoryConfig) repositories.TimeEntryRepository {
	return &PostgresTimeEntryRepository{
		tenantScoped: newTenantScoped(config.Pool, mapping[models.TimeEntry]{
			table:   config.Tables.TimeEntries,
			entity:  "time entry",
			columns: "id, tenant_id, user_id, project_id, task_id, start_time, end_time, duration_minutes, description, created_at, updated_at, deleted_at",
			scan:    scanTimeEntry,
			sortable: map[string]string{
				"start_time": "start_time",
				"end_time":   "end_time",
				"duration":   "duration_minutes",
				"created_at": "created_at",
				"updated_at": "updated_at",
			},
			defaultSort: "start_time",
			softDelete:  true,
		}),
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanTimeEntry(row pgx.Row) (*models.TimeEntry, error) {
	var e models.TimeEntry
	err := row.Scan(
		&e.ID,
		&e.TenantID,
		&e.UserID,
		&e.ProjectID,
		&e.TaskID,
		&e.StartTime,
		&e.EndTime,
		&e.DurationMinutes,
		&e.Description,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanTimeEntryDetailed(row pgx.Row) (*models.TimeEntryDetailed, error) {
	var e models.TimeEntryDetailed
	err := row.Scan(
		&e.ID,
		&e.TenantID,
		&e.UserID,
		&e.ProjectID,
		&e.TaskID,
		&e.StartTime,
		&e.EndTime,
		&e.DurationMinutes,
		&e.Description,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.DeletedAt,
		&e.ProjectName,
		&e.TaskName,
		&e.UserName,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// referentialFromFK maps a foreign key violation to the offending field.
func referentialFromFK(err error, entry *models.TimeEntry) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "task") {
		return &domain.ReferentialError{Field: "task_id", ID: entry.TaskID}
	}
	return &domain.ReferentialError{Field: "project_id", ID: entry.ProjectID}
}

// Create persists a new time entry. The GiST exclusion constraint on the
// interval range is the last line of defense behind the advisory-lock write
// path; a violation surfaces as ConflictError.
func (r *PostgresTimeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry) error {
	if entry.ID == "" || entry.TenantID == "" || entry.UserID == "" {
		return &domain.ValidationError{Message: "time entry requires id, tenant_id and user_id"}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, tenant_id, user_id, project_id, task_id, start_time, end_time, duration_minutes, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.tables.TimeEntries)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		entry.ID,
		entry.TenantID,
		entry.UserID,
		entry.ProjectID,
		entry.TaskID,
		entry.StartTime,
		entry.EndTime,
		entry.DurationMinutes,
		entry.Description,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	if err != nil {
		if IsPgExclusionError(err) {
			return &domain.ConflictError{
				Message:      "time entry overlaps an existing entry",
				ResourceType: "time entry",
			}
		}
		if IsPgForeignKeyError(err) {
			return referentialFromFK(err, entry)
		}
		return storageError("create time entry", err)
	}

	return nil
}

// Update writes the entry's mutable fields, scoped to the active row
func (r *PostgresTimeEntryRepository) Update(ctx context.Context, entry *models.TimeEntry) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET project_id = $1, task_id = $2, start_time = $3, end_time = $4,
		    duration_minutes = $5, description = $6, updated_at = $7
		WHERE id = $8 AND tenant_id = $9 AND deleted_at IS NULL
	`, r.tables.TimeEntries)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		entry.ProjectID,
		entry.TaskID,
		entry.StartTime,
		entry.EndTime,
		entry.DurationMinutes,
		entry.Description,
		entry.UpdatedAt,
		entry.ID,
		entry.TenantID,
	)
	if err != nil {
		if IsPgExclusionError(err) {
			return &domain.ConflictError{
				Message:      "time entry overlaps an existing entry",
				ResourceType: "time entry",
			}
		}
		if IsPgForeignKeyError(err) {
			return referentialFromFK(err, entry)
		}
		return storageError("update time entry", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{Resource: "time entry", ID: entry.ID}
	}

	return nil
}

// filterClauses builds the WHERE predicates for a filtered listing. prefix
// qualifies column references in joined queries ("e."). From/To select
// entries whose interval intersects [From, To).
func filterClauses(prefix, tenantID string, f repositories.TimeEntryFilter) ([]string, []interface{}) {
	clauses := []string{prefix + "tenant_id = $1", prefix + "deleted_at IS NULL"}
	args := []interface{}{tenantID}

	add := func(format string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(prefix+format, len(args)))
	}

	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.ProjectID != nil {
		add("project_id = $%d", *f.ProjectID)
	}
	if f.TaskID != nil {
		add("task_id = $%d", *f.TaskID)
	}
	if f.From != nil {
		add("end_time > $%d", *f.From)
	}
	if f.To != nil {
		add("start_time < $%d", *f.To)
	}

	return clauses, args
}

func (r *PostgresTimeEntryRepository) pageClause(opts repositories.ListOptions) string {
	limit := opts.Limit
	if limit <= 0 {
		limit = config.DefaultPageSize
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, opts.Offset)
}

// ListFiltered retrieves active entries matching the filter, paginated
func (r *PostgresTimeEntryRepository) ListFiltered(ctx context.Context, tenantID string, filter repositories.TimeEntryFilter, opts repositories.ListOptions) ([]models.TimeEntry, error) {
	clauses, args := filterClauses("", tenantID, filter)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s%s%s
	`, r.m.columns, r.tables.TimeEntries, strings.Join(clauses, " AND "), r.orderClause(opts), r.pageClause(opts))

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("list time entries", err)
	}
	defer rows.Close()

	var entries []models.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, storageError("scan time entry", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate time entries", err)
	}

	if entries == nil {
		entries = []models.TimeEntry{}
	}

	return entries, nil
}

// CountFiltered returns the total matching the filter, ignoring pagination
func (r *PostgresTimeEntryRepository) CountFiltered(ctx context.Context, tenantID string, filter repositories.TimeEntryFilter) (int64, error) {
	clauses, args := filterClauses("", tenantID, filter)

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE %s
	`, r.tables.TimeEntries, strings.Join(clauses, " AND "))

	var count int64
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, storageError("count time entries", err)
	}

	return count, nil
}

const detailedColumns = `e.id, e.tenant_id, e.user_id, e.project_id, e.task_id,
		e.start_time, e.end_time, e.duration_minutes, e.description,
		e.created_at, e.updated_at, e.deleted_at,
		p.name AS project_name, t.name AS task_name,
		COALESCE(u.display_name, e.user_id) AS user_name`

// detailedFrom joins display names onto the entry rows. Joins deliberately
// ignore the soft-delete state of project/task: a deleted task must not hide
// the history booked against it.
func (r *PostgresTimeEntryRepository) detailedFrom() string {
	return fmt.Sprintf(`
		FROM %s e
		JOIN %s p ON p.id = e.project_id
		JOIN %s t ON t.id = e.task_id
		LEFT JOIN %s u ON u.id = e.user_id
	`, r.tables.TimeEntries, r.tables.Projects, r.tables.Tasks, r.tables.Users)
}

// detailedOrderClause qualifies the sort column for the joined query.
func (r *PostgresTimeEntryRepository) detailedOrderClause(opts repositories.ListOptions) string {
	column, ok := r.m.sortable[opts.OrderBy]
	if !ok {
		column = r.m.defaultSort
	}
	direction := "ASC"
	if opts.OrderDesc {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY e.%s %s", column, direction)
}

// GetByIDDetailed returns one active entry with display names joined in
func (r *PostgresTimeEntryRepository) GetByIDDetailed(ctx context.Context, id, tenantID string) (*models.TimeEntryDetailed, error) {
	query := fmt.Sprintf(`
		SELECT %s%s
		WHERE e.id = $1 AND e.tenant_id = $2 AND e.deleted_at IS NULL
	`, detailedColumns, r.detailedFrom())

	executor := GetExecutor(ctx, r.pool)
	entry, err := scanTimeEntryDetailed(executor.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Resource: "time entry", ID: id}
		}
		return nil, storageError("get time entry detail", err)
	}

	return entry, nil
}

// ListFilteredDetailed is ListFiltered with display names joined in
func (r *PostgresTimeEntryRepository) ListFilteredDetailed(ctx context.Context, tenantID string, filter repositories.TimeEntryFilter, opts repositories.ListOptions) ([]models.TimeEntryDetailed, error) {
	clauses, args := filterClauses("e.", tenantID, filter)

	query := fmt.Sprintf(`
		SELECT %s%s
		WHERE %s%s%s
	`, detailedColumns, r.detailedFrom(), strings.Join(clauses, " AND "), r.detailedOrderClause(opts), r.pageClause(opts))

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("list time entry details", err)
	}
	defer rows.Close()

	var entries []models.TimeEntryDetailed
	for rows.Next() {
		entry, err := scanTimeEntryDetailed(rows)
		if err != nil {
			return nil, storageError("scan time entry detail", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate time entry details", err)
	}

	if entries == nil {
		entries = []models.TimeEntryDetailed{}
	}

	return entries, nil
}

// FindOverlapping returns every active entry for the user whose stored
// half-open interval overlaps [start, end). Two intervals overlap iff
// s1 < e2 AND e1 > s2; adjacent intervals do not. excludeID removes one
// entry from consideration when an update validates against its own prior
// state.
func (r *PostgresTimeEntryRepository) FindOverlapping(ctx context.Context, tenantID, userID string, start, end time.Time, excludeID string) ([]models.TimeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE tenant_id = $1 AND user_id = $2 AND deleted_at IS NULL
		  AND start_time < $4 AND end_time > $3
		  AND ($5 = '' OR id <> $5)
		ORDER BY start_time ASC
	`, r.m.columns, r.tables.TimeEntries)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tenantID, userID, start, end, excludeID)
	if err != nil {
		return nil, storageError("find overlapping entries", err)
	}
	defer rows.Close()

	var entries []models.TimeEntry
	for rows.Next() {
		entry, err := scanTimeEntry(rows)
		if err != nil {
			return nil, storageError("scan time entry", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate overlapping entries", err)
	}

	if entries == nil {
		entries = []models.TimeEntry{}
	}

	return entries, nil
}
