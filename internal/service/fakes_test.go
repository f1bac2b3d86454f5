package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"timevault/internal/domain"
	"timevault/internal/domain/models"
	"timevault/internal/domain/repositories"
	"timevault/internal/domain/services"
)

// fakeEntryRepo is an in-memory TimeEntryRepository. It reproduces the
// contract the service relies on: tenant scoping, soft-delete filtering and
// the half-open overlap query.
type fakeEntryRepo struct {
	mu      sync.Mutex
	entries map[string]*models.TimeEntry
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[string]*models.TimeEntry)}
}

func (r *fakeEntryRepo) active(e *models.TimeEntry) bool {
	return e.DeletedAt == nil
}

func (r *fakeEntryRepo) GetByID(ctx context.Context, id, tenantID string) (*models.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.TenantID != tenantID || !r.active(e) {
		return nil, &domain.NotFoundError{Resource: "time_entry", ID: id}
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEntryRepo) ListByTenant(ctx context.Context, tenantID string, opts repositories.ListOptions) ([]models.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []models.TimeEntry{}
	for _, e := range r.entries {
		if e.TenantID == tenantID && (opts.IncludeDeleted || r.active(e)) {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (r *fakeEntryRepo) Exists(ctx context.Context, id, tenantID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	return ok && e.TenantID == tenantID && r.active(e), nil
}

func (r *fakeEntryRepo) SoftDelete(ctx context.Context, id, tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.TenantID != tenantID || !r.active(e) {
		return &domain.NotFoundError{Resource: "time_entry", ID: id}
	}
	now := time.Now().UTC()
	e.DeletedAt = &now
	return nil
}

func (r *fakeEntryRepo) HardDelete(ctx context.Context, id, tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.TenantID != tenantID {
		return &domain.NotFoundError{Resource: "time_entry", ID: id}
	}
	delete(r.entries, id)
	return nil
}

func (r *fakeEntryRepo) Create(ctx context.Context, entry *models.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *fakeEntryRepo) Update(ctx context.Context, entry *models.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[entry.ID]
	if !ok || existing.TenantID != entry.TenantID || !r.active(existing) {
		return &domain.NotFoundError{Resource: "time_entry", ID: entry.ID}
	}
	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *fakeEntryRepo) matches(e *models.TimeEntry, tenantID string, f repositories.TimeEntryFilter) bool {
	if e.TenantID != tenantID || !r.active(e) {
		return false
	}
	if f.UserID != nil && e.UserID != *f.UserID {
		return false
	}
	if f.ProjectID != nil && e.ProjectID != *f.ProjectID {
		return false
	}
	if f.TaskID != nil && e.TaskID != *f.TaskID {
		return false
	}
	if f.From != nil && !e.EndTime.After(*f.From) {
		return false
	}
	if f.To != nil && !e.StartTime.Before(*f.To) {
		return false
	}
	return true
}

func (r *fakeEntryRepo) ListFiltered(ctx context.Context, tenantID string, f repositories.TimeEntryFilter, opts repositories.ListOptions) ([]models.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []models.TimeEntry{}
	for _, e := range r.entries {
		if r.matches(e, tenantID, f) {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (r *fakeEntryRepo) CountFiltered(ctx context.Context, tenantID string, f repositories.TimeEntryFilter) (int64, error) {
	entries, _ := r.ListFiltered(ctx, tenantID, f, repositories.ListOptions{})
	return int64(len(entries)), nil
}

func (r *fakeEntryRepo) ListFilteredDetailed(ctx context.Context, tenantID string, f repositories.TimeEntryFilter, opts repositories.ListOptions) ([]models.TimeEntryDetailed, error) {
	entries, _ := r.ListFiltered(ctx, tenantID, f, opts)
	detailed := []models.TimeEntryDetailed{}
	for _, e := range entries {
		detailed = append(detailed, models.TimeEntryDetailed{TimeEntry: e})
	}
	return detailed, nil
}

func (r *fakeEntryRepo) GetByIDDetailed(ctx context.Context, id, tenantID string) (*models.TimeEntryDetailed, error) {
	e, err := r.GetByID(ctx, id, tenantID)
	if err != nil {
		return nil, err
	}
	return &models.TimeEntryDetailed{TimeEntry: *e}, nil
}

func (r *fakeEntryRepo) FindOverlapping(ctx context.Context, tenantID, userID string, start, end time.Time, excludeID string) ([]models.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []models.TimeEntry{}
	for _, e := range r.entries {
		if e.TenantID != tenantID || e.UserID != userID || !r.active(e) {
			continue
		}
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		if models.Overlaps(e.StartTime, e.EndTime, start, end) {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (r *fakeEntryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if r.active(e) {
			n++
		}
	}
	return n
}

// fakeTxManager serializes scoped transactions per (tenant, user) the way
// the advisory lock does in storage.
type fakeTxManager struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newFakeTxManager() *fakeTxManager {
	return &fakeTxManager{locks: make(map[string]*sync.Mutex)}
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func (m *fakeTxManager) ExecScopedTx(ctx context.Context, tenantID, userID string, fn repositories.TxFn) error {
	m.mu.Lock()
	key := tenantID + ":" + userID
	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

// fakeRefs answers reference checks from fixed sets.
type fakeRefs struct {
	projects map[string]bool   // projectID -> exists
	tasks    map[string]string // taskID -> projectID
}

func newFakeRefs() *fakeRefs {
	return &fakeRefs{
		projects: map[string]bool{"proj-1": true, "proj-2": true},
		tasks:    map[string]string{"task-1": "proj-1", "task-2": "proj-2"},
	}
}

func (r *fakeRefs) ProjectExists(ctx context.Context, projectID, tenantID string) (bool, error) {
	return r.projects[projectID], nil
}

func (r *fakeRefs) TaskInProject(ctx context.Context, taskID, projectID, tenantID string) (bool, error) {
	return r.tasks[taskID] == projectID, nil
}

// fakeAudit collects events; delivery is asynchronous so tests only inspect
// it after synchronization points, if at all.
type fakeAudit struct {
	mu     sync.Mutex
	events []repositories.AuditEvent
}

func (a *fakeAudit) Record(ctx context.Context, event repositories.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
}

func newTestEntryService() (services.TimeEntryService, *fakeEntryRepo) {
	repo := newFakeEntryRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewTimeEntryService(repo, newFakeRefs(), newFakeTxManager(), &fakeAudit{}, logger)
	return svc, repo
}
