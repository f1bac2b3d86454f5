package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"timevault/internal/config"
	"timevault/internal/domain"
	"timevault/internal/domain/services"
)

const (
	testTenant = "tenant-1"
	testUser   = "user-1"
)

func entryAt(hour, min int) time.Time {
	return time.Date(2026, 3, 10, hour, min, 0, 0, time.UTC)
}

func createReq(start, end time.Time) *services.CreateTimeEntryRequest {
	return &services.CreateTimeEntryRequest{
		UserID:    testUser,
		ProjectID: "proj-1",
		TaskID:    "task-1",
		StartTime: start,
		EndTime:   end,
	}
}

func TestCreateTimeEntry(t *testing.T) {
	svc, _ := newTestEntryService()

	desc := "  morning standup  "
	req := createReq(entryAt(9, 0), entryAt(10, 30))
	req.Description = &desc

	entry, err := svc.Create(context.Background(), testTenant, req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if entry.ID == "" {
		t.Error("expected generated id")
	}
	if entry.DurationMinutes != 90 {
		t.Errorf("DurationMinutes = %d, want 90", entry.DurationMinutes)
	}
	if entry.Description == nil || *entry.Description != "morning standup" {
		t.Errorf("Description = %v, want trimmed value", entry.Description)
	}
	if entry.TenantID != testTenant {
		t.Errorf("TenantID = %s, want %s", entry.TenantID, testTenant)
	}
}

func TestCreateRejectsInvalidInterval(t *testing.T) {
	svc, repo := newTestEntryService()

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"zero length", entryAt(9, 0), entryAt(9, 0)},
		{"end before start", entryAt(10, 0), entryAt(9, 0)},
		{"exceeds max duration", entryAt(0, 0), entryAt(0, 0).Add(25 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), testTenant, createReq(tt.start, tt.end))
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("Create() error = %v, want validation error", err)
			}
		})
	}

	if repo.count() != 0 {
		t.Errorf("repo has %d entries, want 0", repo.count())
	}
}

func TestCreateRejectsUnknownReferences(t *testing.T) {
	svc, _ := newTestEntryService()

	req := createReq(entryAt(9, 0), entryAt(10, 0))
	req.ProjectID = "proj-missing"
	if _, err := svc.Create(context.Background(), testTenant, req); !errors.Is(err, domain.ErrReference) {
		t.Errorf("unknown project: error = %v, want referential error", err)
	}

	// task exists but under a different project
	req = createReq(entryAt(9, 0), entryAt(10, 0))
	req.TaskID = "task-2"
	if _, err := svc.Create(context.Background(), testTenant, req); !errors.Is(err, domain.ErrReference) {
		t.Errorf("foreign task: error = %v, want referential error", err)
	}
}

func TestCreateOverlapConflict(t *testing.T) {
	svc, _ := newTestEntryService()
	ctx := context.Background()

	first, err := svc.Create(ctx, testTenant, createReq(entryAt(9, 0), entryAt(10, 0)))
	if err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	_, err = svc.Create(ctx, testTenant, createReq(entryAt(9, 30), entryAt(10, 30)))
	var conflict *domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Create() error = %v, want conflict", err)
	}
	if conflict.ResourceID != first.ID {
		t.Errorf("conflict ResourceID = %s, want %s", conflict.ResourceID, first.ID)
	}
}

func TestCreateDuplicateIntervalRejected(t *testing.T) {
	svc, _ := newTestEntryService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, testTenant, createReq(entryAt(9, 0), entryAt(10, 0))); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, testTenant, createReq(entryAt(9, 0), entryAt(10, 0))); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate Create() error = %v, want conflict", err)
	}
}

func TestCreateAdjacentEntriesAllowed(t *testing.T) {
	svc, repo := newTestEntryService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, testTenant, createReq(entryAt(9, 0), entryAt(10, 0))); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, testTenant, createReq(entryAt(10, 0), entryAt(11, 0))); err != nil {
		t.Errorf("adjacent Create() error = %v, want nil", err)
	}

	if repo.count() != 2 {
		t.Errorf("repo has %d entries, want 2", repo.count())
	}
}

func TestCreateSameIntervalDifferentUsers(t *testing.T) {
	svc, _ := newTestEntryService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, testTenant, createReq(entryAt(9, 0), entryAt(10, 0))); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	req := createReq(entryAt(9, 0), entryAt(10, 0))
	req.UserID = "user-2"
	if _, err := svc.Create(ctx, testTenant, req); err != nil {
		t.Errorf("other user Create() error = %v, want nil", err)
	}
}

// Two concurrent creates for the same user and interval must resolve to
// exactly one success and one conflict, never two of either.
func TestConcurrentCreateOneWins(t *testing.T) {
	svc, repo := newTestEntryService()

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Create(context.Background(), testTenant, createReq(entryAt(14, 0), entryAt(15, 0)))
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 || conflicts != 1 {
		t.Errorf("got %d successes and %d conflicts, want 1 and 1", successes, conflicts)
	}
	if repo.count() != 1 {
		t.Errorf("repo has %d entries, want 1", repo.count())
	}
}

func TestUpdateRecomputesDuration(t *testing.T) {
	svc, _ := newTestEntryService()
	ctx := context.Background()

	entry, err := svc.Create(ctx, testTenant, createReq(entryAt(9, 0), entryAt(10, 0)))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Extending into the slot the entry itself occupies must not conflict
	newEnd := entryAt(11, 30)
	updated, err := svc.Update(ctx, testTenant, entry.ID, &services.UpdateTimeEntryRequest{EndTime: &newEnd})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.DurationMinutes != 150 {
		t.Errorf("DurationMinutes = %d, want 150", updated.DurationMinutes)
	}
	if !updated.EndTime.Equal(newEnd) {
		t.Errorf("EndTime = %v, want %v", updated.EndTime, newEnd)
	}
}

func TestUpdateConflictsWithOtherEntry(t *testing.T) {
	svc, _ := newTestEntryService()
	ctx := context.Background()

	entry, err := svc.Create(ctx, testTenant, createReq(entryAt(9, 0), entryAt(10, 0)))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, testTenant, createReq(entryAt(10, 0), entryAt(11, 0))); err != nil {
		t.Fatalf("second Create() error = %v", err)
	}

	newEnd := entryAt(10, 30)
	_, err = svc.Update(ctx, testTenant, entry.ID, &services.UpdateTimeEntryRequest{EndTime: &newEnd})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("Update() error = %v, want conflict", err)
	}
}

func TestUpdateRequiresFields(t *testing.T) {
	svc, _ := newTestEntryService()

	_, err := svc.Update(context.Background(), testTenant, "some-id", &services.UpdateTimeEntryRequest{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Update() error = %v, want validation error", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestEntryService()

	desc := "note"
	_, err := svc.Update(context.Background(), testTenant, "missing", &services.UpdateTimeEntryRequest{Description: &desc})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Update() error = %v, want not found", err)
	}
}

func TestSoftDeleteFreesInterval(t *testing.T) {
	svc, _ := newTestEntryService()
	ctx := context.Background()

	entry, err := svc.Create(ctx, testTenant, createReq(entryAt(9, 0), entryAt(10, 0)))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.SoftDelete(ctx, testTenant, entry.ID); err != nil {
		t.Fatalf("SoftDelete() error = %v", err)
	}

	// The deleted entry is gone from reads
	if _, err := svc.Get(ctx, testTenant, entry.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want not found", err)
	}

	// Its interval no longer blocks a new entry
	if _, err := svc.Create(ctx, testTenant, createReq(entryAt(9, 0), entryAt(10, 0))); err != nil {
		t.Errorf("Create() over deleted interval error = %v, want nil", err)
	}

	// Deleting twice reports not found
	if err := svc.SoftDelete(ctx, testTenant, entry.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second SoftDelete() error = %v, want not found", err)
	}
}

func TestSoftDeleteCrossTenantIndistinguishable(t *testing.T) {
	svc, _ := newTestEntryService()
	ctx := context.Background()

	entry, err := svc.Create(ctx, testTenant, createReq(entryAt(9, 0), entryAt(10, 0)))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err = svc.SoftDelete(ctx, "tenant-other", entry.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-tenant SoftDelete() error = %v, want not found", err)
	}
}

func TestListClampsPagination(t *testing.T) {
	svc, _ := newTestEntryService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, testTenant, createReq(entryAt(9, 0), entryAt(10, 0))); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	page, err := svc.List(ctx, testTenant, &services.ListTimeEntriesRequest{Page: 0, PerPage: 100000})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if page.Page != 1 {
		t.Errorf("Page = %d, want 1", page.Page)
	}
	if page.PerPage != config.MaxPageSize {
		t.Errorf("PerPage = %d, want %d", page.PerPage, config.MaxPageSize)
	}
	if page.Total != 1 {
		t.Errorf("Total = %d, want 1", page.Total)
	}
}

func TestFindOverlappingValidatesInterval(t *testing.T) {
	svc, _ := newTestEntryService()

	_, err := svc.FindOverlapping(context.Background(), testTenant, testUser, entryAt(10, 0), entryAt(9, 0), "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("FindOverlapping() error = %v, want validation error", err)
	}
}
