package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"timevault/internal/config"
	"timevault/internal/domain"
	"timevault/internal/domain/services"
)

func batchReq(hours ...int) []services.CreateTimeEntryRequest {
	reqs := make([]services.CreateTimeEntryRequest, 0, len(hours))
	for _, h := range hours {
		reqs = append(reqs, services.CreateTimeEntryRequest{
			ProjectID: "proj-1",
			TaskID:    "task-1",
			StartTime: entryAt(h, 0),
			EndTime:   entryAt(h+1, 0),
		})
	}
	return reqs
}

func TestBatchCreate(t *testing.T) {
	svc, repo := newTestEntryService()

	created, err := svc.CreateBatch(context.Background(), testTenant, testUser, batchReq(9, 10, 13))
	if err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	if len(created) != 3 {
		t.Fatalf("created %d entries, want 3", len(created))
	}
	if repo.count() != 3 {
		t.Errorf("repo has %d entries, want %d", repo.count(), 3)
	}
	for i, entry := range created {
		if entry.UserID != testUser {
			t.Errorf("entry %d UserID = %s, want batch owner", i, entry.UserID)
		}
		if entry.DurationMinutes != 60 {
			t.Errorf("entry %d DurationMinutes = %d, want 60", i, entry.DurationMinutes)
		}
	}
}

func TestBatchAtomicOnIntraBatchOverlap(t *testing.T) {
	svc, repo := newTestEntryService()

	reqs := batchReq(9, 11)
	// Third candidate overlaps the first
	reqs = append(reqs, services.CreateTimeEntryRequest{
		ProjectID: "proj-1",
		TaskID:    "task-1",
		StartTime: entryAt(9, 30),
		EndTime:   entryAt(10, 30),
	})

	_, err := svc.CreateBatch(context.Background(), testTenant, testUser, reqs)

	var itemErr *domain.BatchItemError
	if !errors.As(err, &itemErr) {
		t.Fatalf("CreateBatch() error = %v, want batch item error", err)
	}
	if itemErr.Index != 2 {
		t.Errorf("Index = %d, want 2", itemErr.Index)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("error does not unwrap to conflict: %v", err)
	}
	if repo.count() != 0 {
		t.Errorf("repo has %d entries after failed batch, want 0", repo.count())
	}
}

func TestBatchRejectsPersistedOverlap(t *testing.T) {
	svc, repo := newTestEntryService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, testTenant, createReq(entryAt(11, 0), entryAt(12, 0))); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Second candidate collides with the persisted entry
	_, err := svc.CreateBatch(ctx, testTenant, testUser, batchReq(9, 11, 14))

	var itemErr *domain.BatchItemError
	if !errors.As(err, &itemErr) {
		t.Fatalf("CreateBatch() error = %v, want batch item error", err)
	}
	if itemErr.Index != 1 {
		t.Errorf("Index = %d, want 1", itemErr.Index)
	}
	if repo.count() != 1 {
		t.Errorf("repo has %d entries, want only the pre-existing one", repo.count())
	}
}

func TestBatchStructuralFailureReportsIndex(t *testing.T) {
	svc, repo := newTestEntryService()

	reqs := batchReq(9, 10)
	reqs = append(reqs, services.CreateTimeEntryRequest{
		ProjectID: "proj-1",
		TaskID:    "task-1",
		StartTime: entryAt(13, 0),
		EndTime:   entryAt(12, 0), // inverted bounds
	})

	_, err := svc.CreateBatch(context.Background(), testTenant, testUser, reqs)

	var itemErr *domain.BatchItemError
	if !errors.As(err, &itemErr) {
		t.Fatalf("CreateBatch() error = %v, want batch item error", err)
	}
	if itemErr.Index != 2 {
		t.Errorf("Index = %d, want 2", itemErr.Index)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error does not unwrap to validation: %v", err)
	}
	if repo.count() != 0 {
		t.Errorf("repo has %d entries, want 0", repo.count())
	}
}

func TestBatchRejectsForeignUser(t *testing.T) {
	svc, _ := newTestEntryService()

	reqs := batchReq(9)
	reqs[0].UserID = "someone-else"

	_, err := svc.CreateBatch(context.Background(), testTenant, testUser, reqs)

	var itemErr *domain.BatchItemError
	if !errors.As(err, &itemErr) {
		t.Fatalf("CreateBatch() error = %v, want batch item error", err)
	}
	if itemErr.Index != 0 {
		t.Errorf("Index = %d, want 0", itemErr.Index)
	}
}

func TestBatchSizeLimits(t *testing.T) {
	svc, _ := newTestEntryService()
	ctx := context.Background()

	if _, err := svc.CreateBatch(ctx, testTenant, testUser, nil); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty batch error = %v, want validation error", err)
	}

	oversized := make([]services.CreateTimeEntryRequest, config.MaxBatchSize+1)
	for i := range oversized {
		oversized[i] = services.CreateTimeEntryRequest{
			ProjectID: "proj-1",
			TaskID:    "task-1",
			StartTime: entryAt(0, i),
			EndTime:   entryAt(0, i).Add(30 * time.Second),
		}
	}
	if _, err := svc.CreateBatch(ctx, testTenant, testUser, oversized); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("oversized batch error = %v, want validation error", err)
	}
}

func TestBatchAdjacentEntriesAccepted(t *testing.T) {
	svc, _ := newTestEntryService()

	reqs := []services.CreateTimeEntryRequest{
		{ProjectID: "proj-1", TaskID: "task-1", StartTime: entryAt(9, 0), EndTime: entryAt(10, 0)},
		{ProjectID: "proj-1", TaskID: "task-1", StartTime: entryAt(10, 0), EndTime: entryAt(11, 0)},
	}

	created, err := svc.CreateBatch(context.Background(), testTenant, testUser, reqs)
	if err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}
	if len(created) != 2 {
		t.Errorf("created %d entries, want 2", len(created))
	}
}
