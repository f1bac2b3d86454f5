package service

import (
	"context"
	"fmt"
	"time"

	"timevault/internal/config"
	"timevault/internal/domain"
	"timevault/internal/domain/models"
	"timevault/internal/domain/services"
	"timevault/internal/metrics"
)

// CreateBatch accepts up to config.MaxBatchSize candidates for one user and
// applies all of them or none. Validation runs in ordered phases, cheapest
// first: structural checks without I/O, then referential lookups, then the
// overlap checks and inserts inside one scoped transaction. Any failure is
// reported as a BatchItemError with the zero-based index of the failing
// candidate, and nothing is persisted.
func (s *timeEntryService) CreateBatch(ctx context.Context, tenantID, userID string, reqs []services.CreateTimeEntryRequest) ([]models.TimeEntry, error) {
	if tenantID == "" || userID == "" {
		return nil, &domain.ValidationError{Message: "tenant id and user id are required"}
	}
	if len(reqs) == 0 {
		return nil, &domain.ValidationError{Message: "batch is empty"}
	}
	if len(reqs) > config.MaxBatchSize {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("batch exceeds %d entries", config.MaxBatchSize)}
	}

	// Phase 1: structural validation, no I/O. First failure aborts.
	for i := range reqs {
		req := &reqs[i]
		if req.UserID == "" {
			req.UserID = userID
		} else if req.UserID != userID {
			return nil, &domain.BatchItemError{
				Index: i,
				Err:   &domain.ValidationError{Message: "user_id differs from the batch owner"},
			}
		}
		if err := validateCandidate(req); err != nil {
			return nil, &domain.BatchItemError{Index: i, Err: err}
		}
	}

	// Phase 2: referential validation.
	for i := range reqs {
		if err := s.checkReferences(ctx, tenantID, reqs[i].ProjectID, reqs[i].TaskID); err != nil {
			return nil, &domain.BatchItemError{Index: i, Err: err}
		}
	}

	entries := make([]*models.TimeEntry, len(reqs))
	for i := range reqs {
		entries[i] = newEntry(tenantID, &reqs[i])
	}

	// Phases 3-5 run under the owner's advisory lock so no concurrent write
	// can invalidate a passed check before the commit.
	started := time.Now()
	err := s.txManager.ExecScopedTx(ctx, tenantID, userID, func(txCtx context.Context) error {
		// Phase 3: overlap against persisted state, in submission order.
		for i, entry := range entries {
			conflicts, err := s.entries.FindOverlapping(txCtx, tenantID, userID, entry.StartTime, entry.EndTime, "")
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return &domain.BatchItemError{Index: i, Err: overlapConflict(conflicts)}
			}
		}

		// Phase 4: intra-batch overlap, each candidate against every earlier
		// one. O(n²), acceptable only because the batch size is capped; a
		// raised cap would need sort-and-sweep here.
		for i := 1; i < len(entries); i++ {
			for j := 0; j < i; j++ {
				if models.Overlaps(entries[i].StartTime, entries[i].EndTime, entries[j].StartTime, entries[j].EndTime) {
					return &domain.BatchItemError{
						Index: i,
						Err: &domain.ConflictError{
							Message:      fmt.Sprintf("overlaps entry %d of the same batch", j),
							ResourceType: "time_entry",
							ResourceID:   entries[j].ID,
						},
					}
				}
			}
		}

		// Phase 5: pure inserts, submission order. No further validation
		// here keeps the lock hold time short.
		for i, entry := range entries {
			if err := s.entries.Create(txCtx, entry); err != nil {
				if isConflict(err) {
					return &domain.BatchItemError{Index: i, Err: err}
				}
				return err
			}
		}

		return nil
	})
	metrics.ObserveCommit("batch", time.Since(started))
	if err != nil {
		if isConflict(err) {
			metrics.ObserveConflict("batch")
		}
		metrics.ObserveBatch("rejected", len(reqs))
		return nil, err
	}

	created := make([]models.TimeEntry, len(entries))
	for i, entry := range entries {
		created[i] = *entry
		s.emitAudit("create", tenantID, userID, entry.ID, nil, entry)
	}

	metrics.ObserveBatch("committed", len(reqs))
	metrics.ObserveMutation("time_entry", "batch_create")
	s.logger.Info("time entry batch committed",
		"tenant_id", tenantID,
		"user_id", userID,
		"count", len(created),
	)

	return created, nil
}
