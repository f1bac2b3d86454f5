package postgres

import (
	"testing"
	"time"

	"timevault/internal/domain/repositories"
)

func TestFilterClauses(t *testing.T) {
	userID := "user-1"
	projectID := "proj-1"
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	clauses, args := filterClauses("", "tenant-1", repositories.TimeEntryFilter{
		UserID:    &userID,
		ProjectID: &projectID,
		From:      &from,
		To:        &to,
	})

	want := []string{
		"tenant_id = $1",
		"deleted_at IS NULL",
		"user_id = $2",
		"project_id = $3",
		"end_time > $4",
		"start_time < $5",
	}
	if len(clauses) != len(want) {
		t.Fatalf("got %d clauses, want %d: %v", len(clauses), len(want), clauses)
	}
	for i, clause := range clauses {
		if clause != want[i] {
			t.Errorf("clause %d = %q, want %q", i, clause, want[i])
		}
	}

	// tenant id plus each applied predicate, soft delete carries no arg
	if len(args) != 5 {
		t.Errorf("got %d args, want 5", len(args))
	}
}

func TestFilterClausesQualified(t *testing.T) {
	taskID := "task-1"
	clauses, args := filterClauses("e.", "tenant-1", repositories.TimeEntryFilter{
		TaskID: &taskID,
	})

	want := []string{
		"e.tenant_id = $1",
		"e.deleted_at IS NULL",
		"e.task_id = $2",
	}
	for i, clause := range clauses {
		if clause != want[i] {
			t.Errorf("clause %d = %q, want %q", i, clause, want[i])
		}
	}
	if len(args) != 2 {
		t.Errorf("got %d args, want 2", len(args))
	}
}

func TestFilterClausesEmpty(t *testing.T) {
	clauses, args := filterClauses("", "tenant-1", repositories.TimeEntryFilter{})

	if len(clauses) != 2 {
		t.Errorf("got %d clauses, want tenant and soft-delete only: %v", len(clauses), clauses)
	}
	if len(args) != 1 {
		t.Errorf("got %d args, want 1", len(args))
	}
}
