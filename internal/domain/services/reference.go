package services

import "context"

// ReferenceChecker confirms foreign references exist and belong to the
// tenant before an entry is accepted. Supplied by the catalog repositories.
type ReferenceChecker interface {
	ProjectExists(ctx context.Context, projectID, tenantID string) (bool, error)
	TaskInProject(ctx context.Context, taskID, projectID, tenantID string) (bool, error)
}
