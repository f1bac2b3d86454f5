package service

import (
	"context"

	"timevault/internal/domain/repositories"
	"timevault/internal/domain/services"
)

// referenceChecker implements the ReferenceChecker interface on top of the
// catalog repositories. Both checks are tenant-scoped, so a reference to
// another tenant's project or task reads as nonexistent.
type referenceChecker struct {
	projects repositories.ProjectRepository
	tasks    repositories.TaskRepository
}

// NewReferenceChecker creates a reference checker backed by the catalog
// repositories.
func NewReferenceChecker(projects repositories.ProjectRepository, tasks repositories.TaskRepository) services.ReferenceChecker {
	return &referenceChecker{projects: projects, tasks: tasks}
}

func (c *referenceChecker) ProjectExists(ctx context.Context, projectID, tenantID string) (bool, error) {
	return c.projects.Exists(ctx, projectID, tenantID)
}

func (c *referenceChecker) TaskInProject(ctx context.Context, taskID, projectID, tenantID string) (bool, error) {
	return c.tasks.ExistsInProject(ctx, taskID, projectID, tenantID)
}
