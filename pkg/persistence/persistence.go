// Package persistence provides the storage abstraction for workflow
// definitions.
package persistence

import (
	"context"
	"errors"

	"github.com/vendura/automation/pkg/models"
)

// ErrWorkflowNotFound is returned when no workflow has the given ID.
var ErrWorkflowNotFound = errors.New("workflow not found")

// IsWorkflowNotFound reports whether err is a workflow-not-found error.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// Persistence is the abstract workflow store. Execution records live in the
// ledger, not here.
type Persistence interface {
	Workflows(ctx context.Context) ([]*models.Workflow, error)
	WorkflowByID(ctx context.Context, id string) (*models.Workflow, error)
	ActiveWorkflows(ctx context.Context) ([]*models.Workflow, error)
	SaveWorkflow(ctx context.Context, workflow *models.Workflow) error
	DeleteWorkflow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
