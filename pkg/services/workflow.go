package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vendura/automation/pkg/engine"
	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/ledger"
	"github.com/vendura/automation/pkg/models"
	"github.com/vendura/automation/pkg/persistence"
	"github.com/vendura/automation/pkg/schema"
)

// allowedTransitions lists the reachable statuses per current status.
// Archived is terminal.
var allowedTransitions = map[models.WorkflowStatus][]models.WorkflowStatus{
	models.WorkflowStatusDraft:    {models.WorkflowStatusActive, models.WorkflowStatusArchived},
	models.WorkflowStatusActive:   {models.WorkflowStatusPaused, models.WorkflowStatusArchived},
	models.WorkflowStatusPaused:   {models.WorkflowStatusActive, models.WorkflowStatusArchived},
	models.WorkflowStatusArchived: {},
}

// Workflow is the management service behind the HTTP API. It owns the
// guardrails the store itself does not enforce: drafts may be saved invalid,
// but activation requires a passing validation, and archived workflows are
// read-only.
type Workflow struct {
	persistence persistence.Persistence
	validator   *schema.Validator
	engine      *engine.Engine
	ledger      ledger.Ledger
}

// NewWorkflow creates the workflow management service.
func NewWorkflow(store persistence.Persistence, validator *schema.Validator, eng *engine.Engine, executionLedger ledger.Ledger) *Workflow {
	return &Workflow{
		persistence: store,
		validator:   validator,
		engine:      eng,
		ledger:      executionLedger,
	}
}

// HealthCheck reports the health of the persistence layer.
func (s *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if err := s.persistence.HealthCheck(ctx); err != nil {
		return "persistence layer is unhealthy: " + err.Error(), false
	}

	return "persistence layer is healthy", true
}

// List returns every stored workflow.
func (s *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	return s.persistence.Workflows(ctx)
}

// FetchByID returns one workflow.
func (s *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return s.persistence.WorkflowByID(ctx, id)
}

// Create stores a new workflow as a draft. Drafts are allowed to be invalid
// so builders can save work in progress; activation is where validation
// becomes mandatory.
func (s *Workflow) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	now := time.Now()
	workflow.ID = uuid.New().String()
	workflow.Status = models.WorkflowStatusDraft
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if err := s.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("save workflow: %w", err)
	}

	return workflow, nil
}

// Update replaces a workflow's definition, keeping its ID, status and
// creation time. Active workflows must still validate after the edit.
func (s *Workflow) Update(ctx context.Context, id string, workflow *models.Workflow) (*models.Workflow, error) {
	if workflow == nil {
		return nil, ErrWorkflowNil
	}

	existing, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.Status == models.WorkflowStatusArchived {
		return nil, ErrCannotEditArchived
	}

	workflow.ID = existing.ID
	workflow.Status = existing.Status
	workflow.CreatedAt = existing.CreatedAt
	workflow.UpdatedAt = time.Now()

	if existing.Status == models.WorkflowStatusActive {
		if result := s.validator.Validate(workflow); !result.Valid {
			return nil, fmt.Errorf("%w: %v", ErrWorkflowInvalid, result.Errors)
		}
	}

	if err := s.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("save workflow: %w", err)
	}

	return workflow, nil
}

// Delete removes a workflow. Active workflows must be paused or archived
// first so a running automation is never deleted by accident.
func (s *Workflow) Delete(ctx context.Context, id string) error {
	existing, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return err
	}

	if existing.Status == models.WorkflowStatusActive {
		return ErrCannotDeleteActive
	}

	return s.persistence.DeleteWorkflow(ctx, id)
}

// SetStatus transitions a workflow between statuses. Activation validates
// the graph first; an invalid workflow can never go live.
func (s *Workflow) SetStatus(ctx context.Context, id string, status models.WorkflowStatus) (*models.Workflow, error) {
	if !knownStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}

	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if workflow.Status == status {
		return workflow, nil
	}

	if !transitionAllowed(workflow.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, workflow.Status, status)
	}

	if status == models.WorkflowStatusActive {
		if result := s.validator.Validate(workflow); !result.Valid {
			return nil, fmt.Errorf("%w: %v", ErrCannotActivate, result.Errors)
		}
	}

	workflow.Status = status
	workflow.UpdatedAt = time.Now()

	if err := s.persistence.SaveWorkflow(ctx, workflow); err != nil {
		return nil, fmt.Errorf("save workflow: %w", err)
	}

	return workflow, nil
}

// Validate runs the full graph validation and returns the result without
// touching the store.
func (s *Workflow) Validate(ctx context.Context, id string) (*schema.Result, error) {
	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := s.validator.Validate(workflow)

	return &result, nil
}

// Run executes a workflow on demand with a caller-supplied sample payload.
// Live mode requires an active workflow and records a manual run; simulate
// mode records a test run that never reaches external systems and is
// excluded from statistics.
func (s *Workflow) Run(ctx context.Context, id string, mode models.ExecutionMode, payload map[string]any) (*models.Execution, error) {
	if mode != models.ModeLive && mode != models.ModeSimulate {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}

	workflow, err := s.persistence.WorkflowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	event := &events.BusinessEvent{
		ID:        uuid.New().String(),
		Type:      workflow.TriggerType,
		Data:      payload,
		Timestamp: time.Now(),
	}

	triggeredBy := models.TriggeredByManual
	if mode == models.ModeSimulate {
		triggeredBy = models.TriggeredByTest
	}

	execution, err := s.engine.Run(ctx, id, event, mode, triggeredBy)
	if err != nil {
		if errors.Is(err, engine.ErrWorkflowNotRunnable) {
			return nil, ErrWorkflowNotRunnable
		}

		return nil, err
	}

	return execution, nil
}

// CancelExecution requests cancellation of a running execution.
func (s *Workflow) CancelExecution(executionID string) error {
	if !s.engine.Cancel(executionID) {
		return ErrExecutionNotRunning
	}

	return nil
}

// Execution returns one execution record.
func (s *Workflow) Execution(ctx context.Context, executionID string) (*models.Execution, error) {
	return s.ledger.Get(ctx, executionID)
}

// Executions returns a workflow's execution history, newest first.
func (s *Workflow) Executions(ctx context.Context, workflowID string, limit int) ([]*models.Execution, error) {
	if _, err := s.persistence.WorkflowByID(ctx, workflowID); err != nil {
		return nil, err
	}

	return s.ledger.ListByWorkflow(ctx, workflowID, limit)
}

// Stats aggregates a workflow's execution history, excluding test runs.
func (s *Workflow) Stats(ctx context.Context, workflowID string) (*ledger.Stats, error) {
	if _, err := s.persistence.WorkflowByID(ctx, workflowID); err != nil {
		return nil, err
	}

	return s.ledger.Stats(ctx, workflowID)
}

func knownStatus(status models.WorkflowStatus) bool {
	for _, valid := range models.ValidWorkflowStatuses {
		if status == valid {
			return true
		}
	}

	return false
}

func transitionAllowed(from, to models.WorkflowStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}
