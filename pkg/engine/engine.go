// Package engine walks workflow graphs, executing actions and recording
// per-step results in the execution ledger.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vendura/automation/pkg/condition"
	"github.com/vendura/automation/pkg/eventbus"
	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/executor"
	"github.com/vendura/automation/pkg/ledger"
	"github.com/vendura/automation/pkg/models"
	"github.com/vendura/automation/pkg/otelhelper"
	"github.com/vendura/automation/pkg/persistence"
)

const defaultExecutionTimeout = 5 * time.Minute

// ErrWorkflowNotRunnable is returned when a live run is requested for a
// workflow that is not active.
var ErrWorkflowNotRunnable = errors.New("workflow is not active")

// Engine runs workflow executions. Each Run call works on its own snapshot
// of the workflow and its own execution record; concurrent runs share only
// the read-only definition and the append-only ledger.
type Engine struct {
	persistence      persistence.Persistence
	ledger           ledger.Ledger
	executor         *executor.Executor
	bus              eventbus.EventBus
	logger           *slog.Logger
	tracer           trace.Tracer
	executionTimeout time.Duration

	cancels sync.Map // execution ID -> context.CancelFunc
}

// Option configures an Engine.
type Option func(*Engine)

// WithExecutionTimeout overrides the overall wall-clock cap per execution.
func WithExecutionTimeout(timeout time.Duration) Option {
	return func(e *Engine) { e.executionTimeout = timeout }
}

// WithTracer attaches a tracer; the default is a no-op tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) { e.tracer = tracer }
}

// WithEventBus attaches a bus for execution lifecycle notifications.
func WithEventBus(bus eventbus.EventBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// NewEngine creates a graph execution engine.
func NewEngine(store persistence.Persistence, executionLedger ledger.Ledger, actionExecutor *executor.Executor, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		persistence:      store,
		ledger:           executionLedger,
		executor:         actionExecutor,
		logger:           logger.With("module", "engine"),
		tracer:           noop.NewTracerProvider().Tracer("engine"),
		executionTimeout: defaultExecutionTimeout,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run executes a workflow synchronously and returns the finished execution
// record. Step and action failures are recorded on the execution, never
// returned as errors; the error return covers only pre-execution problems
// such as an unknown workflow ID.
func (e *Engine) Run(ctx context.Context, workflowID string, event *events.BusinessEvent, mode models.ExecutionMode, triggeredBy string) (*models.Execution, error) {
	workflow, err := e.persistence.WorkflowByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("fetch workflow %s: %w", workflowID, err)
	}

	if mode == models.ModeLive && !workflow.IsExecutable() {
		return nil, ErrWorkflowNotRunnable
	}

	snapshot := workflow.Snapshot()

	execution := e.newExecution(snapshot, mode, triggeredBy)

	if err := e.ledger.Append(ctx, execution); err != nil {
		return nil, fmt.Errorf("record execution: %w", err)
	}

	runCtx, cancelCap := context.WithTimeout(ctx, e.executionTimeout)
	defer cancelCap()

	runCtx, cancelOp := context.WithCancel(runCtx)
	defer cancelOp()

	e.cancels.Store(execution.ID, cancelOp)
	defer e.cancels.Delete(execution.ID)

	spanCtx, span := e.tracer.Start(runCtx, "workflow.execute", trace.WithAttributes(
		attribute.String(otelhelper.WorkflowIDKey, snapshot.ID),
		attribute.String(otelhelper.ExecutionIDKey, execution.ID),
		attribute.String(otelhelper.ExecutionModeKey, string(mode)),
		attribute.String(otelhelper.EventIDKey, event.ID),
	))
	defer span.End()

	execution.Status = models.ExecutionStatusRunning
	e.record(spanCtx, execution)
	e.publishStarted(spanCtx, execution)

	e.walk(spanCtx, snapshot, execution, event, mode)

	now := time.Now()
	execution.CompletedAt = &now
	e.record(spanCtx, execution)

	switch {
	case execution.Status != models.ExecutionStatusFailed:
		e.publishCompleted(spanCtx, execution)
	case execution.ErrorCode == models.ErrCodeCancelled:
		otelhelper.SetError(span, context.Canceled)
		e.publishCancelled(spanCtx, execution)
	default:
		otelhelper.SetError(span, errors.New(execution.ErrorCode))
		e.publishFailed(spanCtx, execution)
	}

	return execution, nil
}

// RunAsync starts an execution on its own goroutine and returns immediately.
// The returned channel yields the finished execution record.
func (e *Engine) RunAsync(ctx context.Context, workflowID string, event *events.BusinessEvent, mode models.ExecutionMode, triggeredBy string) <-chan RunResult {
	done := make(chan RunResult, 1)

	go func() {
		execution, err := e.Run(ctx, workflowID, event, mode, triggeredBy)
		done <- RunResult{Execution: execution, Err: err}
	}()

	return done
}

// RunResult pairs a finished execution with a pre-execution error.
type RunResult struct {
	Execution *models.Execution
	Err       error
}

// Cancel requests cooperative cancellation of a running execution. It
// returns false when the execution is not currently running. Cancellation
// is checked between steps; an in-flight action observes it through its
// context.
func (e *Engine) Cancel(executionID string) bool {
	cancel, ok := e.cancels.Load(executionID)
	if !ok {
		return false
	}

	cancel.(context.CancelFunc)()

	return true
}

// newExecution pre-populates one pending step per node so nodes never
// reached stay visible as pending instead of being silently dropped.
func (e *Engine) newExecution(workflow *models.Workflow, mode models.ExecutionMode, triggeredBy string) *models.Execution {
	execution := &models.Execution{
		ID:          "exec-" + uuid.New().String()[:8],
		WorkflowID:  workflow.ID,
		TriggeredBy: triggeredBy,
		Mode:        mode,
		Status:      models.ExecutionStatusQueued,
		StartedAt:   time.Now(),
		Steps:       make([]*models.StepResult, 0, len(workflow.Nodes)),
	}

	for _, node := range workflow.Nodes {
		execution.Steps = append(execution.Steps, &models.StepResult{
			NodeID: node.ID,
			Label:  node.Label,
			Status: models.StepStatusPending,
		})
	}

	return execution
}

// walk traverses the graph from the trigger node, mutating the execution
// record in place. It owns all status transitions of the run.
func (e *Engine) walk(ctx context.Context, workflow *models.Workflow, execution *models.Execution, event *events.BusinessEvent, mode models.ExecutionMode) {
	logger := e.logger.With(
		"workflow_id", workflow.ID,
		"execution_id", execution.ID,
		"mode", mode,
	)

	adjacency := models.BuildAdjacency(workflow)

	current := workflow.TriggerNode()
	if current == nil {
		// Validation prevents this; treat it as an engine defect.
		logger.Error("Workflow has no trigger node, failing execution")
		execution.Status = models.ExecutionStatusFailed
		execution.ErrorCode = models.ErrCodeActionFailed

		return
	}

	// The trigger performs no work; it only supplies the event as context.
	triggerStep := execution.StepByNodeID(current.ID)
	triggerStep.Status = models.StepStatusCompleted
	triggerStep.Output = map[string]any{"event_type": string(event.Type), "event_id": event.ID}

	for {
		next, ok := e.advance(ctx, adjacency, current, execution, event, mode, logger)
		if !ok {
			return
		}

		if next == "" {
			execution.Status = models.ExecutionStatusCompleted
			logger.Info("Execution completed", "steps", len(execution.Steps))

			return
		}

		current = workflow.NodeByID(next)
		if current == nil {
			logger.Error("Edge targets unknown node, failing execution", "node_id", next)
			execution.Status = models.ExecutionStatusFailed
			execution.ErrorCode = models.ErrCodeActionFailed

			return
		}
	}
}

// advance executes the outgoing transition of the current node and returns
// the next node ID ("" for a terminal leaf). ok is false when the execution
// reached a terminal status and the walk must stop.
func (e *Engine) advance(ctx context.Context, adjacency *models.Adjacency, current *models.WorkflowNode, execution *models.Execution, event *events.BusinessEvent, mode models.ExecutionMode, logger *slog.Logger) (string, bool) {
	if stopped := e.checkInterrupted(ctx, execution, logger); stopped {
		return "", false
	}

	switch current.Kind {
	case models.NodeKindTrigger:
		return e.followSingle(adjacency, current), true

	case models.NodeKindCondition:
		step := execution.StepByNodeID(current.ID)
		if current.Condition == nil {
			// Reachable for simulate runs, which skip the activation gate.
			logger.Error("Condition node has no config, failing execution", "node_id", current.ID)

			step.Status = models.StepStatusFailed
			step.Error = "condition node has no config"
			execution.Status = models.ExecutionStatusFailed
			execution.ErrorCode = models.ErrCodeInvalidNode

			return "", false
		}

		outcome := condition.Evaluate(current.Condition, event.Data)

		step.Status = models.StepStatusCompleted
		step.Output = map[string]any{"result": outcome.Result}
		step.Error = outcome.Warning
		step.Input = map[string]any{
			"field":    current.Condition.Field,
			"operator": string(current.Condition.Operator),
			"value":    current.Condition.Value,
		}

		edge := adjacency.OutgoingBranch(current.ID, branchFor(outcome.Result))
		if edge == nil {
			// Validation should have made this impossible.
			logger.Error("Condition node has no edge for chosen branch",
				"node_id", current.ID, "branch", outcome.Result)

			step.Status = models.StepStatusFailed
			step.Error = fmt.Sprintf("no outgoing edge for branch %t", outcome.Result)
			execution.Status = models.ExecutionStatusFailed
			execution.ErrorCode = models.ErrCodeMissingBranch

			return "", false
		}

		e.record(ctx, execution)

		return edge.Target, true

	case models.NodeKindAction:
		return e.executeAction(ctx, adjacency, current, execution, event, mode, logger)

	default:
		logger.Error("Unknown node kind, failing execution", "node_id", current.ID, "kind", current.Kind)
		execution.Status = models.ExecutionStatusFailed
		execution.ErrorCode = models.ErrCodeActionFailed

		return "", false
	}
}

func (e *Engine) executeAction(ctx context.Context, adjacency *models.Adjacency, current *models.WorkflowNode, execution *models.Execution, event *events.BusinessEvent, mode models.ExecutionMode, logger *slog.Logger) (string, bool) {
	step := execution.StepByNodeID(current.ID)
	if current.Action == nil {
		logger.Error("Action node has no config, failing execution", "node_id", current.ID)

		step.Status = models.StepStatusFailed
		step.Error = "action node has no config"
		execution.Status = models.ExecutionStatusFailed
		execution.ErrorCode = models.ErrCodeInvalidNode

		return "", false
	}

	step.Status = models.StepStatusRunning
	step.Input = map[string]any{"action_type": string(current.Action.Type)}
	e.record(ctx, execution)

	started := time.Now()
	output, err := e.executor.Execute(ctx, current.Action, event, mode)
	step.Duration = time.Since(started)
	step.Output = output

	if err != nil {
		step.Status = models.StepStatusFailed
		step.Error = err.Error()
		execution.Status = models.ExecutionStatusFailed

		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			execution.ErrorCode = models.ErrCodeExecutionTimeout
		case ctx.Err() != nil:
			execution.ErrorCode = models.ErrCodeCancelled
		default:
			execution.ErrorCode = models.ErrCodeActionFailed
		}

		logger.Warn("Action step failed, halting execution",
			"node_id", current.ID, "error", err, "error_code", execution.ErrorCode)

		return "", false
	}

	step.Status = models.StepStatusCompleted
	e.record(ctx, execution)

	return e.followSingle(adjacency, current), true
}

// checkInterrupted handles cooperative cancellation and the overall
// wall-clock cap between steps.
func (e *Engine) checkInterrupted(ctx context.Context, execution *models.Execution, logger *slog.Logger) bool {
	if ctx.Err() == nil {
		return false
	}

	execution.Status = models.ExecutionStatusFailed

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		execution.ErrorCode = models.ErrCodeExecutionTimeout
		logger.Warn("Execution exceeded wall-clock cap")
	} else {
		execution.ErrorCode = models.ErrCodeCancelled
		logger.Info("Execution cancelled by operator")
	}

	return true
}

// followSingle returns the target of the node's single outgoing edge, or ""
// at a terminal leaf.
func (e *Engine) followSingle(adjacency *models.Adjacency, node *models.WorkflowNode) string {
	outgoing := adjacency.Outgoing(node.ID)
	if len(outgoing) == 0 {
		return ""
	}

	return outgoing[0].Target
}

func branchFor(result bool) models.BranchLabel {
	if result {
		return models.BranchTrue
	}

	return models.BranchFalse
}

// record persists the execution's current state. Ledger write failures are
// logged, not propagated: the walk must finish and report its own outcome.
func (e *Engine) record(ctx context.Context, execution *models.Execution) {
	if err := e.ledger.Update(context.WithoutCancel(ctx), execution); err != nil {
		e.logger.Error("Failed to record execution state",
			"execution_id", execution.ID, "error", err)
	}
}
