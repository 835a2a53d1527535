package engine

import (
	"context"
	"time"

	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
)

func (e *Engine) publishStarted(ctx context.Context, execution *models.Execution) {
	e.publish(ctx, execution.WorkflowID, &events.ExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionStartedEvent, execution.WorkflowID, execution.ID),
		TriggeredBy: execution.TriggeredBy,
		Mode:        execution.Mode,
	})
}

func (e *Engine) publishCompleted(ctx context.Context, execution *models.Execution) {
	var duration time.Duration
	if execution.CompletedAt != nil {
		duration = execution.CompletedAt.Sub(execution.StartedAt)
	}

	e.publish(ctx, execution.WorkflowID, &events.ExecutionCompleted{
		BaseEvent: events.NewBaseEvent(events.ExecutionCompletedEvent, execution.WorkflowID, execution.ID),
		Duration:  duration,
		Steps:     len(execution.Steps),
	})
}

func (e *Engine) publishFailed(ctx context.Context, execution *models.Execution) {
	failed := &events.ExecutionFailed{
		BaseEvent: events.NewBaseEvent(events.ExecutionFailedEvent, execution.WorkflowID, execution.ID),
		ErrorCode: execution.ErrorCode,
	}

	for _, step := range execution.Steps {
		if step.Status == models.StepStatusFailed {
			failed.FailedNodeID = step.NodeID
			failed.Error = step.Error

			break
		}
	}

	e.publish(ctx, execution.WorkflowID, failed)
}

func (e *Engine) publishCancelled(ctx context.Context, execution *models.Execution) {
	e.publish(ctx, execution.WorkflowID, &events.ExecutionCancelled{
		BaseEvent: events.NewBaseEvent(events.ExecutionCancelledEvent, execution.WorkflowID, execution.ID),
	})
}

func (e *Engine) publish(ctx context.Context, workflowID string, event events.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.PublishLifecycle(context.WithoutCancel(ctx), workflowID, event); err != nil {
		e.logger.Warn("Failed to publish lifecycle event",
			"event_type", event.GetType(), "error", err)
	}
}
