// Package dispatcher connects the event bus to the execution engine: every
// incoming business event is matched against the active workflows and one
// live execution is launched per match.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vendura/automation/pkg/engine"
	"github.com/vendura/automation/pkg/eventbus"
	"github.com/vendura/automation/pkg/events"
	"github.com/vendura/automation/pkg/models"
	"github.com/vendura/automation/pkg/persistence"
	"github.com/vendura/automation/pkg/trigger"
)

// Dispatcher subscribes to the business event topic and fans matched events
// out to the engine. Executions run on their own goroutines so one slow
// workflow never delays the others matched by the same event.
type Dispatcher struct {
	persistence persistence.Persistence
	bus         eventbus.EventBus
	engine      *engine.Engine
	matcher     *trigger.Matcher
	logger      *slog.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a business event dispatcher.
func NewDispatcher(store persistence.Persistence, bus eventbus.EventBus, eng *engine.Engine, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		persistence: store,
		bus:         bus,
		engine:      eng,
		matcher:     trigger.NewMatcher(logger),
		logger:      logger.With("module", "dispatcher"),
	}
}

// Start subscribes to the business topic and returns. Event handling runs
// until the subscription context is cancelled.
func (d *Dispatcher) Start(ctx context.Context) error {
	if err := d.bus.SubscribeBusiness(ctx, d.handle); err != nil {
		return fmt.Errorf("subscribe to business events: %w", err)
	}

	d.logger.Info("Dispatcher started")

	return nil
}

// Stop waits for in-flight executions launched by the dispatcher to finish.
func (d *Dispatcher) Stop() {
	d.wg.Wait()
	d.logger.Info("Dispatcher stopped")
}

// handle is the business event subscription callback. A failure to list
// workflows is returned so the bus can redeliver; execution failures are
// recorded in the ledger and never bubble back to the bus.
func (d *Dispatcher) handle(ctx context.Context, event *events.BusinessEvent) error {
	workflows, err := d.persistence.ActiveWorkflows(ctx)
	if err != nil {
		return fmt.Errorf("list active workflows: %w", err)
	}

	matched := d.matcher.Match(event, workflows)
	if len(matched) == 0 {
		return nil
	}

	d.logger.Info("Business event matched workflows",
		"event_id", event.ID,
		"event_type", event.Type,
		"matched", len(matched))

	for _, workflowID := range matched {
		d.launch(event, workflowID)
	}

	return nil
}

func (d *Dispatcher) launch(event *events.BusinessEvent, workflowID string) {
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		// Detached from the subscription context: a bus shutdown must not
		// abort executions already launched.
		execution, err := d.engine.Run(context.Background(), workflowID, event, models.ModeLive, event.ID)
		if err != nil {
			d.logger.Error("Failed to launch execution",
				"workflow_id", workflowID,
				"event_id", event.ID,
				"error", err)

			return
		}

		d.logger.Info("Execution finished",
			"workflow_id", workflowID,
			"execution_id", execution.ID,
			"status", execution.Status)
	}()
}
